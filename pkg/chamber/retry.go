// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import "time"

// sleepFunc suspends the caller for the given duration. Production code uses
// time.Sleep; tests substitute a recorder so retry timing is observable
// without real delays.
type sleepFunc func(time.Duration)

// retry runs op up to attempts times, sleeping interval between failed
// attempts, and returns nil on the first success. When every attempt fails
// the error of the last attempt is returned.
//
// The same bounded policy backs the setpoint write loop and the exchange
// read loop; only the attempt count and interval differ.
func retry(attempts int, interval time.Duration, sleep sleepFunc, op func() error) error {
	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 && interval > 0 {
			sleep(interval)
		}
		if last = op(); last == nil {
			return nil
		}
	}
	return last
}
