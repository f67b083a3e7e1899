// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package chamber drives an environmental temperature test chamber over its
// serial register protocol.
//
// A Chamber session issues setpoint and valve commands through a single
// exchange engine, optionally monitoring convergence toward a setpoint in
// the background and notifying when the chamber reaches it or times out.
// A simulated session exercises the same API without hardware.
package chamber

import (
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/chamberctl/pkg/mbrtu"
)

// Mode selects between a live serial session and a hardware-less simulation.
type Mode int

const (
	// Live drives a real chamber through a Transport.
	Live Mode = iota
	// Simulated answers the API from session state without any transport
	// I/O. GetTemp reports the last accepted setpoint.
	Simulated
)

// Control API timing
const (
	// setTempAttempts bounds the outer setpoint write retry loop.
	setTempAttempts = 3
	// pingInterval is the cadence of PingUntilAwake probes.
	pingInterval = 250 * time.Millisecond
)

// Options configures a Chamber session.
type Options struct {
	// Port and BaudRate locate the chamber's serial port. Ignored when
	// Transport is set or Mode is Simulated.
	Port     string
	BaudRate int

	// Transport, when non-nil, is used instead of opening a serial port.
	// This is how the WebSocket bridge and tests plug in.
	Transport Transport

	Mode Mode

	// Notifier receives the terminal outcome of monitored setpoints.
	// Optional; nil disables notifications (monitoring still logs).
	Notifier Notifier

	// Log receives one status line per call. Optional; nil discards.
	Log LogSink
}

// Chamber is a session with one chamber controller. All exchanges serialize
// through a single mutex so a background poll never interleaves bytes with a
// concurrent command.
type Chamber struct {
	mu sync.Mutex

	mode      Mode
	port      string
	baudRate  int
	transport Transport
	open      bool

	desired  int
	notifier Notifier
	logf     LogSink

	mon *monitor

	// sleep is time.Sleep in production; tests substitute a recorder.
	sleep sleepFunc
}

// New creates a Chamber session. The port is not opened until Open is called.
func New(opts Options) *Chamber {
	logf := opts.Log
	if logf == nil {
		logf = func(string) {}
	}
	return &Chamber{
		mode:      opts.Mode,
		port:      opts.Port,
		baudRate:  opts.BaudRate,
		transport: opts.Transport,
		notifier:  opts.Notifier,
		logf:      logf,
		sleep:     time.Sleep,
	}
}

// Open establishes the session. For a live session without an injected
// transport this opens the configured serial port; a simulated session just
// marks itself open.
func (c *Chamber) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return fmt.Errorf("chamber already open")
	}

	if c.mode == Live && c.transport == nil {
		t, err := OpenSerial(c.port, c.baudRate)
		if err != nil {
			return err
		}
		c.transport = t
	}

	c.open = true
	return nil
}

// Close disarms any active monitor and closes the transport. Closing an
// already-closed session is a no-op.
func (c *Chamber) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}

	c.disarmLocked()
	c.open = false

	if c.transport != nil {
		err := c.transport.Close()
		c.transport = nil
		if err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// IsOpen reports whether the session is open.
func (c *Chamber) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Desired returns the last accepted target temperature.
func (c *Chamber) Desired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desired
}

// SetTemp commands the chamber to the given target temperature in °C.
//
// The setpoint must lie within [mbrtu.MinTemp, mbrtu.MaxTemp]. Any active
// monitor is disarmed before the command is sent. The register write is
// retried up to three times; if every attempt fails a SetTempError wrapping
// the last failure is returned and the previous setpoint stays in effect.
//
// With notify set, a successful write arms background monitoring: the
// temperature is polled until it comes within tolerance of the setpoint
// (TemperatureReached) or timeoutMinutes elapse (TimedOut). A timeout of 0
// waits forever.
func (c *Chamber) SetTemp(temp int, notify bool, timeoutMinutes int) error {
	if temp < mbrtu.MinTemp || temp > mbrtu.MaxTemp {
		return fmt.Errorf("%w: %d°C not in [%d, %d]", ErrOutOfRange, temp, mbrtu.MinTemp, mbrtu.MaxTemp)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A new setpoint always supersedes whatever was being monitored.
	c.disarmLocked()

	frame := mbrtu.BuildWrite(mbrtu.RegTemperature, temp)
	err := retry(setTempAttempts, 0, c.sleep, func() error {
		return c.exchangeEcho(frame)
	})
	if err != nil {
		return &SetTempError{Attempts: setTempAttempts, Last: err}
	}

	c.desired = temp

	if notify {
		c.armLocked(temp, timeoutMinutes)
	}
	return nil
}

// GetTemp reads the chamber's current temperature in °C. A simulated session
// reports the last accepted setpoint without touching any transport.
func (c *Chamber) GetTemp() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return 0, ErrPortNotOpen
	}
	if c.mode == Simulated {
		return c.desired, nil
	}
	return c.exchangeReadTemperature()
}

// OpenPurgeValve opens the chamber's purge valve. Single attempt; exchange
// failures propagate unchanged.
func (c *Chamber) OpenPurgeValve() error {
	return c.writeValve(mbrtu.ValveOpen)
}

// ClosePurgeValve closes the chamber's purge valve. Single attempt; exchange
// failures propagate unchanged.
func (c *Chamber) ClosePurgeValve() error {
	return c.writeValve(mbrtu.ValveClosed)
}

func (c *Chamber) writeValve(state int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegPurgeValve, state))
}

// PingUntilAwake polls the chamber at a fixed cadence until it answers a
// temperature read, swallowing failures along the way. If the accumulated
// wait exceeds timeout, an UnresponsiveError carrying the last failure is
// returned. Useful right after power-on, when the controller can take
// several seconds to start answering.
func (c *Chamber) PingUntilAwake(timeout time.Duration) error {
	var elapsed time.Duration
	var last error

	for {
		_, err := c.GetTemp()
		if err == nil {
			return nil
		}
		last = err

		if elapsed > timeout {
			return &UnresponsiveError{Elapsed: elapsed, Last: last}
		}

		c.sleep(pingInterval)
		elapsed += pingInterval
	}
}
