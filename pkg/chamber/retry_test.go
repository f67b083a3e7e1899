// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	slept := []time.Duration{}
	calls := 0

	err := retry(3, time.Second, func(d time.Duration) { slept = append(slept, d) }, func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept, "no sleep before the first attempt")
}

func TestRetry_EventualSuccess(t *testing.T) {
	slept := []time.Duration{}
	calls := 0

	err := retry(3, time.Second, func(d time.Duration) { slept = append(slept, d) }, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	first := errors.New("first")
	last := errors.New("last")
	calls := 0

	err := retry(2, 0, func(time.Duration) {}, func() error {
		calls++
		if calls == 1 {
			return first
		}
		return last
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 2, calls)
}

func TestRetry_ZeroIntervalSkipsSleep(t *testing.T) {
	slept := 0

	_ = retry(3, 0, func(time.Duration) { slept++ }, func() error {
		return errors.New("always")
	})

	assert.Zero(t, slept)
}
