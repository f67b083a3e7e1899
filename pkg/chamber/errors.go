// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced by the exchange engine and control API.
var (
	// ErrPortNotOpen is returned when an operation requires an open port.
	ErrPortNotOpen = errors.New("chamber port is not open")

	// ErrOutOfRange is returned when a setpoint falls outside the range the
	// chamber accepts.
	ErrOutOfRange = errors.New("setpoint out of range")

	// ErrEchoTooShort is returned when the chamber echoed fewer bytes than
	// the command before the read retry budget ran out.
	ErrEchoTooShort = errors.New("command echo too short")

	// ErrEchoTooLong is returned when the chamber sent back more bytes than
	// the command it is echoing.
	ErrEchoTooLong = errors.New("command echo too long")

	// ErrEchoMismatch is returned when the echo differs from the command.
	// The chamber has no acknowledgment other than the echo, so a mismatch
	// means the command cannot be trusted to have been applied.
	ErrEchoMismatch = errors.New("command echo does not match command")

	// ErrTempMsgNotReceived is returned when no reply bytes arrived before
	// the read retry budget ran out.
	ErrTempMsgNotReceived = errors.New("temperature reply not received")

	// ErrTempMsgTooShort is returned when a partial reply arrived but never
	// completed within the read retry budget.
	ErrTempMsgTooShort = errors.New("temperature reply too short")

	// ErrTempMsgTooLong is returned when more bytes than one reply arrived.
	ErrTempMsgTooLong = errors.New("temperature reply too long")
)

// PortOpenError wraps the transport failure behind an attempt to open the
// serial port.
type PortOpenError struct {
	Port string
	Err  error
}

func (e *PortOpenError) Error() string {
	return fmt.Sprintf("failed to open port %s: %v", e.Port, e.Err)
}

func (e *PortOpenError) Unwrap() error { return e.Err }

// SetTempError is returned when every attempt of the setpoint write retry
// loop failed. Last carries the error from the final attempt.
type SetTempError struct {
	Attempts int
	Last     error
}

func (e *SetTempError) Error() string {
	return fmt.Sprintf("failed to set temperature after %d attempts: %v", e.Attempts, e.Last)
}

func (e *SetTempError) Unwrap() error { return e.Last }

// UnresponsiveError is returned by PingUntilAwake when the chamber never
// answered within the allowed wait.
type UnresponsiveError struct {
	Elapsed time.Duration
	Last    error
}

func (e *UnresponsiveError) Error() string {
	return fmt.Sprintf("chamber unresponsive after %v, check chamber power and serial connection: %v", e.Elapsed, e.Last)
}

func (e *UnresponsiveError) Unwrap() error { return e.Last }
