// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mbrtu

import (
	"fmt"
	"strings"
)

// FormatFrame formats a command or response frame into a human-readable
// string for logging.
func FormatFrame(frame []byte) string {
	var sb strings.Builder

	sb.WriteString(FormatFunction(frame))
	sb.WriteString(" [")
	for i, b := range frame {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteString("]")
	return sb.String()
}

// FormatFunction returns the human-readable name for the frame's function
// code, including the addressed register for write commands.
func FormatFunction(frame []byte) string {
	if len(frame) < 2 {
		return "SHORT_FRAME"
	}

	switch frame[1] {
	case FnReadHolding:
		return "READ_TEMPERATURE"
	case FnWriteSingle:
		if len(frame) < 4 {
			return "WRITE_REGISTER"
		}
		register := uint16(frame[2])<<8 | uint16(frame[3])
		switch register {
		case RegTemperature:
			return "WRITE_TEMPERATURE"
		case RegPurgeValve:
			return "WRITE_PURGE_VALVE"
		default:
			return fmt.Sprintf("WRITE_REGISTER_%d", register)
		}
	default:
		return "UNKNOWN"
	}
}
