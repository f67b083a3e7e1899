// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mbrtu

import "fmt"

// readTemperatureRequest is the fixed read-holding-register command for the
// temperature register (0x0064, one register), with its CRC pre-computed.
// The request never varies, so it is built once rather than on every poll.
var readTemperatureRequest = [ReadRequestSize]byte{
	SlaveAddress, FnReadHolding, 0x00, 0x64, 0x00, 0x01, 0xC5, 0xD5,
}

// BuildWrite constructs a write-single-register command frame.
//
// Negative values are transformed into their 16-bit two's complement
// ((|v| XOR 0xFFFF) + 1) before being split into high/low bytes. This is the
// exact bit pattern the chamber controller expects for negative setpoints.
func BuildWrite(register uint16, value int) []byte {
	wire := uint16(value)
	if value < 0 {
		wire = (uint16(-value) ^ 0xFFFF) + 1
	}

	frame := make([]byte, 0, WriteFrameSize)
	frame = append(frame,
		SlaveAddress, FnWriteSingle,
		byte(register>>8), byte(register&0xFF),
		byte(wire>>8), byte(wire&0xFF),
	)
	return AppendCRC(frame)
}

// ReadTemperatureRequest returns the fixed 8-byte read-temperature command.
// The returned slice is a fresh copy; callers may hand it to a transport
// without aliasing concerns.
func ReadTemperatureRequest() []byte {
	frame := make([]byte, ReadRequestSize)
	copy(frame, readTemperatureRequest[:])
	return frame
}

// DecodeTemperature extracts the measured temperature from a complete
// read-temperature reply. The reply carries the temperature as a signed
// 8-bit value; there is no length field on the wire, so the caller is
// responsible for having accumulated exactly one full reply.
func DecodeTemperature(reply []byte) (int, error) {
	if len(reply) != TemperatureReplySize {
		return 0, fmt.Errorf("temperature reply is %d bytes, want %d", len(reply), TemperatureReplySize)
	}
	return int(int8(reply[temperatureOffset])), nil
}
