// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mbrtu implements the chamber controller's Modbus-RTU style register
// protocol.
//
// The chamber speaks a fixed-layout binary protocol over a point-to-point
// serial link: 8-byte write-register commands acknowledged by a byte-exact
// echo, and a fixed 8-byte read-temperature request answered by a 7-byte
// reply carrying the temperature as a signed byte. This package provides
// frame construction, CRC validation, and reply parsing.
package mbrtu

// Protocol framing
const (
	SlaveAddress  = 0x01
	FnReadHolding = 0x03
	FnWriteSingle = 0x06
)

// Frame sizes
const (
	WriteFrameSize       = 8
	ReadRequestSize      = 8
	TemperatureReplySize = 7

	// Byte offset of the signed temperature within a read reply.
	temperatureOffset = 4
)

// Controller registers
const (
	RegTemperature = 300
	RegPurgeValve  = 2000
)

// Purge valve register values
const (
	ValveOpen   = 1
	ValveClosed = 0
)

// Setpoint limits accepted by the chamber, degrees Celsius
const (
	MinTemp = -60
	MaxTemp = 80
)

// CRC-16/Modbus configuration
const (
	crcPolynomial = 0xA001
	crcInitial    = 0xFFFF
)
