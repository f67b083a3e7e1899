// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate the chamber controller ships with.
const DefaultBaudRate = 9600

// readPollTimeout bounds a single transport read so the exchange engine sees
// "whatever bytes are currently available" instead of blocking for a full
// reply. A zero-byte read is a normal outcome under this timeout.
const readPollTimeout = 50 * time.Millisecond

// Transport is the duplex byte channel to the chamber controller. Both the
// local serial port and the WebSocket bridge satisfy it.
type Transport interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards any unread bytes waiting on the channel.
	ResetInputBuffer() error
}

// go.bug.st/serial ports satisfy Transport directly.
var _ Transport = (serial.Port)(nil)

// OpenSerial opens the chamber's serial port at 8N1 framing.
func OpenSerial(portName string, baudRate int) (Transport, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, &PortOpenError{Port: portName, Err: err}
	}

	if err := port.SetReadTimeout(readPollTimeout); err != nil {
		port.Close()
		return nil, &PortOpenError{Port: portName, Err: err}
	}

	return port, nil
}

// ListPorts returns the names of serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
