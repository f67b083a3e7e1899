// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/chamberctl/pkg/mbrtu"
)

// Exchange timing. The chamber controller needs a settle interval after a
// command before its reply starts arriving, and replies can straggle across
// several partial reads.
const (
	settleDelay    = 100 * time.Millisecond
	readRetryDelay = 200 * time.Millisecond
	maxReadRetries = 3
)

// errIncomplete signals the read retry loop that the accumulated response is
// still shorter than expected. It never escapes the exchange engine.
var errIncomplete = errors.New("response incomplete")

// transfer performs one command round trip: discard stale input, write the
// frame, wait for the device to settle, then accumulate reply bytes across
// up to maxReadRetries additional reads. A zero-byte read is not itself an
// error; only exhausting the retry budget is, and that is left to the caller
// to classify from the accumulated length.
//
// The caller must hold c.mu and have verified the port is open.
func (c *Chamber) transfer(frame []byte, want int) ([]byte, error) {
	if err := c.transport.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("failed to discard stale input: %w", err)
	}
	if _, err := c.transport.Write(frame); err != nil {
		return nil, fmt.Errorf("write failed: %w", err)
	}

	c.sleep(settleDelay)

	buf := make([]byte, 0, want*2)
	chunk := make([]byte, 64)
	readAvailable := func() error {
		// Read errors are treated like empty reads. The device may still
		// complete the reply on a later read, and a persistent fault
		// surfaces as a short response anyway.
		n, _ := c.transport.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if len(buf) < want {
			return errIncomplete
		}
		return nil
	}

	// First read immediately after the settle interval, then bounded
	// sleep-and-read retries while the response is short.
	_ = retry(1+maxReadRetries, readRetryDelay, c.sleep, readAvailable)

	return buf, nil
}

// exchangeEcho writes a command frame and verifies the chamber echoed it
// byte for byte. The echo is the protocol's only acknowledgment: anything
// other than an exact match means the command cannot be trusted to have
// been applied.
//
// The caller must hold c.mu.
func (c *Chamber) exchangeEcho(frame []byte) error {
	if !c.open {
		return ErrPortNotOpen
	}
	if c.mode == Simulated {
		return nil
	}

	resp, err := c.transfer(frame, len(frame))
	if err != nil {
		return err
	}

	switch {
	case len(resp) > len(frame):
		return fmt.Errorf("%w: got %d bytes, want %d", ErrEchoTooLong, len(resp), len(frame))
	case len(resp) < len(frame):
		return fmt.Errorf("%w: got %d bytes, want %d", ErrEchoTooShort, len(resp), len(frame))
	case !bytes.Equal(resp, frame):
		return fmt.Errorf("%w: sent %s, got %s", ErrEchoMismatch,
			mbrtu.FormatFrame(frame), mbrtu.FormatFrame(resp))
	}
	return nil
}

// exchangeReadTemperature sends the fixed read-temperature request and
// parses the 7-byte reply. There is no length field on the wire, so the
// total byte count is the only validity check available.
//
// The caller must hold c.mu. Simulated sessions never reach this point;
// GetTemp short-circuits before the exchange engine.
func (c *Chamber) exchangeReadTemperature() (int, error) {
	if !c.open {
		return 0, ErrPortNotOpen
	}

	resp, err := c.transfer(mbrtu.ReadTemperatureRequest(), mbrtu.TemperatureReplySize)
	if err != nil {
		return 0, err
	}

	switch {
	case len(resp) == 0:
		return 0, ErrTempMsgNotReceived
	case len(resp) < mbrtu.TemperatureReplySize:
		return 0, fmt.Errorf("%w: got %d of %d bytes", ErrTempMsgTooShort, len(resp), mbrtu.TemperatureReplySize)
	case len(resp) > mbrtu.TemperatureReplySize:
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrTempMsgTooLong, len(resp), mbrtu.TemperatureReplySize)
	}

	return mbrtu.DecodeTemperature(resp)
}
