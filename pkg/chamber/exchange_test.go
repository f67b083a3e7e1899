// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/chamberctl/pkg/mbrtu"
)

// fakeTransport scripts the chamber's side of an exchange. Each Read pops
// one chunk, modelling partial reads from a slow serial device; an empty
// chunk models "no bytes currently available".
type fakeTransport struct {
	writes  [][]byte
	pending [][]byte
	reads   int
	resets  int
	closed  bool

	// onWrite produces the read chunks the device answers with.
	onWrite  func(frame []byte) [][]byte
	writeErr error
}

// echoTransport scripts a healthy chamber: every command is echoed back,
// split into the given number of chunks.
func echoTransport(chunks int) *fakeTransport {
	return &fakeTransport{
		onWrite: func(frame []byte) [][]byte {
			out := make([][]byte, 0, chunks)
			per := (len(frame) + chunks - 1) / chunks
			for i := 0; i < len(frame); i += per {
				end := i + per
				if end > len(frame) {
					end = len(frame)
				}
				out = append(out, append([]byte{}, frame[i:end]...))
			}
			return out
		},
	}
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, append([]byte{}, p...))
	if f.onWrite != nil {
		f.pending = append(f.pending, f.onWrite(p)...)
	}
	return len(p), nil
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	f.reads++
	if len(f.pending) == 0 {
		return 0, nil
	}
	chunk := f.pending[0]
	f.pending = f.pending[1:]
	return copy(p, chunk), nil
}

func (f *fakeTransport) ResetInputBuffer() error {
	f.resets++
	f.pending = nil
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// testChamber returns an open live session on the given transport with
// sleeps recorded instead of slept.
func testChamber(t *testing.T, ft Transport) (*Chamber, *[]time.Duration) {
	t.Helper()

	c := New(Options{Transport: ft})
	require.NoError(t, c.Open())

	slept := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return c, slept
}

func TestExchangeEcho_Success(t *testing.T) {
	ft := echoTransport(3)
	c, _ := testChamber(t, ft)

	frame := mbrtu.BuildWrite(mbrtu.RegTemperature, 35)
	err := c.exchangeEcho(frame)

	require.NoError(t, err)
	require.Len(t, ft.writes, 1)
	assert.Equal(t, frame, ft.writes[0])
	assert.Equal(t, 1, ft.resets, "stale input must be discarded before the write")
}

func TestExchangeEcho_PortNotOpen(t *testing.T) {
	c := New(Options{Transport: &fakeTransport{}})

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 20))
	assert.ErrorIs(t, err, ErrPortNotOpen)
}

func TestExchangeEcho_Simulated(t *testing.T) {
	c := New(Options{Mode: Simulated})
	require.NoError(t, c.Open())

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 20))
	assert.NoError(t, err)
}

func TestExchangeEcho_TooShort(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func(frame []byte) [][]byte {
			return [][]byte{frame[:5]}
		},
	}
	c, slept := testChamber(t, ft)

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 35))

	assert.ErrorIs(t, err, ErrEchoTooShort)
	// Settle, then three bounded retry waits.
	assert.Equal(t, []time.Duration{settleDelay, readRetryDelay, readRetryDelay, readRetryDelay}, *slept)
	assert.Equal(t, 1+maxReadRetries, ft.reads)
}

func TestExchangeEcho_TooLong(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func(frame []byte) [][]byte {
			// Echo plus a trailing garbage byte in one burst.
			return [][]byte{append(append([]byte{}, frame...), 0xFF)}
		},
	}
	c, _ := testChamber(t, ft)

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 35))
	assert.ErrorIs(t, err, ErrEchoTooLong)
}

func TestExchangeEcho_Mismatch(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func(frame []byte) [][]byte {
			bad := append([]byte{}, frame...)
			bad[4] ^= 0x01
			return [][]byte{bad}
		},
	}
	c, _ := testChamber(t, ft)

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 35))
	assert.ErrorIs(t, err, ErrEchoMismatch)
}

func TestExchangeEcho_WriteError(t *testing.T) {
	wantErr := errors.New("device unplugged")
	c, _ := testChamber(t, &fakeTransport{writeErr: wantErr})

	err := c.exchangeEcho(mbrtu.BuildWrite(mbrtu.RegTemperature, 35))
	assert.ErrorIs(t, err, wantErr)
}

func TestExchangeReadTemperature_Success(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func([]byte) [][]byte {
			return [][]byte{{1, 3, 2}, {0, 0xD8}, {0x00, 0x00}}
		},
	}
	c, _ := testChamber(t, ft)

	temp, err := c.exchangeReadTemperature()

	require.NoError(t, err)
	assert.Equal(t, -40, temp)
	require.Len(t, ft.writes, 1)
	assert.Equal(t, mbrtu.ReadTemperatureRequest(), ft.writes[0])
}

func TestExchangeReadTemperature_ZeroByteReadsAreTolerated(t *testing.T) {
	// The reply straggles in around empty reads. As long as it completes
	// within the retry budget the exchange succeeds.
	ft := &fakeTransport{
		onWrite: func([]byte) [][]byte {
			return [][]byte{{}, {1, 3, 2, 0}, {}, {23, 0xF8, 0x47}}
		},
	}
	c, _ := testChamber(t, ft)

	temp, err := c.exchangeReadTemperature()

	require.NoError(t, err)
	assert.Equal(t, 23, temp)
}

func TestExchangeReadTemperature_NotReceived(t *testing.T) {
	c, slept := testChamber(t, &fakeTransport{})

	_, err := c.exchangeReadTemperature()

	assert.ErrorIs(t, err, ErrTempMsgNotReceived)
	assert.Len(t, *slept, 1+maxReadRetries)
}

func TestExchangeReadTemperature_TooShort(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func([]byte) [][]byte {
			return [][]byte{{1, 3, 2, 0}}
		},
	}
	c, _ := testChamber(t, ft)

	_, err := c.exchangeReadTemperature()
	assert.ErrorIs(t, err, ErrTempMsgTooShort)
}

func TestExchangeReadTemperature_TooLong(t *testing.T) {
	ft := &fakeTransport{
		onWrite: func([]byte) [][]byte {
			return [][]byte{{1, 3, 2, 0, 23, 0xF8, 0x47, 0xAA}}
		},
	}
	c, _ := testChamber(t, ft)

	_, err := c.exchangeReadTemperature()
	assert.ErrorIs(t, err, ErrTempMsgTooLong)
}
