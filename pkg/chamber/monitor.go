// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package chamber

import (
	"fmt"
	"sync"
	"time"
)

// Monitoring parameters
const (
	// pollPeriod is the interval between temperature polls while armed.
	pollPeriod = 2 * time.Second
	// Tolerance is the maximum |actual - desired| in °C at which the
	// setpoint counts as reached.
	Tolerance = 1
	// progressEvery is how much polled time passes between progress log
	// lines.
	progressEvery = 60 // seconds
)

// Notifier receives the terminal outcome of a monitored setpoint. For each
// arm cycle exactly one of the two callbacks fires, after which monitoring
// stops until the next SetTemp with notify.
type Notifier interface {
	// TemperatureReached fires when the measured temperature comes within
	// Tolerance of the setpoint.
	TemperatureReached(actual int)
	// TimedOut fires when the timeout elapses before the setpoint is
	// reached.
	TimedOut(desired, actual int)
}

// LogSink accepts one line of status text. Monitoring reports progress and
// swallowed poll errors through it.
type LogSink func(line string)

// Outcome is a terminal monitoring result, for delivery over a channel.
type Outcome struct {
	TimedOut bool
	Desired  int
	Actual   int
}

// ChanNotifier adapts the Notifier callbacks to a buffered channel, for
// callers that want to select on the outcome instead of being called back.
type ChanNotifier struct {
	C chan Outcome
}

// NewChanNotifier returns a ChanNotifier with room for one outcome.
func NewChanNotifier() *ChanNotifier {
	return &ChanNotifier{C: make(chan Outcome, 1)}
}

// TemperatureReached implements Notifier.
func (n *ChanNotifier) TemperatureReached(actual int) {
	select {
	case n.C <- Outcome{Desired: actual, Actual: actual}:
	default:
	}
}

// TimedOut implements Notifier.
func (n *ChanNotifier) TimedOut(desired, actual int) {
	select {
	case n.C <- Outcome{TimedOut: true, Desired: desired, Actual: actual}:
	default:
	}
}

// monitor is the armed state of the poll/notify machine. Each tick reads the
// temperature, checks convergence against the tolerance, and accounts
// elapsed time toward the timeout. The machine disarms itself on either
// terminal outcome; a poll failure is logged and skipped, never terminal.
type monitor struct {
	read     func() (int, error)
	desired  int
	timeout  int // minutes; 0 means wait forever
	elapsed  int // seconds of armed polling so far
	notifier Notifier
	logf     LogSink

	// onStop clears the owning session's armed state after a terminal
	// outcome. Nil in unit tests that drive tick directly.
	onStop func()

	stop     chan struct{}
	stopOnce sync.Once
}

// armLocked starts monitoring the given setpoint. Caller holds c.mu.
func (c *Chamber) armLocked(desired, timeoutMinutes int) {
	m := &monitor{
		read:     c.GetTemp,
		desired:  desired,
		timeout:  timeoutMinutes,
		notifier: c.notifier,
		logf:     c.logf,
		stop:     make(chan struct{}),
	}
	m.onStop = func() {
		c.mu.Lock()
		if c.mon == m {
			c.mon = nil
		}
		c.mu.Unlock()
	}
	c.mon = m
	go m.run(pollPeriod)
}

// disarmLocked cancels any active monitor. Caller holds c.mu.
func (c *Chamber) disarmLocked() {
	if c.mon != nil {
		c.mon.cancel()
		c.mon = nil
	}
}

// Monitoring reports whether a setpoint is currently being monitored.
func (c *Chamber) Monitoring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mon != nil
}

func (m *monitor) cancel() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// run drives the tick loop on a real timer until a terminal outcome or
// cancellation. The timer runs if and only if the machine is armed.
func (m *monitor) run(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if !m.tick(int(period / time.Second)) {
				m.cancel()
				if m.onStop != nil {
					m.onStop()
				}
				return
			}
		}
	}
}

// tick performs one poll cycle and reports whether monitoring continues.
// step is the seconds of polled time this tick accounts for.
func (m *monitor) tick(step int) bool {
	actual, err := m.read()

	// A disarm that raced with the poll wins: the old setpoint's outcome
	// must not fire after a new one has been issued.
	select {
	case <-m.stop:
		return false
	default:
	}

	if err != nil {
		// Transient read failures are tolerated; monitoring resumes on
		// the next tick.
		m.logf(fmt.Sprintf("temperature poll failed: %v", err))
		return true
	}

	if abs(actual-m.desired) <= Tolerance {
		if m.notifier != nil {
			m.notifier.TemperatureReached(actual)
		}
		return false
	}

	m.elapsed += step
	if m.elapsed%progressEvery == 0 {
		m.logf(fmt.Sprintf("chamber at %d°C, waiting for %d°C", actual, m.desired))
	}

	if m.timeout != 0 && m.elapsed/60 >= m.timeout {
		if m.notifier != nil {
			m.notifier.TimedOut(m.desired, actual)
		}
		return false
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
