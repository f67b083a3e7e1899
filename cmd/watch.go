// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/chamberctl/pkg/chamber"
	"github.com/Thermoquad/chamberctl/pkg/mbrtu"
)

var watchTimeout int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI for monitoring and steering the chamber",
	Long: `Watch the chamber's temperature converge toward its setpoint in a
terminal UI.

The view polls the chamber every two seconds and shows the current and
target temperatures, the monitoring state, and an event log. A new setpoint
can be entered directly in the UI; it is issued with notification enabled so
the outcome (reached or timed out) lands in the event log.

Supports serial, bridge, and simulated connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&watchTimeout, "timeout", 0, "Monitoring timeout in minutes for setpoints issued from the UI (0 = wait forever)")
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type watchTickMsg time.Time

type tempReadMsg struct {
	temp int
	err  error
}

type outcomeMsg chamber.Outcome

type eventMsg string

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	watchLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	watchTempStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	watchReachedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	watchErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	watchHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type watchModel struct {
	c        *chamber.Chamber
	connInfo string

	current    int
	haveTemp   bool
	readErr    error
	monitoring bool

	input textinput.Model

	events    []string
	maxEvents int

	outcomes *chamber.ChanNotifier
	logCh    chan string

	width    int
	height   int
	quitting bool
}

func initialWatchModel(c *chamber.Chamber, connInfo string, outcomes *chamber.ChanNotifier, logCh chan string) watchModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("setpoint °C [%d..%d]", mbrtu.MinTemp, mbrtu.MaxTemp)
	ti.CharLimit = 4
	ti.Width = 24
	ti.Focus()

	return watchModel{
		c:         c,
		connInfo:  connInfo,
		input:     ti,
		maxEvents: 8,
		outcomes:  outcomes,
		logCh:     logCh,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.readTemp(),
		watchTick(),
		m.waitForOutcome(),
		m.waitForEvent(),
		textinput.Blink,
	)
}

func watchTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// readTemp polls the chamber off the UI goroutine; the session mutex keeps
// it from interleaving with monitor polls.
func (m watchModel) readTemp() tea.Cmd {
	c := m.c
	return func() tea.Msg {
		temp, err := c.GetTemp()
		return tempReadMsg{temp: temp, err: err}
	}
}

func (m watchModel) waitForOutcome() tea.Cmd {
	ch := m.outcomes.C
	return func() tea.Msg {
		return outcomeMsg(<-ch)
	}
}

func (m watchModel) waitForEvent() tea.Cmd {
	ch := m.logCh
	return func() tea.Msg {
		return eventMsg(<-ch)
	}
}

func (m watchModel) applySetpoint() (watchModel, tea.Cmd) {
	value := m.input.Value()
	temp, err := strconv.Atoi(value)
	if err != nil {
		m = m.pushEvent(fmt.Sprintf("invalid setpoint %q", value))
		return m, nil
	}

	c := m.c
	timeout := watchTimeout
	m.input.SetValue("")
	m.monitoring = true
	m = m.pushEvent(fmt.Sprintf("setpoint %d°C issued", temp))

	return m, func() tea.Msg {
		if err := c.SetTemp(temp, true, timeout); err != nil {
			return eventMsg(fmt.Sprintf("setpoint failed: %v", err))
		}
		return eventMsg(fmt.Sprintf("setpoint %d°C accepted", temp))
	}
}

func (m watchModel) pushEvent(line string) watchModel {
	stamped := fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), line)
	m.events = append(m.events, stamped)
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
	return m
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.applySetpoint()
		}

	case watchTickMsg:
		return m, tea.Batch(m.readTemp(), watchTick())

	case tempReadMsg:
		m.readErr = msg.err
		if msg.err == nil {
			m.current = msg.temp
			m.haveTemp = true
		}
		m.monitoring = m.c.Monitoring()
		return m, nil

	case outcomeMsg:
		m.monitoring = false
		if msg.TimedOut {
			m = m.pushEvent(fmt.Sprintf("TIMEOUT: stalled at %d°C short of %d°C", msg.Actual, msg.Desired))
		} else {
			m = m.pushEvent(fmt.Sprintf("REACHED: %d°C", msg.Actual))
		}
		return m, m.waitForOutcome()

	case eventMsg:
		m = m.pushEvent(string(msg))
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b []string

	b = append(b, watchTitleStyle.Render("Chamberctl - Chamber Watch"))
	b = append(b, watchLabelStyle.Render("Connection: ")+m.connInfo)
	b = append(b, "")

	current := "--"
	if m.haveTemp {
		current = fmt.Sprintf("%d°C", m.current)
	}
	desired := m.c.Desired()

	tempLine := watchLabelStyle.Render("Current: ") + watchTempStyle.Render(current) +
		watchLabelStyle.Render("   Target: ") + watchTempStyle.Render(fmt.Sprintf("%d°C", desired))
	b = append(b, tempLine)

	switch {
	case m.readErr != nil:
		b = append(b, watchErrorStyle.Render(fmt.Sprintf("poll error: %v", m.readErr)))
	case m.monitoring:
		b = append(b, watchLabelStyle.Render("Monitoring setpoint..."))
	case m.haveTemp && abs(m.current-desired) <= chamber.Tolerance:
		b = append(b, watchReachedStyle.Render("At setpoint"))
	default:
		b = append(b, watchLabelStyle.Render("Idle"))
	}

	b = append(b, "")
	b = append(b, watchLabelStyle.Render("New setpoint: ")+m.input.View())
	b = append(b, "")

	if len(m.events) > 0 {
		b = append(b, watchLabelStyle.Render("Events:"))
		b = append(b, m.events...)
		b = append(b, "")
	}

	b = append(b, watchHelpStyle.Render("enter: apply setpoint • q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runWatch(cmd *cobra.Command, args []string) error {
	opts, connInfo, err := sessionOptions()
	if err != nil {
		return err
	}

	outcomes := chamber.NewChanNotifier()
	logCh := make(chan string, 100)

	opts.Notifier = outcomes
	opts.Log = func(line string) {
		select {
		case logCh <- line:
		default:
		}
	}

	c := chamber.New(opts)
	if err := c.Open(); err != nil {
		return err
	}
	defer c.Close()

	m := initialWatchModel(c, connInfo, outcomes, logCh)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
