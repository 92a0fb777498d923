// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/brickbeam/pkg/powerfunctions"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	// Combo PWM is resent this often while a channel has a non-zero speed
	keepAliveInterval = 500 * time.Millisecond
	maxSpeed          = 7
	minSpeed          = -7
	maxLogEntries     = 100
)

// Focus states
const (
	focusChannelList = iota
	focusCommandInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// speeds is the last Combo PWM state sent to a channel
type speeds struct {
	red  int
	blue int
}

// channelItem is a row of the channel list
type channelItem struct {
	channel powerfunctions.Channel
	speeds  speeds
}

// Implement list.Item interface
func (c channelItem) Title() string { return fmt.Sprintf("Channel %d", c.channel.Number()) }
func (c channelItem) Description() string {
	return fmt.Sprintf("red %+d  blue %+d", c.speeds.red, c.speeds.blue)
}
func (c channelItem) FilterValue() string { return c.channel.String() }

type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	remotes *remoteSet
	txInfo  string

	speeds      [4]speeds
	channelList list.Model

	commandInput textinput.Model
	focusedField int

	eventLog     []eventLogEntry
	sentFrames   int
	failedFrames int

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

// sentMsg reports the result of a send issued from a tea.Cmd
type sentMsg struct {
	description string
	err         error
	keepAlive   bool
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(remotes *remoteSet, txInfo string, selected powerfunctions.Channel) controlModel {
	ti := textinput.New()
	ti.Placeholder = "extended toggle-address"
	ti.CharLimit = 64
	ti.Width = 40

	items := make([]list.Item, len(remotes.channels))
	for i, cr := range remotes.channels {
		items[i] = channelItem{channel: cr.channel}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	channelList := list.New(items, delegate, 30, 12)
	channelList.Title = "Channels"
	channelList.SetShowStatusBar(false)
	channelList.SetShowHelp(false)
	channelList.SetFilteringEnabled(false)
	channelList.Select(int(selected))

	return controlModel{
		remotes:      remotes,
		txInfo:       txInfo,
		channelList:  channelList,
		commandInput: ti,
		focusedField: focusChannelList,
		eventLog:     make([]eventLogEntry, 0),
		width:        80,
		height:       24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(keepAliveInterval, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		cmds := []tea.Cmd{controlTickCmd()}
		for i, s := range m.speeds {
			if s.red != 0 || s.blue != 0 {
				cmds = append(cmds, m.keepAliveCmd(i))
			}
		}
		return m, tea.Batch(cmds...)

	case sentMsg:
		m.handleSent(msg)
	}

	return m, nil
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.focusedField == focusCommandInput {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return tea.Quit
		case "tab", "esc":
			m.setFocus(focusChannelList)
			return nil
		case "enter":
			line := strings.TrimSpace(m.commandInput.Value())
			m.commandInput.SetValue("")
			if line == "" {
				return nil
			}
			return m.executeLine(line)
		}

		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit

	case "tab":
		m.setFocus(focusCommandInput)
		return nil

	case "up", "k", "down", "j":
		m.channelList, _ = m.channelList.Update(msg)
		return nil

	case "w":
		return m.changeSpeed(1, 0)
	case "s":
		return m.changeSpeed(-1, 0)
	case "e":
		return m.changeSpeed(0, 1)
	case "d":
		return m.changeSpeed(0, -1)

	case "b", " ":
		return m.sendDirect(powerfunctions.Brake)
	case "f":
		return m.sendDirect(powerfunctions.Float)

	case "r":
		repeat := !m.remotes.bb.Repeat()
		m.remotes.bb.SetRepeat(repeat)
		m.addLogEntry(fmt.Sprintf("Repeat %s", onOff(repeat)), false)
		return nil
	}

	return nil
}

func (m *controlModel) setFocus(field int) {
	m.focusedField = field
	if field == focusCommandInput {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	helpText := "q=quit Tab=command w/s=red e/d=blue b=brake f=float r=repeat"
	s.WriteString(titleStyle.Render("BRICKBEAM CONTROL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %s", m.txInfo, helpText)))
	s.WriteString("\n\n")

	// Layout: left panel (channels) | right panel (outputs)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 30 {
		rightWidth = 30
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusChannelList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	channelPanel := listStyle.Render(m.channelList.View())
	outputPanel := boxStyle.Width(rightWidth).Render(m.renderOutputs(statsLabelStyle, statsValueStyle, headerStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, channelPanel, " ", outputPanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	inputStyle := boxStyle.Width(m.width - 4)
	if m.focusedField == focusCommandInput {
		inputStyle = focusedBoxStyle.Width(m.width - 4)
	}
	s.WriteString(inputStyle.Render(statsLabelStyle.Render("COMMAND") + " " + m.commandInput.View()))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, errorStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderOutputs(statsLabelStyle, statsValueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder
	idx := m.selectedIndex()
	cr := m.remotes.channels[idx]
	sp := m.speeds[idx]

	s.WriteString(statsLabelStyle.Render(fmt.Sprintf("CHANNEL %d", cr.channel.Number())))
	s.WriteString("\n\n")

	redStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

	s.WriteString(fmt.Sprintf("%s  %s %s\n", redStyle.Render("RED "), speedBar(sp.red), statsValueStyle.Render(fmt.Sprintf("%+d", sp.red))))
	s.WriteString(fmt.Sprintf("%s  %s %s\n", blueStyle.Render("BLUE"), speedBar(sp.blue), statsValueStyle.Render(fmt.Sprintf("%+d", sp.blue))))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Extended address: %d", cr.extended.Address())))

	return s.String()
}

// speedBar draws -7..7 around a centre mark
func speedBar(speed int) string {
	cells := []rune(strings.Repeat("·", maxSpeed) + "|" + strings.Repeat("·", maxSpeed))
	centre := maxSpeed
	switch {
	case speed > 0:
		for i := 1; i <= speed; i++ {
			cells[centre+i] = '█'
		}
	case speed < 0:
		for i := 1; i <= -speed; i++ {
			cells[centre-i] = '█'
		}
	}
	return "[" + string(cells) + "]"
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle lipgloss.Style, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%s %s  ", statsLabelStyle.Render("Sent:"), statsValueStyle.Render(fmt.Sprintf("%d", m.sentFrames))))

	failed := statsValueStyle.Render("0")
	if m.failedFrames > 0 {
		failed = errorStyle.Render(fmt.Sprintf("%d", m.failedFrames))
	}
	s.WriteString(fmt.Sprintf("%s %s  ", statsLabelStyle.Render("Failed:"), failed))
	s.WriteString(fmt.Sprintf("%s %s", statsLabelStyle.Render("Repeat:"), statsValueStyle.Render(onOff(m.remotes.bb.Repeat()))))

	return boxStyle.Width(m.width - 4).Render(s.String())
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, errorStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.eventLog[startIdx:] {
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// sendCmd runs send off the UI goroutine and reports the result
func sendCmd(description string, send func() error) tea.Cmd {
	return func() tea.Msg {
		return sentMsg{description: description, err: send()}
	}
}

func (m *controlModel) changeSpeed(redDelta, blueDelta int) tea.Cmd {
	idx := m.selectedIndex()
	sp := m.speeds[idx]
	sp.red = clampSpeed(sp.red + redDelta)
	sp.blue = clampSpeed(sp.blue + blueDelta)
	m.setSpeeds(idx, sp)

	cr := m.remotes.channels[idx]
	command := powerfunctions.ComboPWMCommand{SpeedRed: sp.red, SpeedBlue: sp.blue}
	return sendCmd(fmt.Sprintf("%s combo pwm %s", cr.channel, command), func() error {
		return cr.combo.Send(command)
	})
}

func (m *controlModel) sendDirect(state powerfunctions.DirectState) tea.Cmd {
	idx := m.selectedIndex()
	m.setSpeeds(idx, speeds{})

	cr := m.remotes.channels[idx]
	command := powerfunctions.ComboDirectCommand{Red: state, Blue: state}
	return sendCmd(fmt.Sprintf("%s combo direct %s", cr.channel, command), func() error {
		return cr.direct.Send(command)
	})
}

// executeLine sends a typed command to the selected channel
func (m *controlModel) executeLine(line string) tea.Cmd {
	idx := m.selectedIndex()
	cr := m.remotes.channels[idx]

	// keep the speed display and keep-alive in step with typed commands
	fields := strings.Fields(line)
	switch fields[0] {
	case "combo":
		if len(fields) == 3 {
			if command, err := parseComboPWM(fields[1], fields[2]); err == nil {
				m.setSpeeds(idx, speeds{red: clampSpeed(command.SpeedRed), blue: clampSpeed(command.SpeedBlue)})
			}
		}
	case "direct":
		m.setSpeeds(idx, speeds{})
	}

	return func() tea.Msg {
		description, err := cr.execute(line)
		if description == "" {
			description = line
		}
		return sentMsg{description: description, err: err}
	}
}

// keepAliveCmd resends the Combo PWM state of a channel unless a previous
// keep-alive is still in flight
func (m controlModel) keepAliveCmd(idx int) tea.Cmd {
	cr := m.remotes.channels[idx]
	if !cr.busy.CompareAndSwap(false, true) {
		return nil
	}

	sp := m.speeds[idx]
	command := powerfunctions.ComboPWMCommand{SpeedRed: sp.red, SpeedBlue: sp.blue}
	return func() tea.Msg {
		defer cr.busy.Store(false)
		return sentMsg{
			description: fmt.Sprintf("%s keep-alive %s", cr.channel, command),
			err:         cr.combo.Send(command),
			keepAlive:   true,
		}
	}
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) handleSent(msg sentMsg) {
	if msg.err != nil {
		m.failedFrames++
		m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.description, msg.err), true)
		return
	}

	m.sentFrames++
	if !msg.keepAlive {
		m.addLogEntry(fmt.Sprintf("Sent %s", msg.description), false)
	}
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

func (m controlModel) selectedIndex() int {
	idx := m.channelList.Index()
	if idx < 0 || idx >= len(m.remotes.channels) {
		return 0
	}
	return idx
}

func (m *controlModel) setSpeeds(idx int, sp speeds) {
	m.speeds[idx] = sp
	m.channelList.SetItem(idx, channelItem{channel: m.remotes.channels[idx].channel, speeds: sp})
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 3
	if listHeight < 8 {
		listHeight = 8
	}
	m.channelList.SetSize(28, listHeight)
}

func clampSpeed(speed int) int {
	return max(minSpeed, min(maxSpeed, speed))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
