package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tailored-agentic-units/relay/game"
	"github.com/tailored-agentic-units/relay/relay"
)

// programReplier forwards coordinator output into the running bubbletea
// program. The program pointer is set after tea.NewProgram and before Run.
type programReplier struct {
	program *tea.Program
}

func (r *programReplier) SendReply(text string) {
	r.program.Send(replyMsg{text: text})
}

func (r *programReplier) ReactWith(marker string) {
	r.program.Send(reactionMsg{marker: marker})
}

type replyMsg struct{ text string }

type reactionMsg struct{ marker string }

type turnDoneMsg struct{}

type model struct {
	coordinator *relay.Coordinator
	fight       *game.Fight
	replier     *programReplier

	sessionID string
	lines     []string
	inflight  bool
	ready     bool

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	titleStyle    lipgloss.Style
	youStyle      lipgloss.Style
	gmStyle       lipgloss.Style
	noticeStyle   lipgloss.Style
	reactionStyle lipgloss.Style
}

func newModel(coordinator *relay.Coordinator, fight *game.Fight, replier *programReplier, sessionID string) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Say something. /status /clear /session <id> /quit"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	return model{
		coordinator:   coordinator,
		fight:         fight,
		replier:       replier,
		sessionID:     sessionID,
		input:         input,
		timeline:      timeline,
		spinner:       sp,
		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		youStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		gmStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		noticeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		reactionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timeline.Width = msg.Width
		m.timeline.Height = msg.Height - 3
		m.input.Width = msg.Width - 4
		m.ready = true
		m.renderTimeline()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				break
			}
			if cmd := m.handleInput(line); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case replyMsg:
		m.appendLine(m.gmStyle.Render("gm ") + msg.text)

	case reactionMsg:
		m.appendLine(m.reactionStyle.Render(msg.marker))

	case turnDoneMsg:
		m.inflight = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) handleInput(line string) tea.Cmd {
	switch {
	case line == "/quit":
		return tea.Quit
	case line == "/clear":
		m.coordinator.Reset(m.sessionID)
		m.appendLine(m.noticeStyle.Render(fmt.Sprintf("history cleared for session %q", m.sessionID)))
		return nil
	case line == "/status":
		status := m.fight.Status()
		if status == "" {
			status = "no characters in the fight"
		}
		m.appendLine(m.noticeStyle.Render(strings.TrimRight(status, "\n")))
		return nil
	case strings.HasPrefix(line, "/session"):
		id := strings.TrimSpace(strings.TrimPrefix(line, "/session"))
		if id == "" {
			m.appendLine(m.noticeStyle.Render("usage: /session <id>"))
			return nil
		}
		m.sessionID = id
		m.appendLine(m.noticeStyle.Render(fmt.Sprintf("switched to session %q", id)))
		return nil
	case strings.HasPrefix(line, "/"):
		m.appendLine(m.noticeStyle.Render("unknown command: " + line))
		return nil
	}

	m.appendLine(m.youStyle.Render("you ") + line)
	m.inflight = true

	coordinator, sessionID, replier := m.coordinator, m.sessionID, m.replier
	return func() tea.Msg {
		coordinator.HandleMessage(context.Background(), sessionID, line, replier)
		return turnDoneMsg{}
	}
}

func (m *model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.renderTimeline()
}

func (m *model) renderTimeline() {
	m.timeline.SetContent(strings.Join(m.lines, "\n"))
	m.timeline.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}

	title := m.titleStyle.Render("relay") +
		m.noticeStyle.Render(fmt.Sprintf("  session=%s", m.sessionID))

	status := " "
	if m.inflight {
		status = m.spinner.View() + " thinking"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.timeline.View(),
		status,
		m.input.View(),
	)
}
