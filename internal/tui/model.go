// Package tui renders the chat view: message log, typing indicator, input
// line and the recent-chats sidebar. All chat state lives in the chat
// client; the view re-reads a snapshot whenever the client emits an event.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anthonytapias/charmefy/internal/analysis/markup"
	"github.com/anthonytapias/charmefy/internal/model/character"
	chatmodel "github.com/anthonytapias/charmefy/internal/model/chat"
	"github.com/anthonytapias/charmefy/internal/service/chat"
)

const sidebarWidth = 30

// chatEventMsg carries one client notification into the bubbletea loop.
type chatEventMsg chat.Event

func waitForEvent(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return chatEventMsg(ev)
	}
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	client     *chat.Client
	characters []character.Character
	active     int
	loggedIn   bool

	snap     chat.Snapshot
	notice   string
	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	ready    bool
}

// NewModel builds the chat screen around an already-wired client.
func NewModel(client *chat.Client, characters []character.Character, loggedIn bool) Model {
	input := textinput.New()
	input.Placeholder = "Write a message..."
	input.CharLimit = 2000
	input.Focus()

	return Model{
		client:     client,
		characters: characters,
		loggedIn:   loggedIn,
		input:      input,
	}
}

// Init selects the first character and starts listening for client events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.selectPartner(m.active),
		waitForEvent(m.client.Events()),
		textinput.Blink,
	)
}

// selectPartner switches the live connection to the character at index i.
func (m Model) selectPartner(i int) tea.Cmd {
	if len(m.characters) == 0 {
		return nil
	}
	ch := m.characters[i]
	client := m.client
	return func() tea.Msg {
		client.SwitchPartner(context.Background(), ch)
		client.RefreshRecents(context.Background())
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatWidth := m.chatWidth()
		if !m.ready {
			m.viewport = viewport.New(chatWidth, m.chatHeight())
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = m.chatHeight()
		}
		m.input.Width = chatWidth - 4
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.client.Close()
			return m, tea.Quit
		case "tab", "shift+tab":
			if len(m.characters) > 0 {
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.characters) - 1
				}
				m.active = (m.active + step) % len(m.characters)
				m.notice = ""
				return m, m.selectPartner(m.active)
			}
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if content != "" && m.loggedIn {
				// Optimistic append happens inside the client; a rejected
				// send leaves the log untouched.
				_ = m.client.Send(content)
				m.input.Reset()
				m.refresh()
			}
		}

	case chatEventMsg:
		ev := chat.Event(msg)
		switch ev.Kind {
		case chat.EventSendFailed:
			m.notice = "message could not be delivered"
		case chat.EventServerError:
			m.notice = ev.Err
		case chat.EventStateChanged:
			m.notice = ""
		}
		m.refresh()
		cmds = append(cmds, waitForEvent(m.client.Events()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh re-reads the client snapshot into the viewport.
func (m *Model) refresh() {
	m.snap = m.client.Snapshot()
	if m.ready {
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInputArea(),
	)

	if m.width >= 80 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}
	return main
}

func (m Model) renderHeader() string {
	name := m.snap.Partner.Name
	if name == "" {
		name = "Charmefy"
	}
	header := headerStyle.Render(name) + stateStyle.Render(string(m.snap.State))
	if m.notice != "" {
		header += errorStyle.Render(m.notice)
	}
	return header
}

func (m Model) renderMessages() string {
	var b strings.Builder
	for _, msg := range m.snap.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}
	if m.snap.Typing {
		b.WriteString(typingStyle.Render(m.snap.Partner.Name + " is typing..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg chatmodel.Message) string {
	var label string
	switch msg.Sender {
	case chatmodel.SenderUser:
		label = userNameStyle.Render("You")
	default:
		label = partnerNameStyle.Render(m.snap.Partner.Name)
	}

	body := msg.Content
	if msg.Annotation == chatmodel.AnnotationComposite {
		var parts []string
		for _, seg := range markup.Parse(msg.Content) {
			if seg.Kind == markup.Narration {
				parts = append(parts, narrationStyle.Render(seg.Text))
			} else {
				parts = append(parts, seg.Text)
			}
		}
		body = strings.Join(parts, " ")
	}

	return label + "\n" + body
}

func (m Model) renderInputArea() string {
	if !m.loggedIn {
		name := m.snap.Partner.Name
		if name == "" {
			name = "a character"
		}
		return promptStyle.Render(fmt.Sprintf("Sign in to chat with %s. Set CHARMEFY_AUTH_TOKEN and restart.", name))
	}
	return m.input.View()
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Recent Chats"))
	b.WriteString("\n\n")

	if len(m.snap.Recents) == 0 {
		b.WriteString(sidebarPreviewStyle.Render("No conversations yet"))
	}
	for _, item := range m.snap.Recents {
		marker := "  "
		if item.ID == m.snap.Partner.ID {
			marker = "> "
		}
		b.WriteString(marker + item.Name)
		if item.Time != "" {
			b.WriteString(sidebarPreviewStyle.Render("  " + item.Time))
		}
		b.WriteString("\n")
		b.WriteString(sidebarPreviewStyle.Render("  " + truncate(item.LastMessage, sidebarWidth-6)))
		b.WriteString("\n\n")
	}

	b.WriteString("\n")
	b.WriteString(sidebarPreviewStyle.Render("tab: next character"))

	return sidebarStyle.
		Width(sidebarWidth).
		Height(m.height - 1).
		Render(b.String())
}

func (m Model) chatWidth() int {
	if m.width >= 80 {
		return m.width - sidebarWidth - 2
	}
	return m.width
}

func (m Model) chatHeight() int {
	// header + input rows
	return m.height - 4
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
