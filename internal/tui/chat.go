// Package tui is the terminal chat front-end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobhunter/internal/chat"
)

// Handler answers chat messages. *chat.Session implements it.
type Handler interface {
	HandleStream(ctx context.Context, text string, emit func(chat.Reply))
}

// replyMsg carries one reply from a running handler.
type replyMsg struct {
	reply chat.Reply
	ch    <-chan chat.Reply
}

// handledMsg is sent when the handler has no more replies.
type handledMsg struct{}

type entry struct {
	user  bool
	reply chat.Reply
}

type chatModel struct {
	handler  Handler
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	entries  []entry
	width    int
	height   int
	ready    bool
	busy     bool
	cancel   context.CancelFunc
}

func newChatModel(h Handler) chatModel {
	in := textinput.New()
	in.Placeholder = "Software Engineer, San Francisco, CA, Senior"
	in.Prompt = "> "
	in.CharLimit = 500
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return chatModel{
		handler: h,
		input:   in,
		spinner: sp,
		entries: []entry{{reply: chat.Welcome()}},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.recalcLayout()
		return m, nil

	case replyMsg:
		m.entries = append(m.entries, entry{reply: msg.reply})
		m.refresh()
		return m, waitForReply(msg.ch)

	case handledMsg:
		m.busy = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.busy && m.cancel != nil {
				m.cancel()
				m.cancel = nil
				m.entries = append(m.entries, entry{reply: chat.Reply{Kind: chat.KindError, Text: "Cancelling..."}})
				m.refresh()
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}
	m.input.Reset()
	if strings.EqualFold(text, "quit") || strings.EqualFold(text, "exit") {
		return m, tea.Quit
	}
	m.entries = append(m.entries, entry{user: true, reply: chat.Reply{Text: text}})
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.busy = true

	ch := make(chan chat.Reply, 16)
	h := m.handler
	go func() {
		defer close(ch)
		h.HandleStream(ctx, text, func(r chat.Reply) {
			select {
			case ch <- r:
			case <-ctx.Done():
			}
		})
	}()
	return m, tea.Batch(waitForReply(ch), m.spinner.Tick)
}

func waitForReply(ch <-chan chat.Reply) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return handledMsg{}
		}
		return replyMsg{reply: r, ch: ch}
	}
}

func (m *chatModel) recalcLayout() {
	// Title (1) + border (2) + input (1) + status bar (1).
	w := max(m.width-2, 20)
	h := max(m.height-5, 5)
	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width, m.viewport.Height = w, h
	}
	m.input.Width = max(m.width-4, 10)
	m.refresh()
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.entries, m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	title := titleStyle.Render("Job Hunter")
	body := transcriptBorderStyle.Width(m.viewport.Width).Render(m.viewport.View())

	status := " enter send  pgup/pgdn scroll  esc quit"
	if m.busy {
		status = " " + m.spinner.View() + " working...  ctrl+c cancel"
	}
	bar := statusBarStyle.Width(m.width).Render(status)
	return title + "\n" + body + "\n" + m.input.View() + "\n" + bar
}

func renderTranscript(entries []entry, width int) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.user {
			b.WriteString(userStyle.Render("You: " + e.reply.Text))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(styleFor(e.reply.Kind).Render(wrap(e.reply, width)))
		b.WriteByte('\n')
	}
	return b.String()
}

func styleFor(k chat.Kind) lipgloss.Style {
	switch k {
	case chat.KindProgress:
		return progressStyle
	case chat.KindTable:
		return tableStyle
	case chat.KindError:
		return errorStyle
	}
	return infoStyle
}

// wrap word-wraps prose. Tables are left alone so their rows stay intact.
func wrap(r chat.Reply, width int) string {
	if r.Kind == chat.KindTable {
		return r.Text
	}
	lines := strings.Split(r.Text, "\n")
	for i, l := range lines {
		lines[i] = wordWrap(l, width)
	}
	return strings.Join(lines, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// Run starts the interactive chat and blocks until the user quits.
func Run(h Handler) error {
	p := tea.NewProgram(newChatModel(h), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
