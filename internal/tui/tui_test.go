package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobhunter/internal/chat"
	"github.com/amishk599/jobhunter/internal/model"
)

type echoHandler struct{ got []string }

func (h *echoHandler) HandleStream(_ context.Context, text string, emit func(chat.Reply)) {
	h.got = append(h.got, text)
	emit(chat.Reply{Kind: chat.KindProgress, Text: "working on " + text})
	emit(chat.Reply{Kind: chat.KindTable, Text: "| a | b |"})
}

func sized(m chatModel) chatModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(chatModel)
}

func typeText(m chatModel, s string) chatModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(chatModel)
	}
	return m
}

// drain runs the reply commands until the handler is finished.
func drain(t *testing.T, m chatModel, cmd tea.Cmd) chatModel {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			// The first command waits for replies; the second ticks the spinner.
			cmd = batch[0]
			continue
		}
		next, c := m.Update(msg)
		m = next.(chatModel)
		if _, done := msg.(handledMsg); done {
			return m
		}
		cmd = c
	}
	t.Fatal("handler never finished")
	return m
}

func TestChatModel_SubmitStreamsReplies(t *testing.T) {
	h := &echoHandler{}
	m := sized(newChatModel(h))
	m = typeText(m, "golang")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	if !m.busy {
		t.Fatal("model not busy after submit")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	m = drain(t, m, cmd)
	if m.busy {
		t.Error("model still busy after handler finished")
	}
	if len(h.got) != 1 || h.got[0] != "golang" {
		t.Errorf("handler got %v", h.got)
	}
	// welcome + user + 2 replies
	if len(m.entries) != 4 {
		t.Fatalf("entries = %d", len(m.entries))
	}
	if !m.entries[1].user || m.entries[3].reply.Kind != chat.KindTable {
		t.Errorf("entries = %+v", m.entries)
	}
}

// floodHandler keeps emitting until its context is cancelled.
type floodHandler struct{ finished chan struct{} }

func (h *floodHandler) HandleStream(ctx context.Context, _ string, emit func(chat.Reply)) {
	defer close(h.finished)
	for i := 0; ctx.Err() == nil && i < 1000; i++ {
		emit(chat.Reply{Kind: chat.KindProgress, Text: "still working"})
	}
}

func TestChatModel_EscCancelsRunningSearch(t *testing.T) {
	h := &floodHandler{finished: make(chan struct{})}
	m := sized(newChatModel(h))
	m = typeText(m, "golang")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)

	// Nobody reads the replies, so the handler only returns if esc cancels it.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not quit")
	}
	select {
	case <-h.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handler still running after esc")
	}
}

func TestChatModel_IgnoresBlankInput(t *testing.T) {
	h := &echoHandler{}
	m := sized(newChatModel(h))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || next.(chatModel).busy {
		t.Error("blank input started a request")
	}
}

func TestChatModel_ViewBeforeSize(t *testing.T) {
	if got := newChatModel(&echoHandler{}).View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestRenderTranscript(t *testing.T) {
	out := renderTranscript([]entry{
		{user: true, reply: chat.Reply{Text: "hi"}},
		{reply: chat.Reply{Kind: chat.KindTable, Text: "| a long table row that must not wrap |"}},
	}, 10)
	if !strings.Contains(out, "You: hi") {
		t.Errorf("missing user line:\n%s", out)
	}
	if !strings.Contains(out, "| a long table row that must not wrap |") {
		t.Errorf("table was wrapped:\n%s", out)
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"", 10, ""},
		{"one two three", 7, "one two\nthree"},
		{"short", 80, "short"},
		{"averyveryverylongword x", 5, "averyveryverylongword\nx"},
	}
	for _, tt := range tests {
		if got := wordWrap(tt.in, tt.width); got != tt.want {
			t.Errorf("wordWrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPickerModel(t *testing.T) {
	m := pickerModel{jobs: []model.Job{{Title: "A"}, {Title: "B"}, {Title: "C"}}, chosen: -1}
	keys := []tea.KeyMsg{
		{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyUp},
	}
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(pickerModel)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	if !strings.Contains(m.View(), "> B") {
		t.Errorf("selected row not marked:\n%s", m.View())
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(pickerModel).chosen != 1 || cmd == nil {
		t.Errorf("enter: chosen = %d", next.(pickerModel).chosen)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if next.(pickerModel).chosen != -2 {
		t.Error("q did not quit")
	}
}
