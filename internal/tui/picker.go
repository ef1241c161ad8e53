package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobhunter/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// pickerPageSize is how many jobs are listed at once.
const pickerPageSize = 15

type pickerModel struct {
	jobs   []model.Job
	cursor int
	chosen int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.jobs)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(fmt.Sprintf("Saved jobs (%d), select one to open", len(m.jobs))))
	b.WriteByte('\n')

	start := max(0, m.cursor-pickerPageSize+1)
	end := min(len(m.jobs), start+pickerPageSize)
	for i := start; i < end; i++ {
		j := m.jobs[i]
		label := fmt.Sprintf("%s at %s", j.Title, j.Company)
		sub := pickerSubtitleStyle.Render(fmt.Sprintf(" · %s · %s", j.Location, j.PostedText))
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> "+label) + sub + "\n")
		} else {
			b.WriteString(pickerItemStyle.Render(label) + sub + "\n")
		}
	}

	b.WriteString(pickerHintStyle.Render("↑/↓/j/k navigate  enter open  q quit"))
	return b.String()
}

// RunJobPicker lists jobs and returns the index the user chose, or -1 if
// they quit.
func RunJobPicker(jobs []model.Job) (int, error) {
	if len(jobs) == 0 {
		return -1, nil
	}
	p := tea.NewProgram(pickerModel{jobs: jobs, chosen: -1})
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	final := result.(pickerModel)
	if final.chosen < 0 {
		return -1, nil
	}
	return final.chosen, nil
}

// OpenURL opens url in the default system browser, fire-and-forget.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}
	return cmd.Start()
}
