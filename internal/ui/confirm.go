package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel asks a yes/no question; anything but "y" declines.
type confirmModel struct {
	question  string
	detail    string
	theme     Theme
	confirmed bool
	done      bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.confirmed = true
	case "n", "enter", "esc", "ctrl+c":
		m.confirmed = false
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	if m.detail != "" {
		b.WriteString(m.theme.HelpStyle().Render(m.detail))
		b.WriteString("\n\n")
	}
	b.WriteString(m.theme.HeaderStyle().Render(m.question))
	b.WriteString(" ")
	b.WriteString(m.theme.DangerStyle().Render("[y/N]"))
	b.WriteString(" ")
	return b.String()
}

// Confirm asks question, showing detail above it, and reports whether the
// user answered yes.
func Confirm(question, detail string, theme Theme) (bool, error) {
	result, err := tea.NewProgram(confirmModel{question: question, detail: detail, theme: theme}).Run()
	if err != nil {
		return false, err
	}
	return result.(confirmModel).confirmed, nil
}
