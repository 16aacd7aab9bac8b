package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// PageOptions configures Page.
type PageOptions struct {
	Title    string // shown above the content; "" for none
	MaxWidth int    // maximum content width (0 = terminal width)
	Theme    Theme
}

type pagerModel struct {
	viewport viewport.Model
	content  string
	opts     PageOptions
	ready    bool
	width    int
	height   int
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

// chromeLines is the number of rows taken by the title and footer.
func (m pagerModel) chromeLines() int {
	if m.opts.Title != "" {
		return 2
	}
	return 1
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-m.chromeLines(), 1)
		if !m.ready {
			m.viewport = viewport.New(m.contentWidth(), h)
			m.ready = true
		} else {
			m.viewport.Width = m.contentWidth()
			m.viewport.Height = h
		}
		m.viewport.SetContent(m.content)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) contentWidth() int {
	if m.opts.MaxWidth > 0 && m.width > m.opts.MaxWidth {
		return m.opts.MaxWidth
	}
	return m.width
}

func (m pagerModel) View() string {
	theme := m.opts.Theme
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(theme.HeaderStyle().Render(m.opts.Title))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle().Render(fmt.Sprintf("↑/↓ scroll • q quit • %3.f%%", m.viewport.ScrollPercent()*100)))
	return theme.PaintScreen(b.String(), m.width, m.height, m.contentWidth())
}

// fitsScreen reports whether content can be printed without paging.
func fitsScreen(content string, height int) bool {
	return strings.Count(content, "\n")+1 <= height-2
}

// Page writes content to w. When w is a terminal stdout and the content is
// taller than the screen, it is shown in a scrollable pager instead.
func Page(w io.Writer, content string, opts PageOptions) error {
	if w != os.Stdout || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := fmt.Fprint(w, content)
		return err
	}
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || fitsScreen(content, height) {
		_, err := fmt.Fprint(w, content)
		return err
	}

	p := tea.NewProgram(pagerModel{content: content, opts: opts}, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
