package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/overview"
)

// AgendaSource is the read side the browser needs.
type AgendaSource interface {
	Today() civil.Date
	OverviewRange(ctx context.Context, owner string, from, to civil.Date) ([]overview.Item, error)
	DayOf(ctx context.Context, owner string, d civil.Date) (overview.DayDetail, error)
}

// TUIConfig holds configuration needed by the TUI.
type TUIConfig struct {
	Owner    string // scope for every query
	MaxWidth int    // maximum viewport width (0 = no limit)
	Theme    Theme  // resolved theme
}

type browserScreen int

const (
	screenWeek browserScreen = iota
	screenDay
)

// dayItem is one row of the week list.
type dayItem struct {
	date  civil.Date
	today bool
	items []overview.Item
}

func (d dayItem) Title() string {
	title := fmt.Sprintf("%s %s", d.date.Weekday().String()[:3], d.date)
	if d.today {
		title += " · today"
	}
	return title
}

func (d dayItem) Description() string {
	if len(d.items) == 0 {
		return "nothing scheduled"
	}
	titles := make([]string, 0, len(d.items))
	for _, it := range d.items {
		titles = append(titles, it.Title)
	}
	return fmt.Sprintf("%d · %s", len(d.items), strings.Join(titles, ", "))
}

func (d dayItem) FilterValue() string { return d.Title() + " " + d.Description() }

type weekLoadedMsg struct {
	start civil.Date
	days  []dayItem
	err   error
}

type dayLoadedMsg struct {
	detail overview.DayDetail
	err    error
}

type browserModel struct {
	src       AgendaSource
	cfg       TUIConfig
	screen    browserScreen
	weekStart civil.Date
	list      list.Model
	viewport  viewport.Model
	width     int
	height    int
	err       error
}

func newBrowserModel(src AgendaSource, cfg TUIConfig) browserModel {
	start, _ := civil.WeekOf(src.Today())
	l := cfg.Theme.NewList(nil, 0, 0)
	l.SetShowStatusBar(false)
	return browserModel{
		src:       src,
		cfg:       cfg,
		weekStart: start,
		list:      l,
		viewport:  viewport.New(0, 0),
	}
}

func (m browserModel) loadWeek(start civil.Date) tea.Cmd {
	return func() tea.Msg {
		end := start.AddDays(6)
		items, err := m.src.OverviewRange(context.Background(), m.cfg.Owner, start, end)
		if err != nil {
			return weekLoadedMsg{start: start, err: err}
		}
		today := m.src.Today()
		days := make([]dayItem, 7)
		for i := range days {
			days[i].date = start.AddDays(i)
			days[i].today = days[i].date == today
		}
		for _, it := range items {
			idx := it.Date.DayNumber() - start.DayNumber()
			if idx >= 0 && idx < len(days) {
				days[idx].items = append(days[idx].items, it)
			}
		}
		return weekLoadedMsg{start: start, days: days}
	}
}

func (m browserModel) loadDay(d civil.Date) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.src.DayOf(context.Background(), m.cfg.Owner, d)
		return dayLoadedMsg{detail: detail, err: err}
	}
}

func (m browserModel) Init() tea.Cmd {
	return m.loadWeek(m.weekStart)
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.contentWidth(), msg.Height-1)
		m.viewport.Width = m.contentWidth()
		m.viewport.Height = msg.Height - 1
		return m, nil

	case weekLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.weekStart = msg.start
		items := make([]list.Item, len(msg.days))
		for i, d := range msg.days {
			items[i] = d
		}
		m.list.Title = fmt.Sprintf("Week of %s", msg.start)
		cmd := m.list.SetItems(items)
		return m, cmd

	case dayLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		var b strings.Builder
		FormatDayDetail(&b, msg.detail, m.cfg.Theme, m.contentWidth())
		m.viewport.SetContent(b.String())
		m.viewport.GotoTop()
		m.screen = screenDay
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenDay {
			return m.updateDay(msg)
		}
		return m.updateWeek(msg)
	}

	return m, nil
}

func (m browserModel) updateWeek(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		return m, m.loadWeek(m.weekStart.AddDays(-7))
	case "right", "l":
		return m, m.loadWeek(m.weekStart.AddDays(7))
	case "t":
		start, _ := civil.WeekOf(m.src.Today())
		return m, m.loadWeek(start)
	case "enter":
		if d, ok := m.list.SelectedItem().(dayItem); ok {
			return m, m.loadDay(d.date)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.screen = screenWeek
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// contentWidth returns the effective content width, respecting MaxWidth configuration.
func (m browserModel) contentWidth() int {
	if m.cfg.MaxWidth > 0 && m.width > m.cfg.MaxWidth {
		return m.cfg.MaxWidth
	}
	return m.width
}

func (m browserModel) View() string {
	var body, help string
	switch m.screen {
	case screenDay:
		body = m.viewport.View()
		help = "↑/↓ scroll • esc back • q quit"
	default:
		body = m.list.View()
		help = "←/→ week • t today • enter open • q quit"
	}
	content := body + "\n" + m.cfg.Theme.HelpStyle().Render(help)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return m.cfg.Theme.PaintScreen(content, m.width, m.height, m.contentWidth())
}

// RunTUI launches the week browser starting at the current week.
func RunTUI(src AgendaSource, cfg TUIConfig) error {
	m := newBrowserModel(src, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return err
	}
	if bm, ok := result.(browserModel); ok && bm.err != nil {
		return bm.err
	}
	return nil
}
