package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/chris-regnier/daybook/internal/config"
	"github.com/chris-regnier/daybook/internal/overview"
)

// Theme holds resolved lipgloss colors for terminal rendering.
//
// Primary is body text, Secondary marks recurring items, Accent marks work
// and selection, Danger marks todos and destructive prompts.
type Theme struct {
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Accent        lipgloss.Color
	Muted         lipgloss.Color
	Danger        lipgloss.Color
	Background    lipgloss.Color
	MarkdownStyle string
}

const defaultPreset = "default-dark"

var presets = map[string]Theme{
	"default-dark": {
		Primary:       lipgloss.Color("15"),
		Secondary:     lipgloss.Color("141"),
		Accent:        lipgloss.Color("33"),
		Muted:         lipgloss.Color("241"),
		Danger:        lipgloss.Color("9"),
		Background:    lipgloss.Color("235"),
		MarkdownStyle: "dark",
	},
	"default-light": {
		Primary:       lipgloss.Color("0"),
		Secondary:     lipgloss.Color("91"),
		Accent:        lipgloss.Color("27"),
		Muted:         lipgloss.Color("245"),
		Danger:        lipgloss.Color("1"),
		Background:    lipgloss.Color("254"),
		MarkdownStyle: "light",
	},
	"dracula": {
		Primary:       lipgloss.Color("#F8F8F2"),
		Secondary:     lipgloss.Color("#FF79C6"),
		Accent:        lipgloss.Color("#BD93F9"),
		Muted:         lipgloss.Color("#6272A4"),
		Danger:        lipgloss.Color("#FF5555"),
		Background:    lipgloss.Color("#282A36"),
		MarkdownStyle: "dracula",
	},
	"catppuccin-mocha": {
		Primary:       lipgloss.Color("#CDD6F4"),
		Secondary:     lipgloss.Color("#F5C2E7"),
		Accent:        lipgloss.Color("#89B4FA"),
		Muted:         lipgloss.Color("#6C7086"),
		Danger:        lipgloss.Color("#F38BA8"),
		Background:    lipgloss.Color("#1E1E2E"),
		MarkdownStyle: "dark",
	},
	"gruvbox-light": {
		Primary:       lipgloss.Color("#3C3836"),
		Secondary:     lipgloss.Color("#B16286"),
		Accent:        lipgloss.Color("#458588"),
		Muted:         lipgloss.Color("#928374"),
		Danger:        lipgloss.Color("#CC241D"),
		Background:    lipgloss.Color("#FBF1C7"),
		MarkdownStyle: "light",
	},
}

// PresetNames lists the built-in presets in a stable order.
func PresetNames() []string {
	return []string{"default-dark", "default-light", "dracula", "catppuccin-mocha", "gruvbox-light"}
}

// ResolveTheme starts from the configured preset (unknown names fall back to
// default-dark) and applies any per-color overrides.
func ResolveTheme(cfg config.ThemeConfig) Theme {
	theme, ok := presets[cfg.Preset]
	if !ok {
		theme = presets[defaultPreset]
	}

	for _, o := range []struct {
		value string
		dst   *lipgloss.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Secondary, &theme.Secondary},
		{cfg.Accent, &theme.Accent},
		{cfg.Muted, &theme.Muted},
		{cfg.Danger, &theme.Danger},
		{cfg.Background, &theme.Background},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}
	if cfg.MarkdownStyle != "" {
		theme.MarkdownStyle = cfg.MarkdownStyle
	}
	return theme
}

func (t Theme) text(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(t.Background)
}

// HelpStyle is for key hints and footers.
func (t Theme) HelpStyle() lipgloss.Style { return t.text(t.Muted) }

// HeaderStyle is for date headers.
func (t Theme) HeaderStyle() lipgloss.Style { return t.text(t.Primary).Bold(true) }

// DangerStyle is for destructive prompts.
func (t Theme) DangerStyle() lipgloss.Style { return t.text(t.Danger) }

// BadgeStyle colors the badge in front of an overview item by kind. Both
// recurring kinds share the secondary color.
func (t Theme) BadgeStyle(kind overview.Kind) lipgloss.Style {
	bg := t.Secondary
	switch kind {
	case overview.KindWork:
		bg = t.Accent
	case overview.KindTodo:
		bg = t.Danger
	}
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(t.Background).Background(bg)
}

// PriorityStyle colors a todo's priority marker.
func (t Theme) PriorityStyle(p overview.Priority) lipgloss.Style {
	switch p {
	case overview.PriorityHigh:
		return t.text(t.Danger).Bold(true)
	case overview.PriorityLow:
		return t.text(t.Muted)
	default:
		return t.text(t.Primary)
	}
}

// bgEscapeCode is the raw SGR sequence selecting the background color, for
// pairing with \x1b[K.
func (t Theme) bgEscapeCode() string {
	s := string(t.Background)
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		var r, g, b int
		fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
	}
	return "\x1b[48;5;" + s + "m"
}

// PaintScreen lays content out on a termWidth x termHeight screen in the
// theme background, centering it when contentWidth is narrower than the
// terminal. Every line ends in an erase-to-end-of-line so the background
// reaches the right edge even when width measurement is off.
func (t Theme) PaintScreen(content string, termWidth, termHeight, contentWidth int) string {
	bg := lipgloss.NewStyle().Background(t.Background)
	clearEOL := t.bgEscapeCode() + "\x1b[K"

	left := 0
	if contentWidth > 0 && contentWidth < termWidth {
		left = (termWidth - contentWidth) / 2
	}
	leftPad := ""
	if left > 0 {
		leftPad = bg.Render(strings.Repeat(" ", left))
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		var b strings.Builder
		b.WriteString(leftPad)
		b.WriteString(line)
		if right := termWidth - left - lipgloss.Width(line); right > 0 {
			b.WriteString(bg.Render(strings.Repeat(" ", right)))
		}
		b.WriteString(clearEOL)
		lines[i] = b.String()
	}

	blank := bg.Render(strings.Repeat(" ", termWidth)) + clearEOL
	for len(lines) < termHeight {
		lines = append(lines, blank)
	}
	return strings.Join(lines[:termHeight], "\n")
}

// NewList creates a list.Model styled by the theme.
func (t Theme) NewList(items []list.Item, width, height int) list.Model {
	l := list.New(items, t.listDelegate(), width, height)
	l.Styles = t.listStyles()
	return l
}

func (t Theme) listDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = t.text(t.Primary).Padding(0, 0, 0, 2)
	d.Styles.NormalDesc = d.Styles.NormalTitle.Foreground(t.Muted)
	d.Styles.SelectedTitle = t.text(t.Accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Accent).
		BorderBackground(t.Background).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(t.Secondary)
	d.Styles.DimmedTitle = t.text(t.Muted).Padding(0, 0, 0, 2)
	d.Styles.DimmedDesc = d.Styles.DimmedTitle
	return d
}

func (t Theme) listStyles() list.Styles {
	s := list.DefaultStyles()
	s.Title = t.HeaderStyle()
	s.TitleBar = lipgloss.NewStyle().Background(t.Background)
	s.FilterPrompt = t.text(t.Accent)
	s.FilterCursor = t.text(t.Accent)
	s.PaginationStyle = t.HelpStyle()
	s.HelpStyle = t.HelpStyle()
	s.ActivePaginationDot = t.text(t.Accent)
	s.InactivePaginationDot = t.HelpStyle()
	s.NoItems = t.HelpStyle()
	return s
}
