package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/ui/table"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

// Theme holds the styles of the whole view.
type Theme struct {
	Table     table.Styles
	Highlight lipgloss.Style
	Title     lipgloss.Style
	Caption   lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Popover   lipgloss.Style
	Accent    lipgloss.Style
}

// PlainTheme uses only bold, faint, underline and reverse video.
func PlainTheme() Theme {
	return Theme{
		Table:     table.PlainStyles(),
		Highlight: lipgloss.NewStyle().Reverse(true),
		Title:     lipgloss.NewStyle().Bold(true),
		Caption:   lipgloss.NewStyle().Faint(true),
		Status:    lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle().Bold(true),
		Popover:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Accent:    lipgloss.NewStyle().Bold(true),
	}
}

// ThemeFromPalette builds a colored theme. Empty palette entries fall back
// to PlainTheme.
func ThemeFromPalette(p config.PaletteConfig) Theme {
	t := PlainTheme()
	classes := make(map[string]color.Color, len(p.Classes))
	for name, c := range p.Classes {
		if col := parseColor(c); col != nil {
			classes[name] = col
		}
	}
	t.Table = table.ColorStyles(table.Colors{
		HeaderFG: parseColor(p.HeaderFG),
		HeaderBG: parseColor(p.HeaderBG),
		Border:   parseColor(p.Border),
		CursorFG: parseColor(p.CursorFG),
		CursorBG: parseColor(p.CursorBG),
		Selected: parseColor(p.Selected),
		Muted:    parseColor(p.Muted),
		Accent:   parseColor(p.Accent),
		Classes:  classes,
	})
	if fg, bg := parseColor(p.HighlightFG), parseColor(p.HighlightBG); fg != nil || bg != nil {
		t.Highlight = lipgloss.NewStyle()
		if fg != nil {
			t.Highlight = t.Highlight.Foreground(fg)
		}
		if bg != nil {
			t.Highlight = t.Highlight.Background(bg)
		}
	}
	if c := parseColor(p.Accent); c != nil {
		t.Title = t.Title.Foreground(c)
		t.Accent = t.Accent.Foreground(c)
		t.Popover = t.Popover.BorderForeground(c)
	}
	if c := parseColor(p.Muted); c != nil {
		t.Caption = lipgloss.NewStyle().Foreground(c)
	}
	if c := parseColor(p.Error); c != nil {
		t.Error = t.Error.Foreground(c)
	}
	return t
}

// Highlighter renders search matches with the Highlight style.
func (t Theme) Highlighter() grid.Highlighter {
	style := t.Highlight
	return grid.HighlightFunc(func(text, query string) string {
		var b strings.Builder
		for _, seg := range grid.SplitMatches(text, query) {
			if seg.Match {
				b.WriteString(style.Render(seg.Text))
				continue
			}
			b.WriteString(seg.Text)
		}
		return b.String()
	})
}

func parseColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return lipgloss.Color(s)
}
