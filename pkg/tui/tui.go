// Package tui shows any grid.Record set as an interactive terminal data grid.
//
// Hosts own the rows and columns: the grid reports reorders through
// Props.OnRowsChange and Props.OnColumnsChange and the host passes the new
// slices back. Run and Snapshot apply them automatically before forwarding.
package tui

import (
	"context"
	"os"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridx/internal/ui"
	"github.com/oakwood-commons/gridx/internal/ui/table"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr and stdin, then the COLUMNS environment variable.
// It falls back to 120x24.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// Loader fetches rows in the background while the grid shows a spinner.
type Loader[T grid.Record] func(ctx context.Context) ([]T, error)

func options[T grid.Record](ctx context.Context, props grid.Props[T], cfg Config, load Loader[T]) ui.Options[T] {
	th := cfg.theme()
	return ui.Options[T]{
		Props:   props,
		Title:   strings.TrimSpace(cfg.Title),
		Theme:   &th,
		Keys:    cfg.Keys,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Context: ctx,
		Load:    load,
	}
}

// Run shows the grid until the user quits and returns the final selection.
// load may be nil when props already carry the rows.
func Run[T grid.Record](ctx context.Context, props grid.Props[T], cfg Config, load Loader[T], opts ...tea.ProgramOption) ([]T, error) {
	m, err := ui.Run(options(ctx, props, cfg, load), cfg.StartKeys, opts...)
	if m == nil {
		return nil, err
	}
	return m.Selected(), err
}

// Snapshot renders one screen of the grid after cfg.StartKeys, without a
// terminal. load runs synchronously.
func Snapshot[T grid.Record](ctx context.Context, props grid.Props[T], cfg Config, load Loader[T]) string {
	return ui.RenderSnapshot(options(ctx, props, cfg, load), ui.SnapshotConfig{
		Width:     cfg.Width,
		Height:    cfg.Height,
		NoColor:   cfg.NoColor,
		StartKeys: cfg.StartKeys,
	})
}

// RenderTable draws the current page of the grid as a static table with its
// caption, for non-interactive output. Width 0 detects the terminal width.
func RenderTable[T grid.Record](props grid.Props[T], cfg Config) string {
	width := cfg.Width
	if width <= 0 {
		width, _ = DetectTerminalSize()
	}
	th := cfg.theme()
	if props.Highlighter == nil {
		props.Highlighter = th.Highlighter()
	}
	g := grid.New(props)
	f := g.Frame()

	t := table.New()
	t.SetWidth(width)
	t.SetStyles(th.Table)
	t.HideCursor(true)
	t.SetFrame(f)
	out := t.View() + "\n" + th.Caption.Render(f.Caption)
	if cfg.NoColor {
		out = ansi.Strip(out)
	}
	return out
}
