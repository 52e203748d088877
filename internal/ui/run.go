package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// DetectSize returns the stdout terminal size, filling unset dimensions and
// falling back to 80x24.
func DetectSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// Run shows the grid until the user quits and returns the final model.
func Run[T grid.Record](opts Options[T], startKeys []string, progOpts ...tea.ProgramOption) (*Model[T], error) {
	opts.Width, opts.Height = DetectSize(opts.Width, opts.Height)
	m := New(opts)
	ApplyStartupKeys(m, startKeys)
	progOpts = append(progOpts, tea.WithWindowSize(opts.Width, opts.Height))
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(*Model[T]); ok && fm != nil {
		m = fm
	}
	return m, err
}
