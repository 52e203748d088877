package ui

import (
	"regexp"
	"strings"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// SnapshotConfig configures a one-shot render.
type SnapshotConfig struct {
	Width     int
	Height    int
	NoColor   bool
	StartKeys []string
}

// RenderSnapshot renders one screen without a terminal. Rows from
// opts.Load are fetched synchronously first.
func RenderSnapshot[T grid.Record](opts Options[T], cfg SnapshotConfig) string {
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	opts.Width, opts.Height = cfg.Width, cfg.Height
	load := opts.Load
	opts.Load = nil
	m := New(opts)
	if load != nil {
		rows, err := load(m.ctx)
		m.Update(RowsLoadedMsg[T]{Rows: rows, Err: err})
	}
	ApplyStartupKeys(m, cfg.StartKeys)
	view := m.Render()
	if cfg.NoColor {
		view = stripANSIExceptInverse(view)
	}
	return padSnapshotHeight(view, cfg.Height, cfg.Width)
}

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;:]*m`)

// stripANSIExceptInverse drops color and weight but keeps reverse video so
// the cursor and search matches stay visible. A reset survives only while
// reverse video is on.
func stripANSIExceptInverse(s string) string {
	inverse := false
	return ansiRegexp.ReplaceAllStringFunc(s, func(seq string) string {
		params := strings.Split(seq[2:len(seq)-1], ";")
		var out strings.Builder
		for i := 0; i < len(params); i++ {
			switch params[i] {
			case "", "0":
				if inverse {
					out.WriteString("\x1b[m")
					inverse = false
				}
			case "7":
				if !inverse {
					out.WriteString("\x1b[7m")
					inverse = true
				}
			case "27":
				if inverse {
					out.WriteString("\x1b[27m")
					inverse = false
				}
			case "38", "48", "58":
				// Extended colors carry their own arguments.
				if i+1 < len(params) {
					switch params[i+1] {
					case "5":
						i += 2
					case "2":
						i += 4
					}
				}
			}
		}
		return out.String()
	})
}

func padSnapshotHeight(view string, height, width int) string {
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
