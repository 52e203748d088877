package cmd

import (
	"fmt"
	"io"

	"github.com/oakwood-commons/gridx/internal/formatter"
	"github.com/oakwood-commons/gridx/internal/limiter"
	"github.com/oakwood-commons/gridx/pkg/grid"
	"github.com/oakwood-commons/gridx/pkg/tui"
)

// writeRecords prints the window of rows that pass the initial filters.
// Table output shows every such row on one page.
func writeRecords(w io.Writer, format string, props grid.Props[grid.MapRecord], tcfg tui.Config, fields []string, window limiter.Config) error {
	rows := limiter.Apply(window, grid.New(props).Visible())
	switch format {
	case OutputJSON:
		return formatter.WriteJSON(w, rows, fields)
	case OutputYAML:
		return formatter.WriteYAML(w, rows, fields, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
	case OutputCSV:
		return formatter.WriteCSV(w, rows, fields)
	default:
		props.Rows = rows
		props.Pagination.PageSize = max(len(rows), 1)
		_, err := fmt.Fprintln(w, tui.RenderTable(props, tcfg))
		return err
	}
}
