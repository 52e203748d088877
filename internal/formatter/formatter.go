// Package formatter prints grid records as JSON, YAML or CSV.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// Row is one printed record.
type Row = grid.MapRecord

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// WriteJSON prints rows as an indented JSON array of objects with keys in
// field order.
func WriteJSON(w io.Writer, rows []Row, fields []string) error {
	doc := []byte("[]")
	for i, row := range rows {
		obj := []byte("{}")
		for _, f := range orderedFields(row, fields) {
			var err error
			obj, err = sjson.SetBytes(obj, pathEscaper.Replace(f), row.Values[f])
			if err != nil {
				return encodeErr(row, err)
			}
		}
		var err error
		doc, err = sjson.SetRawBytes(doc, fmt.Sprint(i), obj)
		if err != nil {
			return encodeErr(row, err)
		}
	}
	_, err := w.Write(pretty.Pretty(doc))
	return err
}

// WriteCSV prints a header of fields and one line per row. Absent fields
// are blank.
func WriteCSV(w io.Writer, rows []Row, fields []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, len(fields))
		for i, f := range fields {
			line[i] = grid.FieldText(row, f)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// orderedFields lists the fields row carries, in dataset order.
func orderedFields(row Row, fields []string) []string {
	out := make([]string, 0, len(row.Values))
	for _, f := range fields {
		if _, ok := row.Values[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func encodeErr(row Row, err error) error {
	return fmt.Errorf("encode record %s: %w", row.Key, err)
}
