package config

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/internal/cel"
	"github.com/oakwood-commons/gridx/pkg/grid"
)

// TextProp is the template prop holding the raw cell text.
const TextProp = "text"

// Compiled is a configuration resolved into grid props for map records.
type Compiled struct {
	Columns        []grid.Column[grid.MapRecord]
	Pagination     grid.Pagination
	Selectable     bool
	Expandable     bool
	CheckboxProps  func(rec grid.MapRecord) grid.CheckboxProps
	ExpandedRender func(rec grid.MapRecord) string
	RowExpandable  func(rec grid.MapRecord) bool
	RowClass       func(rec grid.MapRecord, index int) string
	OrderKey       string
}

// Props returns grid props for rows. Callbacks are left for the host.
func (c *Compiled) Props(rows []grid.MapRecord, lgr logr.Logger) grid.Props[grid.MapRecord] {
	return grid.Props[grid.MapRecord]{
		Rows:           rows,
		Columns:        c.Columns,
		Selectable:     c.Selectable,
		CheckboxProps:  c.CheckboxProps,
		Expandable:     c.Expandable,
		ExpandedRender: c.ExpandedRender,
		RowExpandable:  c.RowExpandable,
		RowClass:       c.RowClass,
		Pagination:     c.Pagination,
		Logger:         lgr,
	}
}

// Compile resolves c. Columns default to one searchable, sortable column
// per dataset field when none are configured.
func (c Config) Compile(ev *cel.Evaluator, fields []string) (*Compiled, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := &Compiled{
		Selectable: boolOr(c.Grid.Selectable, false),
		Expandable: boolOr(c.Grid.Expandable, false),
		OrderKey:   c.Grid.OrderKey,
	}
	pos, _ := grid.ParsePosition(c.Grid.Position)
	out.Pagination = grid.Pagination{
		PageSize:  intOr(c.Grid.PageSize, grid.DefaultPageSize),
		Resizable: boolOr(c.Grid.Resizable, true),
		Position:  pos,
	}

	cols := c.Columns
	if len(cols) == 0 {
		cols = InferColumns(fields)
	}
	for _, cc := range cols {
		col, err := buildColumn(ev, cc)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cc.Key, err)
		}
		out.Columns = append(out.Columns, col)
	}

	var err error
	if out.ExpandedRender, err = expandRender(c.Expand.Render, fields); err != nil {
		return nil, fmt.Errorf("expand.render: %w", err)
	}
	if c.Expand.When != "" {
		prg, err := ev.Compile(c.Expand.When)
		if err != nil {
			return nil, fmt.Errorf("expand.when: %w", err)
		}
		out.RowExpandable = func(rec grid.MapRecord) bool { return prg.EvalBool(rec.Values) }
	}
	if out.CheckboxProps, err = checkboxProps(ev, c.Selection); err != nil {
		return nil, err
	}
	if c.RowClass != "" {
		prg, err := ev.Compile(c.RowClass)
		if err != nil {
			return nil, fmt.Errorf("rowClass: %w", err)
		}
		out.RowClass = func(rec grid.MapRecord, index int) string {
			v, err := prg.EvalVars(map[string]any{"_": rec.Values, "index": index})
			if err != nil {
				return ""
			}
			return grid.Stringify(v)
		}
	}
	return out, nil
}

func buildColumn(ev *cel.Evaluator, cc ColumnConfig) (grid.Column[grid.MapRecord], error) {
	width, err := grid.ParseWidth(cc.Width)
	if err != nil {
		return grid.Column[grid.MapRecord]{}, err
	}
	col := grid.Column[grid.MapRecord]{
		Title:         cc.Title,
		Key:           cc.Key,
		Width:         width,
		Searchable:    cc.Searchable,
		DefaultFilter: cc.DefaultFilter,
	}
	if col.Title == "" {
		col.Title = Humanize(cc.Key)
	}
	for _, f := range cc.Filters {
		label := f.Label
		if label == "" {
			label = f.Value
		}
		col.Filters = append(col.Filters, grid.FilterOption{Label: label, Value: f.Value})
	}

	switch {
	case cc.SortBy != "":
		prg, err := ev.Compile(cc.SortBy)
		if err != nil {
			return col, fmt.Errorf("sortBy: %w", err)
		}
		col.Compare = func(a, b grid.MapRecord) int {
			av, _ := prg.Eval(a.Values)
			bv, _ := prg.Eval(b.Values)
			return grid.CompareValues(av, bv)
		}
	case cc.Sortable:
		col.Compare = grid.CompareText[grid.MapRecord](cc.Key)
	}

	var format func(grid.MapRecord) string
	if cc.Format != "" {
		prg, err := ev.Compile(cc.Format)
		if err != nil {
			return col, fmt.Errorf("format: %w", err)
		}
		format = func(rec grid.MapRecord) string { return prg.EvalString(rec.Values) }
	}

	if cc.Render == "" {
		col.Cell = grid.Formatted(format)
		return col, nil
	}
	tmpl, err := parseTemplate(cc.Key, cc.Render)
	if err != nil {
		return col, fmt.Errorf("render: %w", err)
	}
	render := func(text string, rec grid.MapRecord) grid.Element {
		props := RecordProps(rec)
		props[TextProp] = text
		return grid.NewElement(func(p map[string]string) string { return execute(tmpl, p, text) }, props)
	}
	col.Cell = grid.CustomHighlight(render, cc.Highlight, format)
	return col, nil
}

func checkboxProps(ev *cel.Evaluator, sel SelectionConfig) (func(grid.MapRecord) grid.CheckboxProps, error) {
	if sel.Disabled == "" && sel.Label == "" {
		return nil, nil
	}
	var disabled *cel.Program
	if sel.Disabled != "" {
		prg, err := ev.Compile(sel.Disabled)
		if err != nil {
			return nil, fmt.Errorf("selection.disabled: %w", err)
		}
		disabled = prg
	}
	var label *template.Template
	if sel.Label != "" {
		tmpl, err := parseTemplate("selection", sel.Label)
		if err != nil {
			return nil, fmt.Errorf("selection.label: %w", err)
		}
		label = tmpl
	}
	return func(rec grid.MapRecord) grid.CheckboxProps {
		var cp grid.CheckboxProps
		if disabled != nil {
			cp.Disabled = disabled.EvalBool(rec.Values)
		}
		if label != nil {
			cp.Label = execute(label, RecordProps(rec), "")
		}
		return cp
	}, nil
}

func expandRender(src string, fields []string) (func(grid.MapRecord) string, error) {
	if src == "" {
		return func(rec grid.MapRecord) string { return DescribeRecord(rec, fields) }, nil
	}
	tmpl, err := parseTemplate("expand", src)
	if err != nil {
		return nil, err
	}
	return func(rec grid.MapRecord) string { return execute(tmpl, RecordProps(rec), "") }, nil
}

// DescribeRecord lists fields as "name: value" lines, in fields order
// followed by any remaining fields alphabetically.
func DescribeRecord(rec grid.MapRecord, fields []string) string {
	seen := make(map[string]bool, len(rec.Values))
	var names []string
	for _, f := range fields {
		if _, ok := rec.Values[f]; ok && !seen[f] {
			seen[f] = true
			names = append(names, f)
		}
	}
	var rest []string
	for k := range rec.Values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = n + ": " + grid.Stringify(rec.Values[n])
	}
	return strings.Join(lines, "\n")
}

// RecordProps stringifies every record field for templates.
func RecordProps(rec grid.MapRecord) map[string]string {
	props := make(map[string]string, len(rec.Values)+1)
	for k, v := range rec.Values {
		props[k] = grid.Stringify(v)
	}
	return props
}

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
}

func parseTemplate(name, src string) (*template.Template, error) {
	return template.New(name).Option("missingkey=zero").Funcs(templateFuncs).Parse(src)
}

// execute renders tmpl, returning fallback when execution fails.
func execute(tmpl *template.Template, props map[string]string, fallback string) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, props); err != nil {
		return fallback
	}
	return b.String()
}

// InferColumns declares one sortable, searchable column per field.
func InferColumns(fields []string) []ColumnConfig {
	cols := make([]ColumnConfig, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, ColumnConfig{Key: f, Title: Humanize(f), Sortable: true, Searchable: true})
	}
	return cols
}

// Humanize turns "firstName" or "first_name" into "First Name".
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
