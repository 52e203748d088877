// Package loader reads record files into grid rows. JSON, NDJSON, YAML
// (single and multi-document), TOML and CSV inputs are supported; the format
// is taken from the file extension when known and detected from content
// otherwise.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// ErrEmptyInput is returned for blank input.
var ErrEmptyInput = errors.New("empty input")

// KeyField is the record field used as the row key when present.
const KeyField = "key"

// ValueField holds scalar documents, which have no fields of their own.
const ValueField = "value"

// Format names an input encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatCSV    Format = "csv"
)

// FormatFromPath maps a file extension to a format. Unknown extensions
// return FormatAuto.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".csv":
		return FormatCSV
	default:
		return FormatAuto
	}
}

// Dataset is a decoded input.
type Dataset struct {
	Records []grid.MapRecord
	// Fields lists every record field in first-seen order. Formats without
	// an ordered mapping (TOML) list fields alphabetically.
	Fields []string
	Format Format
}

// Values returns the record maps, in order.
func (d *Dataset) Values() []map[string]any {
	out := make([]map[string]any, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Values
	}
	return out
}

// LoadFile reads and decodes path.
func LoadFile(path string, lgr logr.Logger) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := FormatFromPath(path)
	lgr.V(1).Info("loading file", "path", path, "format", string(format))
	return Load(data, format, lgr)
}

// Load decodes data. With FormatAuto the format is detected from content.
func Load(data []byte, format Format, lgr logr.Logger) (*Dataset, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return nil, ErrEmptyInput
	}
	if format == FormatAuto {
		format = DetectFormat(input)
		lgr.V(1).Info("detected input format", "format", string(format))
	}

	var (
		docs  []any
		order []string
		err   error
	)
	switch format {
	case FormatJSON:
		docs, err = loadJSON(input)
		if err != nil {
			lgr.V(1).Info("JSON parse failed, trying YAML", "error", err.Error())
			return Load(data, FormatYAML, lgr)
		}
	case FormatNDJSON:
		docs, err = loadNDJSON(input)
	case FormatYAML:
		docs, order, err = loadYAML(input)
	case FormatTOML:
		docs, err = loadTOML(input)
	case FormatCSV:
		return loadCSV(input)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	items, container := recordsOf(docs)
	switch format {
	case FormatJSON:
		order = jsonFieldOrder([]string{input}, container)
	case FormatNDJSON:
		order = jsonFieldOrder(strings.Split(input, "\n"), container)
	}
	ds := build(items, order)
	ds.Format = format
	return ds, nil
}

// DetectFormat guesses the encoding of trimmed input.
func DetectFormat(input string) Format {
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		if !gjson.Valid(input) {
			return FormatNDJSON
		}
	}
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// recordsOf flattens decoded documents into record candidates. A single
// array document yields its elements. A single object whose only array
// member holds the records (a TOML array of tables, a {"data": [...]}
// envelope) yields that array and reports the member name.
func recordsOf(docs []any) ([]any, string) {
	if len(docs) != 1 {
		return docs, ""
	}
	switch root := docs[0].(type) {
	case []any:
		return root, ""
	case map[string]any:
		var (
			name  string
			items []any
		)
		for k, v := range root {
			list, ok := v.([]any)
			if !ok {
				continue
			}
			if items != nil {
				return docs, ""
			}
			name, items = k, list
		}
		if items != nil && len(root) == 1 {
			return items, name
		}
	}
	return docs, ""
}

func build(items []any, order []string) *Dataset {
	ds := &Dataset{Records: make([]grid.MapRecord, 0, len(items))}
	seen := make(map[string]bool)
	for _, f := range order {
		if !seen[f] {
			seen[f] = true
			ds.Fields = append(ds.Fields, f)
		}
	}
	var extra []string
	for i, item := range items {
		values, ok := item.(map[string]any)
		if !ok {
			values = map[string]any{ValueField: item}
		}
		for k := range values {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
		ds.Records = append(ds.Records, grid.MapRecord{Key: recordKey(values, i), Values: values})
	}
	sort.Strings(extra)
	ds.Fields = append(ds.Fields, extra...)
	return ds
}

func recordKey(values map[string]any, i int) string {
	if v, ok := values[KeyField]; ok && v != nil {
		if s := grid.Stringify(v); s != "" {
			return s
		}
	}
	return strconv.Itoa(i + 1)
}

func loadJSON(input string) ([]any, error) {
	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []any{data}, nil
}

// loadNDJSON keeps lines that are not valid JSON as plain strings.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	results := make([]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			results = append(results, line)
			continue
		}
		results = append(results, obj)
	}
	if len(results) == 0 {
		return nil, ErrEmptyInput
	}
	return results, nil
}

// jsonFieldOrder walks raw JSON documents with gjson, which iterates object
// members in source order.
func jsonFieldOrder(raws []string, container string) []string {
	var order []string
	collect := func(obj gjson.Result) {
		if !obj.IsObject() {
			return
		}
		obj.ForEach(func(k, _ gjson.Result) bool {
			order = append(order, k.String())
			return true
		})
	}
	for _, raw := range raws {
		raw = strings.TrimSpace(raw)
		if raw == "" || !gjson.Valid(raw) {
			continue
		}
		res := gjson.Parse(raw)
		if container != "" {
			res = res.Get(gjsonEscaper.Replace(container))
		}
		if res.IsArray() {
			res.ForEach(func(_, el gjson.Result) bool {
				collect(el)
				return true
			})
			continue
		}
		collect(res)
	}
	return order
}

var gjsonEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// loadYAML decodes every document twice: into plain values and into nodes,
// the latter only to recover mapping key order.
func loadYAML(input string) ([]any, []string, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, nil, ErrEmptyInput
	}

	_, container := recordsOf(docs)
	var order []string
	nodes := yaml.NewDecoder(strings.NewReader(input))
	for {
		var n yaml.Node
		if err := nodes.Decode(&n); err != nil {
			break
		}
		order = append(order, yamlFieldOrder(&n, container)...)
	}
	return docs, order, nil
}

func yamlFieldOrder(n *yaml.Node, container string) []string {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if container != "" && n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == container {
				n = n.Content[i+1]
				break
			}
		}
	}
	var order []string
	keysOf := func(m *yaml.Node) {
		if m.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(m.Content); i += 2 {
			order = append(order, m.Content[i].Value)
		}
	}
	if n.Kind == yaml.SequenceNode {
		for _, el := range n.Content {
			keysOf(el)
		}
		return order
	}
	keysOf(n)
	return order
}

func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{normalizeTOML(data)}, nil
}

// normalizeTOML turns arrays of tables ([]map[string]any) into []any so
// they are treated like any other record list.
func normalizeTOML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeTOML(e)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeTOML(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeTOML(e)
		}
		return t
	default:
		return v
	}
}

// loadCSV treats the first row as headers. Short rows are padded with "".
func loadCSV(input string) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader([]byte(input)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	headers := rows[0]
	items := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(headers))
		for j, h := range headers {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			rec[h] = value
		}
		items = append(items, rec)
	}
	ds := build(items, headers)
	ds.Format = FormatCSV
	return ds, nil
}

// isLikelyNDJSON requires a majority of non-empty lines to start with '{'
// or '[' so YAML lists are not misread.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML looks for [section] headers or a majority of key = value
// lines. JSON arrays such as [1, 2] do not match the header pattern.
func isLikelyTOML(input string) bool {
	sections, keyValues, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			keyValues++
		}
	}
	return sections > 0 || (nonEmpty > 0 && keyValues > nonEmpty/2)
}
