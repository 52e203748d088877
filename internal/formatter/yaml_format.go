package formatter

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFormatOptions control YAML rendering.
type YAMLFormatOptions struct {
	Indent              int
	LiteralBlockStrings bool
}

// WriteYAML prints rows as a sequence of mappings with keys in field order.
// Multi-line strings can be emitted as literal blocks ("|") to preserve
// newlines.
func WriteYAML(w io.Writer, rows []Row, fields []string, opts YAMLFormatOptions) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range orderedFields(row, fields) {
			var v yaml.Node
			if err := v.Encode(row.Values[f]); err != nil {
				return encodeErr(row, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f}, &v)
		}
		seq.Content = append(seq.Content, m)
	}
	if opts.LiteralBlockStrings {
		applyLiteralStyle(seq)
	}

	enc := yaml.NewEncoder(w)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}
