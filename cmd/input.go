package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/pkg/loader"
)

var stdinIsPiped = func() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// loadInput decodes the file named by args, else piped stdin. format
// overrides detection from the file extension and content.
func loadInput(stdin io.Reader, args []string, format string, lgr logr.Logger) (*loader.Dataset, error) {
	f, err := parseFormat(format)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 && args[0] != "-" {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		if f == loader.FormatAuto {
			f = loader.FormatFromPath(path)
		}
		lgr.V(1).Info("loading file", "path", path, "format", string(f))
		return decode(data, f, path, lgr)
	}
	if len(args) == 0 && !stdinIsPiped() {
		return nil, errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return decode(data, f, "stdin", lgr)
}

func decode(data []byte, f loader.Format, source string, lgr logr.Logger) (*loader.Dataset, error) {
	ds, err := loader.Load(data, f, lgr)
	if errors.Is(err, loader.ErrEmptyInput) {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	lgr.V(1).Info("input loaded", "source", source, "format", string(ds.Format), "records", len(ds.Records), "fields", len(ds.Fields))
	return ds, nil
}

func parseFormat(s string) (loader.Format, error) {
	switch f := loader.Format(strings.ToLower(strings.TrimSpace(s))); f {
	case loader.FormatAuto, loader.FormatJSON, loader.FormatNDJSON, loader.FormatYAML, loader.FormatTOML, loader.FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown input format %q", s)
	}
}
