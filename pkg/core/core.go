// Package core turns record files and a YAML configuration into grid props,
// for hosts that embed the grid without the gridx command line.
package core

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/internal/cel"
	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/pkg/grid"
	"github.com/oakwood-commons/gridx/pkg/loader"
)

// Engine loads datasets and resolves the configuration against them.
type Engine struct {
	cfg    config.Config
	layers [][]byte
	eval   *cel.Evaluator
	log    logr.Logger
	err    error
}

// Option configures the Engine.
type Option func(*Engine)

// WithConfig replaces the embedded defaults with cfg.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithConfigYAML overlays a YAML document on the configuration. Layers are
// applied in order.
func WithConfigYAML(data []byte) Option {
	return func(e *Engine) {
		e.layers = append(e.layers, data)
	}
}

// WithConfigFile overlays the YAML file at path.
func WithConfigFile(path string) Option {
	return func(e *Engine) {
		data, err := os.ReadFile(path)
		if err != nil {
			e.err = fmt.Errorf("read config: %w", err)
			return
		}
		e.layers = append(e.layers, data)
	}
}

// WithEvaluator sets the CEL evaluator used by column expressions.
func WithEvaluator(ev *cel.Evaluator) Option {
	return func(e *Engine) {
		e.eval = ev
	}
}

// WithLogger sets the logger handed to loaders and grids.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.log = lgr
	}
}

// New creates an Engine starting from the embedded default configuration.
func New(opts ...Option) (*Engine, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, log: logr.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	if e.err != nil {
		return nil, e.err
	}
	for _, layer := range e.layers {
		if err := config.Overlay(&e.cfg, layer); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if e.eval == nil {
		if e.eval, err = cel.NewEvaluator(); err != nil {
			return nil, fmt.Errorf("create CEL environment: %w", err)
		}
	}
	return e, nil
}

// Config returns the resolved configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// OrderKey is the state key the column order is saved under.
func (e *Engine) OrderKey() string { return e.cfg.Grid.OrderKey }

// Load decodes data. FormatAuto detects the encoding.
func (e *Engine) Load(data []byte, format loader.Format) (*loader.Dataset, error) {
	return loader.Load(data, format, e.log)
}

// LoadFile decodes the file at path, choosing the format from its extension.
func (e *Engine) LoadFile(path string) (*loader.Dataset, error) {
	return loader.LoadFile(path, e.log)
}

// Props resolves the configured columns against ds and returns grid props
// seeded with query. DeclaredColumns holds the configured column order.
func (e *Engine) Props(ds *loader.Dataset, query string) (grid.Props[grid.MapRecord], error) {
	compiled, err := e.cfg.Compile(e.eval, ds.Fields)
	if err != nil {
		return grid.Props[grid.MapRecord]{}, fmt.Errorf("invalid configuration: %w", err)
	}
	props := compiled.Props(ds.Records, e.log)
	props.DeclaredColumns = compiled.Columns
	props.InitialQuery = query
	return props, nil
}
