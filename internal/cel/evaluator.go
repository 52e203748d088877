// Package cel compiles the CEL expressions used by grid column configuration:
// cell formatters, sort keys and row predicates. Every expression sees the
// record as the map variable "_" and its position as the int "index".
package cel

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/gridx/pkg/grid"
)

// Evaluator compiles CEL expressions against a shared environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the standard extension libraries.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// GetEnvironment returns the CEL environment for introspection.
func (e *Evaluator) GetEnvironment() *cel.Env {
	return e.env
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable("_", cel.DynType),
		cel.Variable("index", cel.IntType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Program is a compiled expression.
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and checks expr.
func (e *Evaluator) Compile(expr string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error in %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error in %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Program) String() string { return p.expr }

// Eval runs the program with data bound to "_" and converts the result to
// Go values.
func (p *Program) Eval(data any) (any, error) {
	return p.EvalVars(map[string]any{"_": data})
}

// EvalVars runs the program with explicit variable bindings.
func (p *Program) EvalVars(vars map[string]any) (any, error) {
	out, _, err := p.prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("eval error in %q: %w", p.expr, err)
	}
	return ToGo(out), nil
}

// EvalString evaluates and stringifies the result. Errors (such as a missing
// field) produce "".
func (p *Program) EvalString(data any) string {
	v, err := p.Eval(data)
	if err != nil {
		return ""
	}
	return grid.Stringify(v)
}

// EvalBool evaluates a predicate. Errors and non-boolean results are false.
func (p *Program) EvalBool(data any) bool {
	v, err := p.Eval(data)
	if err != nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// ToGo converts CEL values to Go values, recursing into lists and maps.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}
	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	return convertValue(valuer.Value())
}

func convertValue(v any) any {
	switch inner := v.(type) {
	case ref.Val:
		return ToGo(inner)
	case []ref.Val:
		out := make([]any, len(inner))
		for i, e := range inner {
			out[i] = ToGo(e)
		}
		return out
	case []any:
		out := make([]any, len(inner))
		for i, e := range inner {
			out[i] = convertValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(inner))
		for k, e := range inner {
			out[k] = convertValue(e)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(inner))
		for k, e := range inner {
			out[grid.Stringify(ToGo(k))] = ToGo(e)
		}
		return out
	default:
		return v
	}
}
