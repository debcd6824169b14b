package evidence

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Filter is a compiled CEL predicate over a single record, bound to the
// variable "rule". Example: rule.workflowName.startsWith("@jetbrains").
type Filter struct {
	expr    string
	program cel.Program
}

var filterPrograms sync.Map

var newFilterEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("rule", cel.MapType(cel.StringType, cel.StringType)))
}

// CompileFilter compiles expr. The expression must evaluate to a bool.
// Compiled programs are cached by expression text.
func CompileFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("filter expression required")
	}
	if cached, ok := filterPrograms.Load(expr); ok {
		return &Filter{expr: expr, program: cached.(cel.Program)}, nil
	}
	env, err := newFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("filter env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program filter %q: %w", expr, err)
	}
	filterPrograms.Store(expr, program)
	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against one record.
func (f *Filter) Match(r Record) (bool, error) {
	out, _, err := f.program.Eval(map[string]any{"rule": r.asMap()})
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q on rule %s: %w", f.expr, r.RuleID, err)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T", f.expr, out.Value())
	}
	return v, nil
}

// Apply keeps the records that match, preserving order. A nil filter keeps
// everything.
func (f *Filter) Apply(records []Record) ([]Record, error) {
	if f == nil {
		return records, nil
	}
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
