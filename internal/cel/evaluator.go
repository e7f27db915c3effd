// Package cel compiles CEL predicates that narrow result records. A record is
// bound to the variable r, so expressions read like r.type == "article" or
// "physics" in r.tags.
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// RecordVar is the variable a record is bound to.
const RecordVar = "r"

// Evaluator compiles and evaluates CEL expressions over records.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the string, list and math extensions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newRecordEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

func newRecordEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 4+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RecordVar, cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate compiles expr and runs it once against fields, returning a plain
// Go value.
func (e *Evaluator) Evaluate(expr string, fields map[string]any) (any, error) {
	prg, _, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	result, _, err := prg.Eval(map[string]any{RecordVar: fields})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Predicate is a compiled boolean expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile builds a reusable predicate. Expressions whose type is known not to
// be bool are rejected here; dynamic ones are checked per record.
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	prg, out, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	if !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, out)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

func (e *Evaluator) program(expr string) (cel.Program, *cel.Type, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, nil, fmt.Errorf("program error: %w", err)
	}
	return prg, ast.OutputType(), nil
}

func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate against one record's fields.
func (p *Predicate) Match(fields map[string]any) (bool, error) {
	result, _, err := p.prg.Eval(map[string]any{RecordVar: fields})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := result.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %s, want bool", p.expr, result.Type())
	}
	return bool(b), nil
}

// ToGo converts CEL values back to Go values, recursing into lists and maps.
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
	}

	inner := val.Value()
	switch in := inner.(type) {
	case []ref.Val:
		out := make([]any, len(in))
		for i, elem := range in {
			out[i] = ToGo(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[fmt.Sprintf("%v", k.Value())] = ToGo(v)
		}
		return out
	}
	return inner
}

// Functions lists the function and macro names a filter may call, without
// operator internals.
func Functions() ([]string, error) {
	env, err := newRecordEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	seen := make(map[string]bool)
	for _, fn := range env.Functions() {
		if !isOperator(fn.Name()) {
			seen[fn.Name()] = true
		}
	}
	for _, m := range env.Macros() {
		if !isOperator(m.Function()) {
			seen[m.Function()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") {
		return true
	}
	if strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_") {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}
