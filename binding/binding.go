// Package binding computes captured-variable values from CEL expressions.
//
// Each binding is a name and a CEL expression evaluated against the loaded
// input document, available to expressions as the variable "input". The
// results form the capture environment handed to explang.Parse.
package binding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/hashicorp/go-multierror"
	structpb "google.golang.org/protobuf/types/known/structpb"
)

// InputVariable is the name the input document is bound to in expressions.
const InputVariable = "input"

var (
	// ErrCompile is returned when a binding expression does not compile.
	ErrCompile = errors.New("binding: compile failed")
	// ErrEval is returned when a binding expression fails at evaluation.
	ErrEval = errors.New("binding: evaluation failed")
	// ErrInvalidName is returned for a binding name that is not an identifier.
	ErrInvalidName = errors.New("binding: invalid name")
)

// Evaluator compiles and runs binding expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an Evaluator whose expressions see the input
// document as a dynamically typed "input" variable.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(InputVariable, cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// Eval evaluates one expression and returns its normalized Go value.
func (e *Evaluator) Eval(expression string, input any) (any, error) {
	ast, issues := e.env.Compile(expression)
	if issues.Err() != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrCompile, expression, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrCompile, expression, err)
	}

	result, _, err := program.Eval(map[string]any{
		InputVariable: input,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrEval, expression, err)
	}

	return Normalize(result), nil
}

// Bind evaluates every expression in vars. All failures are reported
// together, in name order.
func (e *Evaluator) Bind(vars map[string]string, input any) (map[string]any, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	sort.Strings(names)

	var errs *multierror.Error

	values := make(map[string]any, len(vars))

	for _, name := range names {
		if !isIdentifier(name) {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrInvalidName, name))
			continue
		}

		v, err := e.Eval(vars[name], input)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		values[name] = v
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return values, nil
}

// Normalize converts CEL values into plain Go values. Nulls become nil,
// lists become []any and maps become map[string]any, recursively. Values
// that are not CEL values are returned unchanged.
func Normalize(value any) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case structpb.NullValue:
		return nil
	case traits.Lister:
		size, _ := v.Size().(types.Int)
		out := make([]any, 0, int(size))

		for i := types.Int(0); i < size; i++ {
			out = append(out, Normalize(v.Get(i)))
		}

		return out
	case traits.Mapper:
		out := make(map[string]any)

		it := v.Iterator()
		for it.HasNext() == types.True {
			key := it.Next()
			out[fmt.Sprint(Normalize(key))] = Normalize(v.Get(key))
		}

		return out
	case ref.Val:
		if v == types.NullValue || types.IsUnknown(v) || types.IsError(v) {
			return nil
		}

		return Normalize(v.Value())
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Normalize(item)
		}

		return out
	default:
		return value
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
