package accessor

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/shibukawa/deepget/explang"
)

// MissingFunc observes a short-circuited evaluation. chain holds the parts up
// to and including the first absent one; path is the path after capture
// substitution, so literal values rather than variable names appear in it.
type MissingFunc func(chain []ChainPart, path *explang.Path)

// Result is the outcome of one evaluation.
type Result struct {
	// Value is the leaf value; nil when Found is false.
	Value any
	// Found is false when the walk stopped at an absent value or a captured fault.
	Found bool
	// Chain is the ordered trace, root first.
	Chain []ChainPart
	// Path is the evaluated path after capture substitution.
	Path *explang.Path
}

// Accessor evaluates access paths with a Resolver and a ValidityCache.
// It is safe for concurrent use as long as its Resolver is.
type Accessor struct {
	resolver Resolver
	cache    *ValidityCache
	logger   hclog.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithResolver replaces the default ReflectResolver.
func WithResolver(r Resolver) Option {
	return func(a *Accessor) { a.resolver = r }
}

// WithCache replaces DefaultCache.
func WithCache(c *ValidityCache) Option {
	return func(a *Accessor) { a.cache = c }
}

// WithLogger sets the logger used for trace and debug events. Accessors are
// silent by default.
func WithLogger(l hclog.Logger) Option {
	return func(a *Accessor) { a.logger = l }
}

// New creates an Accessor.
func New(opts ...Option) *Accessor {
	a := &Accessor{
		resolver: ReflectResolver{},
		cache:    DefaultCache,
		logger:   hclog.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

var defaultAccessor = New()

// Default returns the accessor used by Get and GetValue.
func Default() *Accessor {
	return defaultAccessor
}

// Evaluate walks path from root.
//
// Captured variables are substituted first, then the shape is validated
// through the cache. The walk resolves one node at a time and stops at the
// first absent value, calling onMissing (when non-nil) exactly once.
//
// Parse faults, member read failures and argument faults are returned as
// errors. Faults of index, key and call operations are captured on the chain
// part instead and the evaluation reports Found == false.
func (a *Accessor) Evaluate(root any, path *explang.Path, onMissing MissingFunc) (Result, error) {
	if path == nil {
		return Result{}, explang.NewParseError(explang.ErrBrokenChain, explang.MessageBrokenChain, nil)
	}

	substituted, err := explang.SubstituteCaptures(path, a.resolver)
	if err != nil {
		return Result{}, err
	}

	key := substituted.String()

	checked := false

	err = a.cache.CheckOrFail(key, func() error {
		checked = true

		a.logger.Trace("validating path shape", "path", key)

		return explang.CheckConstantArguments(substituted)
	})
	if !checked {
		a.logger.Trace("path shape cache hit", "path", key, "valid", err == nil)
	}

	if err != nil {
		return Result{Path: substituted}, err
	}

	// A cache hit does not prove this tree reaches its own root.
	nodes, ok := substituted.Chain()
	if !ok {
		return Result{Path: substituted}, explang.NewParseError(explang.ErrBrokenChain, explang.MessageBrokenChain, substituted.Body)
	}
	chain := make([]ChainPart, 0, len(nodes))

	var current any

	for _, node := range nodes {
		part, err := a.resolve(root, current, node)
		if err != nil {
			return Result{Chain: chain, Path: substituted}, err
		}

		chain = append(chain, part)

		if part.Absent() {
			if part.Fault != nil {
				a.logger.Debug("step fault captured", "path", key, "step", part.Name, "error", part.Fault)
			}

			a.logger.Debug("access chain short-circuited", "path", key, "chain", FormatChain(chain))

			if onMissing != nil {
				onMissing(chain, substituted)
			}

			return Result{Chain: chain, Path: substituted}, nil
		}

		current = part.Value
	}

	return Result{Value: current, Found: true, Chain: chain, Path: substituted}, nil
}

func (a *Accessor) resolve(root, current any, n explang.Node) (ChainPart, error) {
	part := ChainPart{Node: n}

	switch node := n.(type) {
	case *explang.Root:
		t := node.Type
		if t == nil {
			t = reflect.TypeOf(root)
		}

		part.Name = RootPrefix + TypeName(t)
		part.Value = normalize(root)
	case *explang.Member:
		part.Name = node.Name

		v, err := guard(func() (any, error) { return a.resolver.Member(current, node.Name) })
		if err != nil {
			return part, &StepError{Step: part.Name, Err: err}
		}

		part.Value = normalize(v)
	case *explang.Index:
		lit, err := literalArg(node.Arg)
		if err != nil {
			return part, err
		}

		index, err := toIndex(lit)
		if err != nil {
			return part, &ArgumentError{Expr: node.Arg.String(), Err: err}
		}

		part.Name = PartName(node)
		a.capture(&part, func() (any, error) { return a.resolver.Index(current, index) })
	case *explang.Call:
		args := make([]any, len(node.Args))
		for i, arg := range node.Args {
			lit, err := literalArg(arg)
			if err != nil {
				return part, err
			}

			args[i] = lit
		}

		part.Name = PartName(node)

		if node.Indexer {
			if len(args) != 1 {
				return part, &ArgumentError{Expr: node.String(), Err: fmt.Errorf("%w: keyed lookup takes one key, got %d", ErrArgumentMismatch, len(args))}
			}

			a.capture(&part, func() (any, error) { return a.resolver.Key(current, args[0]) })
		} else {
			a.capture(&part, func() (any, error) { return a.resolver.Call(current, node.Method, args) })
		}
	default:
		return part, explang.NewParseError(explang.ErrUnrecognizedNode, explang.MessageUnrecognizedNode, n)
	}

	return part, nil
}

// capture runs a target operation and attaches its fault to part.
func (a *Accessor) capture(part *ChainPart, op func() (any, error)) {
	v, err := guard(op)
	if err != nil {
		part.Fault = &StepError{Step: part.Name, Err: err, Captured: true}
		part.Value = nil

		return
	}

	part.Value = normalize(v)
}

// guard converts a panic raised by op into an error.
func guard(op func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return op()
}

func literalArg(n explang.Node) (any, error) {
	lit, ok := n.(*explang.Literal)
	if !ok {
		return nil, &ArgumentError{Expr: n.String(), Err: ErrNotLiteral}
	}

	return lit.Value, nil
}

// Get evaluates path from root with the default accessor for a
// reference-like result. Absence yields the zero (nil) T.
func Get[T any](root any, path *explang.Path, onMissing MissingFunc) (T, error) {
	return GetWith[T](defaultAccessor, root, path, onMissing)
}

// GetValue evaluates path from root with the default accessor for a
// value-like result. Absence yields an invalid Optional, distinct from a
// present zero value.
func GetValue[T any](root any, path *explang.Path, onMissing MissingFunc) (Optional[T], error) {
	return GetValueWith[T](defaultAccessor, root, path, onMissing)
}

// GetWith is Get on the given accessor.
func GetWith[T any](a *Accessor, root any, path *explang.Path, onMissing MissingFunc) (T, error) {
	var zero T

	t := reflect.TypeOf((*T)(nil)).Elem()
	if !isNillableKind(t.Kind()) {
		return zero, fmt.Errorf("%w: %s", ErrNotNillable, t)
	}

	res, err := a.Evaluate(root, path, onMissing)
	if err != nil || !res.Found {
		return zero, err
	}

	return convertResult[T](res.Value)
}

// GetValueWith is GetValue on the given accessor.
func GetValueWith[T any](a *Accessor, root any, path *explang.Path, onMissing MissingFunc) (Optional[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if isNillableKind(t.Kind()) {
		return None[T](), fmt.Errorf("%w: %s", ErrNotValueType, t)
	}

	res, err := a.Evaluate(root, path, onMissing)
	if err != nil || !res.Found {
		return None[T](), err
	}

	v, err := convertResult[T](res.Value)
	if err != nil {
		return None[T](), err
	}

	return Some(v), nil
}
