package accessor

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resolver reads members and elements from, and invokes methods on, target
// values. The evaluator only orchestrates the order of these calls and the
// isolation of their faults; it never inspects targets itself.
type Resolver interface {
	// Member reads a named field, property-like method or bag entry.
	Member(target any, name string) (any, error)
	// Index reads the element at position index of an ordered container.
	Index(target any, index int) (any, error)
	// Key reads the entry stored under key.
	Key(target any, key any) (any, error)
	// Call invokes method with args.
	Call(target any, method string, args []any) (any, error)
}

// ReflectResolver resolves steps with package reflect.
//
// Member looks for an exported struct field, then a method taking no
// arguments that returns one value (optionally followed by an error), then a
// string-keyed map entry. A missing map entry is absent, not an error.
type ReflectResolver struct {
	// StrictCase disables retrying a member with its title-cased name
	// ("items" -> "Items").
	StrictCase bool
}

var _ Resolver = ReflectResolver{}

func (r ReflectResolver) Member(target any, name string) (any, error) {
	v, err := memberByName(reflect.ValueOf(target), name)
	if err == nil || r.StrictCase || !errors.Is(err, ErrMemberNotFound) {
		return v, err
	}

	// cases.Caser is stateful, so one is created per lookup.
	titled := cases.Title(language.Und, cases.NoLower).String(name)
	if titled == name {
		return v, err
	}

	if v, terr := memberByName(reflect.ValueOf(target), titled); terr == nil {
		return v, nil
	}

	return nil, err
}

func memberByName(rv reflect.Value, name string) (any, error) {
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: reading %q", ErrNilTarget, name)
	}

	if v, ok, err := callGetter(rv, name); ok {
		return v, err
	}

	rv, err := indirect(rv)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q", err, name)
	}

	switch rv.Kind() {
	case reflect.Struct:
		if field, ok := rv.Type().FieldByName(name); ok && field.IsExported() {
			return rv.FieldByIndex(field.Index).Interface(), nil
		}

		if v, ok, err := callGetter(rv, name); ok {
			return v, err
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			entry := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if !entry.IsValid() {
				return nil, nil
			}

			return entry.Interface(), nil
		}
	}

	return nil, fmt.Errorf("%w: %q on %s", ErrMemberNotFound, name, rv.Type())
}

// callGetter invokes a property-like method: no arguments, one result or a
// result followed by an error.
func callGetter(rv reflect.Value, name string) (any, bool, error) {
	m := rv.MethodByName(name)
	if !m.IsValid() {
		return nil, false, nil
	}

	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 {
		return nil, false, nil
	}

	if mt.NumOut() == 2 && mt.Out(1) != errorType {
		return nil, false, nil
	}

	v, err := unpackResults(m.Call(nil))

	return v, true, err
}

// Index selects by position. On a map the integer is used as a key, so
// x.Labels[2] reads map[int]string entries.
func (r ReflectResolver) Index(target any, index int) (any, error) {
	rv, err := indirect(reflect.ValueOf(target))
	if err != nil {
		return nil, err
	}

	switch rv.Kind() {
	case reflect.Map:
		return r.Key(rv.Interface(), index)
	case reflect.Slice, reflect.Array, reflect.String:
		if index < 0 || index >= rv.Len() {
			return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, rv.Len())
		}

		return rv.Index(index).Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotIndexable, rv.Type())
	}
}

func (ReflectResolver) Key(target any, key any) (any, error) {
	rv, err := indirect(reflect.ValueOf(target))
	if err != nil {
		return nil, err
	}

	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: %s has no keys", ErrNotIndexable, rv.Type())
	}

	k, err := convertArg(key, rv.Type().Key())
	if err != nil {
		return nil, err
	}

	entry := rv.MapIndex(k)
	if !entry.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}

	return entry.Interface(), nil
}

func (ReflectResolver) Call(target any, method string, args []any) (any, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: calling %s", ErrNilTarget, method)
	}

	m := rv.MethodByName(method)
	if !m.IsValid() {
		if inner, err := indirect(rv); err == nil {
			m = inner.MethodByName(method)
		}
	}

	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s on %s", ErrMethodNotFound, method, rv.Type())
	}

	in, err := buildArgs(m.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return unpackResults(m.Call(in))
}

func buildArgs(mt reflect.Type, args []any) ([]reflect.Value, error) {
	n := mt.NumIn()

	if mt.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrArgumentMismatch, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgumentMismatch, n, len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		var pt reflect.Type
		if mt.IsVariadic() && i >= n-1 {
			pt = mt.In(n - 1).Elem()
		} else {
			pt = mt.In(i)
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}

		in[i] = v
	}

	return in, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	case 2:
		if out[1].Type() != errorType {
			return nil, fmt.Errorf("%w: second result must be an error", ErrArgumentMismatch)
		}

		if !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}

		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("%w: too many results", ErrArgumentMismatch)
	}
}

// indirect dereferences pointers and interfaces down to a concrete value.
func indirect(rv reflect.Value) (reflect.Value, error) {
	if !rv.IsValid() {
		return rv, ErrNilTarget
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, ErrNilTarget
		}

		rv = rv.Elem()
	}

	return rv, nil
}
