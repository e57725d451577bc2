package accessor

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// convertArg converts a literal to a value assignable to t. Numbers convert
// between numeric kinds as long as the value survives the conversion;
// decimal.Decimal converts to floats, to integers when integral and to strings.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		if isNillableKind(t.Kind()) {
			return reflect.Zero(t), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: null for %s", ErrArgumentMismatch, t)
	}

	if d, ok := arg.(decimal.Decimal); ok && t != decimalType {
		converted, err := fromDecimal(d, t)
		if err != nil {
			return reflect.Value{}, err
		}

		arg = converted
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if isNumberKind(v.Kind()) && isNumberKind(t.Kind()) {
		return convertNumber(v, t)
	}

	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s for %s", ErrArgumentMismatch, v.Type(), t)
}

func fromDecimal(d decimal.Decimal, t reflect.Type) (any, error) {
	switch {
	case isFloatKind(t.Kind()):
		return d.InexactFloat64(), nil
	case isIntKind(t.Kind()) || isUintKind(t.Kind()):
		if !d.IsInteger() {
			return nil, fmt.Errorf("%w: %s is not an integer", ErrArgumentMismatch, d)
		}

		return d.IntPart(), nil
	case t.Kind() == reflect.String:
		return d.String(), nil
	default:
		return d, nil
	}
}

func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	switch {
	case isIntKind(t.Kind()):
		n, ok := integerValue(v)
		if !ok || reflect.Zero(t).OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgumentMismatch, v.Interface(), t)
		}

		return reflect.ValueOf(n).Convert(t), nil
	case isUintKind(t.Kind()):
		n, ok := integerValue(v)
		if !ok || n < 0 || reflect.Zero(t).OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgumentMismatch, v.Interface(), t)
		}

		return reflect.ValueOf(uint64(n)).Convert(t), nil
	default:
		return v.Convert(t), nil
	}
}

// integerValue returns v as int64 when it holds an integral number.
func integerValue(v reflect.Value) (int64, bool) {
	switch {
	case isIntKind(v.Kind()):
		return v.Int(), true
	case isUintKind(v.Kind()):
		u := v.Uint()
		if u > 1<<63-1 {
			return 0, false
		}

		return int64(u), true
	case isFloatKind(v.Kind()):
		f := v.Float()
		if f != float64(int64(f)) {
			return 0, false
		}

		return int64(f), true
	default:
		return 0, false
	}
}

// toIndex reads an index literal as int.
func toIndex(arg any) (int, error) {
	if d, ok := arg.(decimal.Decimal); ok {
		if !d.IsInteger() {
			return 0, fmt.Errorf("%w: %s", ErrIndexNotInteger, d)
		}

		return int(d.IntPart()), nil
	}

	v := reflect.ValueOf(arg)
	if !v.IsValid() || !(isIntKind(v.Kind()) || isUintKind(v.Kind())) {
		return 0, fmt.Errorf("%w: %T", ErrIndexNotInteger, arg)
	}

	n, ok := integerValue(v)
	if !ok || n != int64(int(n)) {
		return 0, fmt.Errorf("%w: %v overflows int", ErrIndexNotInteger, arg)
	}

	return int(n), nil
}

// convertResult converts the leaf value of a chain to T. Pointers are
// dereferenced when T is not itself a pointer type.
func convertResult[T any](value any) (T, error) {
	var zero T

	if v, ok := value.(T); ok {
		return v, nil
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(value)

	for rv.Kind() == reflect.Pointer && t.Kind() != reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
		if v, ok := rv.Interface().(T); ok {
			return v, nil
		}
	}

	if !rv.IsValid() {
		return zero, fmt.Errorf("%w: %T for %s", ErrResultType, value, t)
	}

	converted, err := convertArg(rv.Interface(), t)
	if err != nil {
		return zero, fmt.Errorf("%w: %s for %s", ErrResultType, rv.Type(), t)
	}

	return converted.Interface().(T), nil
}

func isNillableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumberKind(k reflect.Kind) bool {
	return isIntKind(k) || isUintKind(k) || isFloatKind(k)
}

// isAbsent reports whether v means "the chain stops here".
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	if isNillableKind(rv.Kind()) {
		return rv.IsNil()
	}

	return false
}
