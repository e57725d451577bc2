package accessor

import "fmt"

// Optional holds a value-like result that may be absent. A present zero
// value (Valid with Value == 0) is distinct from absence.
//
// Optional values met while walking a chain are unwrapped: an invalid
// Optional is absent and a valid one continues with its Value.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the value when present, otherwise fallback.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.Valid {
		return fallback
	}

	return o.Value
}

func (o Optional[T]) String() string {
	if !o.Valid {
		return "null"
	}

	return fmt.Sprint(o.Value)
}

func (o Optional[T]) unwrap() (any, bool) {
	return o.Value, o.Valid
}

type optionalValue interface {
	unwrap() (any, bool)
}

// normalize unwraps optional values and maps every kind of absence to nil.
func normalize(v any) any {
	if opt, ok := v.(optionalValue); ok {
		inner, valid := opt.unwrap()
		if !valid {
			return nil
		}

		v = inner
	}

	if isAbsent(v) {
		return nil
	}

	return v
}
