package lang

import (
	"fmt"
	"strings"
)

// Value is a runtime value in the interpreted language: an int, a bool, a
// []Value list, an applicable function, or nil. The interpreter is
// dynamically typed; type mismatches surface as evaluation errors, not
// panics.
type Value = any

// IOExample is a single input/output example for synthesis. Immutable once
// created; comparisons are structural.
type IOExample struct {
	Inputs []Value
	Output Value
}

// Example is a convenience constructor for IOExample.
func Example(output Value, inputs ...Value) IOExample {
	return IOExample{Inputs: inputs, Output: output}
}

// ValuesEqual reports deep structural equality between runtime values.
// Function values never compare equal. Bools and ints are distinct types
// and never equal each other.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// CloneValue deep-copies a value. Only lists need copying; scalars and
// functions are returned as-is.
func CloneValue(v Value) Value {
	list, ok := v.([]Value)
	if !ok {
		return v
	}
	cp := make([]Value, len(list))
	for i, e := range list {
		cp[i] = CloneValue(e)
	}
	return cp
}

// Truthy converts a value to a boolean the way the interpreter's control
// primitives see it: false, 0, nil and the empty list are falsy,
// everything else is truthy.
func Truthy(v Value) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case bool:
		return tv
	case int:
		return tv != 0
	case []Value:
		return len(tv) > 0
	}
	return true
}

// FormatValue renders a value for code output and logs.
func FormatValue(v Value) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case []Value:
		parts := make([]string, len(tv))
		for i, e := range tv {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", tv)
	}
}
