package primitives

import (
	"eidos/internal/lang"
)

// FixIterationCap bounds the fix combinator. A single evaluation always
// terminates: after this many iterations the last value is returned even
// when no fixpoint was reached.
const FixIterationCap = 100

func asInt(op string, v lang.Value) (int, error) {
	switch tv := v.(type) {
	case int:
		return tv, nil
	case bool:
		if tv {
			return 1, nil
		}
		return 0, nil
	}
	return 0, evalErrf(op, "expected int, got %T", v)
}

func asFunc(op string, v lang.Value) (Func, error) {
	if f, ok := v.(Func); ok {
		return f, nil
	}
	return nil, evalErrf(op, "expected function, got %T", v)
}

func call1(op string, f Func, x lang.Value) (lang.Value, error) {
	v, err := f([]lang.Value{x})
	if err != nil {
		return nil, evalErr(op, err)
	}
	return v, nil
}

func binInt(name string, fn func(x, y int) lang.Value) Func {
	return func(args []lang.Value) (lang.Value, error) {
		x, err := asInt(name, args[0])
		if err != nil {
			return nil, err
		}
		y, err := asInt(name, args[1])
		if err != nil {
			return nil, err
		}
		return fn(x, y), nil
	}
}

// installBase registers the fixed base primitive set. Arities here are the
// single source of truth for both search engines.
func installBase(r *Registry) {
	// Arithmetic. add also concatenates lists; div by zero saturates to 0.
	must(r.Register("add", 2, func(args []lang.Value) (lang.Value, error) {
		if xs, ok := args[0].([]lang.Value); ok {
			ys, ok := args[1].([]lang.Value)
			if !ok {
				return nil, evalErrf("add", "cannot add list and %T", args[1])
			}
			out := make([]lang.Value, 0, len(xs)+len(ys))
			out = append(out, xs...)
			return append(out, ys...), nil
		}
		x, err := asInt("add", args[0])
		if err != nil {
			return nil, err
		}
		y, err := asInt("add", args[1])
		if err != nil {
			return nil, err
		}
		return x + y, nil
	}))
	must(r.Register("sub", 2, binInt("sub", func(x, y int) lang.Value { return x - y })))
	must(r.Register("mul", 2, binInt("mul", func(x, y int) lang.Value { return x * y })))
	must(r.Register("div", 2, binInt("div", func(x, y int) lang.Value {
		if y == 0 {
			return 0
		}
		return x / y
	})))

	// Boolean. and/or return one of their operands, not a coerced bool.
	must(r.Register("and", 2, func(args []lang.Value) (lang.Value, error) {
		if !lang.Truthy(args[0]) {
			return args[0], nil
		}
		return args[1], nil
	}))
	must(r.Register("or", 2, func(args []lang.Value) (lang.Value, error) {
		if lang.Truthy(args[0]) {
			return args[0], nil
		}
		return args[1], nil
	}))
	must(r.Register("not", 1, func(args []lang.Value) (lang.Value, error) {
		return !lang.Truthy(args[0]), nil
	}))

	// Comparison.
	must(r.Register("eq", 2, func(args []lang.Value) (lang.Value, error) {
		return lang.ValuesEqual(args[0], args[1]), nil
	}))
	must(r.Register("gt", 2, binInt("gt", func(x, y int) lang.Value { return x > y })))
	must(r.Register("lt", 2, binInt("lt", func(x, y int) lang.Value { return x < y })))

	// Control. The compiler short-circuits Apply("if", ...); this eager form
	// is what a bare "if" leaf evaluates to when passed around as a value.
	must(r.Register("if", 3, func(args []lang.Value) (lang.Value, error) {
		if lang.Truthy(args[0]) {
			return args[1], nil
		}
		return args[2], nil
	}))
	must(r.Register("identity", 1, func(args []lang.Value) (lang.Value, error) {
		return args[0], nil
	}))

	// Higher-order.
	must(r.Register("compose", 2, func(args []lang.Value) (lang.Value, error) {
		f, err := asFunc("compose", args[0])
		if err != nil {
			return nil, err
		}
		g, err := asFunc("compose", args[1])
		if err != nil {
			return nil, err
		}
		return Func(func(inner []lang.Value) (lang.Value, error) {
			mid, err := g(inner)
			if err != nil {
				return nil, err
			}
			return f([]lang.Value{mid})
		}), nil
	}))

	// List operations. A non-list second argument to map/filter passes
	// through unchanged; reduce falls back to its initial value on any
	// fault mid-fold.
	must(r.Register("map", 2, func(args []lang.Value) (lang.Value, error) {
		f, err := asFunc("map", args[0])
		if err != nil {
			return nil, err
		}
		xs, ok := args[1].([]lang.Value)
		if !ok {
			return args[1], nil
		}
		out := make([]lang.Value, len(xs))
		for i, x := range xs {
			v, err := call1("map", f, x)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}))
	must(r.Register("filter", 2, func(args []lang.Value) (lang.Value, error) {
		f, err := asFunc("filter", args[0])
		if err != nil {
			return nil, err
		}
		xs, ok := args[1].([]lang.Value)
		if !ok {
			return args[1], nil
		}
		out := make([]lang.Value, 0, len(xs))
		for _, x := range xs {
			keep, err := call1("filter", f, x)
			if err != nil {
				return nil, err
			}
			if lang.Truthy(keep) {
				out = append(out, x)
			}
		}
		return out, nil
	}))
	must(r.Register("reduce", 3, func(args []lang.Value) (lang.Value, error) {
		f, err := asFunc("reduce", args[0])
		if err != nil {
			return nil, err
		}
		init := args[2]
		xs, ok := args[1].([]lang.Value)
		if !ok {
			return init, nil
		}
		acc := init
		for _, x := range xs {
			next, err := f([]lang.Value{acc, x})
			if err != nil {
				return init, nil
			}
			acc = next
		}
		return acc, nil
	}))
	must(r.Register("head", 1, func(args []lang.Value) (lang.Value, error) {
		if xs, ok := args[0].([]lang.Value); ok && len(xs) > 0 {
			return xs[0], nil
		}
		return nil, nil
	}))
	must(r.Register("tail", 1, func(args []lang.Value) (lang.Value, error) {
		xs, ok := args[0].([]lang.Value)
		if !ok || len(xs) == 0 {
			return []lang.Value{}, nil
		}
		out := make([]lang.Value, len(xs)-1)
		copy(out, xs[1:])
		return out, nil
	}))
	must(r.Register("cons", 2, func(args []lang.Value) (lang.Value, error) {
		out := []lang.Value{args[0]}
		if xs, ok := args[1].([]lang.Value); ok {
			out = append(out, xs...)
		}
		return out, nil
	}))

	// Bounded fixed-point combinator: iterate f until the value stops
	// changing, capped at FixIterationCap.
	must(r.Register("fix", 1, func(args []lang.Value) (lang.Value, error) {
		f, err := asFunc("fix", args[0])
		if err != nil {
			return nil, err
		}
		return Func(func(inner []lang.Value) (lang.Value, error) {
			if len(inner) != 1 {
				return nil, evalErrf("fix", "expected 1 argument, got %d", len(inner))
			}
			cur := inner[0]
			for i := 0; i < FixIterationCap; i++ {
				next, err := f([]lang.Value{cur})
				if err != nil {
					return nil, err
				}
				if lang.ValuesEqual(next, cur) {
					return cur, nil
				}
				cur = next
			}
			return cur, nil
		}), nil
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
