package primitives

import (
	"fmt"

	"eidos/internal/lang"
)

// Program is a compiled tree: a closure from input arguments to a value.
// Faults during evaluation come back as *EvalError, never as panics.
type Program func(args []lang.Value) (lang.Value, error)

// Compile lowers an AST into an executable closure against the given
// registry. Unknown operator names and arity mismatches are rejected here,
// once, so evaluation never needs to re-validate structure. The registry is
// captured by reference: primitives registered after compilation are not
// visible to an already compiled program, but are visible to the next
// Compile call.
func Compile(n *lang.Node, reg *Registry) (Program, error) {
	eval, err := compileNode(n, reg)
	if err != nil {
		return nil, err
	}
	return func(args []lang.Value) (out lang.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				out = nil
				err = evalErrf("program", "panic: %v", r)
			}
		}()
		return eval(args)
	}, nil
}

type evalFn func(args []lang.Value) (lang.Value, error)

func compileNode(n *lang.Node, reg *Registry) (evalFn, error) {
	if n == nil {
		return nil, fmt.Errorf("compile: nil node")
	}

	switch n.Kind {
	case lang.KindVar:
		idx := n.Index
		if idx < 0 {
			return nil, fmt.Errorf("compile: negative var index %d", idx)
		}
		return func(args []lang.Value) (lang.Value, error) {
			if idx >= len(args) {
				return nil, evalErrf("arg", "%w: arg%d with %d inputs", ErrArgRange, idx, len(args))
			}
			return args[idx], nil
		}, nil

	case lang.KindConst:
		lit := n.Lit
		return func([]lang.Value) (lang.Value, error) {
			return lit, nil
		}, nil

	case lang.KindPrim:
		p, err := reg.Lookup(n.Op)
		if err != nil {
			return nil, err
		}
		fn := applicable(p)
		return func([]lang.Value) (lang.Value, error) {
			return fn, nil
		}, nil

	case lang.KindApply:
		p, err := reg.Lookup(n.Op)
		if err != nil {
			return nil, err
		}
		if len(n.Children) != p.Arity {
			return nil, fmt.Errorf("compile %q: %w: %d children, arity %d",
				n.Op, ErrArityMismatch, len(n.Children), p.Arity)
		}
		children := make([]evalFn, len(n.Children))
		for i, c := range n.Children {
			cf, err := compileNode(c, reg)
			if err != nil {
				return nil, err
			}
			children[i] = cf
		}
		if n.Op == "if" {
			return compileIf(children), nil
		}
		fn := p.Fn
		op := n.Op
		return func(args []lang.Value) (lang.Value, error) {
			vals := make([]lang.Value, len(children))
			for i, cf := range children {
				v, err := cf(args)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			out, err := fn(vals)
			if err != nil {
				return nil, wrapEval(op, err)
			}
			return out, nil
		}, nil
	}
	return nil, fmt.Errorf("compile: unknown node kind %d", n.Kind)
}

// compileIf short-circuits: the condition decides which single branch is
// evaluated.
func compileIf(children []evalFn) evalFn {
	return func(args []lang.Value) (lang.Value, error) {
		cond, err := children[0](args)
		if err != nil {
			return nil, err
		}
		if lang.Truthy(cond) {
			return children[1](args)
		}
		return children[2](args)
	}
}

// applicable wraps a primitive as a first-class Func with an arity check,
// so trees that evaluate to a bare primitive can be applied by map, filter,
// reduce, compose and fix.
func applicable(p Primitive) Func {
	return func(args []lang.Value) (lang.Value, error) {
		if len(args) != p.Arity {
			return nil, evalErrf(p.Name, "expected %d arguments, got %d", p.Arity, len(args))
		}
		return p.Fn(args)
	}
}

func wrapEval(op string, err error) error {
	if _, ok := err.(*EvalError); ok {
		return err
	}
	return evalErr(op, err)
}
