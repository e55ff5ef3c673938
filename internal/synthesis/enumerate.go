package synthesis

import (
	"eidos/internal/lang"
)

// enumConstants is the literal pool enumeration draws leaf constants
// from. Without constant leaves no finite-size tree can compute e.g.
// f(x)=x+1, so the pool is part of the search space, kept deliberately
// small to bound the branching factor.
var enumConstants = []lang.Value{0, 1, 2}

// Enumerate yields every AST of exactly size nodes, in a fixed
// deterministic order, until yield returns false. Size 1 yields each
// registered primitive as a leaf (sorted by name), then arg0..arg2, then
// the constant pool. Size n>1 yields, for every primitive of arity k, every ordered
// composition of n-1 into k positive parts, and for each composition the
// cartesian product of smaller subtrees. Distinct compositions or leaf
// choices never collide into the same shape, so the enumeration is complete
// and duplicate-free.
//
// Yielded trees may share subtree nodes with later candidates; callers that
// retain a tree must Clone it.
func (s *Synthesizer) Enumerate(size int, yield func(*lang.Node) bool) bool {
	if size < 1 {
		return true
	}
	if size == 1 {
		for _, name := range s.reg.Names() {
			if !yield(lang.Prim(name)) {
				return false
			}
		}
		for i := 0; i < MaxVars; i++ {
			if !yield(lang.Var(i)) {
				return false
			}
		}
		for _, c := range enumConstants {
			if !yield(lang.Const(c)) {
				return false
			}
		}
		return true
	}

	for _, name := range s.reg.Names() {
		arity, err := s.reg.ArityOf(name)
		if err != nil || arity < 1 || arity > size-1 {
			continue
		}
		op := name
		ok := compositions(size-1, arity, func(parts []int) bool {
			children := make([]*lang.Node, arity)
			return s.product(op, parts, 0, children, yield)
		})
		if !ok {
			return false
		}
	}
	return true
}

// product fills children[idx:] with subtrees of the given part sizes and
// yields one Apply node per complete combination.
func (s *Synthesizer) product(op string, parts []int, idx int, children []*lang.Node, yield func(*lang.Node) bool) bool {
	if idx == len(parts) {
		combined := make([]*lang.Node, len(children))
		copy(combined, children)
		return yield(&lang.Node{Kind: lang.KindApply, Op: op, Children: combined})
	}
	return s.Enumerate(parts[idx], func(sub *lang.Node) bool {
		children[idx] = sub
		return s.product(op, parts, idx+1, children, yield)
	})
}

// compositions yields every ordered way to write n as k positive integers.
// Order matters: (1,2) and (2,1) are distinct argument shapes.
func compositions(n, k int, yield func([]int) bool) bool {
	if k < 1 || n < k {
		return true
	}
	comp := make([]int, k)
	var rec func(rem, idx int) bool
	rec = func(rem, idx int) bool {
		if idx == k-1 {
			comp[idx] = rem
			return yield(comp)
		}
		// Leave at least one node per remaining part.
		for i := 1; i <= rem-(k-1-idx); i++ {
			comp[idx] = i
			if !rec(rem-i, idx+1) {
				return false
			}
		}
		return true
	}
	return rec(n, 0)
}
