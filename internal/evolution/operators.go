package evolution

import (
	"github.com/google/uuid"

	"eidos/internal/lang"
)

// growTerminateProb is the chance a grown (non-full) tree stops early at
// any depth.
const growTerminateProb = 0.3

// evoPrimitives is the flat operator set random trees draw from. It is
// deliberately distinct from the registry: no higher-order combinators, so
// random trees stay directly evaluatable.
var evoPrimitives = []string{
	"add", "sub", "mul", "div",
	"and", "or", "not",
	"eq", "gt", "lt",
	"if", "identity",
	"map", "filter", "reduce",
	"head", "tail", "cons",
}

var evoArity = map[string]int{
	"add": 2, "sub": 2, "mul": 2, "div": 2,
	"and": 2, "or": 2, "not": 1,
	"eq": 2, "gt": 2, "lt": 2,
	"if": 3, "identity": 1,
	"map": 2, "filter": 2, "reduce": 3,
	"head": 1, "tail": 1, "cons": 2,
}

// constPool is the fixed literal set leaves sample from.
var constPool = []lang.Value{0, 1, 2, true, false}

// randomTree generates a random tree. Full trees always expand to maxDepth;
// grown trees may terminate early.
func (e *Engine) randomTree(maxDepth int, full bool) *lang.Node {
	if maxDepth <= 0 || (!full && e.rng.Float64() < growTerminateProb) {
		return e.randomLeaf()
	}
	op := evoPrimitives[e.rng.Intn(len(evoPrimitives))]
	arity := evoArity[op]
	children := make([]*lang.Node, arity)
	for i := range children {
		children[i] = e.randomTree(maxDepth-1, full)
	}
	return lang.Apply(op, children...)
}

func (e *Engine) randomLeaf() *lang.Node {
	if e.rng.Float64() < 0.5 {
		return lang.Var(e.rng.Intn(3))
	}
	return lang.Const(constPool[e.rng.Intn(len(constPool))])
}

// crossover swaps uniformly chosen subtrees between copies of the two
// parents with probability CrossoverRate, else returns plain clones. Both
// children record both parents as lineage; lineage is informational only.
func (e *Engine) crossover(p1, p2 *Individual) (*Individual, *Individual) {
	if e.rng.Float64() > e.cfg.CrossoverRate {
		return p1.Clone(), p2.Clone()
	}

	sub1 := p1.AST.Subtrees()
	sub2 := p2.AST.Subtrees()
	point1 := e.rng.Intn(len(sub1))
	point2 := e.rng.Intn(len(sub2))

	c1 := &Individual{
		ID:        uuid.New().String(),
		AST:       p1.AST.ReplaceSubtree(point1, sub2[point2]),
		ParentIDs: []string{p1.ID, p2.ID},
	}
	c2 := &Individual{
		ID:        uuid.New().String(),
		AST:       p2.AST.ReplaceSubtree(point2, sub1[point1]),
		ParentIDs: []string{p2.ID, p1.ID},
	}
	return c1, c2
}

// mutate applies one of three mutation kinds with probability MutationRate:
// point (rewrite one node in place, preserving shape), subtree (graft a
// fresh random tree), or hoist (promote a non-root subtree to the whole
// tree, which can never grow it). Unmutated individuals pass through as-is.
func (e *Engine) mutate(ind *Individual) *Individual {
	if e.rng.Float64() > e.cfg.MutationRate {
		return ind
	}

	var mutated *lang.Node
	switch e.rng.Intn(3) {
	case 0:
		mutated = e.pointMutation(ind.AST)
	case 1:
		subtrees := ind.AST.Subtrees()
		point := e.rng.Intn(len(subtrees))
		mutated = ind.AST.ReplaceSubtree(point, e.randomTree(2, false))
	default:
		subtrees := ind.AST.Subtrees()
		if len(subtrees) > 1 {
			mutated = subtrees[1+e.rng.Intn(len(subtrees)-1)].Clone()
		} else {
			mutated = ind.AST.Clone()
		}
	}

	return &Individual{
		ID:        uuid.New().String(),
		AST:       mutated,
		ParentIDs: []string{ind.ID},
		Mutations: ind.Mutations + 1,
	}
}

// pointMutation rewrites a single uniformly chosen node in place: Apply
// nodes get a new operator of the same arity, leaves are resampled.
func (e *Engine) pointMutation(ast *lang.Node) *lang.Node {
	mutated := ast.Clone()
	subtrees := mutated.Subtrees()
	node := subtrees[e.rng.Intn(len(subtrees))]

	switch node.Kind {
	case lang.KindVar:
		node.Index = e.rng.Intn(3)
	case lang.KindConst:
		node.Lit = constPool[e.rng.Intn(len(constPool))]
	case lang.KindApply:
		var candidates []string
		for _, op := range evoPrimitives {
			if op != node.Op && evoArity[op] == len(node.Children) {
				candidates = append(candidates, op)
			}
		}
		if len(candidates) > 0 {
			node.Op = candidates[e.rng.Intn(len(candidates))]
		}
	}
	return mutated
}
