package evolution

import (
	"testing"

	"eidos/internal/lang"
	"eidos/internal/primitives"
)

func TestCrossoverSwapsSubtrees(t *testing.T) {
	e := New(Config{PopulationSize: 10, CrossoverRate: 1.0, TournamentSize: 3, Seed: 6})

	p1 := &Individual{ID: "p1", AST: lang.Apply("add", lang.Var(0), lang.Const(1))}
	p2 := &Individual{ID: "p2", AST: lang.Apply("mul", lang.Var(1), lang.Const(2))}

	c1, c2 := e.crossover(p1, p2)

	if c1.ID == p1.ID || c1.ID == p2.ID || c2.ID == p1.ID || c2.ID == p2.ID {
		t.Error("crossover children reuse a parent ID")
	}
	wantLineage := func(got []string, a, b string) {
		t.Helper()
		if len(got) != 2 || got[0] != a || got[1] != b {
			t.Errorf("lineage = %v, want [%s %s]", got, a, b)
		}
	}
	wantLineage(c1.ParentIDs, "p1", "p2")
	wantLineage(c2.ParentIDs, "p2", "p1")

	// Children are copies: rewriting one must not reach back into a parent.
	c1.AST.Op = "sub"
	for _, c := range c1.AST.Children {
		c.Kind = lang.KindConst
		c.Lit = 99
	}
	if !p1.AST.Equal(lang.Apply("add", lang.Var(0), lang.Const(1))) {
		t.Error("mutating a child altered parent 1")
	}
	if !p2.AST.Equal(lang.Apply("mul", lang.Var(1), lang.Const(2))) {
		t.Error("mutating a child altered parent 2")
	}
}

func TestCrossoverBelowRateClones(t *testing.T) {
	e := New(Config{PopulationSize: 10, CrossoverRate: 0, TournamentSize: 3, Seed: 8})

	p1 := &Individual{ID: "p1", AST: lang.Var(0)}
	p2 := &Individual{ID: "p2", AST: lang.Const(1)}

	c1, c2 := e.crossover(p1, p2)
	if c1.ID != "p1" || !c1.AST.Equal(p1.AST) {
		t.Errorf("c1 = %s/%s, want clone of p1", c1.ID, c1.AST.Render())
	}
	if c2.ID != "p2" || !c2.AST.Equal(p2.AST) {
		t.Errorf("c2 = %s/%s, want clone of p2", c2.ID, c2.AST.Render())
	}
	if c1 == p1 || c1.AST == p1.AST {
		t.Error("clone aliases parent 1")
	}
}

func TestMutateTracksCountAndLineage(t *testing.T) {
	e := New(Config{PopulationSize: 10, MutationRate: 1.0, TournamentSize: 3, Seed: 12})

	orig := &Individual{
		ID:        "orig",
		AST:       lang.Apply("add", lang.Var(0), lang.Const(1)),
		Mutations: 2,
	}
	got := e.mutate(orig)

	if got == orig {
		t.Fatal("mutate returned the input at rate 1.0")
	}
	if got.Mutations != 3 {
		t.Errorf("Mutations = %d, want 3", got.Mutations)
	}
	if len(got.ParentIDs) != 1 || got.ParentIDs[0] != "orig" {
		t.Errorf("ParentIDs = %v, want [orig]", got.ParentIDs)
	}
	if !orig.AST.Equal(lang.Apply("add", lang.Var(0), lang.Const(1))) {
		t.Error("mutate altered the original tree")
	}
}

func TestMutateBelowRatePassesThrough(t *testing.T) {
	e := New(Config{PopulationSize: 10, MutationRate: 0, TournamentSize: 3, Seed: 13})
	orig := &Individual{ID: "orig", AST: lang.Var(0)}
	if got := e.mutate(orig); got != orig {
		t.Error("mutate replaced the individual at rate 0")
	}
}

func TestPointMutationPreservesShape(t *testing.T) {
	e := New(Config{PopulationSize: 10, TournamentSize: 3, Seed: 14})
	orig := lang.Apply("add",
		lang.Apply("mul", lang.Var(0), lang.Const(2)),
		lang.Apply("if", lang.Var(1), lang.Const(1), lang.Var(2)))

	var shape func(n *lang.Node) []int
	shape = func(n *lang.Node) []int {
		out := []int{len(n.Children)}
		for _, c := range n.Children {
			out = append(out, shape(c)...)
		}
		return out
	}
	wantShape := shape(orig)

	for i := 0; i < 50; i++ {
		got := e.pointMutation(orig)
		if got.Size() != orig.Size() {
			t.Fatalf("iteration %d: size changed %d -> %d (%s)", i, orig.Size(), got.Size(), got.Render())
		}
		gotShape := shape(got)
		for j := range wantShape {
			if gotShape[j] != wantShape[j] {
				t.Fatalf("iteration %d: shape changed at node %d (%s)", i, j, got.Render())
			}
		}
	}
}

func TestMutationSizeBounded(t *testing.T) {
	e := New(Config{PopulationSize: 10, MutationRate: 1.0, TournamentSize: 3, Seed: 15})
	orig := &Individual{
		ID: "orig",
		AST: lang.Apply("add",
			lang.Apply("mul", lang.Var(0), lang.Const(2)),
			lang.Const(1)),
	}

	// All three mutation kinds are bounded for this input: point keeps the
	// shape, hoist shrinks, and subtree grafts a depth-2 tree (at most 13
	// nodes with arity-3 operators) in place of one subtree.
	origSize := orig.AST.Size()
	maxSize := origSize - 1 + 13
	for i := 0; i < 100; i++ {
		got := e.mutate(orig)
		if got.AST.Size() > maxSize {
			t.Fatalf("iteration %d: mutated size %d exceeds bound %d (%s)",
				i, got.AST.Size(), maxSize, got.AST.Render())
		}
	}
}

// Random trees must compile against the base registry: the evolution
// operator set is a strict subset of registered primitives.
func TestRandomTreesCompile(t *testing.T) {
	e := New(Config{PopulationSize: 10, TournamentSize: 3, Seed: 16})
	reg := primitives.NewBaseRegistry()

	for i := 0; i < 200; i++ {
		tree := e.randomTree(3, i%2 == 0)
		if _, err := primitives.Compile(tree, reg); err != nil {
			t.Fatalf("random tree %d does not compile: %s: %v", i, tree.Render(), err)
		}
	}
}

func TestEvoOperatorAritiesMatchRegistry(t *testing.T) {
	reg := primitives.NewBaseRegistry()
	for _, op := range evoPrimitives {
		arity, err := reg.ArityOf(op)
		if err != nil {
			t.Errorf("operator %q not registered: %v", op, err)
			continue
		}
		if arity != evoArity[op] {
			t.Errorf("operator %q arity %d differs from registry %d", op, evoArity[op], arity)
		}
	}
}
