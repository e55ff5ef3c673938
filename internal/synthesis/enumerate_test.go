package synthesis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"eidos/internal/lang"
	"eidos/internal/primitives"
)

// countSize enumerates all trees of exactly the given size and checks that
// no two render identically.
func countSize(t *testing.T, s *Synthesizer, size int) int {
	t.Helper()
	seen := make(map[string]bool)
	count := 0
	s.Enumerate(size, func(n *lang.Node) bool {
		code := n.Render()
		if seen[code] {
			t.Fatalf("size %d: duplicate candidate %q", size, code)
		}
		seen[code] = true
		count++
		return true
	})
	return count
}

func TestEnumerateLeafCount(t *testing.T) {
	reg := primitives.NewBaseRegistry()
	s := New(reg)

	want := reg.Len() + MaxVars + len(enumConstants)
	if got := countSize(t, s, 1); got != want {
		t.Errorf("size-1 candidates = %d, want %d", got, want)
	}
}

// Size-n counts follow from the composition formula: every arity-k
// primitive contributes, per ordered composition of n-1 into k positive
// parts, the product of the child-subtree counts.
func TestEnumerateCountsMatchFormula(t *testing.T) {
	reg := primitives.NewBaseRegistry()
	s := New(reg)

	c1 := reg.Len() + MaxVars + len(enumConstants)
	var arity1, arity2 int
	for _, name := range reg.Names() {
		a, err := reg.ArityOf(name)
		if err != nil {
			t.Fatalf("ArityOf(%q): %v", name, err)
		}
		switch a {
		case 1:
			arity1++
		case 2:
			arity2++
		}
	}

	// Size 2: only arity-1 ops fit (composition of 1 into 1 part).
	want2 := arity1 * c1
	if got := countSize(t, s, 2); got != want2 {
		t.Errorf("size-2 candidates = %d, want %d", got, want2)
	}

	// Size 3: arity-1 over size-2 children, arity-2 over (1,1); arity-3
	// ops need at least 3 child nodes and contribute nothing yet.
	want3 := arity1*want2 + arity2*c1*c1
	if got := countSize(t, s, 3); got != want3 {
		t.Errorf("size-3 candidates = %d, want %d", got, want3)
	}
}

func TestEnumerateLeafOrder(t *testing.T) {
	reg := primitives.NewBaseRegistry()
	s := New(reg)

	var got []string
	s.Enumerate(1, func(n *lang.Node) bool {
		got = append(got, n.Render())
		return len(got) < 4
	})
	// Sorted primitive names first; "add" sorts ahead of everything else.
	want := []string{"add", "and", "compose", "cons"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("leaf order mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerateEarlyStop(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	count := 0
	finished := s.Enumerate(3, func(n *lang.Node) bool {
		count++
		return count < 10
	})
	if finished {
		t.Error("Enumerate reported completion despite early stop")
	}
	if count != 10 {
		t.Errorf("yield called %d times, want 10", count)
	}
}

func TestCompositions(t *testing.T) {
	collect := func(n, k int) [][]int {
		var out [][]int
		compositions(n, k, func(parts []int) bool {
			cp := make([]int, len(parts))
			copy(cp, parts)
			out = append(out, cp)
			return true
		})
		return out
	}

	tests := []struct {
		name string
		n, k int
		want [][]int
	}{
		{"3 into 2", 3, 2, [][]int{{1, 2}, {2, 1}}},
		{"4 into 3", 4, 3, [][]int{{1, 1, 2}, {1, 2, 1}, {2, 1, 1}}},
		{"2 into 2", 2, 2, [][]int{{1, 1}}},
		{"too few to split", 2, 3, nil},
		{"zero parts", 3, 0, nil},
		{"4 into 2", 4, 2, [][]int{{1, 3}, {2, 2}, {3, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.n, tt.k)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("compositions(%d, %d) mismatch (-want +got):\n%s", tt.n, tt.k, diff)
			}
		})
	}
}
