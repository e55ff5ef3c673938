package primitives

import (
	"errors"
	"sort"
	"testing"

	"eidos/internal/lang"
)

func TestBaseRegistryContents(t *testing.T) {
	r := NewBaseRegistry()

	if got, want := r.Len(), 20; got != want {
		t.Fatalf("base registry has %d primitives, want %d", got, want)
	}

	arities := map[string]int{
		"add": 2, "sub": 2, "mul": 2, "div": 2,
		"and": 2, "or": 2, "not": 1,
		"eq": 2, "gt": 2, "lt": 2,
		"if": 3, "identity": 1, "compose": 2,
		"map": 2, "filter": 2, "reduce": 3,
		"head": 1, "tail": 1, "cons": 2, "fix": 1,
	}
	for name, arity := range arities {
		got, err := r.ArityOf(name)
		if err != nil {
			t.Errorf("ArityOf(%q): %v", name, err)
			continue
		}
		if got != arity {
			t.Errorf("ArityOf(%q) = %d, want %d", name, got, arity)
		}
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewBaseRegistry()
	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	if len(names) != r.Len() {
		t.Errorf("Names() returned %d entries, Len() = %d", len(names), r.Len())
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewBaseRegistry()
	_, err := r.Lookup("frobnicate")
	if !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("Lookup(unknown) error = %v, want ErrUnknownPrimitive", err)
	}
	if _, err := r.ArityOf("frobnicate"); !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("ArityOf(unknown) error = %v, want ErrUnknownPrimitive", err)
	}
	if r.Has("frobnicate") {
		t.Error("Has(unknown) = true")
	}
}

func TestRegistryRegisterErrors(t *testing.T) {
	noop := func(args []lang.Value) (lang.Value, error) { return nil, nil }

	tests := []struct {
		name     string
		primName string
		arity    int
		fn       Func
		wantDup  bool
	}{
		{"empty name", "", 1, noop, false},
		{"negative arity", "neg", -1, noop, false},
		{"nil implementation", "nilfn", 1, nil, false},
		{"duplicate", "add", 2, noop, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBaseRegistry()
			err := r.Register(tt.primName, tt.arity, tt.fn)
			if err == nil {
				t.Fatal("Register succeeded, want error")
			}
			if tt.wantDup && !errors.Is(err, ErrDuplicatePrimitive) {
				t.Errorf("error = %v, want ErrDuplicatePrimitive", err)
			}
		})
	}
}

func TestRegistryGrowsOnly(t *testing.T) {
	r := NewBaseRegistry()
	before := r.Len()

	err := r.Register("p1", 1, func(args []lang.Value) (lang.Value, error) {
		return args[0], nil
	})
	if err != nil {
		t.Fatalf("Register(p1): %v", err)
	}
	if r.Len() != before+1 {
		t.Errorf("Len() = %d after registration, want %d", r.Len(), before+1)
	}
	if !r.Has("p1") {
		t.Error("Has(p1) = false after registration")
	}

	// Re-registering under the same name must be rejected, not replace.
	if err := r.Register("p1", 2, nil); err == nil {
		t.Error("second Register(p1) succeeded, want error")
	}
	if got, _ := r.ArityOf("p1"); got != 1 {
		t.Errorf("ArityOf(p1) = %d after rejected re-registration, want 1", got)
	}
}
