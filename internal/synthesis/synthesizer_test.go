package synthesis

import (
	"context"
	"testing"

	"eidos/internal/lang"
	"eidos/internal/primitives"
)

func incrementExamples() []lang.IOExample {
	return []lang.IOExample{
		lang.Example(1, 0),
		lang.Example(2, 1),
		lang.Example(6, 5),
		lang.Example(11, 10),
	}
}

func TestSynthesizeIncrement(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	res := s.Synthesize(incrementExamples(), 5000, 8)
	if res == nil {
		t.Fatal("Synthesize returned nil")
	}
	if res.Cost > 3 {
		t.Errorf("cost = %d, want <= 3 (got %s)", res.Cost, res.Code)
	}
	if !res.Generalizes {
		t.Errorf("program %s does not generalize", res.Code)
	}
	if res.ExamplesSatisfied == 0 {
		t.Error("ExamplesSatisfied = 0")
	}

	out, err := res.Program([]lang.Value{100})
	if err != nil {
		t.Fatalf("eval on unseen input: %v", err)
	}
	if !lang.ValuesEqual(out, 101) {
		t.Errorf("program(100) = %v, want 101", out)
	}
}

func TestSynthesizeIdentityIsSizeMinimal(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	examples := []lang.IOExample{
		lang.Example(3, 3),
		lang.Example(7, 7),
	}
	res := s.Synthesize(examples, 1000, 5)
	if res == nil {
		t.Fatal("Synthesize returned nil")
	}
	if res.Cost != 1 {
		t.Errorf("cost = %d, want 1 (smaller programs are tried first)", res.Cost)
	}
	if !res.AST.Equal(lang.Var(0)) {
		t.Errorf("AST = %s, want arg0", res.Code)
	}
	if !res.Generalizes {
		t.Error("identity should match its held-out example")
	}
}

func TestSynthesizeBoundaries(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	examples := incrementExamples()

	if res := s.Synthesize(examples, 0, 8); res != nil {
		t.Errorf("budget 0: got %s, want nil", res.Code)
	}
	if res := s.Synthesize(examples, 5000, 0); res != nil {
		t.Errorf("maxSize 0: got %s, want nil", res.Code)
	}
	if res := s.Synthesize(nil, 5000, 8); res != nil {
		t.Errorf("no examples: got %s, want nil", res.Code)
	}
}

func TestSynthesizeBudgetExhausted(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	// The increment program sits well past candidate 10.
	if res := s.Synthesize(incrementExamples(), 10, 8); res != nil {
		t.Errorf("got %s within budget 10, want nil", res.Code)
	}
}

func TestSynthesizeContextCancelled(t *testing.T) {
	s := New(primitives.NewBaseRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := s.SynthesizeContext(ctx, incrementExamples(), 5000, 8); res != nil {
		t.Errorf("got %s with cancelled context, want nil", res.Code)
	}
}

func TestSplitExamples(t *testing.T) {
	mk := func(n int) []lang.IOExample {
		out := make([]lang.IOExample, n)
		for i := range out {
			out[i] = lang.Example(i, i)
		}
		return out
	}

	tests := []struct {
		n         int
		wantTrain int
		wantHeld  int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{3, 2, 1},
		{4, 2, 2},
		{6, 4, 2},
	}
	for _, tt := range tests {
		train, held := splitExamples(mk(tt.n))
		if len(train) != tt.wantTrain || len(held) != tt.wantHeld {
			t.Errorf("splitExamples(%d) = %d train, %d held; want %d/%d",
				tt.n, len(train), len(held), tt.wantTrain, tt.wantHeld)
		}
	}
}

func TestLearnedTracking(t *testing.T) {
	s := New(primitives.NewBaseRegistry())

	// Identity matches training but misses the held-out example.
	noGen := []lang.IOExample{
		lang.Example(0, 0),
		lang.Example(5, 1),
	}
	res := s.Synthesize(noGen, 1000, 3)
	if res == nil {
		t.Fatal("Synthesize returned nil")
	}
	if res.Generalizes {
		t.Errorf("%s should not generalize to f(1)=5", res.Code)
	}

	if res := s.Synthesize(incrementExamples(), 5000, 8); res == nil {
		t.Fatal("increment synthesis failed")
	}

	if got := len(s.Learned()); got != 2 {
		t.Errorf("Learned() has %d entries, want 2", got)
	}
	abstractions := s.LearnedAbstractions()
	if len(abstractions) != 1 {
		t.Fatalf("LearnedAbstractions() has %d entries, want 1", len(abstractions))
	}
	if !abstractions[0].Generalizes {
		t.Error("LearnedAbstractions returned a non-generalizing result")
	}
}

// Results found later are visible to searches through the shared registry
// once registered; the synthesizer itself must pick up names added after
// construction.
func TestSynthesizeSeesNewPrimitives(t *testing.T) {
	reg := primitives.NewBaseRegistry()
	s := New(reg)

	err := reg.Register("always42", 1, func(args []lang.Value) (lang.Value, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	examples := []lang.IOExample{
		lang.Example(42, 7),
		lang.Example(42, 9),
	}
	res := s.Synthesize(examples, 5000, 4)
	if res == nil {
		t.Fatal("Synthesize returned nil")
	}
	if res.Cost > 2 {
		t.Errorf("cost = %d for constant function, want <= 2 (%s)", res.Cost, res.Code)
	}
}
