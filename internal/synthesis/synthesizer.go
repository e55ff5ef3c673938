// Package synthesis implements bottom-up enumerative program synthesis:
// generate every tree in increasing size order, compile it, and return the
// first one that reproduces all training examples. Smaller programs are
// always tried first, so the returned program is size-minimal among those
// the budget reached.
package synthesis

import (
	"context"
	"sync"

	"eidos/internal/lang"
	"eidos/internal/logging"
	"eidos/internal/primitives"
)

// MaxVars is the fixed number of positional arguments enumeration will
// reference (arg0..arg2).
const MaxVars = 3

// Result is a synthesized program together with its provenance. Results
// order by Cost ascending: smaller means simpler means preferred.
type Result struct {
	Code              string
	Program           primitives.Program
	AST               *lang.Node
	Cost              int
	ExamplesSatisfied int
	Generalizes       bool
}

// Synthesizer enumerates candidate trees against a shared registry.
// Primitives registered after construction are picked up by the next
// Synthesize call, which is how capability expansion reaches the search.
type Synthesizer struct {
	reg *primitives.Registry

	mu      sync.Mutex
	learned []*Result
}

// New returns a synthesizer over the given registry.
func New(reg *primitives.Registry) *Synthesizer {
	return &Synthesizer{reg: reg}
}

// Synthesize searches for a program consistent with the examples, trying at
// most budget candidates across all sizes up to maxSize. Returns nil when
// the search space or budget is exhausted; exhaustion is not an error.
func (s *Synthesizer) Synthesize(examples []lang.IOExample, budget, maxSize int) *Result {
	return s.SynthesizeContext(context.Background(), examples, budget, maxSize)
}

// SynthesizeContext is Synthesize with an external deadline. The context is
// checked once per enumerated candidate; a reached deadline means "no
// program found", never an error.
func (s *Synthesizer) SynthesizeContext(ctx context.Context, examples []lang.IOExample, budget, maxSize int) *Result {
	if budget <= 0 || maxSize <= 0 || len(examples) == 0 {
		return nil
	}
	timer := logging.StartTimer(logging.CategorySynthesis, "synthesize")
	defer timer.Stop()

	train, held := splitExamples(examples)

	checked := 0
	var found *Result
	for size := 1; size <= maxSize; size++ {
		s.Enumerate(size, func(ast *lang.Node) bool {
			if ctx.Err() != nil || checked >= budget {
				return false
			}
			checked++

			prog, err := primitives.Compile(ast, s.reg)
			if err != nil {
				// Candidate rejected; enumeration continues.
				return true
			}
			satisfied := 0
			for _, ex := range train {
				out, err := prog(ex.Inputs)
				if err != nil || !lang.ValuesEqual(out, ex.Output) {
					break
				}
				satisfied++
			}
			if satisfied != len(train) {
				return true
			}

			generalizes := true
			for _, ex := range held {
				out, err := prog(ex.Inputs)
				if err != nil || !lang.ValuesEqual(out, ex.Output) {
					generalizes = false
					break
				}
			}

			found = &Result{
				Code:              ast.Render(),
				Program:           prog,
				AST:               ast.Clone(),
				Cost:              size,
				ExamplesSatisfied: satisfied,
				Generalizes:       generalizes,
			}
			return false
		})
		if found != nil {
			logging.Synthesis("found program %q cost=%d generalizes=%v after %d candidates",
				found.Code, found.Cost, found.Generalizes, checked)
			s.recordLearned(found)
			return found
		}
		if checked >= budget || ctx.Err() != nil {
			logging.SynthesisDebug("search stopped at size=%d after %d candidates", size, checked)
			return nil
		}
	}
	logging.SynthesisDebug("search exhausted at maxSize=%d after %d candidates", maxSize, checked)
	return nil
}

// splitExamples takes the first 2n/3 examples as training and holds out the
// rest for the generalization check. Fewer than 2 examples means no
// held-out set.
func splitExamples(examples []lang.IOExample) (train, held []lang.IOExample) {
	if len(examples) < 2 {
		return examples, nil
	}
	split := len(examples) * 2 / 3
	return examples[:split], examples[split:]
}

func (s *Synthesizer) recordLearned(res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learned = append(s.learned, res)
}

// Learned returns every program this synthesizer has found, in discovery
// order.
func (s *Synthesizer) Learned() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Result, len(s.learned))
	copy(out, s.learned)
	return out
}

// LearnedAbstractions returns the found programs that also matched their
// held-out examples. These are the candidates for capability expansion.
func (s *Synthesizer) LearnedAbstractions() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Result
	for _, res := range s.learned {
		if res.Generalizes {
			out = append(out, res)
		}
	}
	return out
}
