package meta

import (
	"fmt"
	"strings"
	"time"

	"eidos/internal/lang"
	"eidos/internal/logging"
	"eidos/internal/synthesis"
)

// minSampleForHybrid is the minimum number of successful programs needed
// before a hybrid strategy can be derived from them.
const minSampleForHybrid = 5

// patternThreshold marks an operator as "common" when it appears in at
// least this fraction of a sample of past successes.
const patternThreshold = 0.3

// patternOps are the operators pattern extraction looks for in rendered
// program code.
var patternOps = []string{"map", "filter", "reduce", "if", "compose"}

// Pattern is a recurring operator observed across successful programs.
type Pattern struct {
	Operator  string
	Frequency int
}

// ExtractPatterns scans rendered code of past successes for operators that
// recur in at least patternThreshold of them.
func ExtractPatterns(sample []*synthesis.Result) []Pattern {
	counts := make(map[string]int)
	for _, res := range sample {
		for _, op := range patternOps {
			if strings.Contains(res.Code, op) {
				counts[op]++
			}
		}
	}

	threshold := float64(len(sample)) * patternThreshold
	var patterns []Pattern
	for _, op := range patternOps {
		if c := counts[op]; float64(c) >= threshold && c > 0 {
			patterns = append(patterns, Pattern{Operator: op, Frequency: c})
		}
	}
	return patterns
}

// DeriveHybrid builds and registers a new strategy from the operator
// patterns of past successful programs. The hybrid tries its stored
// patterns first, then falls back to the registered "enumerative"
// strategy. Returns an error when the sample is too small or shows no
// recurring patterns.
func (s *Selector) DeriveHybrid(sample []*synthesis.Result) (*Strategy, error) {
	if len(sample) < minSampleForHybrid {
		return nil, fmt.Errorf("derive hybrid: need at least %d successful programs, got %d",
			minSampleForHybrid, len(sample))
	}

	patterns := ExtractPatterns(sample)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("derive hybrid: no recurring operator patterns in sample")
	}

	s.mu.Lock()
	name := fmt.Sprintf("learned_hybrid_%d", len(s.strategies))
	s.mu.Unlock()

	fn := func(examples []lang.IOExample, timeout time.Duration) *synthesis.Result {
		for _, p := range patterns {
			if res := s.tryPattern(p, examples); res != nil {
				return res
			}
		}
		enum, err := s.Strategy("enumerative")
		if err != nil {
			return nil
		}
		return enum.Fn(examples, timeout)
	}

	if err := s.RegisterStrategy(name, fn); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.hybridPatterns[name] = patterns
	strat := s.strategies[name]
	s.mu.Unlock()

	logging.Meta("derived hybrid strategy %q from %d patterns", name, len(patterns))
	return strat, nil
}

// tryPattern attempts pattern-directed synthesis for one operator pattern.
// Pattern application always declines for now; the hybrid's value is its
// ordering and fallback.
func (s *Selector) tryPattern(p Pattern, examples []lang.IOExample) *synthesis.Result {
	_ = p
	_ = examples
	return nil
}

// HybridPatterns returns the patterns behind a derived hybrid strategy.
func (s *Selector) HybridPatterns(name string) []Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()
	patterns := s.hybridPatterns[name]
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}
