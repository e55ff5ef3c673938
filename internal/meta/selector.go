package meta

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"eidos/internal/lang"
	"eidos/internal/logging"
	"eidos/internal/synthesis"
)

type successRecord struct {
	strategy    string
	elapsed     time.Duration
	programSize int
}

// Selector routes synthesis attempts to registered strategies and learns a
// per-signature mapping from what succeeds. Counters and history are only
// appended after an attempt fully resolves, so a mid-search failure can
// never leave them corrupted.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand

	strategies map[string]*Strategy
	// mapping memoizes signature key -> strategy name, recomputed on each
	// success as the strategy with the lowest mean success time for that
	// signature.
	mapping   map[string]string
	successes map[string][]successRecord
	history   []Attempt

	hybridPatterns map[string][]Pattern
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return &Selector{
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		strategies:     make(map[string]*Strategy),
		mapping:        make(map[string]string),
		successes:      make(map[string][]successRecord),
		hybridPatterns: make(map[string][]Pattern),
	}
}

// RegisterStrategy adds a named strategy. Re-registering a name is an
// explicit error.
func (s *Selector) RegisterStrategy(name string, fn SynthFunc) error {
	if name == "" {
		return fmt.Errorf("register strategy: empty name")
	}
	if fn == nil {
		return fmt.Errorf("register strategy %q: nil function", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.strategies[name]; exists {
		return fmt.Errorf("register strategy %q: already registered", name)
	}
	s.strategies[name] = &Strategy{Name: name, Fn: fn}
	logging.Meta("registered strategy %q", name)
	return nil
}

// Strategy returns the named strategy or ErrUnknownStrategy.
func (s *Selector) Strategy(name string) (*Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	strat, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return strat, nil
}

// StrategyNames returns all registered names, sorted.
func (s *Selector) StrategyNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namesLocked()
}

func (s *Selector) namesLocked() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectStrategy picks the strategy for a signature: the learned mapping if
// present, else "enumerative" if registered, else uniformly at random.
func (s *Selector) SelectStrategy(sig Signature) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.mapping[sig.Key()]; ok {
		return name
	}
	if _, ok := s.strategies["enumerative"]; ok {
		return "enumerative"
	}
	names := s.namesLocked()
	if len(names) == 0 {
		return ""
	}
	return names[s.rng.Intn(len(names))]
}

// AttemptSynthesis runs the selected strategy for the signature, times it,
// and records the outcome. A strategy that finds nothing, or panics, counts
// as a failure with its elapsed time still accumulated; the learned mapping
// is only updated on success.
func (s *Selector) AttemptSynthesis(sig Signature, examples []lang.IOExample, timeout time.Duration) *synthesis.Result {
	name := s.SelectStrategy(sig)
	strat, err := s.Strategy(name)
	if err != nil {
		logging.Meta("no strategy available for signature %s", sig.Key())
		return nil
	}

	start := time.Now()
	res, panicMsg := runStrategy(strat.Fn, examples, timeout)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	attempt := Attempt{
		ID:        uuid.New().String(),
		Signature: sig.Key(),
		Strategy:  name,
		Elapsed:   elapsed,
		Err:       panicMsg,
	}

	if res != nil {
		strat.SuccessCount++
		strat.TotalTime += elapsed
		strat.AvgProgramSize = (strat.AvgProgramSize*float64(strat.SuccessCount-1) +
			float64(res.Cost)) / float64(strat.SuccessCount)

		key := sig.Key()
		s.successes[key] = append(s.successes[key], successRecord{
			strategy:    name,
			elapsed:     elapsed,
			programSize: res.Cost,
		})
		s.updateMappingLocked(key)

		attempt.Success = true
		attempt.ProgramSize = res.Cost
		s.history = append(s.history, attempt)

		logging.Meta("strategy %q solved %s in %v (cost=%d)", name, key, elapsed, res.Cost)
		return res
	}

	strat.FailureCount++
	strat.TotalTime += elapsed
	s.history = append(s.history, attempt)
	logging.Meta("strategy %q failed on %s after %v", name, sig.Key(), elapsed)
	return nil
}

// runStrategy isolates a strategy invocation; a panic becomes a nil result.
func runStrategy(fn SynthFunc, examples []lang.IOExample, timeout time.Duration) (res *synthesis.Result, panicMsg string) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			panicMsg = fmt.Sprintf("strategy panic: %v", r)
		}
	}()
	return fn(examples, timeout), ""
}

// updateMappingLocked recomputes the mapping for a signature as the
// strategy with the lowest mean time among those that have ever succeeded
// on it. Ties break toward the name that sorts first. Failure rates are
// deliberately not considered here.
func (s *Selector) updateMappingLocked(key string) {
	records := s.successes[key]
	if len(records) == 0 {
		return
	}

	totals := make(map[string]time.Duration)
	counts := make(map[string]int)
	for _, rec := range records {
		totals[rec.strategy] += rec.elapsed
		counts[rec.strategy]++
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	var bestMean time.Duration
	for _, name := range names {
		mean := totals[name] / time.Duration(counts[name])
		if best == "" || mean < bestMean {
			best = name
			bestMean = mean
		}
	}
	s.mapping[key] = best
}

// MappedStrategy returns the learned strategy for a signature, if any.
func (s *Selector) MappedStrategy(sig Signature) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.mapping[sig.Key()]
	return name, ok
}

// History returns a copy of the full attempt log.
func (s *Selector) History() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attempt, len(s.history))
	copy(out, s.history)
	return out
}

// StrategyStats is an exported snapshot of one strategy's counters.
type StrategyStats struct {
	Name           string
	SuccessCount   int
	FailureCount   int
	TotalTime      time.Duration
	AvgProgramSize float64
}

// Snapshot returns the counters of every registered strategy, sorted by
// name. Callables are not included: they cannot be serialized.
func (s *Selector) Snapshot() []StrategyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StrategyStats, 0, len(s.strategies))
	for _, name := range s.namesLocked() {
		strat := s.strategies[name]
		out = append(out, StrategyStats{
			Name:           strat.Name,
			SuccessCount:   strat.SuccessCount,
			FailureCount:   strat.FailureCount,
			TotalTime:      strat.TotalTime,
			AvgProgramSize: strat.AvgProgramSize,
		})
	}
	return out
}

// RestoreStats overwrites a registered strategy's counters, typically from
// a persisted snapshot. The strategy must already be registered with its
// callable.
func (s *Selector) RestoreStats(st StrategyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	strat, ok := s.strategies[st.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, st.Name)
	}
	strat.SuccessCount = st.SuccessCount
	strat.FailureCount = st.FailureCount
	strat.TotalTime = st.TotalTime
	strat.AvgProgramSize = st.AvgProgramSize
	return nil
}

// Insights summarizes what the selector has learned so far.
type Insights struct {
	NumStrategies  int
	TotalAttempts  int
	ProblemsSolved int
	SuccessRate    float64
	Mappings       map[string]string
}

// GetInsights aggregates the attempt history and learned mappings.
func (s *Selector) GetInsights() Insights {
	s.mu.Lock()
	defer s.mu.Unlock()

	solved := 0
	for _, a := range s.history {
		if a.Success {
			solved++
		}
	}
	rate := 0.0
	if len(s.history) > 0 {
		rate = float64(solved) / float64(len(s.history))
	}
	mappings := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		mappings[k] = v
	}
	return Insights{
		NumStrategies:  len(s.strategies),
		TotalAttempts:  len(s.history),
		ProblemsSolved: solved,
		SuccessRate:    rate,
		Mappings:       mappings,
	}
}
