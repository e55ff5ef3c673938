// Package runtime wires the search engines together: the shared primitive
// registry, the enumerative synthesizer, the genetic engine, the
// meta-strategy selector and a verifier. It also owns capability
// expansion: learned programs that generalize are registered back into the
// registry, where the very next search call can build on them.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"eidos/internal/config"
	"eidos/internal/evolution"
	"eidos/internal/lang"
	"eidos/internal/logging"
	"eidos/internal/meta"
	"eidos/internal/primitives"
	"eidos/internal/synthesis"
	"eidos/internal/verification"
)

// Runtime is the integrated system.
type Runtime struct {
	cfg      *config.Config
	reg      *primitives.Registry
	synth    *synthesis.Synthesizer
	selector *meta.Selector
	verifier verification.Verifier

	mu          sync.Mutex
	initialCaps map[string]bool
	learned     []*synthesis.Result
	// expanded marks how many learned results have already been through
	// capability expansion.
	expanded   int
	generation int
}

// New builds a runtime from configuration: base registry, synthesizer,
// selector, and the two built-in strategies.
func New(cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	reg := primitives.NewBaseRegistry()
	rt := &Runtime{
		cfg:         cfg,
		reg:         reg,
		synth:       synthesis.New(reg),
		selector:    meta.NewSelector(),
		verifier:    verification.ExampleVerifier{},
		initialCaps: make(map[string]bool),
	}
	for _, name := range reg.Names() {
		rt.initialCaps[name] = true
	}

	err := rt.selector.RegisterStrategy("enumerative",
		func(examples []lang.IOExample, timeout time.Duration) *synthesis.Result {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return rt.synth.SynthesizeContext(ctx, examples,
				cfg.Synthesis.ProgramBudget, cfg.Synthesis.MaxProgramSize)
		})
	if err != nil {
		return nil, err
	}

	err = rt.selector.RegisterStrategy("genetic",
		func(examples []lang.IOExample, timeout time.Duration) *synthesis.Result {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return rt.geneticSynthesize(ctx, examples)
		})
	if err != nil {
		return nil, err
	}

	logging.Boot("runtime initialized: %d primitives, strategies=%v",
		reg.Len(), rt.selector.StrategyNames())
	return rt, nil
}

// SetVerifier swaps the verifier; the default replays examples.
func (rt *Runtime) SetVerifier(v verification.Verifier) {
	rt.verifier = v
}

// Registry exposes the shared primitive registry.
func (rt *Runtime) Registry() *primitives.Registry { return rt.reg }

// Selector exposes the meta-strategy selector.
func (rt *Runtime) Selector() *meta.Selector { return rt.selector }

// Synthesizer exposes the enumerative synthesizer.
func (rt *Runtime) Synthesizer() *synthesis.Synthesizer { return rt.synth }

// SolveProblem derives the problem signature, lets the selector pick and
// run a strategy, and verifies the result. A rejected verification verdict
// is logged, never an error. Returns nil when no program was found.
func (rt *Runtime) SolveProblem(ctx context.Context, examples []lang.IOExample) *synthesis.Result {
	if len(examples) == 0 {
		return nil
	}

	timeout := rt.cfg.MetaTimeout()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	sig := meta.SignatureOf(examples)
	res := rt.selector.AttemptSynthesis(sig, examples, timeout)
	if res == nil {
		return nil
	}

	verdict := rt.verifier.Verify(res.AST, res.Program, examples)
	if !verdict.Accepted {
		logging.VerifyWarn("program %q not accepted by %s verification", res.Code, verdict.Method)
	} else {
		logging.Verify("program %q accepted (%s)", res.Code, verdict.Method)
	}

	rt.mu.Lock()
	rt.learned = append(rt.learned, res)
	rt.mu.Unlock()
	return res
}

// geneticSynthesize evolves a population against the examples and converts
// the best individual into a synthesis result. Fitness is the number of
// examples the compiled tree reproduces.
func (rt *Runtime) geneticSynthesize(ctx context.Context, examples []lang.IOExample) *synthesis.Result {
	evo := rt.cfg.Evolution
	eng := evolution.New(evolution.Config{
		PopulationSize: evo.PopulationSize,
		MutationRate:   evo.MutationRate,
		CrossoverRate:  evo.CrossoverRate,
		TournamentSize: evo.TournamentSize,
		MaxDepth:       evo.MaxDepth,
		Parallelism:    evo.Parallelism,
	})
	eng.InitializePopulation(evo.MaxDepth)

	best := eng.RunEvolutionContext(ctx, FitnessFromExamples(rt.reg, examples), evo.Generations)
	if best == nil || best.Fitness <= 0 {
		return nil
	}

	prog, err := primitives.Compile(best.AST, rt.reg)
	if err != nil {
		return nil
	}
	satisfied := int(best.Fitness)
	return &synthesis.Result{
		Code:              best.AST.Render(),
		Program:           prog,
		AST:               best.AST.Clone(),
		Cost:              best.AST.Size(),
		ExamplesSatisfied: satisfied,
		Generalizes:       satisfied == len(examples),
	}
}

// FitnessFromExamples scores a tree by how many examples its compiled form
// reproduces. Compile failures and evaluation faults score the worst, never
// abort.
func FitnessFromExamples(reg *primitives.Registry, examples []lang.IOExample) evolution.FitnessFunc {
	return func(ast *lang.Node) float64 {
		prog, err := primitives.Compile(ast, reg)
		if err != nil {
			return 0
		}
		score := 0
		for _, ex := range examples {
			out, err := prog(ex.Inputs)
			if err == nil && lang.ValuesEqual(out, ex.Output) {
				score++
			}
		}
		return float64(score)
	}
}

// AddLearnedAsPrimitive registers a synthesized program as a new primitive
// under the given name. The arity is the number of arguments the program
// actually reads. Names are never reused; a duplicate is an explicit error.
// The new primitive is visible to every subsequent search without
// restarting the engine.
func (rt *Runtime) AddLearnedAsPrimitive(res *synthesis.Result, name string) error {
	if res == nil || res.Program == nil {
		return fmt.Errorf("add learned primitive %q: nil program", name)
	}
	arity := res.AST.MaxVarIndex() + 1
	if arity < 1 {
		arity = 1
	}
	prog := res.Program
	fn := primitives.Func(func(args []lang.Value) (lang.Value, error) {
		return prog(args)
	})
	if err := rt.reg.Register(name, arity, fn); err != nil {
		return err
	}
	logging.Registry("capability expanded: %q arity=%d from %q", name, arity, res.Code)
	return nil
}

// ExpandCapabilities registers every not-yet-expanded learned program that
// generalizes as a new primitive and returns the new names. Each learned
// result goes through expansion at most once.
func (rt *Runtime) ExpandCapabilities() []string {
	rt.mu.Lock()
	pending := make([]*synthesis.Result, len(rt.learned)-rt.expanded)
	copy(pending, rt.learned[rt.expanded:])
	rt.expanded = len(rt.learned)
	gen := rt.generation
	rt.generation++
	rt.mu.Unlock()

	var added []string
	for i, res := range pending {
		if !res.Generalizes {
			continue
		}
		name := fmt.Sprintf("learned_%d_%d", gen, i)
		if rt.reg.Has(name) {
			name = fmt.Sprintf("learned_%s", uuid.New().String()[:8])
		}
		if err := rt.AddLearnedAsPrimitive(res, name); err != nil {
			continue
		}
		added = append(added, name)
	}
	return added
}

// Capabilities lists all registered primitive names.
func (rt *Runtime) Capabilities() []string {
	return rt.reg.Names()
}

// LearnedCapabilities lists primitives added after construction.
func (rt *Runtime) LearnedCapabilities() []string {
	var out []string
	for _, name := range rt.reg.Names() {
		if !rt.initialCaps[name] {
			out = append(out, name)
		}
	}
	return out
}

// Learned returns every result produced by SolveProblem so far.
func (rt *Runtime) Learned() []*synthesis.Result {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]*synthesis.Result, len(rt.learned))
	copy(out, rt.learned)
	return out
}

// Statistics summarizes the runtime for inspection.
type Statistics struct {
	InitialCapabilities int
	CurrentCapabilities int
	LearnedPrograms     int
	Meta                meta.Insights
}

// Stats returns a snapshot of capability counts and meta-learning state.
func (rt *Runtime) Stats() Statistics {
	rt.mu.Lock()
	learned := len(rt.learned)
	rt.mu.Unlock()
	return Statistics{
		InitialCapabilities: len(rt.initialCaps),
		CurrentCapabilities: rt.reg.Len(),
		LearnedPrograms:     learned,
		Meta:                rt.selector.GetInsights(),
	}
}
