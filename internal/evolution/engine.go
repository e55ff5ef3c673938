// Package evolution implements genetic programming over the shared tree
// representation: a fixed-size population of random trees evolved by
// tournament selection, subtree crossover and three mutation kinds, with
// elitism carrying the best individual forward unchanged. Individuals are
// value types: every tree crossing a generation boundary is a deep clone,
// so no parent and child ever alias.
package evolution

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eidos/internal/lang"
	"eidos/internal/logging"
)

// FitnessFunc scores a tree; higher is better. A panic during scoring is
// absorbed as fitness 0 and never aborts the run.
type FitnessFunc func(ast *lang.Node) float64

// Individual is one member of the population.
type Individual struct {
	ID        string
	AST       *lang.Node
	Fitness   float64
	Age       int
	ParentIDs []string
	Mutations int
}

// Clone deep-copies the individual, tree included.
func (ind *Individual) Clone() *Individual {
	cp := &Individual{
		ID:        ind.ID,
		AST:       ind.AST.Clone(),
		Fitness:   ind.Fitness,
		Age:       ind.Age,
		Mutations: ind.Mutations,
	}
	if ind.ParentIDs != nil {
		cp.ParentIDs = append([]string(nil), ind.ParentIDs...)
	}
	return cp
}

// Config holds the evolution parameters.
type Config struct {
	PopulationSize int
	MutationRate   float64
	CrossoverRate  float64
	TournamentSize int
	MaxDepth       int
	// Parallelism bounds concurrent fitness evaluations per generation.
	// Zero means serial, matching the reference behavior.
	Parallelism int
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		MutationRate:   0.1,
		CrossoverRate:  0.7,
		TournamentSize: 5,
		MaxDepth:       3,
	}
}

// GenerationStats records per-generation fitness aggregates.
type GenerationStats struct {
	Generation int
	AvgFitness float64
	MaxFitness float64
	BestEver   float64
}

// Engine runs the generational loop.
type Engine struct {
	cfg Config
	rng *rand.Rand

	population []*Individual
	generation int
	bestEver   *Individual
	history    []GenerationStats
}

// New returns an engine with the given configuration.
func New(cfg Config) *Engine {
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = DefaultConfig().PopulationSize
	}
	if cfg.TournamentSize <= 0 {
		cfg.TournamentSize = DefaultConfig().TournamentSize
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// InitializePopulation creates the initial random population with ramped
// half-and-half: the first half grows with early termination, the second
// half always expands to maxDepth.
func (e *Engine) InitializePopulation(maxDepth int) {
	e.population = make([]*Individual, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		full := i >= e.cfg.PopulationSize/2
		e.population = append(e.population, &Individual{
			ID:  uuid.New().String(),
			AST: e.randomTree(maxDepth, full),
		})
	}
	e.generation = 0
	e.bestEver = nil
	e.history = nil
	logging.Evolution("population initialized: size=%d maxDepth=%d", len(e.population), maxDepth)
}

// evaluateFitness scores the whole population, then applies best-ever
// tracking. With Parallelism > 0 the scoring fans out, but best-ever and
// stats are only computed after every score for the generation is known.
func (e *Engine) evaluateFitness(fit FitnessFunc) {
	if e.cfg.Parallelism > 0 {
		var g errgroup.Group
		g.SetLimit(e.cfg.Parallelism)
		for _, ind := range e.population {
			ind := ind
			g.Go(func() error {
				ind.Fitness = safeFitness(fit, ind.AST)
				return nil
			})
		}
		_ = g.Wait() // barrier: scores complete before best-ever update
	} else {
		for _, ind := range e.population {
			ind.Fitness = safeFitness(fit, ind.AST)
		}
	}

	best := e.currentBest()
	if e.bestEver == nil || best.Fitness > e.bestEver.Fitness {
		e.bestEver = best.Clone()
	}

	var sum float64
	for _, ind := range e.population {
		sum += ind.Fitness
	}
	e.history = append(e.history, GenerationStats{
		Generation: e.generation,
		AvgFitness: sum / float64(len(e.population)),
		MaxFitness: best.Fitness,
		BestEver:   e.bestEver.Fitness,
	})
}

func safeFitness(fit FitnessFunc, ast *lang.Node) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
		}
	}()
	return fit(ast)
}

// currentBest returns the fittest individual of the current population,
// ties broken by iteration order.
func (e *Engine) currentBest() *Individual {
	best := e.population[0]
	for _, ind := range e.population[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// tournament samples TournamentSize individuals without replacement and
// returns the fittest.
func (e *Engine) tournament() *Individual {
	k := e.cfg.TournamentSize
	if k > len(e.population) {
		k = len(e.population)
	}
	best := (*Individual)(nil)
	for _, idx := range e.rng.Perm(len(e.population))[:k] {
		ind := e.population[idx]
		if best == nil || ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// EvolveGeneration runs one generation: evaluate, preserve the elite, then
// refill the population from tournament-selected parents via crossover and
// mutation. Surviving individuals age by one.
func (e *Engine) EvolveGeneration(fit FitnessFunc) {
	e.evaluateFitness(fit)

	newPop := make([]*Individual, 0, e.cfg.PopulationSize)
	newPop = append(newPop, e.currentBest().Clone())

	for len(newPop) < e.cfg.PopulationSize {
		p1 := e.tournament()
		p2 := e.tournament()

		c1, c2 := e.crossover(p1, p2)
		c1 = e.mutate(c1)
		c2 = e.mutate(c2)

		newPop = append(newPop, c1)
		if len(newPop) < e.cfg.PopulationSize {
			newPop = append(newPop, c2)
		}
	}

	for _, ind := range e.population {
		ind.Age++
	}
	e.population = newPop
	e.generation++

	last := e.history[len(e.history)-1]
	logging.EvolutionDebug("generation %d: avg=%.3f max=%.3f bestEver=%.3f",
		last.Generation, last.AvgFitness, last.MaxFitness, last.BestEver)
}

// RunEvolution runs a fixed number of generations and returns the best
// individual ever seen. The population must be initialized first.
func (e *Engine) RunEvolution(fit FitnessFunc, generations int) *Individual {
	return e.RunEvolutionContext(context.Background(), fit, generations)
}

// RunEvolutionContext is RunEvolution with an external deadline, checked
// once per generation. A reached deadline returns the best so far.
func (e *Engine) RunEvolutionContext(ctx context.Context, fit FitnessFunc, generations int) *Individual {
	timer := logging.StartTimer(logging.CategoryEvolution, "run_evolution")
	defer timer.Stop()

	for i := 0; i < generations; i++ {
		if ctx.Err() != nil {
			logging.Evolution("deadline reached at generation %d", e.generation)
			break
		}
		e.EvolveGeneration(fit)
	}
	return e.bestEver
}

// Best returns the fittest individual in the current population.
func (e *Engine) Best() *Individual {
	if len(e.population) == 0 {
		return nil
	}
	return e.currentBest()
}

// BestEver returns the best individual seen across all generations.
func (e *Engine) BestEver() *Individual {
	return e.bestEver
}

// Generation returns the number of completed generations.
func (e *Engine) Generation() int {
	return e.generation
}

// Population returns the live population slice for inspection.
func (e *Engine) Population() []*Individual {
	return e.population
}

// History returns the per-generation fitness aggregates.
func (e *Engine) History() []GenerationStats {
	out := make([]GenerationStats, len(e.history))
	copy(out, e.history)
	return out
}
