package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eidos/internal/evolution"
	"eidos/internal/primitives"
	"eidos/internal/runtime"
)

var (
	generationsFlag int
	seedFlag        int64
)

var evolveCmd = &cobra.Command{
	Use:   "evolve [examples.json]",
	Short: "Evolve a program toward the examples with genetic programming",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvolve,
}

func init() {
	evolveCmd.Flags().IntVar(&generationsFlag, "generations", 0, "generations to run (default from config)")
	evolveCmd.Flags().Int64Var(&seedFlag, "seed", 0, "random seed (0 = clock)")
}

func runEvolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	examples, err := loadExamples(args[0])
	if err != nil {
		return err
	}

	generations := cfg.Evolution.Generations
	if generationsFlag > 0 {
		generations = generationsFlag
	}

	reg := primitives.NewBaseRegistry()
	eng := evolution.New(evolution.Config{
		PopulationSize: cfg.Evolution.PopulationSize,
		MutationRate:   cfg.Evolution.MutationRate,
		CrossoverRate:  cfg.Evolution.CrossoverRate,
		TournamentSize: cfg.Evolution.TournamentSize,
		MaxDepth:       cfg.Evolution.MaxDepth,
		Parallelism:    cfg.Evolution.Parallelism,
		Seed:           seedFlag,
	})
	eng.InitializePopulation(cfg.Evolution.MaxDepth)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Info("evolving",
		zap.Int("examples", len(examples)),
		zap.Int("generations", generations),
		zap.Int("population", cfg.Evolution.PopulationSize))

	best := eng.RunEvolutionContext(ctx, runtime.FitnessFromExamples(reg, examples), generations)
	if best == nil {
		fmt.Println("no individual evolved")
		return nil
	}

	fmt.Printf("best:        %s\n", best.AST.Render())
	fmt.Printf("fitness:     %.0f/%d\n", best.Fitness, len(examples))
	fmt.Printf("size:        %d\n", best.AST.Size())
	fmt.Printf("generations: %d\n", eng.Generation())
	return nil
}
