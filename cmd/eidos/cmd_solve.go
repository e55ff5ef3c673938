package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eidos/internal/meta/store"
	"eidos/internal/runtime"
)

var learnFlag bool

var solveCmd = &cobra.Command{
	Use:   "solve [examples.json]",
	Short: "Synthesize a program consistent with input/output examples",
	Long: `Loads an example set, lets the meta-strategy selector pick a search
engine, and prints the first program found. With --learn, a program that
also matches its held-out examples is registered as a new primitive and
persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().BoolVar(&learnFlag, "learn", false, "register a generalizing result as a new primitive")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	examples, err := loadExamples(args[0])
	if err != nil {
		return err
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Info("solving", zap.Int("examples", len(examples)))
	res := rt.SolveProblem(ctx, examples)
	if res == nil {
		fmt.Println("no program found")
		return nil
	}

	fmt.Printf("program:     %s\n", res.Code)
	fmt.Printf("cost:        %d\n", res.Cost)
	fmt.Printf("satisfied:   %d\n", res.ExamplesSatisfied)
	fmt.Printf("generalizes: %v\n", res.Generalizes)

	if learnFlag && res.Generalizes {
		added := rt.ExpandCapabilities()
		for _, name := range added {
			fmt.Printf("learned:     %s\n", name)
		}
		if cfg.Meta.PersistStats && len(added) > 0 {
			st, err := store.Open(workspace)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, name := range added {
				if err := st.SaveLearnedProgram(name, res.Code, res.Cost, res.Generalizes); err != nil {
					logger.Warn("failed to persist learned program", zap.String("name", name), zap.Error(err))
				}
			}
			if err := st.SaveSnapshot(rt.Selector()); err != nil {
				logger.Warn("failed to persist strategy stats", zap.Error(err))
			}
		}
	}
	return nil
}
