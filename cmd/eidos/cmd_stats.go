package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eidos/internal/meta/store"
	"eidos/internal/runtime"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persisted strategy statistics and learned programs",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(workspace)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.LoadStats(rt.Selector()); err != nil {
		return err
	}

	fmt.Println("strategies:")
	for _, s := range rt.Selector().Snapshot() {
		total := s.SuccessCount + s.FailureCount
		rate := 0.0
		if total > 0 {
			rate = float64(s.SuccessCount) / float64(total)
		}
		fmt.Printf("  %-16s success=%d failure=%d rate=%.2f total=%v avg_size=%.1f\n",
			s.Name, s.SuccessCount, s.FailureCount, rate, s.TotalTime, s.AvgProgramSize)
	}

	count, err := st.AttemptCount()
	if err != nil {
		return err
	}
	fmt.Printf("attempts recorded: %d\n", count)

	learned, err := st.LearnedPrograms()
	if err != nil {
		return err
	}
	if len(learned) > 0 {
		fmt.Println("learned programs:")
		for _, lp := range learned {
			fmt.Printf("  %-20s cost=%d generalizes=%v  %s\n", lp.Name, lp.Cost, lp.Generalizes, lp.Code)
		}
	}
	return nil
}
