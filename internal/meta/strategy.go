// Package meta implements the meta-strategy selector: a registry of named
// synthesis strategies, a learned mapping from problem signatures to the
// strategy that solved them fastest, running performance statistics, and
// derivation of hybrid strategies from recurring operator patterns in past
// successes.
package meta

import (
	"errors"
	"fmt"
	"time"

	"eidos/internal/lang"
	"eidos/internal/synthesis"
)

// ErrUnknownStrategy is returned when a caller names a strategy that was
// never registered. Unlike search exhaustion, this is a programming error
// and fails loudly.
var ErrUnknownStrategy = errors.New("unknown strategy")

// SynthFunc is the search function a strategy owns. The timeout is
// advisory: it is recorded for statistics and handed to the strategy, which
// may or may not honor it. Wall-clock enforcement belongs to the caller.
type SynthFunc func(examples []lang.IOExample, timeout time.Duration) *synthesis.Result

// Strategy wraps a synthesizer with running performance counters.
type Strategy struct {
	Name           string
	Fn             SynthFunc
	SuccessCount   int
	FailureCount   int
	TotalTime      time.Duration
	AvgProgramSize float64
}

// SuccessRate returns successes over total attempts, 0 when unused.
func (s *Strategy) SuccessRate() float64 {
	total := s.SuccessCount + s.FailureCount
	if total == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(total)
}

// AvgTime returns mean time per attempt, success or not.
func (s *Strategy) AvgTime() time.Duration {
	total := s.SuccessCount + s.FailureCount
	if total == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(total)
}

// Signature is the coarse shape of a synthesis problem, used to memoize
// strategy choice. Not persisted unless explicitly exported.
type Signature struct {
	NumExamples   int
	NumInputTypes int
	OutputType    string
}

// Key renders the signature as a map key.
func (s Signature) Key() string {
	return fmt.Sprintf("%d_%d_%s", s.NumExamples, s.NumInputTypes, s.OutputType)
}

// SignatureOf derives a problem signature from an example set: the example
// count, the number of distinct input types in the first example, and the
// output type name.
func SignatureOf(examples []lang.IOExample) Signature {
	sig := Signature{NumExamples: len(examples), OutputType: "unknown"}
	if len(examples) == 0 {
		return sig
	}
	seen := make(map[string]bool)
	for _, in := range examples[0].Inputs {
		seen[typeName(in)] = true
	}
	sig.NumInputTypes = len(seen)
	sig.OutputType = typeName(examples[0].Output)
	return sig
}

func typeName(v lang.Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case int:
		return "int"
	case bool:
		return "bool"
	case []lang.Value:
		return "list"
	}
	return fmt.Sprintf("%T", v)
}

// Attempt is one entry in the unbounded attempt history.
type Attempt struct {
	ID          string
	Signature   string
	Strategy    string
	Success     bool
	Elapsed     time.Duration
	ProgramSize int
	Err         string
}
