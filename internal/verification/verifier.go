// Package verification defines the interface the search engine hands
// finished programs to. Verification never performs proof here: it accepts
// a compiled program plus its tree and examples and returns a verdict. A
// rejected verdict is logged by the caller, never treated as an error.
package verification

import (
	"eidos/internal/lang"
	"eidos/internal/primitives"
)

// Result is a verification verdict.
type Result struct {
	Accepted bool
	Method   string
}

// Verifier checks a synthesized program. Implementations must accept any
// AST and any example list.
type Verifier interface {
	Verify(ast *lang.Node, prog primitives.Program, examples []lang.IOExample) Result
}

// ExampleVerifier replays the supplied examples: the weakest useful check,
// accepting exactly when every example reproduces.
type ExampleVerifier struct{}

// Verify replays every example through the compiled program.
func (ExampleVerifier) Verify(_ *lang.Node, prog primitives.Program, examples []lang.IOExample) Result {
	for _, ex := range examples {
		out, err := prog(ex.Inputs)
		if err != nil || !lang.ValuesEqual(out, ex.Output) {
			return Result{Accepted: false, Method: "example-based"}
		}
	}
	return Result{Accepted: true, Method: "example-based"}
}

// AcceptAll accepts every program unconditionally.
type AcceptAll struct{}

// Verify always accepts.
func (AcceptAll) Verify(*lang.Node, primitives.Program, []lang.IOExample) Result {
	return Result{Accepted: true, Method: "accept-all"}
}
