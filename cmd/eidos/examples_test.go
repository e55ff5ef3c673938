package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"eidos/internal/lang"
)

func writeExamples(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "examples.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExamples(t *testing.T) {
	path := writeExamples(t, `[
		{"inputs": [0], "output": 1},
		{"inputs": [true, 2], "output": false},
		{"inputs": [[1, 2, 3]], "output": [2, 3]},
		{"inputs": [null], "output": null}
	]`)

	got, err := loadExamples(path)
	if err != nil {
		t.Fatalf("loadExamples: %v", err)
	}

	want := []lang.IOExample{
		{Inputs: []lang.Value{0}, Output: 1},
		{Inputs: []lang.Value{true, 2}, Output: false},
		{Inputs: []lang.Value{[]lang.Value{1, 2, 3}}, Output: []lang.Value{2, 3}},
		{Inputs: []lang.Value{nil}, Output: nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("examples mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExamplesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `this is not json`},
		{"fractional number", `[{"inputs": [1.5], "output": 2}]`},
		{"fractional output", `[{"inputs": [1], "output": 0.25}]`},
		{"string value", `[{"inputs": ["hello"], "output": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeExamples(t, tt.content)
			if _, err := loadExamples(path); err == nil {
				t.Error("loadExamples succeeded, want error")
			}
		})
	}
}

func TestLoadExamplesMissingFile(t *testing.T) {
	if _, err := loadExamples(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadExamplesWholeFloatsBecomeInts(t *testing.T) {
	path := writeExamples(t, `[{"inputs": [3], "output": 9}]`)
	got, err := loadExamples(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got[0].Inputs[0].(int); !ok {
		t.Errorf("input decoded as %T, want int", got[0].Inputs[0])
	}
	if _, ok := got[0].Output.(int); !ok {
		t.Errorf("output decoded as %T, want int", got[0].Output)
	}
}
