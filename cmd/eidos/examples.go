package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"eidos/internal/lang"
)

// exampleFile is the on-disk JSON shape for example sets:
// [{"inputs": [0], "output": 1}, ...]
type exampleEntry struct {
	Inputs []json.RawMessage `json:"inputs"`
	Output json.RawMessage   `json:"output"`
}

// loadExamples reads an example set from a JSON file.
func loadExamples(path string) ([]lang.IOExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples %s: %w", path, err)
	}

	var entries []exampleEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse examples %s: %w", path, err)
	}

	examples := make([]lang.IOExample, 0, len(entries))
	for i, e := range entries {
		ex := lang.IOExample{Inputs: make([]lang.Value, 0, len(e.Inputs))}
		for _, raw := range e.Inputs {
			v, err := decodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("example %d: %w", i, err)
			}
			ex.Inputs = append(ex.Inputs, v)
		}
		out, err := decodeValue(e.Output)
		if err != nil {
			return nil, fmt.Errorf("example %d output: %w", i, err)
		}
		ex.Output = out
		examples = append(examples, ex)
	}
	return examples, nil
}

// decodeValue maps JSON values onto interpreter values. Whole numbers
// become ints; fractional numbers are rejected since the language has no
// float type.
func decodeValue(raw json.RawMessage) (lang.Value, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return convertValue(v)
}

func convertValue(v any) (lang.Value, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return tv, nil
	case float64:
		if tv != math.Trunc(tv) {
			return nil, fmt.Errorf("non-integer number %v not supported", tv)
		}
		return int(tv), nil
	case []any:
		out := make([]lang.Value, len(tv))
		for i, e := range tv {
			cv, err := convertValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
