// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import "fmt"

// Result-value coercions. Engine results arrive loosely typed: an in-process
// engine hands back native Go values, while the wire transports JSON-decode
// into []any / float64 / bool. The protocol steps coerce through these
// helpers and report anything else as a TypeError.

// lengthsFromSize converts the engine's dimension vector, a slice of
// floating-point magnitudes, into integer dimension lengths. Each entry is
// narrowed by truncation; entries are expected to be exact non-negative
// integers, and a fractional or out-of-range value silently truncates.
func lengthsFromSize(size []float64) []int {
	lengths := make([]int, len(size))
	for i, v := range size {
		lengths[i] = int(v)
	}
	return lengths
}

// floatSlice coerces a result value into a flat []float64.
func floatSlice(v any) ([]float64, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case []float64:
		return append([]float64(nil), vv...), nil
	case []any:
		out := make([]float64, len(vv))
		for i, e := range vv {
			f, ok := e.(float64)
			if !ok {
				return nil, &TypeError{Want: "numeric array", Got: v}
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, &TypeError{Want: "numeric array", Got: v}
	}
}

// boolValue coerces a result value into a bool. The engine may answer a
// logical scalar as a bare bool or as a one-element logical array.
func boolValue(v any) (bool, error) {
	switch vv := v.(type) {
	case bool:
		return vv, nil
	case []bool:
		if len(vv) > 0 {
			return vv[0], nil
		}
	case []any:
		if len(vv) > 0 {
			if b, ok := vv[0].(bool); ok {
				return b, nil
			}
		}
	}
	return false, &TypeError{Want: "logical", Got: v}
}

// stringValue coerces a result value into a string.
func stringValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Want: "string", Got: v}
	}
	return s, nil
}

// firstResult extracts the single value of a one-result evaluation.
func firstResult(results []any) (any, error) {
	if len(results) != 1 {
		return nil, fmt.Errorf("%w: expected 1 result, got %d",
			ErrMalformedResult, len(results))
	}
	return results[0], nil
}
