// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// fakeVar is one binding in the fake engine namespace.
type fakeVar struct {
	real    []float64
	imag    []float64
	lengths []int
}

// fakeEngine is an in-memory Engine speaking just enough MATLAB for the
// matrix protocols: real, isreal, imag, size, genvarname, reshape, clear,
// plus whole-array variable binding. It records everything it is asked to do
// so tests can assert exact commands and ordering, and injects failures for
// chosen commands.
type fakeEngine struct {
	mu     sync.Mutex
	vars   map[string]*fakeVar
	trace  []string
	failOn map[string]error // exact command -> injected failure
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		vars:   make(map[string]*fakeVar),
		failOn: make(map[string]error),
	}
}

func (e *fakeEngine) commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.trace...)
}

func (e *fakeEngine) bound(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vars[name]
	return ok
}

func (e *fakeEngine) bind(name string, v *fakeVar) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = v
}

func (e *fakeEngine) Eval(ctx context.Context, command string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = append(e.trace, command)
	if err := e.failOn[command]; err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(command, "clear ") && strings.HasSuffix(command, ";"):
		name := strings.TrimSuffix(strings.TrimPrefix(command, "clear "), ";")
		delete(e.vars, name)
		return nil

	case strings.Contains(command, " = reshape(") && strings.HasSuffix(command, ");"):
		return e.evalReshape(command)

	default:
		return fmt.Errorf("fake engine cannot evaluate %q", command)
	}
}

func (e *fakeEngine) evalReshape(command string) error {
	target, rest, _ := strings.Cut(command, " = reshape(")
	inner := strings.TrimSuffix(rest, ");")
	parts := strings.Split(inner, ", ")

	expr := parts[0]
	realVar := expr
	imagVar := ""
	if before, after, found := strings.Cut(expr, " + "); found {
		realVar = before
		imagVar = strings.TrimSuffix(after, " * i")
	}

	rv, ok := e.vars[realVar]
	if !ok {
		return fmt.Errorf("undefined variable %q", realVar)
	}
	out := &fakeVar{real: append([]float64(nil), rv.real...)}
	if imagVar != "" {
		iv, ok := e.vars[imagVar]
		if !ok {
			return fmt.Errorf("undefined variable %q", imagVar)
		}
		out.imag = append([]float64(nil), iv.real...)
	}

	if len(parts) < 2 {
		return fmt.Errorf("reshape requires dimension arguments")
	}
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("bad dimension %q: %w", p, err)
		}
		out.lengths = append(out.lengths, n)
	}

	e.vars[target] = out
	return nil
}

func (e *fakeEngine) EvalReturning(ctx context.Context, command string, nargout int) ([]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = append(e.trace, command)
	if err := e.failOn[command]; err != nil {
		return nil, err
	}
	if nargout != 1 {
		return nil, fmt.Errorf("fake engine supports nargout=1, got %d", nargout)
	}

	if strings.HasPrefix(command, "genvarname('") && strings.HasSuffix(command, "', who);") {
		base := strings.TrimSuffix(strings.TrimPrefix(command, "genvarname('"), "', who);")
		candidate := base
		for i := 1; ; i++ {
			if _, taken := e.vars[candidate]; !taken {
				return []any{candidate}, nil
			}
			candidate = base + strconv.Itoa(i)
		}
	}

	open := strings.Index(command, "(")
	if open < 0 || !strings.HasSuffix(command, ");") {
		return nil, fmt.Errorf("fake engine cannot evaluate %q", command)
	}
	fn := command[:open]
	arg := command[open+1 : len(command)-2]

	v, ok := e.vars[arg]
	if !ok {
		return nil, fmt.Errorf("undefined variable %q", arg)
	}

	switch fn {
	case "real":
		return []any{append([]float64(nil), v.real...)}, nil
	case "imag":
		return []any{append([]float64(nil), v.imag...)}, nil
	case "isreal":
		return []any{v.imag == nil}, nil
	case "size":
		size := make([]float64, len(v.lengths))
		for i, n := range v.lengths {
			size[i] = float64(n)
		}
		return []any{size}, nil
	default:
		return nil, fmt.Errorf("fake engine cannot evaluate %q", command)
	}
}

func (e *fakeEngine) SetVariable(ctx context.Context, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = append(e.trace, "set "+name)
	vals, err := floatSlice(value)
	if err != nil {
		return err
	}
	e.vars[name] = &fakeVar{
		real:    vals,
		lengths: []int{1, len(vals)},
	}
	return nil
}

// directSession runs units in process against an Engine with no transport,
// mirroring how dispatch behaves on a live connection.
type directSession struct {
	engine Engine
	mu     sync.Mutex
}

func (s *directSession) Dispatch(ctx context.Context, unit Unit) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return unit(ctx, s.engine)
}

func (s *directSession) Close() error { return nil }
