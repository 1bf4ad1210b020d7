// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"context"
	"fmt"
)

// MatrixProcessor retrieves and stores engine matrices over a Session.
//
// Each GetMatrix/SetMatrix call runs as one dispatched unit of work, but the
// engine offers no transactional isolation within a unit: if the variable is
// concurrently reassigned between the protocol steps, a retrieved matrix may
// mix real, imaginary, and dimension data from different versions. That race
// is inherent to the command-channel interface and is not defended against.
type MatrixProcessor struct {
	session Session
}

// NewMatrixProcessor constructs a processor on top of session.
func NewMatrixProcessor(session Session) *MatrixProcessor {
	return &MatrixProcessor{session: session}
}

// GetMatrix retrieves the matrix bound to name in the engine namespace.
// Any failure of a protocol step aborts the read; no partial value is
// returned.
func (p *MatrixProcessor) GetMatrix(ctx context.Context, name string) (*Matrix, error) {
	v, err := p.session.Dispatch(ctx, getMatrixUnit(name))
	if err != nil {
		return nil, err
	}
	return v.(*Matrix), nil
}

// SetMatrix stores matrix under name in the engine namespace. On failure,
// partial effects are possible and not rolled back: temporary variables
// uploaded before the failing step remain bound for the caller to clear.
func (p *MatrixProcessor) SetMatrix(ctx context.Context, name string, matrix *Matrix) error {
	_, err := p.session.Dispatch(ctx, setMatrixUnit(name, matrix))
	return err
}

func (p *MatrixProcessor) String() string {
	return fmt.Sprintf("[MatrixProcessor session=%v]", p.session)
}

// getMatrixUnit builds the read protocol: fetch the real part, probe
// realness, fetch the imaginary part only for a complex value, fetch the
// dimension vector, and assemble the Matrix.
func getMatrixUnit(name string) Unit {
	return func(ctx context.Context, t Thread) (any, error) {
		res, err := t.EvalReturning(ctx, realCommand(name), 1)
		if err != nil {
			return nil, err
		}
		v, err := firstResult(res)
		if err != nil {
			return nil, err
		}
		real, err := floatSlice(v)
		if err != nil {
			return nil, fmt.Errorf("real part of %q: %w", name, err)
		}

		res, err = t.EvalReturning(ctx, isrealCommand(name), 1)
		if err != nil {
			return nil, err
		}
		v, err = firstResult(res)
		if err != nil {
			return nil, err
		}
		isReal, err := boolValue(v)
		if err != nil {
			return nil, fmt.Errorf("realness of %q: %w", name, err)
		}

		var imag []float64
		if !isReal {
			res, err = t.EvalReturning(ctx, imagCommand(name), 1)
			if err != nil {
				return nil, err
			}
			v, err = firstResult(res)
			if err != nil {
				return nil, err
			}
			imag, err = floatSlice(v)
			if err != nil {
				return nil, fmt.Errorf("imaginary part of %q: %w", name, err)
			}
		}

		res, err = t.EvalReturning(ctx, sizeCommand(name), 1)
		if err != nil {
			return nil, err
		}
		v, err = firstResult(res)
		if err != nil {
			return nil, err
		}
		size, err := floatSlice(v)
		if err != nil {
			return nil, fmt.Errorf("size of %q: %w", name, err)
		}

		return NewMatrix(real, imag, lengthsFromSize(size))
	}
}

// setMatrixUnit builds the write protocol: upload the flat parts under
// collision-free temporary names, evaluate one reshape-and-combine
// expression into the target name, then clear the temporaries that were
// actually allocated.
func setMatrixUnit(name string, matrix *Matrix) Unit {
	return func(ctx context.Context, t Thread) (any, error) {
		realVar, err := allocateName(ctx, t, name+"_real")
		if err != nil {
			return nil, err
		}
		if err := t.SetVariable(ctx, realVar, matrix.RealLinear()); err != nil {
			return nil, err
		}

		var imagVar string
		if matrix.HasImaginary() {
			imagVar, err = allocateName(ctx, t, name+"_imag")
			if err != nil {
				return nil, err
			}
			if err := t.SetVariable(ctx, imagVar, matrix.ImaginaryLinear()); err != nil {
				return nil, err
			}
		}

		if err := t.Eval(ctx, reshapeCommand(name, realVar, imagVar, matrix.Lengths())); err != nil {
			return nil, err
		}

		if err := t.Eval(ctx, clearCommand(realVar)); err != nil {
			return nil, err
		}
		if imagVar != "" {
			if err := t.Eval(ctx, clearCommand(imagVar)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// allocateName asks the engine for an identifier derived from base that is
// unbound in its namespace. Allocation and binding are separate operations,
// so a concurrent writer choosing the same base can race into the window
// between them; see the package documentation.
func allocateName(ctx context.Context, t Thread, base string) (string, error) {
	res, err := t.EvalReturning(ctx, genvarnameCommand(base), 1)
	if err != nil {
		return "", err
	}
	v, err := firstResult(res)
	if err != nil {
		return "", err
	}
	name, err := stringValue(v)
	if err != nil {
		return "", fmt.Errorf("allocating name from %q: %w", base, err)
	}
	return name, nil
}
