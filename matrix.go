// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import "fmt"

// Matrix is an immutable N-dimensional numeric array, real or complex, held
// as flat real and imaginary parts plus per-dimension lengths. The flat
// arrays use the engine's own linearization order; this package never
// reorders elements, it only transports them.
type Matrix struct {
	real    []float64
	imag    []float64
	lengths []int
}

// NewMatrix constructs a Matrix from a flat real part, an optional flat
// imaginary part, and the ordered dimension lengths. A nil imag means the
// matrix is purely real; a non-nil imag must match real in length, anything
// else returns ErrImaginaryLength. The inputs are copied, so the caller may
// keep mutating its slices.
func NewMatrix(real, imag []float64, lengths []int) (*Matrix, error) {
	if imag != nil && len(imag) != len(real) {
		return nil, fmt.Errorf("%w: real %d, imaginary %d",
			ErrImaginaryLength, len(real), len(imag))
	}
	m := &Matrix{
		real:    append([]float64(nil), real...),
		lengths: append([]int(nil), lengths...),
	}
	if imag != nil {
		m.imag = append([]float64(nil), imag...)
	}
	return m, nil
}

// RealLinear returns a copy of the flat real part.
func (m *Matrix) RealLinear() []float64 {
	return append([]float64(nil), m.real...)
}

// ImaginaryLinear returns a copy of the flat imaginary part, or nil for a
// purely real matrix.
func (m *Matrix) ImaginaryLinear() []float64 {
	if m.imag == nil {
		return nil
	}
	return append([]float64(nil), m.imag...)
}

// HasImaginary reports whether the matrix carries an imaginary part.
func (m *Matrix) HasImaginary() bool {
	return m.imag != nil
}

// Lengths returns a copy of the ordered dimension lengths.
func (m *Matrix) Lengths() []int {
	return append([]int(nil), m.lengths...)
}

// NumElements returns the number of elements in the flat representation.
func (m *Matrix) NumElements() int {
	return len(m.real)
}

func (m *Matrix) String() string {
	return fmt.Sprintf("[Matrix elements=%d complex=%v dims=%v]",
		len(m.real), m.imag != nil, m.lengths)
}
