// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthsFromSize(t *testing.T) {
	assert.Equal(t, []int{2, 3, 4}, lengthsFromSize([]float64{2, 3, 4}))
	assert.Equal(t, []int{}, lengthsFromSize(nil))
	// Narrowing truncates; exactness is the engine's contract, not checked.
	assert.Equal(t, []int{2}, lengthsFromSize([]float64{2.9}))
}

func TestFloatSlice(t *testing.T) {
	got, err := floatSlice([]float64{1.5, -2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, got)

	// JSON-decoded shape.
	got, err = floatSlice([]any{float64(1), float64(2)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	got, err = floatSlice(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = floatSlice("nope")
	require.ErrorIs(t, err, ErrMalformedResult)

	_, err = floatSlice([]any{"nope"})
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestBoolValue(t *testing.T) {
	for _, v := range []any{true, []bool{true}, []any{true}} {
		got, err := boolValue(v)
		require.NoError(t, err)
		assert.True(t, got)
	}

	_, err := boolValue(1.0)
	require.ErrorIs(t, err, ErrMalformedResult)

	_, err = boolValue([]bool{})
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestStringValue(t *testing.T) {
	got, err := stringValue("m_real1")
	require.NoError(t, err)
	assert.Equal(t, "m_real1", got)

	_, err = stringValue(7.0)
	require.ErrorIs(t, err, ErrMalformedResult)
}

func TestFirstResult(t *testing.T) {
	v, err := firstResult([]any{"x"})
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = firstResult(nil)
	require.ErrorIs(t, err, ErrMalformedResult)

	_, err = firstResult([]any{1, 2})
	require.ErrorIs(t, err, ErrMalformedResult)
}
