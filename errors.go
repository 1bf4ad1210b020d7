// Copyright (C) 2026, the matlabcontrol authors. All rights reserved.
// See the file LICENSE for licensing terms.

package matlabcontrol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResult indicates an engine result whose runtime type does
	// not match what a protocol step expects.
	ErrMalformedResult = errors.New("matlabcontrol: malformed engine result")

	// ErrImaginaryLength indicates an imaginary part whose length differs
	// from the real part's.
	ErrImaginaryLength = errors.New("matlabcontrol: imaginary length does not match real length")
)

// TypeError reports a result value of the wrong runtime type. It unwraps to
// ErrMalformedResult so callers can match the category with errors.Is.
type TypeError struct {
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("matlabcontrol: expected %s result, got %T", e.Want, e.Got)
}

func (e *TypeError) Unwrap() error { return ErrMalformedResult }
