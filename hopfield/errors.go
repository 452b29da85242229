// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when sampling from a PatternSet with no patterns.
	ErrEmpty = errors.New("hopfield: empty pattern set")

	// ErrDimMismatch is returned when a pattern or probe does not have
	// the same number of units as the network or the rest of its set.
	ErrDimMismatch = errors.New("hopfield: dimension mismatch")

	// ErrInvalidEncoding is returned for a pattern value other than -1 or +1.
	ErrInvalidEncoding = errors.New("hopfield: invalid bipolar encoding")

	// ErrMaxIter is returned when recall is asked for fewer than one sweep.
	ErrMaxIter = errors.New("hopfield: max iterations must be positive")
)

func dimErr(op string, want, got int) error {
	return fmt.Errorf("%w: %s: expected %d units, got %d", ErrDimMismatch, op, want, got)
}
