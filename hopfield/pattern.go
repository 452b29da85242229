// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"fmt"
	"strings"

	"github.com/emer/etable/etensor"
)

// Pattern is a bipolar state vector over the units of a network:
// every element is exactly -1 or +1.
type Pattern []float32

// NewPattern returns a copy of the given values as a Pattern,
// or ErrInvalidEncoding if any value is not -1 or +1.
func NewPattern(vals ...float32) (Pattern, error) {
	p := Pattern(vals).Clone()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParsePattern parses the String form of a pattern: '+' or '1' is +1,
// '-' or '0' is -1.  Any other rune is an encoding error.
func ParsePattern(s string) (Pattern, error) {
	p := make(Pattern, 0, len(s))
	for i, c := range s {
		switch c {
		case '+', '1':
			p = append(p, 1)
		case '-', '0':
			p = append(p, -1)
		default:
			return nil, fmt.Errorf("%w: rune %q at index %d", ErrInvalidEncoding, c, i)
		}
	}
	return p, nil
}

// Validate returns ErrInvalidEncoding for the first value that is not -1 or +1
func (p Pattern) Validate() error {
	for i, v := range p {
		if v != 1 && v != -1 {
			return fmt.Errorf("%w: value %v at index %d", ErrInvalidEncoding, v, i)
		}
	}
	return nil
}

// Clone returns an independent copy of the pattern
func (p Pattern) Clone() Pattern {
	if p == nil {
		return nil
	}
	cp := make(Pattern, len(p))
	copy(cp, p)
	return cp
}

// Equal returns true if both patterns have the same length and values
func (p Pattern) Equal(o Pattern) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Hamming returns the number of units that differ between the two patterns.
// Units present in only one of them (length mismatch) count as different.
func (p Pattern) Hamming(o Pattern) int {
	mn, mx := len(p), len(o)
	if mn > mx {
		mn, mx = mx, mn
	}
	d := mx - mn
	for i := 0; i < mn; i++ {
		if p[i] != o[i] {
			d++
		}
	}
	return d
}

// Overlap returns the normalized dot product of the two patterns:
// 1 for identical, -1 for inverse, 0 for orthogonal.
// Returns 0 if lengths differ or patterns are empty.
func (p Pattern) Overlap(o Pattern) float32 {
	if len(p) != len(o) || len(p) == 0 {
		return 0
	}
	var dp float32
	for i := range p {
		dp += p[i] * o[i]
	}
	return dp / float32(len(p))
}

// String returns the compact form: '+' for +1 and '-' for everything else.
// ParsePattern reverses it.
func (p Pattern) String() string {
	var sb strings.Builder
	sb.Grow(len(p))
	for _, v := range p {
		if v > 0 {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// Grid renders the pattern as rows of width units, '#' for +1 and '.' for -1,
// with a newline after each row.  A trailing partial row is still printed.
func (p Pattern) Grid(width int) string {
	if width <= 0 {
		width = len(p)
	}
	var sb strings.Builder
	for i, v := range p {
		if v > 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if (i+1)%width == 0 || i == len(p)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Tensor returns the pattern as a new float32 tensor of given shape,
// which must have the same number of elements as the pattern.
func (p Pattern) Tensor(shape []int) (*etensor.Float32, error) {
	tsr := etensor.NewFloat32(shape, nil, nil)
	if tsr.Len() != len(p) {
		return nil, dimErr("Pattern.Tensor", tsr.Len(), len(p))
	}
	copy(tsr.Values, p)
	return tsr, nil
}

// PatternFromTensor returns the values of given tensor as a validated Pattern
func PatternFromTensor(tsr etensor.Tensor) (Pattern, error) {
	n := tsr.Len()
	p := make(Pattern, n)
	for i := 0; i < n; i++ {
		p[i] = float32(tsr.FloatVal1D(i))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
