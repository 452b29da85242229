// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"errors"
	"testing"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("+-10")
	if err != nil {
		t.Fatal(err)
	}
	want := Pattern{1, -1, 1, -1}
	if !p.Equal(want) {
		t.Errorf("ParsePattern: got %v, want %v", p, want)
	}
	if p.String() != "+-+-" {
		t.Errorf("String: got %q, want %q", p.String(), "+-+-")
	}
	_, err = ParsePattern("+x-")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("ParsePattern bad rune: got %v, want ErrInvalidEncoding", err)
	}
}

func TestNewPatternValidate(t *testing.T) {
	vals := []float32{1, -1, 1}
	p, err := NewPattern(vals...)
	if err != nil {
		t.Fatal(err)
	}
	vals[0] = -1
	if p[0] != 1 {
		t.Errorf("NewPattern must copy its values")
	}
	for _, bad := range [][]float32{{1, 0, -1}, {0.5}, {-1, 2}} {
		if _, err := NewPattern(bad...); !errors.Is(err, ErrInvalidEncoding) {
			t.Errorf("NewPattern(%v): got %v, want ErrInvalidEncoding", bad, err)
		}
	}
}

func TestHammingOverlap(t *testing.T) {
	a := Pattern{1, 1, -1, -1}
	b := Pattern{1, -1, -1, 1}
	if d := a.Hamming(b); d != 2 {
		t.Errorf("Hamming: got %d, want 2", d)
	}
	if d := a.Hamming(a[:3]); d != 1 {
		t.Errorf("Hamming length mismatch: got %d, want 1", d)
	}
	if ov := a.Overlap(a); ov != 1 {
		t.Errorf("Overlap self: got %v, want 1", ov)
	}
	if ov := a.Overlap(b); ov != 0 {
		t.Errorf("Overlap orthogonal: got %v, want 0", ov)
	}
	inv := Pattern{-1, -1, 1, 1}
	if ov := a.Overlap(inv); ov != -1 {
		t.Errorf("Overlap inverse: got %v, want -1", ov)
	}
}

func TestGrid(t *testing.T) {
	p := Pattern{1, -1, -1, 1, 1}
	want := "#.\n.#\n#\n"
	if g := p.Grid(2); g != want {
		t.Errorf("Grid: got %q, want %q", g, want)
	}
}

func TestPatternTensor(t *testing.T) {
	p := Pattern{1, -1, -1, 1, 1, -1}
	tsr, err := p.Tensor([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if tsr.Dim(0) != 2 || tsr.Dim(1) != 3 {
		t.Errorf("Tensor shape: got %v", tsr.Shapes())
	}
	back, err := PatternFromTensor(tsr)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p) {
		t.Errorf("PatternFromTensor: got %v, want %v", back, p)
	}
	if _, err := p.Tensor([]int{2, 2}); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("Tensor wrong shape: got %v, want ErrDimMismatch", err)
	}
}
