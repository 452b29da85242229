// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// PatternSet is an ordered collection of equal-length bipolar patterns used
// as training input, together with the set of its distinct patterns.
// It owns copies of its patterns and is not modified after construction.
type PatternSet struct {
	pats []Pattern
	uniq []Pattern
	size int
}

// NewPatternSet returns a PatternSet holding copies of given patterns,
// which must all be bipolar and of the same length.  If shuffle is true the
// stored order is permuted uniformly using rnd.  Duplicates are collapsed
// only in Unique -- the full sequence keeps every pattern.
func NewPatternSet(pats []Pattern, shuffle bool, rnd *rand.Rand) (*PatternSet, error) {
	ps := &PatternSet{}
	if len(pats) > 0 {
		ps.size = len(pats[0])
	}
	ps.pats = make([]Pattern, len(pats))
	for i, p := range pats {
		if len(p) != ps.size {
			return nil, fmt.Errorf("pattern %d: %w", i, dimErr("NewPatternSet", ps.size, len(p)))
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		ps.pats[i] = p.Clone()
	}
	seen := make(map[string]struct{}, len(ps.pats))
	for _, p := range ps.pats {
		k := p.String()
		if _, has := seen[k]; has {
			continue
		}
		seen[k] = struct{}{}
		ps.uniq = append(ps.uniq, p)
	}
	if shuffle {
		if rnd == nil {
			return nil, errors.New("hopfield: NewPatternSet: shuffle requires a random source")
		}
		rnd.Shuffle(len(ps.pats), func(i, j int) { ps.pats[i], ps.pats[j] = ps.pats[j], ps.pats[i] })
	}
	return ps, nil
}

// N returns the total number of patterns, including duplicates
func (ps *PatternSet) N() int { return len(ps.pats) }

// NUnique returns the number of distinct patterns
func (ps *PatternSet) NUnique() int { return len(ps.uniq) }

// Size returns the number of units in each pattern (0 for an empty set)
func (ps *PatternSet) Size() int { return ps.size }

// Pat returns a copy of the pattern at given index in the stored order
func (ps *PatternSet) Pat(idx int) Pattern { return ps.pats[idx].Clone() }

// Pats returns copies of all patterns in the stored order
func (ps *PatternSet) Pats() []Pattern {
	cp := make([]Pattern, len(ps.pats))
	for i, p := range ps.pats {
		cp[i] = p.Clone()
	}
	return cp
}

// Unique returns copies of the distinct patterns, in no guaranteed order
func (ps *PatternSet) Unique() []Pattern {
	cp := make([]Pattern, len(ps.uniq))
	for i, p := range ps.uniq {
		cp[i] = p.Clone()
	}
	return cp
}

// Range calls fun for each pattern in the stored order, stopping if it
// returns false.  The pattern passed to fun must not be modified.
func (ps *PatternSet) Range(fun func(idx int, p Pattern) bool) {
	for i, p := range ps.pats {
		if !fun(i, p) {
			return
		}
	}
}

// Sample returns a copy of one pattern drawn uniformly with replacement from
// the full (non-deduplicated) sequence, so each distinct pattern is drawn in
// proportion to its multiplicity.
func (ps *PatternSet) Sample(rnd *rand.Rand) (Pattern, error) {
	if len(ps.pats) == 0 {
		return nil, fmt.Errorf("%w: Sample", ErrEmpty)
	}
	return ps.pats[rnd.Intn(len(ps.pats))].Clone(), nil
}

// SamplePair draws one index uniformly over the aligned prefix of train and
// test, returning the train pattern (ground truth) and the test pattern
// (probe) at that index.
func SamplePair(train, test *PatternSet, rnd *rand.Rand) (truth, probe Pattern, err error) {
	n := train.N()
	if test.N() < n {
		n = test.N()
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: SamplePair", ErrEmpty)
	}
	if train.Size() != test.Size() {
		return nil, nil, dimErr("SamplePair", train.Size(), test.Size())
	}
	idx := rnd.Intn(n)
	return train.pats[idx].Clone(), test.pats[idx].Clone(), nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  etable

// PatternsCol is the default column name for pattern tensors in tables
var PatternsCol = "Pattern"

// Table returns a table with a Name column and a pattern column of
// given cell shape (e.g., Y, X), one row per pattern in stored order.
func (ps *PatternSet) Table(name string, shape []int) (*etable.Table, error) {
	var dnms []string
	if len(shape) == 2 {
		dnms = []string{"Y", "X"}
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	dt.SetMetaData("desc", "bipolar patterns")
	sch := etable.Schema{
		{Name: "Name", Type: etensor.STRING, CellShape: nil, DimNames: nil},
		{Name: PatternsCol, Type: etensor.FLOAT32, CellShape: shape, DimNames: dnms},
	}
	dt.SetFromSchema(sch, len(ps.pats))
	for i, p := range ps.pats {
		tsr, err := p.Tensor(shape)
		if err != nil {
			return nil, err
		}
		dt.SetCellString("Name", i, fmt.Sprintf("p%d", i))
		dt.SetCellTensor(PatternsCol, i, tsr)
	}
	return dt, nil
}

// NewPatternSetTable returns a PatternSet from the tensor cells of given
// column, one pattern per row.
func NewPatternSetTable(dt *etable.Table, colNm string, shuffle bool, rnd *rand.Rand) (*PatternSet, error) {
	pats := make([]Pattern, dt.Rows)
	for row := 0; row < dt.Rows; row++ {
		tsr := dt.CellTensor(colNm, row)
		if tsr == nil {
			return nil, fmt.Errorf("hopfield: NewPatternSetTable: no tensor column named %q", colNm)
		}
		p, err := PatternFromTensor(tsr)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		pats[row] = p
	}
	return NewPatternSet(pats, shuffle, rnd)
}
