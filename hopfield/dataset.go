// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/emer/etable/etable"
	"github.com/goki/gi/gi"
)

// ReadPatterns reads patterns of width x height units from the plain text
// format: each '1' is +1 and any other character is -1, lines are
// concatenated until width*height values are collected, and blank or
// whitespace-only lines between patterns (the separators) are skipped.  The result is in file order
// and not shuffled.
func ReadPatterns(r io.Reader, width, height int) (*PatternSet, error) {
	sz := width * height
	if sz <= 0 {
		return nil, fmt.Errorf("hopfield: ReadPatterns: invalid shape %dx%d", width, height)
	}
	var pats []Pattern
	cur := make(Pattern, 0, sz)
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if len(cur) == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		for _, c := range line {
			if c == '1' {
				cur = append(cur, 1)
			} else {
				cur = append(cur, -1)
			}
		}
		switch {
		case len(cur) == sz:
			pats = append(pats, cur)
			cur = make(Pattern, 0, sz)
		case len(cur) > sz:
			return nil, fmt.Errorf("line %d: %w", ln, dimErr("ReadPatterns", sz, len(cur)))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(cur) > 0 {
		return nil, fmt.Errorf("trailing partial pattern: %w", dimErr("ReadPatterns", sz, len(cur)))
	}
	return NewPatternSet(pats, false, nil)
}

// WritePatterns writes the patterns in the plain text format read by
// ReadPatterns: rows of width units, '1' for +1 and '0' for -1, with an
// empty line after each pattern.
func WritePatterns(w io.Writer, ps *PatternSet, width int) error {
	if width <= 0 {
		width = ps.Size()
	}
	bw := bufio.NewWriter(w)
	ps.Range(func(idx int, p Pattern) bool {
		for i, v := range p {
			if v > 0 {
				bw.WriteByte('1')
			} else {
				bw.WriteByte('0')
			}
			if (i+1)%width == 0 || i == len(p)-1 {
				bw.WriteByte('\n')
			}
		}
		bw.WriteByte('\n')
		return true
	})
	return bw.Flush()
}

// OpenPatterns opens a plain text pattern file -- see ReadPatterns
func OpenPatterns(filename gi.FileName, width, height int) (*PatternSet, error) {
	fp, err := os.Open(string(filename))
	if err != nil {
		log.Println(err)
		return nil, err
	}
	defer fp.Close()
	return ReadPatterns(fp, width, height)
}

// OpenPatternsTable opens a tab-separated pattern table as saved by
// PatternSet.Table, reading the patterns from given column.
func OpenPatternsTable(filename gi.FileName, colNm string) (*PatternSet, error) {
	dt := &etable.Table{}
	err := dt.OpenCSV(filename, etable.Tab)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	return NewPatternSetTable(dt, colNm, false, nil)
}

// AddNoise returns a copy of p with each unit independently inverted
// with probability flipProb.
func AddNoise(p Pattern, flipProb float32, rnd *rand.Rand) Pattern {
	np := p.Clone()
	for i := range np {
		if rnd.Float32() < flipProb {
			np[i] = -np[i]
		}
	}
	return np
}

// FlipN returns a copy of p with exactly nFlip distinct units inverted,
// chosen by a random permutation.  nFlip is clipped to the pattern length.
func FlipN(p Pattern, nFlip int, rnd *rand.Rand) Pattern {
	np := p.Clone()
	switch {
	case nFlip > len(np):
		nFlip = len(np)
	case nFlip < 0:
		nFlip = 0
	}
	for _, i := range rnd.Perm(len(np))[:nFlip] {
		np[i] = -np[i]
	}
	return np
}
