// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"fmt"
	"strconv"
)

// Train stores the patterns in the weights with the outer-product rule,
// replacing any previously stored patterns -- see Prjn.HebbWts.
// Duplicates count once per occurrence.  Thresholds are zero unless
// Learn.Thr.On is set.  Every pattern is checked before anything is
// written, so on error the existing weights and thresholds are unchanged.
func (nt *Network) Train(pats *PatternSet) error {
	if pats == nil {
		pats = &PatternSet{}
	}
	n := nt.Size()
	if pats.N() > 0 && pats.Size() != n {
		return fmt.Errorf("hopfield.Train: %w", dimErr("Train", n, pats.Size()))
	}
	var err error
	pats.Range(func(idx int, p Pattern) bool {
		if len(p) != n {
			err = fmt.Errorf("pattern %d: %w", idx, dimErr("Train", n, len(p)))
			return false
		}
		if verr := p.Validate(); verr != nil {
			err = fmt.Errorf("pattern %d: %w", idx, verr)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	nt.mu.Lock()
	defer nt.mu.Unlock()
	wts := nt.Lat.HebbWts(pats)
	thr := nt.Lat.ThrFmWts(wts)
	nt.swapWts(wts, thr)
	nt.MetaData["NPats"] = strconv.Itoa(pats.N())
	return nil
}
