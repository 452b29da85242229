// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"fmt"
	"runtime"

	"github.com/goki/ki/kit"
	"github.com/klauspost/cpuid/v2"
	"github.com/sourcegraph/conc/pool"
)

// Status is the state of an asynchronous recall
type Status int

//go:generate stringer -type=Status

var KiT_Status = kit.Enums.AddEnum(StatusN, false, nil)

func (ev Status) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Status) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Sweeping means units are still being updated
	Sweeping Status = iota

	// Converged means a full sweep changed no unit: the final state is a fixed point
	Converged

	// Exhausted means the maximum number of sweeps ran with units still flipping
	Exhausted

	StatusN
)

// Recall is the outcome of one Predict call
type Recall struct {
	Probe  Pattern   `desc:"copy of the initial state"`
	Hist   []Pattern `desc:"full state after each unit visit, in sweep then unit order -- its length is always Sweeps * n"`
	Status Status    `desc:"Converged or Exhausted"`
	Sweeps int       `desc:"number of sweeps run, including the final stable sweep when converged"`
	Flips  int       `desc:"total number of units flipped over all sweeps"`
}

// Final returns the last state, or the probe if there is no history
func (rc *Recall) Final() Pattern {
	if len(rc.Hist) == 0 {
		return rc.Probe
	}
	return rc.Hist[len(rc.Hist)-1]
}

// Converged returns true if recall reached a fixed point
func (rc *Recall) Converged() bool {
	return rc.Status == Converged
}

// Flipped returns true if the visit at given step (index into Hist)
// inverted its unit
func (rc *Recall) Flipped(step int) bool {
	prv := rc.Probe
	if step > 0 {
		prv = rc.Hist[step-1]
	}
	ui := step % len(prv)
	return prv[ui] != rc.Hist[step][ui]
}

func (nt *Network) checkState(op string, p Pattern) error {
	if len(p) != nt.Size() {
		return dimErr(op, nt.Size(), len(p))
	}
	return p.Validate()
}

// Predict recalls the stored pattern closest to data by asynchronous
// updates: each sweep visits the units in index order and inverts any unit
// whose state disagrees in sign with its local field (dot product of its
// weights with the current state, minus its threshold).  A zero field leaves
// the unit unchanged.  The state after every visit is appended to the
// history.  Recall stops after the first sweep with no flips (Converged) or
// after maxIter sweeps (Exhausted).  data is not modified, and neither are
// the weights, so Predict may be called concurrently.
func (nt *Network) Predict(data Pattern, maxIter int) (*Recall, error) {
	if err := nt.checkState("Predict", data); err != nil {
		return nil, err
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("%w: Predict: %d", ErrMaxIter, maxIter)
	}
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	n := nt.Size()
	thr := nt.Units.States["Thr"].Values
	cur := data.Clone()
	rc := &Recall{Probe: data.Clone(), Status: Sweeping}
	rc.Hist = make([]Pattern, 0, n)
	for sw := 0; sw < maxIter; sw++ {
		flips := 0
		for ui := 0; ui < n; ui++ {
			x := nt.Lat.NetInput(ui, cur) - thr[ui]
			if x*cur[ui] < 0 {
				cur[ui] = -cur[ui]
				flips++
			}
			rc.Hist = append(rc.Hist, cur.Clone())
		}
		rc.Sweeps++
		rc.Flips += flips
		if flips == 0 {
			rc.Status = Converged
			return rc, nil
		}
	}
	rc.Status = Exhausted
	return rc, nil
}

// Energy returns the energy of given state: -1/2 p^T W p + thr^T p.
// Asynchronous updates never increase it.
func (nt *Network) Energy(p Pattern) (float32, error) {
	if err := nt.checkState("Energy", p); err != nil {
		return 0, err
	}
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return nt.energy(p), nil
}

func (nt *Network) energy(p Pattern) float32 {
	thr := nt.Units.States["Thr"].Values
	var e float32
	for ui := range p {
		e += -0.5*p[ui]*nt.Lat.NetInput(ui, p) + thr[ui]*p[ui]
	}
	return e
}

// DefaultThreads returns the number of physical cores, or logical cores
// if that cannot be determined
func DefaultThreads() int {
	if nc := cpuid.CPU.PhysicalCores; nc > 0 {
		return nc
	}
	return runtime.NumCPU()
}

// PredictBatch runs Predict on each probe using up to nThreads goroutines
// (DefaultThreads if nThreads <= 0), returning recalls in probe order.
// Any probe errors are joined, and the recalls of failed probes are nil.
func (nt *Network) PredictBatch(probes []Pattern, maxIter, nThreads int) ([]*Recall, error) {
	if nThreads <= 0 {
		nThreads = DefaultThreads()
	}
	recs := make([]*Recall, len(probes))
	wp := pool.New().WithMaxGoroutines(nThreads).WithErrors()
	for i, probe := range probes {
		i, probe := i, probe
		wp.Go(func() error {
			rc, err := nt.Predict(probe, maxIter)
			if err != nil {
				return fmt.Errorf("probe %d: %w", i, err)
			}
			recs[i] = rc
			return nil
		})
	}
	return recs, wp.Wait()
}
