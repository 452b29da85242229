// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/emer/emergent/params"
	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"
)

const difTol = float32(1.0e-5)

func makeTestNet(t *testing.T, shape []int) *Network {
	t.Helper()
	net, err := NewNetwork("TestNet", shape)
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func randPats(rnd *rand.Rand, npats, n int) []Pattern {
	pats := make([]Pattern, npats)
	for i := range pats {
		p := make(Pattern, n)
		for j := range p {
			if rnd.Intn(2) == 0 {
				p[j] = 1
			} else {
				p[j] = -1
			}
		}
		pats[i] = p
	}
	return pats
}

func makeSet(t *testing.T, pats ...Pattern) *PatternSet {
	t.Helper()
	ps, err := NewPatternSet(pats, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ps
}

func TestNetworkBuild(t *testing.T) {
	net := makeTestNet(t, []int{3, 4})
	if net.Size() != 12 {
		t.Errorf("Size: got %d, want 12", net.Size())
	}
	if nc := len(net.Lat.RConIdx); nc != 144 {
		t.Errorf("synapses: got %d, want 144", nc)
	}
	if net.Lat.RConNAvgMax.Max != 12 {
		t.Errorf("recv cons max: got %v, want 12", net.Lat.RConNAvgMax.Max)
	}
	if si := net.Lat.SynIdx(5, 5); si < 0 {
		t.Errorf("self connection missing")
	}
	wts := net.Weights()
	for i, w := range wts.Values {
		if w != 0 {
			t.Fatalf("untrained weight %d: %v", i, w)
		}
	}
	if len(net.UnitVarNames()) != 3 || net.SynVarNames()[0] != "Wt" {
		t.Errorf("var names: %v %v", net.UnitVarNames(), net.SynVarNames())
	}
	if _, err := NewNetwork("Empty", []int{0}); err == nil {
		t.Errorf("zero units should fail to build")
	}
}

func TestTrainSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	n := 20
	net := makeTestNet(t, []int{4, 5})
	if err := net.Train(makeSet(t, randPats(rnd, 5, n)...)); err != nil {
		t.Fatal(err)
	}
	wts := net.Weights()
	for i := 0; i < n; i++ {
		if d := wts.Value([]int{i, i}); d != 0 {
			t.Errorf("diagonal %d: got %v, want 0", i, d)
		}
		for j := 0; j < n; j++ {
			if wts.Value([]int{i, j}) != wts.Value([]int{j, i}) {
				t.Errorf("asymmetric at %d,%d: %v != %v", i, j, wts.Value([]int{i, j}), wts.Value([]int{j, i}))
			}
		}
	}
	for i, th := range net.Thr() {
		if th != 0 {
			t.Errorf("Thr %d: got %v, want 0", i, th)
		}
	}
	if net.MetaData["NPats"] != "5" {
		t.Errorf("NPats metadata: got %q", net.MetaData["NPats"])
	}
}

func TestTrainRule(t *testing.T) {
	p := Pattern{1, -1, 1, 1}
	q := Pattern{-1, -1, 1, -1}
	net := makeTestNet(t, []int{4})
	if err := net.Train(makeSet(t, p, q)); err != nil {
		t.Fatal(err)
	}
	wts := net.Weights()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := (p[i]*p[j] + q[i]*q[j]) / 4
			if i == j {
				want = 0
			}
			if got := wts.Value([]int{i, j}); mat32.Abs(got-want) > difTol {
				t.Errorf("W[%d][%d]: got %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestTrainDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	ps := makeSet(t, randPats(rnd, 6, 16)...)
	a := makeTestNet(t, []int{4, 4})
	b := makeTestNet(t, []int{4, 4})
	if err := a.Train(ps); err != nil {
		t.Fatal(err)
	}
	if err := b.Train(ps); err != nil {
		t.Fatal(err)
	}
	aw := a.Weights().Values
	bw := b.Weights().Values
	for i := range aw {
		if aw[i] != bw[i] {
			t.Fatalf("weight %d differs: %v != %v", i, aw[i], bw[i])
		}
	}
	// training replaces rather than accumulates
	if err := a.Train(ps); err != nil {
		t.Fatal(err)
	}
	aw = a.Weights().Values
	for i := range aw {
		if aw[i] != bw[i] {
			t.Fatalf("retrain weight %d differs: %v != %v", i, aw[i], bw[i])
		}
	}
}

func TestTrainDuplicates(t *testing.T) {
	p := Pattern{1, 1, -1, 1, -1, -1}
	once := makeTestNet(t, []int{6})
	twice := makeTestNet(t, []int{6})
	if err := once.Train(makeSet(t, p)); err != nil {
		t.Fatal(err)
	}
	if err := twice.Train(makeSet(t, p, p)); err != nil {
		t.Fatal(err)
	}
	ow := once.Weights().Values
	tw := twice.Weights().Values
	for i := range ow {
		if tw[i] != 2*ow[i] {
			t.Errorf("weight %d: twice %v != 2 * once %v", i, tw[i], ow[i])
		}
	}
}

func TestTrainErrorKeepsWeights(t *testing.T) {
	net := makeTestNet(t, []int{4})
	if err := net.Train(makeSet(t, Pattern{1, 1, -1, -1})); err != nil {
		t.Fatal(err)
	}
	before := net.Weights().Values
	bad := makeSet(t, Pattern{1, 1, -1, -1, 1})
	if err := net.Train(bad); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("Train wrong size: got %v, want ErrDimMismatch", err)
	}
	after := net.Weights().Values
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("failed Train changed weight %d: %v -> %v", i, before[i], after[i])
		}
	}
	if net.MetaData["NPats"] != "1" {
		t.Errorf("failed Train changed metadata: %q", net.MetaData["NPats"])
	}

	// empty set stores nothing
	if err := net.Train(makeSet(t)); err != nil {
		t.Fatal(err)
	}
	for i, w := range net.Weights().Values {
		if w != 0 {
			t.Fatalf("empty Train weight %d: %v", i, w)
		}
	}
}

func TestThrFmWts(t *testing.T) {
	p := Pattern{1, 1, -1, -1}
	q := Pattern{1, -1, 1, -1}
	net := makeTestNet(t, []int{4})
	net.Lat.Learn.Thr.On = true
	net.Lat.Learn.Thr.Gain = 2
	if err := net.Train(makeSet(t, p, q, q)); err != nil {
		t.Fatal(err)
	}
	wts := net.Weights()
	thr := net.Thr()
	for i := 0; i < 4; i++ {
		var sum float32
		for j := 0; j < 4; j++ {
			sum += wts.Value([]int{j, i})
		}
		if mat32.Abs(thr[i]-2*sum) > difTol {
			t.Errorf("Thr %d: got %v, want %v", i, thr[i], 2*sum)
		}
	}
}

func TestRecallEndToEnd(t *testing.T) {
	net := makeTestNet(t, []int{4})
	stored := Pattern{1, 1, -1, -1}
	if err := net.Train(makeSet(t, stored)); err != nil {
		t.Fatal(err)
	}
	probe := Pattern{1, -1, -1, -1}
	rc, err := net.Predict(probe, 5)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Status != Converged || !rc.Converged() {
		t.Errorf("Status: got %v, want Converged", rc.Status)
	}
	if !rc.Final().Equal(stored) {
		t.Errorf("Final: got %v, want %v", rc.Final(), stored)
	}
	if rc.Sweeps != 2 || len(rc.Hist) != 8 || rc.Flips != 1 {
		t.Errorf("Sweeps %d Hist %d Flips %d: want 2, 8, 1", rc.Sweeps, len(rc.Hist), rc.Flips)
	}
	if !rc.Flipped(1) || rc.Flipped(0) || rc.Flipped(5) {
		t.Errorf("only the visit to unit 1 in the first sweep should flip")
	}
	if !probe.Equal(Pattern{1, -1, -1, -1}) {
		t.Errorf("Predict modified its input: %v", probe)
	}

	rc, err = net.Predict(probe, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Status != Exhausted || len(rc.Hist) != 4 {
		t.Errorf("one sweep: Status %v Hist %d, want Exhausted, 4", rc.Status, len(rc.Hist))
	}
}

func TestRecallFixedPoint(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	n := 16
	net := makeTestNet(t, []int{4, 4})
	p := randPats(rnd, 1, n)[0]
	if err := net.Train(makeSet(t, p)); err != nil {
		t.Fatal(err)
	}
	rc, err := net.Predict(p, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !rc.Final().Equal(p) {
		t.Errorf("stored pattern not a fixed point: got %v, want %v", rc.Final(), p)
	}
	if rc.Status != Converged || len(rc.Hist) != n {
		t.Errorf("Status %v Hist %d, want Converged, %d", rc.Status, len(rc.Hist), n)
	}
}

func TestRecallTermination(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	n := 25
	net := makeTestNet(t, []int{5, 5})
	if err := net.Train(makeSet(t, randPats(rnd, 4, n)...)); err != nil {
		t.Fatal(err)
	}
	for trl := 0; trl < 30; trl++ {
		maxIter := 1 + rnd.Intn(4)
		rc, err := net.Predict(randPats(rnd, 1, n)[0], maxIter)
		if err != nil {
			t.Fatal(err)
		}
		if len(rc.Hist) > n*maxIter || len(rc.Hist) != n*rc.Sweeps {
			t.Errorf("Hist %d for %d sweeps of max %d", len(rc.Hist), rc.Sweeps, maxIter)
		}
		last := rc.Hist[len(rc.Hist)-n:]
		nflip := 0
		for i := range last {
			if rc.Flipped(len(rc.Hist) - n + i) {
				nflip++
			}
		}
		switch rc.Status {
		case Converged:
			if nflip != 0 {
				t.Errorf("Converged with %d flips in last sweep", nflip)
			}
		case Exhausted:
			if rc.Sweeps != maxIter || nflip == 0 {
				t.Errorf("Exhausted after %d of %d sweeps with %d flips", rc.Sweeps, maxIter, nflip)
			}
		default:
			t.Errorf("Status: got %v", rc.Status)
		}
	}
}

func TestRecallEnergy(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	n := 36
	net := makeTestNet(t, []int{6, 6})
	if err := net.Train(makeSet(t, randPats(rnd, 5, n)...)); err != nil {
		t.Fatal(err)
	}
	for trl := 0; trl < 10; trl++ {
		probe := randPats(rnd, 1, n)[0]
		rc, err := net.Predict(probe, 20)
		if err != nil {
			t.Fatal(err)
		}
		prv, _ := net.Energy(probe)
		for step, st := range rc.Hist {
			en, err := net.Energy(st)
			if err != nil {
				t.Fatal(err)
			}
			if en > prv+1.0e-4 {
				t.Errorf("trial %d step %d: energy increased %v -> %v", trl, step, prv, en)
			}
			prv = en
		}
	}
}

func TestPredictErrors(t *testing.T) {
	net := makeTestNet(t, []int{4})
	if _, err := net.Predict(Pattern{1, -1, 1}, 5); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("short probe: got %v, want ErrDimMismatch", err)
	}
	if _, err := net.Predict(Pattern{1, -1, 0, 1}, 5); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("bad probe: got %v, want ErrInvalidEncoding", err)
	}
	if _, err := net.Predict(Pattern{1, -1, 1, 1}, 0); !errors.Is(err, ErrMaxIter) {
		t.Errorf("zero maxIter: got %v, want ErrMaxIter", err)
	}
	if _, err := net.Energy(Pattern{1}); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("Energy short: got %v, want ErrDimMismatch", err)
	}
}

func TestPredictBatch(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	n := 16
	net := makeTestNet(t, []int{4, 4})
	if err := net.Train(makeSet(t, randPats(rnd, 3, n)...)); err != nil {
		t.Fatal(err)
	}
	probes := randPats(rnd, 12, n)
	recs, err := net.PredictBatch(probes, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, probe := range probes {
		rc, err := net.Predict(probe, 10)
		if err != nil {
			t.Fatal(err)
		}
		if !recs[i].Final().Equal(rc.Final()) || recs[i].Status != rc.Status {
			t.Errorf("probe %d: batch result differs from Predict", i)
		}
	}

	probes[4] = probes[4][:3]
	recs, err = net.PredictBatch(probes, 10, 0)
	if !errors.Is(err, ErrDimMismatch) {
		t.Errorf("batch with bad probe: got %v, want ErrDimMismatch", err)
	}
	if recs[4] != nil || recs[3] == nil {
		t.Errorf("batch results: bad probe should be nil, others set")
	}
}

func TestApplyState(t *testing.T) {
	net := makeTestNet(t, []int{4})
	if err := net.Train(makeSet(t, Pattern{1, 1, -1, -1})); err != nil {
		t.Fatal(err)
	}
	if err := net.ApplyState(Pattern{1, -1, -1, -1}); err != nil {
		t.Fatal(err)
	}
	var nets []float32
	if err := net.Units.UnitVals(&nets, "Net"); err != nil {
		t.Fatal(err)
	}
	want := []float32{0.25, 0.75, -0.75, -0.75}
	for i := range want {
		if mat32.Abs(nets[i]-want[i]) > difTol {
			t.Errorf("Net %d: got %v, want %v", i, nets[i], want[i])
		}
	}
	mn, mx, err := net.VarRange("Act")
	if err != nil || mn != -1 || mx != 1 {
		t.Errorf("VarRange Act: %v %v %v", mn, mx, err)
	}
	if err := net.ApplyState(Pattern{1}); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("ApplyState short: got %v, want ErrDimMismatch", err)
	}
}

func TestApplyParams(t *testing.T) {
	net := makeTestNet(t, []int{4})
	sheet := &params.Sheet{
		{Sel: "Layer", Desc: "longer recall",
			Params: params.Params{
				"Layer.Recall.MaxIter": "7",
			}},
		{Sel: ".Lateral", Desc: "thresholds from weights",
			Params: params.Params{
				"Prjn.Learn.Thr.On": "true",
			}},
	}
	applied, err := net.ApplyParams(sheet, false)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Errorf("no params applied")
	}
	if net.Units.Recall.MaxIter != 7 {
		t.Errorf("MaxIter: got %d, want 7", net.Units.Recall.MaxIter)
	}
	if !net.Lat.Learn.Thr.On {
		t.Errorf("Thr.On not set")
	}
}

func TestAccessors(t *testing.T) {
	net := makeTestNet(t, []int{2, 2})
	p := Pattern{1, 1, -1, -1}
	if err := net.Train(makeSet(t, p)); err != nil {
		t.Fatal(err)
	}
	if w := net.Lat.SynVal("Wt", 0, 1); w != 0.25 {
		t.Errorf("SynVal 0->1: got %v, want 0.25", w)
	}
	if w := net.Lat.SynVal("Wt", 2, 0); w != -0.25 {
		t.Errorf("SynVal 2->0: got %v, want -0.25", w)
	}
	if !mat32.IsNaN(net.Lat.SynVal("Nope", 0, 1)) {
		t.Errorf("SynVal unknown var should be NaN")
	}
	if err := net.Lat.SetSynVal("Wt", 3, 1, 0.5); err != nil {
		t.Fatal(err)
	}
	if w := net.Weights().Value([]int{1, 3}); w != 0.5 {
		t.Errorf("SetSynVal: got %v, want 0.5", w)
	}
	if err := net.SetWt(0, 2, 0.75); err != nil {
		t.Fatal(err)
	}
	wts := net.Weights()
	if wts.Value([]int{0, 2}) != 0.75 || wts.Value([]int{2, 0}) != 0.75 {
		t.Errorf("SetWt not symmetric: %v %v", wts.Value([]int{0, 2}), wts.Value([]int{2, 0}))
	}
	if err := net.SetWt(0, 4, 1); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("SetWt out of range: got %v, want ErrDimMismatch", err)
	}

	if err := net.ApplyState(p); err != nil {
		t.Fatal(err)
	}
	if a := net.Units.UnitVal("Act", []int{1, 0}); a != -1 {
		t.Errorf("UnitVal Act [1 0]: got %v, want -1", a)
	}
	vi, err := net.Units.UnitVarIdx("Act")
	if err != nil {
		t.Fatal(err)
	}
	if a := net.Units.UnitVal1D(vi, 1); a != 1 {
		t.Errorf("UnitVal1D Act 1: got %v, want 1", a)
	}
	if !mat32.IsNaN(net.Units.UnitVal1D(vi, 9)) {
		t.Errorf("UnitVal1D out of range should be NaN")
	}
	tsr := &etensor.Float32{}
	if err := net.Units.UnitValsTensor(tsr, "Act"); err != nil {
		t.Fatal(err)
	}
	if tsr.Dim(0) != 2 || tsr.Value([]int{0, 1}) != 1 {
		t.Errorf("UnitValsTensor: got %v", tsr.Values)
	}
	if _, err := net.Units.UnitVarIdx("Nope"); err == nil {
		t.Errorf("UnitVarIdx unknown var should fail")
	}

	if !strings.Contains(net.AllParams(), "MaxIter") {
		t.Errorf("AllParams missing MaxIter:\n%s", net.AllParams())
	}
	net.InitWts()
	if mn, mx, _ := net.VarRange("Act"); mn != 0 || mx != 0 {
		t.Errorf("InitWts should zero activations: %v %v", mn, mx)
	}
}
