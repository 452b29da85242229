// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"testing"

	"github.com/emer/etable/etable"
)

func TestRecallLog(t *testing.T) {
	net := makeTestNet(t, []int{2, 2})
	if err := net.Train(makeSet(t, Pattern{1, 1, -1, -1})); err != nil {
		t.Fatal(err)
	}
	rc, err := net.Predict(Pattern{1, -1, -1, -1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	dt := &etable.Table{}
	ConfigRecallLog(dt, net.Shape())
	if err := LogRecall(dt, rc, net); err != nil {
		t.Fatal(err)
	}
	if dt.Rows != 8 {
		t.Fatalf("Rows: got %d, want 8", dt.Rows)
	}
	for row := 0; row < dt.Rows; row++ {
		flp := dt.CellFloat("Flipped", row)
		if (row == 1) != (flp == 1) {
			t.Errorf("row %d Flipped: %v", row, flp)
		}
		if int(dt.CellFloat("Sweep", row)) != row/4 || int(dt.CellFloat("Unit", row)) != row%4 {
			t.Errorf("row %d Sweep / Unit: %v %v", row, dt.CellFloat("Sweep", row), dt.CellFloat("Unit", row))
		}
	}
	if e0, e7 := dt.CellFloat("Energy", 0), dt.CellFloat("Energy", 7); e7 >= e0 {
		t.Errorf("energy did not decrease: %v -> %v", e0, e7)
	}
	if ov := dt.CellFloat("Overlap", 7); ov != 0.5 {
		t.Errorf("final overlap with probe: got %v, want 0.5", ov)
	}
	st := dt.CellTensor("State", 7)
	if st.FloatVal1D(1) != 1 {
		t.Errorf("final state unit 1: got %v, want 1", st.FloatVal1D(1))
	}
}
