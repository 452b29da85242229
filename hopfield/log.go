// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// ConfigRecallLog configures given table for logging a recall, one row per
// unit visit, with the state as a tensor column in given unit shape.
func ConfigRecallLog(dt *etable.Table, shape []int) {
	var dnms []string
	if len(shape) == 2 {
		dnms = []string{"Y", "X"}
	}
	dt.SetMetaData("name", "RecallLog")
	dt.SetMetaData("desc", "Record of asynchronous recall, one row per unit visit")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", "4")

	sch := etable.Schema{
		{Name: "Step", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Sweep", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Unit", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Flipped", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "Energy", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "Overlap", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "State", Type: etensor.FLOAT32, CellShape: shape, DimNames: dnms},
	}
	dt.SetFromSchema(sch, 0)
}

// LogRecall fills the table (configured by ConfigRecallLog with the shape of
// net) with the history of given recall: step, sweep, unit visited, whether
// it flipped, the energy of the state under net, and its overlap with the probe.
func LogRecall(dt *etable.Table, rc *Recall, net *Network) error {
	dt.SetNumRows(len(rc.Hist))
	n := len(rc.Probe)
	shp := net.Shape()
	for step, st := range rc.Hist {
		en, err := net.Energy(st)
		if err != nil {
			return err
		}
		flp := 0.0
		if rc.Flipped(step) {
			flp = 1
		}
		tsr, err := st.Tensor(shp)
		if err != nil {
			return err
		}
		dt.SetCellFloat("Step", step, float64(step))
		dt.SetCellFloat("Sweep", step, float64(step/n))
		dt.SetCellFloat("Unit", step, float64(step%n))
		dt.SetCellFloat("Flipped", step, flp)
		dt.SetCellFloat("Energy", step, float64(en))
		dt.SetCellFloat("Overlap", step, float64(st.Overlap(rc.Probe)))
		dt.SetCellTensor("State", step, tsr)
	}
	return nil
}
