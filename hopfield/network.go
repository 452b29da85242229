// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
)

// hopfield.Network is a discrete Hopfield network: one layer of bipolar
// units fully interconnected by a symmetric recurrent projection.
// Train and SetWts are exclusive; Predict, Energy and the accessors
// may run concurrently with each other.
type Network struct {
	Nm              string            `desc:"overall name of network -- helps discriminate if there are multiple"`
	Units           *Layer            `desc:"the units of the network"`
	Lat             *Prjn             `desc:"the recurrent projection of the units onto themselves, holding the weights"`
	MetaData        map[string]string `desc:"optional metadata that is saved in network weights files -- e.g., number of patterns that were stored"`
	LayVarNamesMap  map[string]int    `view:"-" desc:"map of variable names on the units, with index into the LayVarNames list"`
	LayVarNames     []string          `view:"-" desc:"list of variable names on the units, alpha order"`
	PrjnVarNamesMap map[string]int    `view:"-" desc:"map of variable names on the synapses, with index into the PrjnVarNames list"`
	PrjnVarNames    []string          `view:"-" desc:"list of variable names on the synapses, alpha order"`

	mu sync.RWMutex
}

// NewNetwork returns a built network of given name whose units have given
// shape (e.g., Y, X of the pattern image), with zero weights and thresholds.
func NewNetwork(name string, shape []int) (*Network, error) {
	nt := &Network{}
	nt.InitName(name)
	nt.ConfigUnits(shape)
	nt.Defaults()
	if err := nt.Build(); err != nil {
		return nil, err
	}
	return nt, nil
}

// InitName sets the name of the network
func (nt *Network) InitName(name string) {
	nt.Nm = name
}

func (nt *Network) Name() string  { return nt.Nm }
func (nt *Network) Label() string { return nt.Nm }

// ConfigUnits configures the units layer with given shape and the lateral
// full projection connecting the units to themselves, including self
// connections so that the diagonal of the weights is explicit.
// Does not yet allocate state -- that requires Build.
func (nt *Network) ConfigUnits(shape []int) {
	ly := &Layer{}
	ly.InitName("Units", nt)
	ly.Config(shape, emer.Hidden)
	nt.Units = ly

	full := prjn.NewFull()
	full.SelfCon = true
	pj := &Prjn{}
	pj.Connect(ly, ly, full, emer.Lateral)
	nt.Lat = pj
}

// Size returns the number of units n
func (nt *Network) Size() int {
	if nt.Units == nil {
		return 0
	}
	return nt.Units.NUnits()
}

// Shape returns the shape of the units
func (nt *Network) Shape() []int {
	return nt.Units.Shp.Shp
}

// Build constructs the layer and projection state based on the layer shape
// and the pattern of interconnectivity
func (nt *Network) Build() error {
	if nt.Units == nil || nt.Lat == nil {
		return errors.New("hopfield.Network Build: units not configured -- call ConfigUnits")
	}
	emsg := ""
	if err := nt.Units.Build(); err != nil {
		emsg += err.Error() + "\n"
	} else if err := nt.Lat.Build(); err != nil {
		emsg += err.Error() + "\n"
	}
	if emsg != "" {
		return errors.New(emsg)
	}
	nt.BuildVarNames()
	if nt.MetaData == nil {
		nt.MetaData = make(map[string]string)
	}
	return nil
}

// Defaults sets all the default parameters for the layer and projection
func (nt *Network) Defaults() {
	nt.Units.Defaults()
	nt.Lat.Defaults()
}

// UpdateParams updates all the derived parameters if any have changed
func (nt *Network) UpdateParams() {
	if nt.Units.Recall.MaxIter < 1 {
		nt.Units.Recall.MaxIter = 1
	}
}

// ApplyParams applies given parameter style Sheet to the layer and prjn in this network.
// Calls UpdateParams to ensure derived parameters are all updated.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
// it always prints a message if a parameter fails to be set.
// returns true if any params were set, and error if there were any errors.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	applied := false
	var rerr error
	app, err := nt.Units.ApplyParams(pars, setMsg)
	if app {
		applied = true
	}
	if err != nil {
		rerr = err
	}
	app, err = nt.Lat.ApplyParams(pars, setMsg)
	if app {
		applied = true
	}
	if err != nil {
		rerr = err
	}
	if applied {
		nt.UpdateParams()
	}
	return applied, rerr
}

// NonDefaultParams returns a listing of all parameters in the Network that
// are not at their default values -- useful for setting param styles etc.
func (nt *Network) NonDefaultParams() string {
	return nt.Units.NonDefaultParams() + nt.Lat.NonDefaultParams()
}

// AllParams returns a listing of all parameters in the Network.
func (nt *Network) AllParams() string {
	return nt.Units.AllParams() + nt.Lat.AllParams()
}

// BuildVarNames makes the var names from states of network
func (nt *Network) BuildVarNames() {
	nt.LayVarNamesMap = make(map[string]int)
	nt.PrjnVarNamesMap = make(map[string]int)
	for nm := range nt.Units.States {
		nt.LayVarNamesMap[nm] = 0
	}
	for nm := range nt.Lat.States {
		nt.PrjnVarNamesMap[nm] = 0
	}
	nt.LayVarNames = sortedNames(nt.LayVarNamesMap)
	nt.PrjnVarNames = sortedNames(nt.PrjnVarNamesMap)
}

func sortedNames(mp map[string]int) []string {
	nms := make([]string, 0, len(mp))
	for nm := range mp {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	for i, nm := range nms {
		mp[nm] = i
	}
	return nms
}

// UnitVarNames returns a list of variable names available on the units in this network.
func (nt *Network) UnitVarNames() []string {
	return nt.LayVarNames
}

// SynVarNames returns the names of all the variables on the synapses in this network.
func (nt *Network) SynVarNames() []string {
	return nt.PrjnVarNames
}

// VarRange returns the min / max values for given unit variable
func (nt *Network) VarRange(varNm string) (min, max float32, err error) {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return nt.Units.VarRange(varNm)
}

// InitWts sets all weights, thresholds and activations to zero, forgetting
// every stored pattern
func (nt *Network) InitWts() {
	nt.mu.Lock()
	defer nt.mu.Unlock()
	n := nt.Size()
	nt.swapWts(make([]float32, len(nt.Lat.RConIdx)), make([]float32, n))
	nt.Units.InitActs()
	delete(nt.MetaData, "NPats")
}

// swapWts installs the given synapse-ordered weights and per-unit thresholds.
// Caller holds the write lock and has validated the lengths.
func (nt *Network) swapWts(wts, thr []float32) {
	nt.Lat.States["Wt"].Values = wts
	nt.Units.States["Thr"].Values = thr
}

// Weights returns a copy of the full n x n weight matrix, where element
// (i, j) is the weight from unit j onto unit i.
func (nt *Network) Weights() *etensor.Float32 {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	n := nt.Size()
	tsr := etensor.NewFloat32([]int{n, n}, nil, []string{"Recv", "Send"})
	wts := nt.Lat.States["Wt"].Values
	pj := nt.Lat
	for ri := 0; ri < n; ri++ {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		for ci := 0; ci < nc; ci++ {
			si := int(pj.RConIdx[st+ci])
			tsr.Values[ri*n+si] = wts[st+ci]
		}
	}
	return tsr
}

// SetWt sets the weight between units i and j in both directions, keeping
// the weights symmetric.  It waits for any running Predict calls.
func (nt *Network) SetWt(i, j int, wt float32) error {
	n := nt.Size()
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("hopfield.SetWt: units %d, %d: %w", i, j, dimErr("SetWt", n, max(i, j)+1))
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()
	if err := nt.Lat.SetSynVal("Wt", i, j, wt); err != nil {
		return err
	}
	return nt.Lat.SetSynVal("Wt", j, i, wt)
}

// Thr returns a copy of the per-unit thresholds
func (nt *Network) Thr() []float32 {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	thr := make([]float32, nt.Size())
	copy(thr, nt.Units.States["Thr"].Values)
	return thr
}

// ApplyState sets the unit activations to given pattern and updates the
// local field of every unit, for inspection via UnitVals / VarRange.
func (nt *Network) ApplyState(p Pattern) error {
	if len(p) != nt.Size() {
		return dimErr("ApplyState", nt.Size(), len(p))
	}
	if err := p.Validate(); err != nil {
		return err
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()
	act := nt.Units.States["Act"].Values
	copy(act, p)
	net := nt.Units.States["Net"].Values
	for ri := range net {
		net[ri] = nt.Lat.NetInput(ri, act)
	}
	return nil
}

// String returns a short description of the network
func (nt *Network) String() string {
	return fmt.Sprintf("Network: %s Units: %v Prjn: %v", nt.Nm, nt.Units.Shp.Shp, nt.Lat.String())
}
