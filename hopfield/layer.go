// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/etable/etensor"
	"github.com/goki/gi/giv"
	"github.com/goki/mat32"
)

// RecallParams control the asynchronous recall dynamics
type RecallParams struct {
	MaxIter int `def:"50" min:"1" desc:"maximum number of full sweeps over all units before recall stops without converging -- used when no explicit limit is given"`
}

func (rp *RecallParams) Defaults() {
	rp.MaxIter = 50
}

// hopfield.Layer holds the units of the network: their shape, parameters and
// state variables, each recorded as a separate etensor.Float32 in the
// shape of the layer.
type Layer struct {
	Network     *Network                    `copy:"-" json:"-" xml:"-" view:"-" desc:"our parent network"`
	Nm          string                      `desc:"Name of the layer"`
	Cls         string                      `desc:"Class is for applying parameter styles, can be space separated multple tags"`
	Shp         etensor.Shape               `desc:"shape of the layer -- typically 2D Y, X matching the image of the patterns -- order is outer-to-inner (row major)"`
	Typ         emer.LayerType              `desc:"type of layer -- matches against .Class parameter styles (e.g., .Hidden etc)"`
	Recall      RecallParams                `view:"inline" desc:"recall dynamics parameters"`
	States      map[string]*etensor.Float32 `desc:"map of states of the layer (activation, threshold etc) -- name is variable name, tensor holds the data"`
	VarNamesMap map[string]int              `view:"-" desc:"map of variable names with index into the VarNames list"`
	VarNames    []string                    `view:"-" desc:"list of variable names alpha order"`
}

// InitName sets the name and the parent network that this layer belongs to
func (ly *Layer) InitName(name string, net *Network) {
	ly.Nm = name
	ly.Network = net
}

func (ly *Layer) Name() string               { return ly.Nm }
func (ly *Layer) SetName(nm string)          { ly.Nm = nm }
func (ly *Layer) Label() string              { return ly.Nm }
func (ly *Layer) Class() string              { return ly.Typ.String() + " " + ly.Cls }
func (ly *Layer) SetClass(cls string)        { ly.Cls = cls }
func (ly *Layer) TypeName() string           { return "Layer" } // type category, for params..
func (ly *Layer) Type() emer.LayerType       { return ly.Typ }
func (ly *Layer) SetType(typ emer.LayerType) { ly.Typ = typ }
func (ly *Layer) Shape() *etensor.Shape      { return &ly.Shp }
func (ly *Layer) Is2D() bool                 { return ly.Shp.NumDims() == 2 }
func (ly *Layer) NUnits() int                { return ly.Shp.Len() }

func (ly *Layer) Defaults() {
	ly.Recall.Defaults()
}

// SetShape sets the layer shape and also uses default dim names
func (ly *Layer) SetShape(shape []int) {
	var dnms []string
	if len(shape) == 2 {
		dnms = emer.LayerDimNames2D
	}
	ly.Shp.SetShape(shape, nil, dnms) // row major default
}

// AddVar adds a state variable to this layer.  Each variable is recorded in
// a separate etensor.Float32 allocated in Build.
func (ly *Layer) AddVar(varNm string) {
	if ly.VarNamesMap == nil {
		ly.VarNamesMap = make(map[string]int)
	}
	ly.VarNamesMap[varNm] = 0
}

// AddVars adds state variables to this layer
func (ly *Layer) AddVars(varNms []string) {
	for _, nm := range varNms {
		ly.AddVar(nm)
	}
}

// AddActNetThrVars adds the standard Act, Net, Thr variables:
// Act is the bipolar state, Net the local field and Thr the threshold.
func (ly *Layer) AddActNetThrVars() {
	ly.AddVars([]string{"Act", "Net", "Thr"})
}

// Config configures the basic properties of the layer
func (ly *Layer) Config(shape []int, typ emer.LayerType) {
	ly.SetShape(shape)
	ly.Typ = typ
	ly.AddActNetThrVars()
}

// ApplyParams applies given parameter style Sheet to this layer.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
// it always prints a message if a parameter fails to be set.
// returns true if any params were set, and error if there were any errors.
func (ly *Layer) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return pars.Apply(ly, setMsg)
}

// NonDefaultParams returns a listing of all parameters in the Layer that
// are not at their default values -- useful for setting param styles etc.
func (ly *Layer) NonDefaultParams() string {
	return giv.StructNonDefFieldsStr(ly, ly.Nm)
}

// JsonToParams reformates json output to suitable params display output
func JsonToParams(b []byte) string {
	br := strings.Replace(string(b), `"`, ``, -1)
	br = strings.Replace(br, ",\n", "", -1)
	br = strings.Replace(br, "{\n", "{", -1)
	br = strings.Replace(br, "} ", "}\n  ", -1)
	br = strings.Replace(br, "\n }", " }", -1)
	br = strings.Replace(br, "\n  }\n", " }", -1)
	return br[1:] + "\n"
}

// AllParams returns a listing of all parameters in the Layer
func (ly *Layer) AllParams() string {
	str := "/////////////////////////////////////////////////\nLayer: " + ly.Nm + "\n"
	b, _ := json.MarshalIndent(&ly.Recall, "", " ")
	str += "Recall: {\n " + JsonToParams(b)
	return str
}

// BuildVarNames makes the var names from VarNamesMap added previously
func (ly *Layer) BuildVarNames() {
	ly.VarNames = make([]string, len(ly.VarNamesMap))
	i := 0
	for nm := range ly.VarNamesMap {
		ly.VarNames[i] = nm
		i++
	}
	sort.Strings(ly.VarNames)
	for i := range ly.VarNames {
		ly.VarNamesMap[ly.VarNames[i]] = i
	}
}

// UnitVarNames returns a list of variable names available on the units in this layer
func (ly *Layer) UnitVarNames() []string {
	return ly.VarNames
}

// UnitVarIdx returns the index of given variable within the VarNames list,
// or -1 and error message if not found.
func (ly *Layer) UnitVarIdx(varNm string) (int, error) {
	vi, ok := ly.VarNamesMap[varNm]
	if !ok {
		return -1, fmt.Errorf("variable name not found: %s in layer: %s", varNm, ly.Nm)
	}
	return vi, nil
}

// UnitVarNum returns the number of unit-level variables
func (ly *Layer) UnitVarNum() int {
	return len(ly.VarNames)
}

// UnitVal1D returns value of given variable index on given unit, using 1-dimensional index.
// returns NaN on invalid index.
func (ly *Layer) UnitVal1D(varIdx int, idx int) float32 {
	if idx < 0 || idx >= ly.Shp.Len() {
		return mat32.NaN()
	}
	if varIdx < 0 || varIdx >= ly.UnitVarNum() {
		return mat32.NaN()
	}
	vnm := ly.VarNames[varIdx]
	st := ly.States[vnm]
	return float32(st.FloatVal1D(idx))
}

// UnitVals fills in values of given variable name on unit,
// for each unit in the layer, into given float32 slice (only resized if not big enough).
// Returns error on invalid var name.
func (ly *Layer) UnitVals(vals *[]float32, varNm string) error {
	nn := ly.Shp.Len()
	if *vals == nil || cap(*vals) < nn {
		*vals = make([]float32, nn)
	} else if len(*vals) < nn {
		*vals = (*vals)[0:nn]
	}
	_, err := ly.UnitVarIdx(varNm)
	if err != nil {
		nan := mat32.NaN()
		for i := 0; i < nn; i++ {
			(*vals)[i] = nan
		}
		return err
	}
	st := ly.States[varNm]
	for i := 0; i < nn; i++ {
		(*vals)[i] = st.Value1D(i)
	}
	return nil
}

// UnitValsTensor returns values of given variable name on unit
// for each unit in the layer, as a float32 tensor in same shape as layer units.
func (ly *Layer) UnitValsTensor(tsr etensor.Tensor, varNm string) error {
	if tsr == nil {
		err := fmt.Errorf("hopfield.UnitValsTensor: Tensor is nil")
		log.Println(err)
		return err
	}
	nn := ly.Shp.Len()
	tsr.SetShape(ly.Shp.Shp, ly.Shp.Strd, ly.Shp.Nms)
	_, err := ly.UnitVarIdx(varNm)
	if err != nil {
		nan := math.NaN()
		for i := 0; i < nn; i++ {
			tsr.SetFloat1D(i, nan)
		}
		return err
	}
	st := ly.States[varNm]
	for i := 0; i < nn; i++ {
		tsr.SetFloat1D(i, float64(st.Value1D(i)))
	}
	return nil
}

// UnitVal returns value of given variable name on given unit,
// using shape-based dimensional index
func (ly *Layer) UnitVal(varNm string, idx []int) float32 {
	_, err := ly.UnitVarIdx(varNm)
	if err != nil {
		return mat32.NaN()
	}
	st := ly.States[varNm]
	return st.Value(idx)
}

// Build constructs the layer state tensors
func (ly *Layer) Build() error {
	nu := ly.Shp.Len()
	if nu == 0 {
		return fmt.Errorf("Build Layer %v: no units specified in Shape", ly.Nm)
	}
	ly.BuildVarNames()
	ly.States = make(map[string]*etensor.Float32, len(ly.VarNamesMap))
	for vn := range ly.VarNamesMap {
		st := etensor.NewFloat32Shape(&ly.Shp, nil)
		ly.States[vn] = st
	}
	return nil
}

// InitActs sets all unit activations and local fields to zero
func (ly *Layer) InitActs() {
	for _, vn := range []string{"Act", "Net"} {
		st := ly.States[vn]
		for i := range st.Values {
			st.Values[i] = 0
		}
	}
}

// VarRange returns the min / max values for given variable
func (ly *Layer) VarRange(varNm string) (min, max float32, err error) {
	sz := ly.Shp.Len()
	if sz == 0 {
		return
	}
	_, err = ly.UnitVarIdx(varNm)
	if err != nil {
		return
	}
	st := ly.States[varNm]
	v0 := st.Value1D(0)
	min = v0
	max = v0
	for i := 1; i < sz; i++ {
		vl := st.Value1D(i)
		if vl < min {
			min = vl
		}
		if vl > max {
			max = vl
		}
	}
	return
}
