// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/gi/giv"
	"github.com/goki/mat32"
)

// ThrParams control the per-unit thresholds derived from the learned weights
type ThrParams struct {
	On   bool    `def:"false" desc:"compute each unit's threshold as the column sum of the learned weights into it -- when off, thresholds are always zero"`
	Gain float32 `def:"1" viewif:"On" desc:"multiplier on the weight column sums"`
}

func (tp *ThrParams) Defaults() {
	tp.On = false
	tp.Gain = 1
}

// LearnParams control the outer-product (Hebbian) storage rule
type LearnParams struct {
	Thr ThrParams `view:"inline" desc:"threshold (bias) derived from the weights"`
}

func (lp *LearnParams) Defaults() {
	lp.Thr.Defaults()
}

// Prjn is the recurrent projection of the units onto themselves, holding the
// synaptic weights.  Connectivity is built from a prjn.Pattern, and weights
// are stored receiver-major: the synapses for receiving unit ri start at
// RConIdxSt[ri], so for full connectivity row ri of the weight matrix is
// contiguous and ordered by sending unit.
type Prjn struct {
	Cls         string                      `desc:"Class is for applying parameter styles, can be space separated multple tags"`
	Notes       string                      `desc:"can record notes about this projection here"`
	Send        *Layer                      `desc:"sending layer for this projection"`
	Recv        *Layer                      `desc:"receiving layer for this projection -- same as Send for the recurrent projection"`
	Pat         prjn.Pattern                `desc:"pattern of connectivity"`
	Typ         emer.PrjnType               `desc:"type of projection -- Lateral for the recurrent projection -- matches against .Cls parameter styles"`
	Learn       LearnParams                 `view:"add-fields" desc:"storage rule parameters"`
	RConN       []int32                     `view:"-" desc:"number of recv connections for each neuron in the receiving layer, as a flat list"`
	RConNAvgMax minmax.AvgMax32             `inactive:"+" desc:"average and maximum number of recv connections in the receiving layer"`
	RConIdxSt   []int32                     `view:"-" desc:"starting index into ConIdx list for each neuron in receiving layer -- just a list incremented by ConN"`
	RConIdx     []int32                     `view:"-" desc:"index of other neuron on sending side of projection, ordered by the receiving layer's order of units as the outer loop (each start is in ConIdxSt), and then by the sending layer's units within that"`
	SSynIdx     []int32                     `view:"-" desc:"index of synaptic state values for each send unit x connection, for the sending projection which does not own the synapses, and instead indexes into recv-ordered list"`
	SConN       []int32                     `view:"-" desc:"number of sending connections for each neuron in the sending layer, as a flat list"`
	SConNAvgMax minmax.AvgMax32             `inactive:"+" desc:"average and maximum number of sending connections in the sending layer"`
	SConIdxSt   []int32                     `view:"-" desc:"starting index into ConIdx list for each neuron in sending layer -- just a list incremented by ConN"`
	SConIdx     []int32                     `view:"-" desc:"index of other neuron on receiving side of projection, ordered by the sending layer's order of units as the outer loop (each start is in ConIdxSt), and then by the sending layer's units within that"`
	States      map[string]*etensor.Float32 `desc:"map of states of the projection (weights, etc) -- name is variable name, tensor holds the data"`
	VarNamesMap map[string]int              `view:"-" desc:"map of variable names with index into the VarNames list"`
	VarNames    []string                    `view:"-" desc:"list of variable names alpha order"`
}

func (pj *Prjn) TypeName() string     { return "Prjn" } // always, for params..
func (pj *Prjn) Class() string        { return pj.Typ.String() + " " + pj.Cls }
func (pj *Prjn) SetClass(cls string)  { pj.Cls = cls }
func (pj *Prjn) Label() string        { return pj.Name() }
func (pj *Prjn) Type() emer.PrjnType  { return pj.Typ }
func (pj *Prjn) PrjnTypeName() string { return pj.Typ.String() }
func (pj *Prjn) Name() string {
	return pj.Send.Name() + "To" + pj.Recv.Name()
}

func (pj *Prjn) Defaults() {
	pj.Learn.Defaults()
}

// Connect sets the connectivity between two layers and the pattern to use in interconnecting them
func (pj *Prjn) Connect(slay, rlay *Layer, pat prjn.Pattern, typ emer.PrjnType) {
	pj.Send = slay
	pj.Recv = rlay
	pj.Pat = pat
	pj.Typ = typ
	pj.AddVar("Wt")
}

// Validate tests for non-nil settings for the projection -- returns error
// message or nil if no problems (and logs them if logmsg = true)
func (pj *Prjn) Validate(logmsg bool) error {
	emsg := ""
	if pj.Pat == nil {
		emsg += "Pat is nil; "
	}
	if pj.Recv == nil {
		emsg += "Recv is nil; "
	}
	if pj.Send == nil {
		emsg += "Send is nil; "
	}
	if emsg != "" {
		err := errors.New(emsg)
		if logmsg {
			log.Println(emsg)
		}
		return err
	}
	return nil
}

// AddVar adds a synapse-level variable, allocated in Build
func (pj *Prjn) AddVar(varNm string) {
	if pj.VarNamesMap == nil {
		pj.VarNamesMap = make(map[string]int)
	}
	pj.VarNamesMap[varNm] = 0
}

// BuildStru constructs the full connectivity among the layers as specified in this projection.
// Calls Validate and returns false if invalid.
// Pat.Connect is called to get the pattern of the connection.
// Then the connection indexes are configured according to that pattern.
func (pj *Prjn) BuildStru() error {
	err := pj.Validate(true)
	if err != nil {
		return err
	}
	ssh := pj.Send.Shape()
	rsh := pj.Recv.Shape()
	sendn, recvn, cons := pj.Pat.Connect(ssh, rsh, pj.Recv == pj.Send)
	slen := ssh.Len()
	rlen := rsh.Len()
	tcons := pj.SetNIdxSt(&pj.SConN, &pj.SConNAvgMax, &pj.SConIdxSt, sendn)
	tconr := pj.SetNIdxSt(&pj.RConN, &pj.RConNAvgMax, &pj.RConIdxSt, recvn)
	if tconr != tcons {
		log.Printf("%v programmer error: total recv cons %v != total send cons %v\n", pj.String(), tconr, tcons)
	}
	pj.RConIdx = make([]int32, tconr)
	pj.SSynIdx = make([]int32, tconr)
	pj.SConIdx = make([]int32, tcons)
	sconN := make([]int32, slen) // temporary mem needed to tracks cur n of sending cons

	cbits := cons.Values
	for ri := 0; ri < rlen; ri++ {
		rbi := ri * slen     // recv bit index
		rtcn := pj.RConN[ri] // number of cons
		rst := pj.RConIdxSt[ri]
		rci := int32(0)
		for si := 0; si < slen; si++ {
			if !cbits.Index(rbi + si) { // no connection
				continue
			}
			sst := pj.SConIdxSt[si]
			if rci >= rtcn {
				log.Printf("%v programmer error: recv target total con number: %v exceeded at recv idx: %v, send idx: %v\n", pj.String(), rtcn, ri, si)
				break
			}
			pj.RConIdx[rst+rci] = int32(si)

			sci := sconN[si]
			stcn := pj.SConN[si]
			if sci >= stcn {
				log.Printf("%v programmer error: send target total con number: %v exceeded at recv idx: %v, send idx: %v\n", pj.String(), stcn, ri, si)
				break
			}
			pj.SConIdx[sst+sci] = int32(ri)
			pj.SSynIdx[sst+sci] = rst + rci
			(sconN[si])++
			rci++
		}
	}
	return nil
}

// SetNIdxSt sets the *ConN and *ConIdxSt values given n tensor from Pat.
// Returns total number of connections for this direction.
func (pj *Prjn) SetNIdxSt(n *[]int32, avgmax *minmax.AvgMax32, idxst *[]int32, tn *etensor.Int32) int32 {
	ln := tn.Len()
	tnv := tn.Values
	*n = make([]int32, ln)
	*idxst = make([]int32, ln)
	idx := int32(0)
	avgmax.Init()
	for i := 0; i < ln; i++ {
		nv := tnv[i]
		(*n)[i] = nv
		(*idxst)[i] = idx
		idx += nv
		avgmax.UpdateVal(float32(nv), i)
	}
	avgmax.CalcAvg()
	return idx
}

// String satisfies fmt.Stringer for prjn
func (pj *Prjn) String() string {
	str := ""
	if pj.Recv == nil {
		str += "recv=nil; "
	} else {
		str += pj.Recv.Name() + " <- "
	}
	if pj.Send == nil {
		str += "send=nil"
	} else {
		str += pj.Send.Name()
	}
	if pj.Pat == nil {
		str += " Pat=nil"
	} else {
		str += " Pat=" + pj.Pat.Name()
	}
	return str
}

// ApplyParams applies given parameter style Sheet to this projection.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
// it always prints a message if a parameter fails to be set.
// returns true if any params were set, and error if there were any errors.
func (pj *Prjn) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	return pars.Apply(pj, setMsg)
}

// NonDefaultParams returns a listing of all parameters in the Prjn that
// are not at their default values -- useful for setting param styles etc.
func (pj *Prjn) NonDefaultParams() string {
	pth := pj.Recv.Name() + "." + pj.Name() // redundant but clearer..
	return giv.StructNonDefFieldsStr(pj, pth)
}

// AllParams returns a listing of all parameters in the Prjn
func (pj *Prjn) AllParams() string {
	str := "///////////////////////////////////////////////////\nPrjn: " + pj.Name() + "\n"
	b, _ := json.MarshalIndent(&pj.Learn, "", " ")
	str += "Learn: {\n " + JsonToParams(b)
	return str
}

// BuildVarNames makes the var names from VarNamesMap added previously
func (pj *Prjn) BuildVarNames() {
	pj.VarNames = make([]string, len(pj.VarNamesMap))
	i := 0
	for nm := range pj.VarNamesMap {
		pj.VarNames[i] = nm
		i++
	}
	sort.Strings(pj.VarNames)
	for i := range pj.VarNames {
		pj.VarNamesMap[pj.VarNames[i]] = i
	}
}

func (pj *Prjn) SynVarNames() []string {
	return pj.VarNames
}

// SynIdx returns the index of the synapse between given send, recv unit indexes
// (1D, flat indexes). Returns -1 if synapse not found between these two neurons.
// Requires searching within connections for receiving unit.
func (pj *Prjn) SynIdx(sidx, ridx int) int {
	if ridx < 0 || ridx >= len(pj.RConN) {
		return -1
	}
	nc := int(pj.RConN[ridx])
	st := int(pj.RConIdxSt[ridx])
	for ci := 0; ci < nc; ci++ {
		si := int(pj.RConIdx[st+ci])
		if si != sidx {
			continue
		}
		return int(st + ci)
	}
	return -1
}

// SynVarIdx returns the index of given variable within the synapse,
// according to *this prjn's* SynVarNames() list (using a map to lookup index),
// or -1 and error message if not found.
func (pj *Prjn) SynVarIdx(varNm string) (int, error) {
	vi, ok := pj.VarNamesMap[varNm]
	if !ok {
		return -1, fmt.Errorf("variable name not found: %s in Prjn: %s", varNm, pj.Name())
	}
	return vi, nil
}

// SynVarNum returns the number of synapse-level variables
func (pj *Prjn) SynVarNum() int {
	return len(pj.VarNames)
}

// Syn1DNum returns the number of synapses for this prjn as a 1D array.
func (pj *Prjn) Syn1DNum() int {
	return len(pj.RConIdx)
}

// SynVal1D returns value of given variable index (from SynVarIdx) on given SynIdx.
// Returns NaN on invalid index.
func (pj *Prjn) SynVal1D(varIdx int, synIdx int) float32 {
	if varIdx < 0 || varIdx >= pj.SynVarNum() {
		return mat32.NaN()
	}
	vnm := pj.VarNames[varIdx]
	st := pj.States[vnm]
	if synIdx < 0 || synIdx >= st.Len() {
		return mat32.NaN()
	}
	return st.Value1D(synIdx)
}

// SynVal returns value of given variable name on the synapse
// between given send, recv unit indexes (1D, flat indexes).
// Returns mat32.NaN() for access errors.
func (pj *Prjn) SynVal(varNm string, sidx, ridx int) float32 {
	vidx, err := pj.SynVarIdx(varNm)
	if err != nil {
		return mat32.NaN()
	}
	synIdx := pj.SynIdx(sidx, ridx)
	return pj.SynVal1D(vidx, synIdx)
}

// SetSynVal sets value of given variable name on the synapse
// between given send, recv unit indexes (1D, flat indexes)
// returns error for access errors.
// It does not lock the network and sets only one direction: use
// Network.SetWt to keep the weights symmetric while recall may be running.
func (pj *Prjn) SetSynVal(varNm string, sidx, ridx int, val float32) error {
	_, err := pj.SynVarIdx(varNm)
	if err != nil {
		return err
	}
	synIdx := pj.SynIdx(sidx, ridx)
	if synIdx < 0 {
		return fmt.Errorf("no synapse from %d to %d in Prjn: %s", sidx, ridx, pj.Name())
	}
	pj.States[varNm].Values[synIdx] = val
	return nil
}

// Build constructs the full connectivity among the layers as specified in this projection.
// Calls BuildStru and then allocates the synaptic state values accordingly.
func (pj *Prjn) Build() error {
	if err := pj.BuildStru(); err != nil {
		return err
	}
	pj.BuildVarNames()
	pj.States = make(map[string]*etensor.Float32, len(pj.VarNamesMap))
	ncons := len(pj.RConIdx)
	for vn := range pj.VarNamesMap {
		st := etensor.NewFloat32([]int{ncons}, nil, nil)
		pj.States[vn] = st
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Learn

// HebbWts returns the outer-product storage weights for given patterns,
// in synapse order: W = (1/n) sum_p p p^T - (m/n) I, where n is the number of
// units and m the number of patterns counting duplicates.  Self connections
// thus cancel to exactly zero.  The projection state is not modified.
func (pj *Prjn) HebbWts(pats *PatternSet) []float32 {
	rlen := pj.Recv.Shp.Len()
	fn := float32(rlen)
	fm := float32(pats.N())
	wts := make([]float32, len(pj.RConIdx))
	for ri := 0; ri < rlen; ri++ {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		for ci := 0; ci < nc; ci++ {
			si := int(pj.RConIdx[st+ci])
			var sum float32
			for _, p := range pats.pats {
				sum += p[ri] * p[si]
			}
			wt := sum / fn
			if si == ri {
				wt -= fm / fn
			}
			wts[st+ci] = wt
		}
	}
	return wts
}

// ThrFmWts returns per-unit thresholds for given weights (in synapse order):
// zero unless Learn.Thr.On, in which case the threshold of unit i is Gain times
// the sum of the weights it sends, i.e., column i of the weight matrix.
func (pj *Prjn) ThrFmWts(wts []float32) []float32 {
	slen := pj.Send.Shp.Len()
	thr := make([]float32, slen)
	if !pj.Learn.Thr.On {
		return thr
	}
	for si := 0; si < slen; si++ {
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		var sum float32
		for ci := 0; ci < nc; ci++ {
			sum += wts[pj.SSynIdx[st+ci]]
		}
		thr[si] = pj.Learn.Thr.Gain * sum
	}
	return thr
}

// NetInput returns the local field of receiving unit ri given the sending
// activations: the dot product of row ri of the weights with acts.
func (pj *Prjn) NetInput(ri int, acts []float32) float32 {
	wts := pj.States["Wt"].Values
	nc := int(pj.RConN[ri])
	st := int(pj.RConIdxSt[ri])
	var net float32
	for ci := 0; ci < nc; ci++ {
		net += wts[st+ci] * acts[pj.RConIdx[st+ci]]
	}
	return net
}
