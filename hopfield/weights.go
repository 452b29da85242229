// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hopfield

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/emer/emergent/weights"
	"github.com/goki/gi/gi"
	"github.com/goki/ki/indent"
)

// SaveWtsJSON saves network weights and thresholds to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (nt *Network) SaveWtsJSON(filename gi.FileName) error {
	fp, err := os.Create(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		err = nt.WriteWtsJSON(gzr)
		if cerr := gzr.Close(); err == nil {
			err = cerr
		}
	} else {
		err = nt.WriteWtsJSON(fp)
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Println(err)
	}
	return err
}

// OpenWtsJSON opens network weights and thresholds from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (nt *Network) OpenWtsJSON(filename gi.FileName) error {
	fp, err := os.Open(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return nt.ReadWtsJSON(gzr)
	}
	return nt.ReadWtsJSON(fp)
}

// wtsWriter accumulates the first write error so the JSON writing code can
// stay a straight sequence of writes
type wtsWriter struct {
	w     io.Writer
	depth int
	err   error
}

func (ww *wtsWriter) line(s string) {
	if ww.err != nil {
		return
	}
	if _, err := ww.w.Write(indent.TabBytes(ww.depth)); err != nil {
		ww.err = err
		return
	}
	_, ww.err = ww.w.Write([]byte(s))
}

// fmtWt writes the shortest text that reads back as the same float32
func fmtWt(wt float32) string {
	return strconv.FormatFloat(float64(wt), 'g', -1, 32)
}

// WriteWtsJSON writes the weights from the receiver-side perspective in the
// emergent weights JSON format: the thresholds are the "Thr" unit variable
// of the units layer, and each receiving unit of the lateral projection lists
// its sending units and weights.  We build in the indentation logic to make
// it much faster and more efficient.
func (nt *Network) WriteWtsJSON(w io.Writer) error {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	ww := &wtsWriter{w: w}
	ww.line("{\n")
	ww.depth++
	ww.line(fmt.Sprintf("\"Network\": %q,\n", nt.Nm))
	ww.line("\"MetaData\": {\n")
	ww.depth++
	mks := make([]string, 0, len(nt.MetaData))
	for mk := range nt.MetaData {
		mks = append(mks, mk)
	}
	sort.Strings(mks)
	for i, mk := range mks {
		term := ",\n"
		if i == len(mks)-1 {
			term = "\n"
		}
		ww.line(fmt.Sprintf("%q: %q%s", mk, nt.MetaData[mk], term))
	}
	ww.depth--
	ww.line("},\n")
	ww.line("\"Layers\": [\n")
	ww.depth++
	nt.writeLayerWts(ww)
	ww.depth--
	ww.line("]\n")
	ww.depth--
	ww.line("}\n")
	return ww.err
}

func (nt *Network) writeLayerWts(ww *wtsWriter) {
	ly := nt.Units
	pj := nt.Lat
	thr := ly.States["Thr"].Values
	ths := make([]string, len(thr))
	for i, th := range thr {
		ths[i] = fmtWt(th)
	}
	ww.line("{\n")
	ww.depth++
	ww.line(fmt.Sprintf("\"Layer\": %q,\n", ly.Nm))
	ww.line("\"Units\": {\n")
	ww.depth++
	ww.line("\"Thr\": [ " + strings.Join(ths, ", ") + " ]\n")
	ww.depth--
	ww.line("},\n")
	ww.line("\"Prjns\": [\n")
	ww.depth++
	ww.line("{\n")
	ww.depth++
	ww.line(fmt.Sprintf("\"From\": %q,\n", pj.Send.Name()))
	ww.line("\"MetaData\": {\n")
	ww.depth++
	ww.line(fmt.Sprintf("\"ThrOn\": \"%v\"\n", pj.Learn.Thr.On))
	ww.depth--
	ww.line("},\n")
	ww.line("\"Rs\": [\n")
	ww.depth++
	wts := pj.States["Wt"].Values
	nr := len(pj.RConN)
	for ri := 0; ri < nr; ri++ {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		sis := make([]string, nc)
		wvs := make([]string, nc)
		for ci := 0; ci < nc; ci++ {
			sis[ci] = strconv.Itoa(int(pj.RConIdx[st+ci]))
			wvs[ci] = fmtWt(wts[st+ci])
		}
		ww.line("{\n")
		ww.depth++
		ww.line(fmt.Sprintf("\"Ri\": %v,\n", ri))
		ww.line(fmt.Sprintf("\"N\": %v,\n", nc))
		ww.line("\"Si\": [ " + strings.Join(sis, ", ") + " ],\n")
		ww.line("\"Wt\": [ " + strings.Join(wvs, ", ") + " ]\n")
		ww.depth--
		if ri == nr-1 {
			ww.line("}\n")
		} else {
			ww.line("},\n")
		}
	}
	ww.depth--
	ww.line("]\n")
	ww.depth--
	ww.line("}\n")
	ww.depth--
	ww.line("]\n")
	ww.depth--
	ww.line("}\n")
}

// ReadWtsJSON reads network weights from the receiver-side perspective
// in a JSON text format.  Reads entire file into a temporary weights.Network
// structure that is then passed to SetWts.
func (nt *Network) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	if nw == nil {
		err = fmt.Errorf("hopfield.ReadWtsJSON: %w", io.ErrUnexpectedEOF)
		log.Println(err)
		return err
	}
	err = nt.SetWts(nw)
	if err != nil {
		log.Println(err)
	}
	return err
}

// SetWts sets the weights and thresholds from weights.Network decoded values.
// Every value is checked against the size of this network before anything is
// written, so on error the existing weights and thresholds are unchanged.
// Synapses not listed in the file are zero.
func (nt *Network) SetWts(nw *weights.Network) error {
	if nw == nil {
		return fmt.Errorf("hopfield.SetWts: %w", io.ErrUnexpectedEOF)
	}
	n := nt.Size()
	var lw *weights.Layer
	for li := range nw.Layers {
		if nw.Layers[li].Layer == nt.Units.Nm {
			lw = &nw.Layers[li]
			break
		}
	}
	if lw == nil {
		return fmt.Errorf("hopfield.SetWts: no weights for layer %q", nt.Units.Nm)
	}
	thr := make([]float32, n)
	if ths, ok := lw.Units["Thr"]; ok {
		if len(ths) != n {
			return fmt.Errorf("hopfield.SetWts: Thr: %w", dimErr("SetWts", n, len(ths)))
		}
		copy(thr, ths)
	}
	pj := nt.Lat
	wts := make([]float32, len(pj.RConIdx))
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		if pw.From != pj.Send.Name() {
			continue
		}
		for i := range pw.Rs {
			pr := &pw.Rs[i]
			if pr.Ri < 0 || pr.Ri >= n {
				return fmt.Errorf("hopfield.SetWts: recv unit %d: %w", pr.Ri, dimErr("SetWts", n, pr.Ri+1))
			}
			if len(pr.Si) != len(pr.Wt) {
				return fmt.Errorf("hopfield.SetWts: recv unit %d: %d send indexes for %d weights", pr.Ri, len(pr.Si), len(pr.Wt))
			}
			for ci, si := range pr.Si {
				syi := pj.SynIdx(si, pr.Ri)
				if syi < 0 {
					return fmt.Errorf("hopfield.SetWts: %w: no synapse from %d to %d", ErrDimMismatch, si, pr.Ri)
				}
				wts[syi] = pr.Wt[ci]
			}
		}
	}

	nt.mu.Lock()
	defer nt.mu.Unlock()
	if nw.Network != "" {
		nt.Nm = nw.Network
	}
	for mk, mv := range nw.MetaData {
		nt.MetaData[mk] = mv
	}
	nt.swapWts(wts, thr)
	return nil
}
