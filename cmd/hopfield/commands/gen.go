// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/emer/emergent/patgen"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/goki/gi/gi"
	"github.com/spf13/cobra"

	"github.com/emer/hopfield/hopfield"
)

// Gen command flags
var (
	genN     int
	genPctOn float64
	genOut   string
)

// GenCmd generates random bipolar patterns.
var GenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate random bipolar patterns",
	Long: `Generate random bipolar patterns with a fixed fraction of +1 units, each a
random permutation.  Output is a tab-separated table if --out ends in .tsv,
otherwise the plain text format.`,
	Example: `  hopfield gen --n 10 --shape 10x10 --pct-on 50 --out pats.tsv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, width, err := unitsShape()
		if err != nil {
			return err
		}
		if genN < 1 {
			return fmt.Errorf("--n must be positive")
		}
		ps, err := genPatterns(genN, shape, genPctOn)
		if err != nil {
			return err
		}
		if err := savePatterns(genOut, ps, shape, width); err != nil {
			return err
		}
		fmt.Printf("wrote %d patterns of %d units to %s\n", ps.N(), ps.Size(), genOut)
		return nil
	},
}

// savePatterns writes ps to fn as a table (.tsv, .csv) or plain text
func savePatterns(fn string, ps *hopfield.PatternSet, shape []int, width int) error {
	if isTable(fn) {
		dt, err := ps.Table("Patterns", shape)
		if err != nil {
			return err
		}
		return dt.SaveCSV(gi.FileName(fn), etable.Tab, etable.Headers)
	}
	fp, err := os.Create(fn)
	if err != nil {
		return err
	}
	err = hopfield.WritePatterns(fp, ps, width)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

// genPatterns returns npats random patterns of given shape with pctOn
// percent of units at +1, using patgen (seeded globally)
func genPatterns(npats int, shape []int, pctOn float64) (*hopfield.PatternSet, error) {
	rand.Seed(seed())
	n := shape[0] * shape[1]
	tsr := etensor.NewFloat32([]int{npats, shape[0], shape[1]}, nil, nil)
	patgen.PermutedBinaryRows(tsr, patgen.NFmPct(float32(pctOn/100), n), 1, -1)
	pats := make([]hopfield.Pattern, npats)
	for i := range pats {
		pats[i] = hopfield.Pattern(tsr.Values[i*n : (i+1)*n])
	}
	return hopfield.NewPatternSet(pats, false, nil)
}

func init() {
	GenCmd.Flags().IntVarP(&genN, "n", "n", 10, "Number of patterns")
	GenCmd.Flags().Float64Var(&genPctOn, "pct-on", 50, "Percent of units at +1 in each pattern")
	GenCmd.Flags().StringVarP(&genOut, "out", "o", "patterns.tsv", "Output file (.tsv table or plain text)")
}
