// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/goki/gi/gi"
	"github.com/spf13/cobra"

	"github.com/emer/hopfield/hopfield"
)

// Train command flags
var (
	trainFile string
	trainWts  string
	trainThr  bool
)

// TrainCmd stores patterns in a network and saves its weights.
var TrainCmd = &cobra.Command{
	Use:   "train",
	Short: "Store patterns and save the weights",
	Example: `  hopfield train --train train.txt --shape 9x12 --wts net.wts.gz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, _, err := unitsShape()
		if err != nil {
			return err
		}
		pats, err := loadPatterns(trainFile, shape)
		if err != nil {
			return err
		}
		net, err := hopfield.NewNetwork("Hopfield", shape)
		if err != nil {
			return err
		}
		net.Lat.Learn.Thr.On = trainThr
		if err := net.Train(pats); err != nil {
			return err
		}
		if err := net.SaveWtsJSON(gi.FileName(trainWts)); err != nil {
			return err
		}
		fmt.Printf("stored %d patterns (%d unique) of %d units in %s\n", pats.N(), pats.NUnique(), net.Size(), trainWts)
		return nil
	},
}

func init() {
	TrainCmd.Flags().StringVarP(&trainFile, "train", "t", "", "Training pattern file (required)")
	TrainCmd.Flags().StringVarP(&trainWts, "wts", "w", "hopfield.wts.gz", "Weights output file (.gz to compress)")
	TrainCmd.Flags().BoolVar(&trainThr, "thr", false, "Use weight column sums as unit thresholds")
	TrainCmd.MarkFlagRequired("train")
}
