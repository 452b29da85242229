// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/emer/etable/etable"
	"github.com/goki/gi/gi"
	"github.com/spf13/cobra"

	"github.com/emer/hopfield/hopfield"
	"github.com/emer/hopfield/runstore"
)

// Recall command flags
var (
	recallTrain   string
	recallTest    string
	recallWts     string
	recallNoise   float32
	recallMaxIter int
	recallLog     string
	recallDB      string
	recallDriver  string
	recallSteps   bool
)

// RecallCmd recalls a stored pattern from a noisy probe.
var RecallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Recall a stored pattern from a noisy probe",
	Long: `Recall samples a training pattern, makes a probe from it and runs
asynchronous recall until a sweep changes nothing or --max-iter sweeps
have run.

With --test, the probe is the test pattern at the same index as the sampled
training pattern.  Otherwise the probe is the training pattern with each
unit flipped with probability --noise.`,
	Example: `  hopfield recall --train train.txt --shape 9x12 --noise 0.25

  # use saved weights, log every step and record the run
  hopfield recall --train train.txt --test test.txt --wts net.wts.gz --log recall.tsv --db runs.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shape, width, err := unitsShape()
		if err != nil {
			return err
		}
		train, err := loadPatterns(recallTrain, shape)
		if err != nil {
			return err
		}
		net, err := trainedNet(shape, train, recallWts)
		if err != nil {
			return err
		}
		rnd := newRand()
		var truth, probe hopfield.Pattern
		if recallTest != "" {
			test, err := loadPatterns(recallTest, shape)
			if err != nil {
				return err
			}
			truth, probe, err = hopfield.SamplePair(train, test, rnd)
			if err != nil {
				return err
			}
		} else {
			truth, err = train.Sample(rnd)
			if err != nil {
				return err
			}
			probe = hopfield.AddNoise(truth, recallNoise, rnd)
		}
		maxIter := recallMaxIter
		if maxIter <= 0 {
			maxIter = net.Units.Recall.MaxIter
		}
		rc, err := net.Predict(probe, maxIter)
		if err != nil {
			return err
		}

		n := net.Size()
		if recallSteps {
			for sw := 0; sw < rc.Sweeps; sw++ {
				fmt.Printf("Sweep %d\n%s\n", sw+1, rc.Hist[(sw+1)*n-1].Grid(width))
			}
		}
		fmt.Print(sideBySide(width, []string{"Ground truth", "Input", "Output"}, truth, probe, rc.Final()))
		en, _ := net.Energy(rc.Final())
		fmt.Printf("\n%v after %d sweeps (%d flips), energy %g, %d units differ from ground truth\n",
			rc.Status, rc.Sweeps, rc.Flips, en, rc.Final().Hamming(truth))

		if recallLog != "" {
			dt := &etable.Table{}
			hopfield.ConfigRecallLog(dt, shape)
			if err := hopfield.LogRecall(dt, rc, net); err != nil {
				return err
			}
			if err := dt.SaveCSV(gi.FileName(recallLog), etable.Tab, etable.Headers); err != nil {
				return err
			}
		}
		if recallDB != "" || recallDriver != "sqlite" {
			dsn, err := dbSource(recallDriver, recallDB)
			if err != nil {
				return err
			}
			st, err := runstore.Open(recallDriver, dsn)
			if err != nil {
				return err
			}
			defer st.Close()
			run, err := runstore.NewRun(net, rc, maxIter, truth)
			if err != nil {
				return err
			}
			if err := st.Insert(context.Background(), run); err != nil {
				return err
			}
			fmt.Printf("run %s\n", run.ID)
		}
		return nil
	},
}

func init() {
	RecallCmd.Flags().StringVarP(&recallTrain, "train", "t", "", "Training pattern file (required)")
	RecallCmd.Flags().StringVar(&recallTest, "test", "", "Test pattern file, aligned with the training file")
	RecallCmd.Flags().StringVarP(&recallWts, "wts", "w", "", "Weights file to load instead of training")
	RecallCmd.Flags().Float32Var(&recallNoise, "noise", 0.25, "Probability of flipping each unit of the probe")
	RecallCmd.Flags().IntVar(&recallMaxIter, "max-iter", 0, "Maximum number of sweeps (0 = network default)")
	RecallCmd.Flags().StringVar(&recallLog, "log", "", "Write a step-by-step recall log table to this file")
	RecallCmd.Flags().StringVar(&recallDB, "db", "", "Record the run in this database (mysql and postgres default to the DB_* environment)")
	RecallCmd.Flags().StringVar(&recallDriver, "driver", "sqlite", "Run database driver (sqlite|mysql|postgres)")
	RecallCmd.Flags().BoolVar(&recallSteps, "steps", false, "Print the state after every sweep")
	RecallCmd.MarkFlagRequired("train")
}
