// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hopfield generates bipolar patterns, stores them in a Hopfield
// network and recalls them from noisy probes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emer/hopfield/cmd/hopfield/commands"
)

var rootCmd = &cobra.Command{
	Use:   "hopfield",
	Short: "Hopfield associative memory",
	Long: `hopfield stores bipolar patterns in a discrete Hopfield network with the
outer-product rule and recalls them from noisy or partial probes by
asynchronous updates.

Pattern files are either plain text (one row of '1' / other characters per
line, empty line between patterns) or tab-separated tables as written by
the gen command (.tsv).`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	commands.AddPersistentFlags(rootCmd)
	rootCmd.AddCommand(commands.GenCmd)
	rootCmd.AddCommand(commands.TrainCmd)
	rootCmd.AddCommand(commands.RecallCmd)
	rootCmd.AddCommand(commands.RunsCmd)
}
