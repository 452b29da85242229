// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emer/hopfield/runstore"
)

// Runs command flags
var (
	runsDB     string
	runsDriver string
	runsLimit  int
	runsFormat string
)

// RunsCmd lists recorded recall runs.
var RunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded recall runs",
	Example: `  hopfield runs --db runs.db --limit 20

  # MySQL
  hopfield runs --driver mysql --db 'user:pass@tcp(localhost:3306)/hopfield'

  # MySQL or Postgres from DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME (or .env)
  hopfield runs --driver postgres`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := dbSource(runsDriver, runsDB)
		if err != nil {
			return err
		}
		st, err := runstore.Open(runsDriver, dsn)
		if err != nil {
			return err
		}
		defer st.Close()
		runs, err := st.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if runsFormat == "json" {
			output, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(output))
			return nil
		}
		fmt.Printf("%-36s  %-19s  %-10s  %6s  %6s  %10s  %7s\n", "ID", "Time", "Status", "Units", "Sweeps", "Energy", "Hamming")
		for _, r := range runs {
			fmt.Printf("%-36s  %-19s  %-10s  %6d  %6d  %10.4g  %7d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Status, r.Units, r.Sweeps, r.Energy, r.Hamming)
		}
		return nil
	},
}

func init() {
	RunsCmd.Flags().StringVar(&runsDB, "db", "", "Run database (default runs.db, or the DB_* environment for mysql and postgres)")
	RunsCmd.Flags().StringVar(&runsDriver, "driver", "sqlite", "Run database driver (sqlite|mysql|postgres)")
	RunsCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "Maximum number of runs to list (0 = all)")
	RunsCmd.Flags().StringVar(&runsFormat, "format", "text", "Output format (text|json)")
}
