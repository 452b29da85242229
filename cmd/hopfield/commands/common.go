// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands provides the hopfield CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goki/gi/gi"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/emer/hopfield/hopfield"
)

// Persistent flags
var (
	shapeFlag string
	seedFlag  int64
)

// AddPersistentFlags adds the flags shared by all commands to root
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&shapeFlag, "shape", "s", "9x12", "Pattern shape as WIDTHxHEIGHT")
	root.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "Random seed (0 = time based)")
}

// parseShape parses WIDTHxHEIGHT
func parseShape(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid shape %q: want WIDTHxHEIGHT", s)
	}
	width, err = strconv.Atoi(ws)
	if err == nil {
		height, err = strconv.Atoi(hs)
	}
	if err != nil || width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("invalid shape %q: want positive WIDTHxHEIGHT", s)
	}
	return width, height, nil
}

// unitsShape returns the layer shape (Y, X) for the shape flag
func unitsShape() (shape []int, width int, err error) {
	w, h, err := parseShape(shapeFlag)
	if err != nil {
		return nil, 0, err
	}
	return []int{h, w}, w, nil
}

func seed() int64 {
	if seedFlag != 0 {
		return seedFlag
	}
	return time.Now().UnixNano()
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(seed()))
}

func isTable(fn string) bool {
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".tsv", ".csv":
		return true
	}
	return false
}

// loadPatterns loads a text or table pattern file for units of given shape
func loadPatterns(fn string, shape []int) (*hopfield.PatternSet, error) {
	var ps *hopfield.PatternSet
	var err error
	if isTable(fn) {
		ps, err = hopfield.OpenPatternsTable(gi.FileName(fn), hopfield.PatternsCol)
	} else {
		ps, err = hopfield.OpenPatterns(gi.FileName(fn), shape[1], shape[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	if n := shape[0] * shape[1]; ps.N() > 0 && ps.Size() != n {
		return nil, fmt.Errorf("%s: %w: expected %d units, got %d", fn, hopfield.ErrDimMismatch, n, ps.Size())
	}
	return ps, nil
}

// trainedNet returns a network with weights from wtsFile if given, else
// trained on pats
func trainedNet(shape []int, pats *hopfield.PatternSet, wtsFile string) (*hopfield.Network, error) {
	net, err := hopfield.NewNetwork("Hopfield", shape)
	if err != nil {
		return nil, err
	}
	if wtsFile != "" {
		if err := net.OpenWtsJSON(gi.FileName(wtsFile)); err != nil {
			return nil, fmt.Errorf("%s: %w", wtsFile, err)
		}
		return net, nil
	}
	if err := net.Train(pats); err != nil {
		return nil, err
	}
	return net, nil
}

// sideBySide joins the grids of the patterns column-wise under their titles
func sideBySide(width int, titles []string, pats ...hopfield.Pattern) string {
	cols := make([][]string, len(pats))
	colw := width
	for _, tl := range titles {
		if len(tl) > colw {
			colw = len(tl)
		}
	}
	for i, p := range pats {
		cols[i] = strings.Split(strings.TrimSuffix(p.Grid(width), "\n"), "\n")
	}
	var sb strings.Builder
	for i, tl := range titles {
		if i > 0 {
			sb.WriteString("   ")
		}
		fmt.Fprintf(&sb, "%-*s", colw, tl)
	}
	sb.WriteString("\n")
	for row := range cols[0] {
		for i := range cols {
			if i > 0 {
				sb.WriteString("   ")
			}
			fmt.Fprintf(&sb, "%-*s", colw, cols[i][row])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// dbSource returns the data source name of the run database.  An explicit
// dsn wins.  Otherwise sqlite uses runs.db, and mysql or postgres are
// assembled from the DB_USER, DB_PASSWORD, DB_HOST, DB_PORT and DB_NAME
// environment variables, which may be set in a .env file.
func dbSource(driver, dsn string) (string, error) {
	if dsn != "" {
		return dsn, nil
	}
	if driver == "sqlite" {
		return "runs.db", nil
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return "", fmt.Errorf("%s: --db not given and DB_HOST / DB_NAME not set", driver)
	}
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	port := os.Getenv("DB_PORT")
	switch driver {
	case "mysql":
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, pass, host, port, name), nil
	case "postgres":
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name), nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}
