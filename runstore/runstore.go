// Copyright (c) 2020, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runstore records recall runs of a hopfield.Network in a SQL
// database: SQLite (modernc.org/sqlite, the default), MySQL or Postgres.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/emer/hopfield/hopfield"
)

var (
	// ErrNotFound is returned by Get for an unknown run id.
	ErrNotFound = errors.New("runstore: run not found")

	// ErrClosed is returned for any operation on a closed Store.
	ErrClosed = errors.New("runstore: store closed")
)

// Run is the record of one recall
type Run struct {
	ID        string    `desc:"unique id, assigned by Insert"`
	Network   string    `desc:"name of the network"`
	Units     int       `desc:"number of units"`
	MaxIter   int       `desc:"maximum number of sweeps allowed"`
	Status    string    `desc:"final recall status: Converged or Exhausted"`
	Sweeps    int       `desc:"number of sweeps run"`
	Steps     int       `desc:"number of history entries"`
	Energy    float64   `desc:"energy of the final state"`
	Probe     string    `desc:"initial state, in Pattern String form"`
	Final     string    `desc:"final state, in Pattern String form"`
	Target    string    `desc:"pattern the probe was derived from, if known"`
	Hamming   int       `desc:"Hamming distance from final state to Target, -1 if no Target"`
	CreatedAt time.Time `desc:"time of Insert"`
}

// NewRun returns the record of given recall on net, with target the
// pattern the probe was derived from (nil if unknown).
func NewRun(net *hopfield.Network, rc *hopfield.Recall, maxIter int, target hopfield.Pattern) (*Run, error) {
	fin := rc.Final()
	en, err := net.Energy(fin)
	if err != nil {
		return nil, err
	}
	r := &Run{
		Network: net.Name(),
		Units:   net.Size(),
		MaxIter: maxIter,
		Status:  rc.Status.String(),
		Sweeps:  rc.Sweeps,
		Steps:   len(rc.Hist),
		Energy:  float64(en),
		Probe:   rc.Probe.String(),
		Final:   fin.String(),
		Hamming: -1,
	}
	if target != nil {
		r.Target = target.String()
		r.Hamming = fin.Hamming(target)
	}
	return r, nil
}

// Store is a table of runs in a SQL database
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	driver string
	closed bool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		network VARCHAR(255) NOT NULL,
		n_units INTEGER NOT NULL,
		max_iter INTEGER NOT NULL,
		status VARCHAR(16) NOT NULL,
		sweeps INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		energy DOUBLE PRECISION NOT NULL,
		probe TEXT NOT NULL,
		final TEXT NOT NULL,
		target TEXT NOT NULL,
		hamming INTEGER NOT NULL,
		created_at BIGINT NOT NULL
	)`,
}

// indexes for the drivers that support IF NOT EXISTS on indexes
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
}

// Open opens a run store with given database/sql driver name ("sqlite",
// "mysql" or "postgres") and data source, creating the runs table if needed.
// For sqlite, dsn is a file path or ":memory:".
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("runstore: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("runstore: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection, so an in-memory database is shared and writes are serialized
		db.SetMaxOpenConns(1)
	}
	st := &Store{db: db, driver: driver}
	if err := st.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (st *Store) initSchema() error {
	stmts := schema
	if st.driver != "mysql" {
		stmts = append(append([]string{}, schema...), indexes...)
	}
	for _, s := range stmts {
		if _, err := st.db.Exec(s); err != nil {
			return fmt.Errorf("runstore: create schema: %w", err)
		}
	}
	return nil
}

// rebind converts ? placeholders to the $n form postgres expects
func (st *Store) rebind(q string) string {
	if st.driver != "postgres" {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// Close closes the database
func (st *Store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil
	}
	st.closed = true
	return st.db.Close()
}

// Insert assigns a new id and creation time to r and stores it
func (st *Store) Insert(ctx context.Context, r *Run) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return ErrClosed
	}
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now()
	_, err := st.db.ExecContext(ctx, st.rebind(`
		INSERT INTO runs (id, network, n_units, max_iter, status, sweeps, steps, energy, probe, final, target, hamming, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), r.ID, r.Network, r.Units, r.MaxIter, r.Status, r.Sweeps, r.Steps, r.Energy, r.Probe, r.Final, r.Target, r.Hamming, r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("runstore: insert: %w", err)
	}
	return nil
}

const runCols = `id, network, n_units, max_iter, status, sweeps, steps, energy, probe, final, target, hamming, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	r := &Run{}
	var created int64
	err := sc.Scan(&r.ID, &r.Network, &r.Units, &r.MaxIter, &r.Status, &r.Sweeps, &r.Steps, &r.Energy, &r.Probe, &r.Final, &r.Target, &r.Hamming, &created)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created)
	return r, nil
}

// Get returns the run with given id, or ErrNotFound
func (st *Store) Get(ctx context.Context, id string) (*Run, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.closed {
		return nil, ErrClosed
	}
	row := st.db.QueryRowContext(ctx, st.rebind(`SELECT `+runCols+` FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: get: %w", err)
	}
	return r, nil
}

// List returns up to limit runs, most recent first (all if limit <= 0)
func (st *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.closed {
		return nil, ErrClosed
	}
	q := `SELECT ` + runCols + ` FROM runs ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := st.db.QueryContext(ctx, st.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("runstore: list: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runstore: list: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
