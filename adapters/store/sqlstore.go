// Package store persists sampling runs through database/sql, so analysis
// can reload chains without re-running MCMC. The default backend is an
// embedded sqlite file next to the other run artifacts; a postgres DSN
// switches drivers transparently.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // embedded sqlite driver

	"lvilc/domain/chain"
	"lvilc/domain/cosmo"
	"lvilc/internal/errors"
	"lvilc/ports"
)

// insertBatch bounds the rows per INSERT so placeholder counts stay under
// sqlite's default variable limit.
const insertBatch = 100

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	seed       BIGINT    NOT NULL,
	walkers    INTEGER   NOT NULL,
	steps      INTEGER   NOT NULL,
	burn_in    INTEGER   NOT NULL,
	config     TEXT      NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id     TEXT             NOT NULL,
	step       INTEGER          NOT NULL,
	walker     INTEGER          NOT NULL,
	h0_offset  DOUBLE PRECISION NOT NULL,
	log10_mbh  DOUBLE PRECISION NOT NULL,
	t_fall     DOUBLE PRECISION NOT NULL,
	log_prob   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, step, walker)
);
CREATE TABLE IF NOT EXISTS acceptance (
	run_id   TEXT    NOT NULL,
	walker   INTEGER NOT NULL,
	accepted INTEGER NOT NULL,
	PRIMARY KEY (run_id, walker)
);`

// SQLStore implements ports.ChainStore on sqlx.
type SQLStore struct {
	db *sqlx.DB
}

// Open connects to the chain store and ensures the schema exists. DSNs
// beginning with postgres:// use lib/pq; everything else is treated as a
// sqlite file path whose parent directory is created on demand.
func Open(ctx context.Context, dsn string) (*SQLStore, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	if driver == "sqlite" {
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.IOError(dir, err)
			}
		}
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.StoreError("open "+dsn, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.StoreError("migrate", err)
	}
	return &SQLStore{db: db}, nil
}

// sqliteDir returns the parent directory of a sqlite file DSN, or "" when
// the DSN names an in-memory database.
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	if dir := filepath.Dir(path); dir != "." {
		return dir
	}
	return ""
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

type sampleRow struct {
	RunID    string  `db:"run_id"`
	Step     int     `db:"step"`
	Walker   int     `db:"walker"`
	H0Offset float64 `db:"h0_offset"`
	Log10MBh float64 `db:"log10_mbh"`
	TFall    float64 `db:"t_fall"`
	LogProb  float64 `db:"log_prob"`
}

// SaveRun persists the run record and the full chain in one transaction.
func (s *SQLStore) SaveRun(ctx context.Context, run ports.RunRecord, c *chain.Chain) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StoreError("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO runs (id, created_at, seed, walkers, steps, burn_in, config)
		 VALUES (:id, :created_at, :seed, :walkers, :steps, :burn_in, :config)`, run); err != nil {
		return errors.StoreError("insert run", err)
	}

	rows := make([]sampleRow, 0, insertBatch)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO samples (run_id, step, walker, h0_offset, log10_mbh, t_fall, log_prob)
			 VALUES (:run_id, :step, :walker, :h0_offset, :log10_mbh, :t_fall, :log_prob)`, rows); err != nil {
			return errors.StoreError("insert samples", err)
		}
		rows = rows[:0]
		return nil
	}
	for step := 0; step < c.Steps; step++ {
		for w := 0; w < c.Walkers; w++ {
			pos := c.Positions[step][w]
			rows = append(rows, sampleRow{
				RunID:    run.ID,
				Step:     step,
				Walker:   w,
				H0Offset: pos[0],
				Log10MBh: pos[1],
				TFall:    pos[2],
				LogProb:  c.LogProb[step][w],
			})
			if len(rows) >= insertBatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	accQuery := s.db.Rebind(`INSERT INTO acceptance (run_id, walker, accepted) VALUES (?, ?, ?)`)
	for w, n := range c.Accepted {
		if _, err := tx.ExecContext(ctx, accQuery, run.ID, w, n); err != nil {
			return errors.StoreError("insert acceptance", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError("commit", err)
	}
	return nil
}

// LoadRun reloads one run's record and chain.
func (s *SQLStore) LoadRun(ctx context.Context, runID string) (ports.RunRecord, *chain.Chain, error) {
	var run ports.RunRecord
	q := s.db.Rebind(`SELECT id, created_at, seed, walkers, steps, burn_in, config FROM runs WHERE id = ?`)
	if err := s.db.GetContext(ctx, &run, q, runID); err != nil {
		return ports.RunRecord{}, nil, errors.StoreError("load run "+runID, err)
	}

	var maxStep int
	q = s.db.Rebind(`SELECT COALESCE(MAX(step), -1) FROM samples WHERE run_id = ?`)
	if err := s.db.GetContext(ctx, &maxStep, q, runID); err != nil {
		return ports.RunRecord{}, nil, errors.StoreError("count steps", err)
	}
	if maxStep < 0 {
		return ports.RunRecord{}, nil, errors.StoreError("load run "+runID, errors.New(errors.CodeStoreError, "run has no samples"))
	}

	// Cancelled runs may have fewer persisted steps than requested.
	c, err := chain.New(maxStep+1, run.Walkers, cosmo.NDim)
	if err != nil {
		return ports.RunRecord{}, nil, errors.StoreError("rebuild chain", err)
	}

	var samples []sampleRow
	q = s.db.Rebind(`SELECT run_id, step, walker, h0_offset, log10_mbh, t_fall, log_prob
	                 FROM samples WHERE run_id = ? ORDER BY step, walker`)
	if err := s.db.SelectContext(ctx, &samples, q, runID); err != nil {
		return ports.RunRecord{}, nil, errors.StoreError("load samples", err)
	}
	for _, row := range samples {
		c.Record(row.Step, row.Walker, []float64{row.H0Offset, row.Log10MBh, row.TFall}, row.LogProb)
	}

	type accRow struct {
		Walker   int `db:"walker"`
		Accepted int `db:"accepted"`
	}
	var accs []accRow
	q = s.db.Rebind(`SELECT walker, accepted FROM acceptance WHERE run_id = ? ORDER BY walker`)
	if err := s.db.SelectContext(ctx, &accs, q, runID); err != nil {
		return ports.RunRecord{}, nil, errors.StoreError("load acceptance", err)
	}
	for _, a := range accs {
		if a.Walker < len(c.Accepted) {
			c.Accepted[a.Walker] = a.Accepted
		}
	}
	return run, c, nil
}

// ListRuns returns all persisted run records, newest first.
func (s *SQLStore) ListRuns(ctx context.Context) ([]ports.RunRecord, error) {
	var runs []ports.RunRecord
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, created_at, seed, walkers, steps, burn_in, config FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.StoreError("list runs", err)
	}
	return runs, nil
}
