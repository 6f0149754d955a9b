package ports

import (
	"context"
	"time"

	"lvilc/domain/chain"
	"lvilc/domain/probe"
)

// RunRecord describes one persisted sampling run.
type RunRecord struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Seed      int64     `db:"seed" json:"seed"`
	Walkers   int       `db:"walkers" json:"walkers"`
	Steps     int       `db:"steps" json:"steps"`
	BurnIn    int       `db:"burn_in" json:"burn_in"`
	Config    string    `db:"config" json:"config"` // resolved configuration, JSON-encoded
}

// ChainStore persists chains so analysis can reload them without
// re-running MCMC.
type ChainStore interface {
	SaveRun(ctx context.Context, run RunRecord, c *chain.Chain) error
	LoadRun(ctx context.Context, runID string) (RunRecord, *chain.Chain, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}

// TableReader loads an observation table from a user-supplied file.
type TableReader interface {
	Read(path string) (probe.Table, error)
}
