// Package store keeps a ledger of derivation runs. The lookup service never reads it.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/accident-risk/internal/model"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Dataset      string    `json:"dataset,omitempty"`
	StartedAfter time.Time `json:"started_after,omitempty"`
	Limit        int       `json:"limit,omitempty"`
	Offset       int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for derivation history.
type Store interface {
	// RecordRun saves run and a snapshot of its location table. An empty
	// run.ID is filled with a new UUID.
	RecordRun(ctx context.Context, run *model.DerivationRun, table model.LocationTable) error
	GetRun(ctx context.Context, runID string) (*model.DerivationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.DerivationRun, error)
	// RunLocations returns the table snapshot of a run in its original order.
	RunLocations(ctx context.Context, runID string, proneOnly bool) ([]model.LocationStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver. Only "sqlite" is supported.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		if dsn == "" {
			return nil, eris.New("store: database_url is required")
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
}
