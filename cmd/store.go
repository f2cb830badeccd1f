package main

import (
	"context"

	"github.com/sells-group/accident-risk/internal/store"
)

// initStore opens the configured run ledger.
func initStore(_ context.Context) (store.Store, error) {
	if err := cfg.Validate("runs"); err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Driver, cfg.Store.DatabaseURL)
}
