package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/refstore"
)

// openStore initializes the configured reference store backend and runs
// migrations. Connectivity failures abort the run immediately; matching
// against a partial index would silently degrade quality.
func openStore(ctx context.Context) (refstore.Store, error) {
	var (
		st  refstore.Store
		err error
	)

	switch cfg.Store.Driver {
	case "postgres":
		st, err = refstore.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite", "":
		st, err = refstore.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
