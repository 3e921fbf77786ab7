package cli

import (
	"database/sql"

	"github.com/nxy7/viban/internal/app"
	"github.com/nxy7/viban/internal/datalayer"
	"github.com/nxy7/viban/internal/registry"
	"github.com/nxy7/viban/internal/store"
)

// openStore resolves the configured database path and wraps it in a Layer.
// Callers must close the returned *sql.DB when done.
func openStore() (*datalayer.Layer, *sql.DB, error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return datalayer.New(db, registry.NewEventBus()), db, nil
}
