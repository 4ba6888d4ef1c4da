// Package store persists reconciliation output: ingested entities, the
// pairwise decision trail, and the resulting owner groups. Two backends
// mirror the deployment options: SQLite for local runs, Postgres for the
// shared database.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// Store is the persistence interface for reconciliation runs.
type Store interface {
	SaveEntities(ctx context.Context, entities []*model.Entity) error
	ListEntities(ctx context.Context) ([]*model.Entity, error)

	SaveDecisions(ctx context.Context, runID string, decisions []collision.PairDecision) error
	SaveGroups(ctx context.Context, runID string, groups []model.EntityGroup) error
	ListGroups(ctx context.Context, runID string) ([]model.EntityGroup, error)
	ListRuns(ctx context.Context) ([]string, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL, sqlitePath string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(sqlitePath)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
