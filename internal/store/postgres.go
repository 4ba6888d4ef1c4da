package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// pool defines the minimal pgx pool interface used by PostgresStore, so
// tests can substitute pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using jackc/pgx.
type PostgresStore struct {
	pool pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres connects to the given database URL and pings it.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: p}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(p pool) *PostgresStore {
	return &PostgresStore{pool: p}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS entities (
	key        TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS decisions (
	run_id     TEXT NOT NULL,
	a_key      TEXT NOT NULL,
	b_key      TEXT NOT NULL,
	decision   TEXT NOT NULL,
	verdict    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, a_key, b_key)
);

CREATE TABLE IF NOT EXISTS owner_groups (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	idx        INTEGER NOT NULL,
	founder    TEXT NOT NULL,
	members    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_source ON entities(source);
CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
CREATE INDEX IF NOT EXISTS idx_groups_run ON owner_groups(run_id)`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveEntities(ctx context.Context, entities []*model.Entity) error {
	for _, e := range entities {
		body, err := json.Marshal(e)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal entity %s", e.Location.Key())
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO entities (key, source, kind, body)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, kind = EXCLUDED.kind`,
			e.Location.Key(), string(e.Location.Source), string(e.Kind), body,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert entity %s", e.Location.Key())
		}
	}
	return nil
}

func (s *PostgresStore) ListEntities(ctx context.Context) ([]*model.Entity, error) {
	rows, err := s.pool.Query(ctx, `SELECT body FROM entities ORDER BY key`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entities")
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entity")
		}
		var e model.Entity
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal entity")
		}
		entities = append(entities, &e)
	}
	return entities, eris.Wrap(rows.Err(), "postgres: iterate entities")
}

func (s *PostgresStore) SaveDecisions(ctx context.Context, runID string, decisions []collision.PairDecision) error {
	for _, d := range decisions {
		verdict, err := json.Marshal(d.Verdict)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal verdict")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO decisions (run_id, a_key, b_key, decision, verdict)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (run_id, a_key, b_key) DO UPDATE SET decision = EXCLUDED.decision, verdict = EXCLUDED.verdict`,
			runID, d.A, d.B, string(d.Verdict.Decision), verdict,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert decision %s vs %s", d.A, d.B)
		}
	}
	return nil
}

func (s *PostgresStore) SaveGroups(ctx context.Context, runID string, groups []model.EntityGroup) error {
	for _, g := range groups {
		members, err := json.Marshal(g.Members)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal group members")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO owner_groups (id, run_id, idx, founder, members)
			 VALUES ($1, $2, $3, $4, $5)`,
			g.ID, runID, g.Index, g.Founder, members,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert group %s", g.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ListGroups(ctx context.Context, runID string) ([]model.EntityGroup, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, idx, founder, members FROM owner_groups WHERE run_id = $1 ORDER BY idx`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list groups")
	}
	defer rows.Close()

	var groups []model.EntityGroup
	for rows.Next() {
		var g model.EntityGroup
		var members []byte
		if err := rows.Scan(&g.ID, &g.Index, &g.Founder, &members); err != nil {
			return nil, eris.Wrap(err, "postgres: scan group")
		}
		if err := json.Unmarshal(members, &g.Members); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal group members")
		}
		groups = append(groups, g)
	}
	return groups, eris.Wrap(rows.Err(), "postgres: iterate groups")
}

func (s *PostgresStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT run_id FROM owner_groups ORDER BY run_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run id")
		}
		runs = append(runs, id)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
