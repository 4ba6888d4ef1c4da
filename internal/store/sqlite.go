package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS entities (
	key        TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS decisions (
	run_id     TEXT NOT NULL,
	a_key      TEXT NOT NULL,
	b_key      TEXT NOT NULL,
	decision   TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, a_key, b_key)
);

CREATE TABLE IF NOT EXISTS owner_groups (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	idx        INTEGER NOT NULL,
	founder    TEXT NOT NULL,
	members    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_entities_source ON entities(source);
CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
CREATE INDEX IF NOT EXISTS idx_groups_run ON owner_groups(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEntities(ctx context.Context, entities []*model.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	for _, e := range entities {
		body, err := json.Marshal(e)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal entity %s", e.Location.Key())
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entities (key, source, kind, body, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET body = excluded.body, kind = excluded.kind`,
			e.Location.Key(), string(e.Location.Source), string(e.Kind), string(body), time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert entity %s", e.Location.Key())
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit entities")
}

func (s *SQLiteStore) ListEntities(ctx context.Context) ([]*model.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM entities ORDER BY key`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entities")
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entity")
		}
		var e model.Entity
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal entity")
		}
		entities = append(entities, &e)
	}
	return entities, eris.Wrap(rows.Err(), "sqlite: iterate entities")
}

func (s *SQLiteStore) SaveDecisions(ctx context.Context, runID string, decisions []collision.PairDecision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	for _, d := range decisions {
		verdict, err := json.Marshal(d.Verdict)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal verdict")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO decisions (run_id, a_key, b_key, decision, verdict, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, a_key, b_key) DO UPDATE SET decision = excluded.decision, verdict = excluded.verdict`,
			runID, d.A, d.B, string(d.Verdict.Decision), string(verdict), time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert decision %s vs %s", d.A, d.B)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit decisions")
}

func (s *SQLiteStore) SaveGroups(ctx context.Context, runID string, groups []model.EntityGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	for _, g := range groups {
		members, err := json.Marshal(g.Members)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal group members")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO owner_groups (id, run_id, idx, founder, members, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, runID, g.Index, g.Founder, string(members), time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert group %s", g.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit groups")
}

func (s *SQLiteStore) ListGroups(ctx context.Context, runID string) ([]model.EntityGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idx, founder, members FROM owner_groups WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list groups")
	}
	defer rows.Close()

	var groups []model.EntityGroup
	for rows.Next() {
		var g model.EntityGroup
		var members string
		if err := rows.Scan(&g.ID, &g.Index, &g.Founder, &members); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan group")
		}
		if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal group members")
		}
		groups = append(groups, g)
	}
	return groups, eris.Wrap(rows.Err(), "sqlite: iterate groups")
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT run_id FROM owner_groups ORDER BY run_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run id")
		}
		runs = append(runs, id)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
