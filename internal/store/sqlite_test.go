package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func storedEntity(id, complete string) *model.Entity {
	return &model.Entity{
		Kind:     model.KindIndividual,
		Location: model.LocationIdentifier{Source: model.SourceTaxRoll, IDType: "parcel", ID: id},
		Name:     model.Name{Complete: complete},
	}
}

func TestSQLite_EntityRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	in := []*model.Entity{
		storedEntity("2", "BARBARA SMITH"),
		storedEntity("1", "DOUGLAS FARON"),
	}
	require.NoError(t, s.SaveEntities(ctx, in))

	out, err := s.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Listing orders by key.
	assert.Equal(t, "DOUGLAS FARON", out[0].Name.Complete)
	assert.Equal(t, "BARBARA SMITH", out[1].Name.Complete)
	assert.Equal(t, model.KindIndividual, out[0].Kind)
}

func TestSQLite_SaveEntitiesUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEntities(ctx, []*model.Entity{storedEntity("1", "DOUGLAS FARON")}))
	require.NoError(t, s.SaveEntities(ctx, []*model.Entity{storedEntity("1", "DOUG FARON")}))

	out, err := s.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "DOUG FARON", out[0].Name.Complete)
}

func TestSQLite_DecisionsAndGroups(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	const runID = "run-1"

	decisions := []collision.PairDecision{
		{
			A: "tax_roll/parcel/1",
			B: "donor_roster/donor/2",
			Verdict: collision.Verdict{
				Decision:          collision.SameOwner,
				Comparable:        true,
				OverallSimilarity: 0.95,
				Reasoning:         "contact-info similarity 0.950 met the 0.87 same-owner threshold",
			},
		},
	}
	require.NoError(t, s.SaveDecisions(ctx, runID, decisions))
	// Saving the same pair again updates rather than fails.
	require.NoError(t, s.SaveDecisions(ctx, runID, decisions))

	groups := []model.EntityGroup{
		{ID: "g-1", Index: 0, Founder: "tax_roll/parcel/1",
			Members: []string{"tax_roll/parcel/1", "donor_roster/donor/2"}},
		{ID: "g-2", Index: 1, Founder: "tax_roll/parcel/3",
			Members: []string{"tax_roll/parcel/3"}},
	}
	require.NoError(t, s.SaveGroups(ctx, runID, groups))

	got, err := s.ListGroups(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, groups[0].Founder, got[0].Founder)
	assert.Equal(t, groups[0].Members, got[0].Members)
	assert.Equal(t, 1, got[1].Index)

	empty, err := s.ListGroups(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, empty)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{runID}, runs)
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "sqlite", "", filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	assert.IsType(t, (*SQLiteStore)(nil), s)
	s.Close()

	_, err = Open(ctx, "mssql", "", "")
	assert.Error(t, err)
}
