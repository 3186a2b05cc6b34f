package store_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
)

// The contract tests run the same operation script against any Store
// implementation through the interface alone, so a backend swap cannot
// change observable behavior. The embedded backend runs them here; the
// SurrealDB backend runs the same semantics in its own gated suite.

func openContractStore(t *testing.T) store.Store {
	t.Helper()
	s, err := local.Open(":memory:", local.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContractAbsenceSemantics(t *testing.T) {
	ctx := context.Background()
	s := openContractStore(t)

	// Lookups of missing entities answer (nil, nil), never an error.
	p, err := s.GetPlayer(ctx, models.NewPlayerID())
	require.NoError(t, err)
	assert.Nil(t, p)

	g, err := s.GetGame(ctx, models.NewGameID())
	require.NoError(t, err)
	assert.Nil(t, g)

	// Updating a missing entity answers (nil, nil) too.
	name := "renamed"
	tm, err := s.UpdateTeam(ctx, models.NewTeamID(), models.TeamUpdate{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, tm)

	// Deleting what is not there reports false without failing.
	deleted, err := s.DeleteSeason(ctx, models.NewSeasonID())
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteGame(ctx, models.NewGameID())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestContractValidatesBeforeIO(t *testing.T) {
	ctx := context.Background()
	s := openContractStore(t)

	err := s.CreatePlayer(ctx, &models.Player{Name: "   "})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "player", verr.Entity)

	err = s.CreateTournament(ctx, &models.Tournament{})
	require.ErrorAs(t, err, &verr)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Total(), "rejected writes must leave no rows behind")
}

func TestContractUpsertPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	s := openContractStore(t)

	// Upsert accepts a pre-assigned id verbatim, creating on first write
	// and overwriting on the second. Migration and queue replay depend on
	// this never regenerating identity.
	p := &models.Player{ID: models.NewPlayerID(), Name: "Alex"}
	require.NoError(t, s.UpsertPlayer(ctx, p))
	p.Name = "Alexandra"
	require.NoError(t, s.UpsertPlayer(ctx, p))

	all, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p.ID, all[0].ID)
	assert.Equal(t, "Alexandra", all[0].Name)
}

func TestContractNormalizesCollectionReads(t *testing.T) {
	ctx := context.Background()
	s := openContractStore(t)

	trn := &models.Tournament{
		ID:    models.NewTournamentID(),
		Name:  "Spring Cup",
		Level: "B",
	}
	require.NoError(t, s.UpsertTournament(ctx, trn))

	want := models.SeriesList{{ID: "level-b", Level: "B"}}

	list, err := s.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, want, list[0].Series, "legacy level must surface as a series array")

	one, err := s.GetTournament(ctx, trn.ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, want, one.Series)
}
