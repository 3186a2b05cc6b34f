package remote

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// Integration tests need a running SurrealDB instance:
//
//	surreal start --user root --pass root
//	MATCHKEEPER_SURREALDB_URL=ws://localhost:8000/rpc go test ./pkg/store/remote/
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("MATCHKEEPER_SURREALDB_URL")
	if url == "" {
		t.Skip("MATCHKEEPER_SURREALDB_URL not set")
	}
	s, err := Connect(context.Background(), Config{
		URL:       url,
		Namespace: "matchkeeper_test",
		Database:  "matchkeeper_test",
		Auth:      &Credentials{Username: "root", Password: "root"},
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, s.DeleteAll(context.Background()))
	t.Cleanup(func() {
		_ = s.DeleteAll(context.Background())
		_ = s.Close()
	})
	return s
}

func TestRemotePlayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	p := &models.Player{Name: "Alice", JerseyNumber: "9"}
	require.NoError(t, s.CreatePlayer(ctx, p))
	require.False(t, p.ID.IsZero())

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.NullableString("9"), got.JerseyNumber)

	// Upsert with the same id must overwrite, not duplicate.
	got.Name = "Alicia"
	require.NoError(t, s.UpsertPlayer(ctx, got))
	players, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Alicia", players[0].Name)

	deleted, err := s.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	missing, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRemoteGameAggregate(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	p1 := models.NewPlayerID()
	g := &models.Game{
		TeamName:     "Lions U10",
		OpponentName: "Hawks",
		Date:         "2025-05-10",
		IsPlayed:     true,
		AvailablePlayers: []models.PlayerSnapshot{
			{PlayerID: p1, Name: "Alice"},
		},
		SelectedPlayerIDs: []models.PlayerID{p1},
		FieldPlayers:      []models.FieldPosition{{PlayerID: p1, X: 0.4, Y: 0.6}},
		Events: []models.GameEvent{
			{ID: models.NewEventID(), Type: models.EventGoal, TimeSec: 120, ScorerID: p1, Period: 1},
		},
		Assessments: []models.PlayerAssessment{
			{PlayerID: p1, Overall: 7, CreatedAt: 1746900000000},
		},
	}
	require.NoError(t, s.SaveGame(ctx, g))

	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.Home, got.HomeOrAway)
	require.Len(t, got.Events, 1)
	assert.Equal(t, models.EventGoal, got.Events[0].Type)
	require.Len(t, got.Assessments, 1)
	assert.Equal(t, 7, got.Assessments[0].Overall)
	assert.Equal(t, g.FieldPlayers, got.FieldPlayers)

	// Aggregate replace, not accretion.
	got.Events = nil
	require.NoError(t, s.SaveGame(ctx, got))
	again, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Events)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Games)

	deleted, err := s.DeleteGame(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
