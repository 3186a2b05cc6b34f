package local

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

func newTestStore(t *testing.T, queue bool) *Store {
	t.Helper()
	s, err := Open(":memory:", Options{QueueMutations: queue, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPlayerCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	p := &models.Player{Name: "Alice", IsGoalie: true}
	require.NoError(t, s.CreatePlayer(ctx, p))
	assert.False(t, p.ID.IsZero(), "create must assign an id")
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.IsGoalie)

	nick := "Ace"
	upd, err := s.UpdatePlayer(ctx, p.ID, models.PlayerUpdate{Nickname: &nick})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, models.NullableString("Ace"), upd.Nickname)

	absent, err := s.UpdatePlayer(ctx, models.NewPlayerID(), models.PlayerUpdate{Nickname: &nick})
	require.NoError(t, err)
	assert.Nil(t, absent, "updating a missing player is not an error")

	deleted, err := s.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreatePlayerRejectsBlankName(t *testing.T) {
	s := newTestStore(t, false)
	err := s.CreatePlayer(context.Background(), &models.Player{Name: "   "})
	assert.True(t, store.IsValidation(err))
}

func TestTeamRosterReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	team := &models.Team{Name: "Lions U10"}
	require.NoError(t, s.CreateTeam(ctx, team))

	p1 := models.NewPlayerID()
	p2 := models.NewPlayerID()
	require.NoError(t, s.SetTeamRoster(ctx, team.ID, []*models.RosterEntry{
		{PlayerID: p1, Name: "Alice"},
		{PlayerID: p2, Name: "Bob"},
	}))

	roster, err := s.GetTeamRoster(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Equal(t, 0, roster[0].Slot)
	assert.Equal(t, 1, roster[1].Slot)

	// Wholesale replacement, reversed order.
	require.NoError(t, s.SetTeamRoster(ctx, team.ID, []*models.RosterEntry{
		{PlayerID: p2, Name: "Bob"},
	}))
	roster, err = s.GetTeamRoster(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Bob", roster[0].Name)

	err = s.SetTeamRoster(ctx, models.NewTeamID(), nil)
	assert.True(t, store.IsNotFound(err))

	deleted, err := s.DeleteTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	roster, err = s.GetTeamRoster(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, roster, "team delete removes the roster snapshot")
}

func TestSeasonNormalizedOnRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	season := &models.Season{Name: "Spring", StartDate: "2024-08-01", EndDate: "2025-05-30"}
	require.NoError(t, s.CreateSeason(ctx, season))

	got, err := s.GetSeason(ctx, season.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.NullableString("2024/25"), got.ClubSeason)
	assert.Equal(t, models.DefaultPeriodCount, got.PeriodCount)
}

func TestTournamentLegacyLevelOnRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	tour := &models.Tournament{Name: "Summer Cup", Level: "Elite"}
	require.NoError(t, s.CreateTournament(ctx, tour))

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Series, 1)
	assert.Equal(t, "Elite", got.Series[0].Level)
}

func gameFixture() *models.Game {
	p1 := models.NewPlayerID()
	return &models.Game{
		TeamName:     "Lions U10",
		OpponentName: "Hawks",
		Date:         "2025-05-10",
		HomeOrAway:   models.Away,
		IsPlayed:     true,
		AwayScore:    2,
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
		Tactics: models.TacticalState{
			Discs:        []models.TacticalDisc{{ID: "d1", X: 0.1, Y: 0.2, Kind: "home"}},
			Drawings:     [][]models.Point{},
			BallPosition: &models.Point{X: 0.5, Y: 0.5},
		},
	}
}

func TestGameSaveAndReload(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	g := gameFixture()
	require.NoError(t, s.SaveGame(ctx, g))
	require.False(t, g.ID.IsZero())

	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.Away, got.HomeOrAway)
	assert.True(t, got.IsPlayed)
	assert.Equal(t, g.AvailablePlayers, got.AvailablePlayers)
	assert.Equal(t, g.FieldPlayers, got.FieldPlayers)
	require.Len(t, got.Events, 1)
	assert.Equal(t, models.EventGoal, got.Events[0].Type)
	require.Len(t, got.Assessments, 1)
	assert.Equal(t, 7, got.Assessments[0].Overall)
	require.NotNil(t, got.Tactics.BallPosition)
	assert.Equal(t, 0.5, got.Tactics.BallPosition.X)

	// Re-save replaces the aggregate rather than accreting rows.
	got.Events = nil
	require.NoError(t, s.SaveGame(ctx, got))
	again, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Events)

	missing, err := s.GetGame(ctx, models.NewGameID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveGameRejectsMissingHeader(t *testing.T) {
	s := newTestStore(t, false)
	err := s.SaveGame(context.Background(), &models.Game{TeamName: "Lions"})
	assert.True(t, store.IsValidation(err))
}

func TestGameEventLog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	g := gameFixture()
	require.NoError(t, s.SaveGame(ctx, g))

	ev := models.GameEvent{Type: models.EventOpponentGoal, TimeSec: 400, Period: 2}
	require.NoError(t, s.AddGameEvent(ctx, g.ID, ev))

	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 2)
	assert.Equal(t, models.EventOpponentGoal, got.Events[1].Type)

	// Update keeps position, remove re-sequences.
	first := got.Events[0]
	first.Note = "header"
	changed, err := s.UpdateGameEvent(ctx, g.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.RemoveGameEvent(ctx, g.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.RemoveGameEvent(ctx, g.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err = s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, models.EventOpponentGoal, got.Events[0].Type)
}

func TestAssessmentUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	g := gameFixture()
	require.NoError(t, s.SaveGame(ctx, g))
	player := g.Assessments[0].PlayerID

	require.NoError(t, s.SaveAssessment(ctx, g.ID, models.PlayerAssessment{
		PlayerID: player, Overall: 9, CreatedAt: 1746900050000,
	}))
	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Assessments, 1, "one assessment per player per game")
	assert.Equal(t, 9, got.Assessments[0].Overall)

	removed, err := s.DeleteAssessment(ctx, g.ID, player)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteAssessment(ctx, g.ID, player)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeletePersonnelStripsGameReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	coach := &models.Personnel{Name: "Dana", Role: models.RoleHeadCoach}
	require.NoError(t, s.CreatePersonnel(ctx, coach))

	g := gameFixture()
	g.PersonnelIDs = []models.PersonnelID{coach.ID}
	require.NoError(t, s.SaveGame(ctx, g))

	deleted, err := s.DeletePersonnel(ctx, coach.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PersonnelIDs)
}

func TestDeletePlayerCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	p := &models.Player{Name: "Alice"}
	require.NoError(t, s.CreatePlayer(ctx, p))
	require.NoError(t, s.CreateAdjustment(ctx, &models.PlayerAdjustment{PlayerID: p.ID, GoalsDelta: 2}))

	deleted, err := s.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	adjustments, err := s.ListAdjustments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, adjustments)
}

func TestUpsertPreservesID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	id := models.NewPlayerID()
	require.NoError(t, s.UpsertPlayer(ctx, &models.Player{ID: id, Name: "Alice"}))
	require.NoError(t, s.UpsertPlayer(ctx, &models.Player{ID: id, Name: "Alicia"}))

	players, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1, "upsert with an existing id must not duplicate")
	assert.Equal(t, id, players[0].ID)
	assert.Equal(t, "Alicia", players[0].Name)
}

func TestCountsAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	require.NoError(t, s.CreatePlayer(ctx, &models.Player{Name: "Alice"}))
	require.NoError(t, s.CreateSeason(ctx, &models.Season{Name: "Spring"}))
	require.NoError(t, s.SaveGame(ctx, gameFixture()))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Players)
	assert.Equal(t, int64(1), counts.Seasons)
	assert.Equal(t, int64(1), counts.Games)
	assert.Equal(t, int64(3), counts.Total())

	require.NoError(t, s.DeleteAll(ctx))
	counts, err = s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total())
}

func TestQueueRecordsWritesInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, true)

	p := &models.Player{Name: "Alice"}
	require.NoError(t, s.CreatePlayer(ctx, p))
	require.NoError(t, s.SaveGame(ctx, gameFixture()))
	deleted, err := s.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	pending, err := s.PendingMutations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, store.EntityPlayer, pending[0].EntityType)
	assert.Equal(t, store.OpUpsert, pending[0].Op)
	assert.Equal(t, store.EntityGame, pending[1].EntityType)
	assert.Equal(t, store.EntityPlayer, pending[2].EntityType)
	assert.Equal(t, store.OpDelete, pending[2].Op)
	assert.Empty(t, pending[2].Payload)

	require.NoError(t, s.MarkMutationDone(ctx, pending[0].ID))
	stats, err := s.QueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)

	require.NoError(t, s.MarkMutationFailed(ctx, pending[1].ID, 5, "connection refused", true))
	stats, err = s.QueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)

	retried, err := s.RetryFailedMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), retried)
}

func TestQueueDisabledByDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)
	require.NoError(t, s.CreatePlayer(ctx, &models.Player{Name: "Alice"}))
	pending, err := s.PendingMutations(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGameUnsetSeasonRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, false)

	g := gameFixture() // fixture has no season or tournament link
	require.NoError(t, s.SaveGame(ctx, g))

	got, err := s.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.SeasonID.IsZero(), "unset season must survive the NULL column")
	assert.True(t, got.TournamentID.IsZero())
}
