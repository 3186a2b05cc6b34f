package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
)

func newStore(t *testing.T) *local.Store {
	t.Helper()
	s, err := local.Open(":memory:", local.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seed fills the source with a small but fully connected dataset.
func seed(t *testing.T, s store.Store) (player *models.Player, team *models.Team, game *models.Game) {
	t.Helper()
	ctx := context.Background()

	player = &models.Player{Name: "Alice"}
	require.NoError(t, s.CreatePlayer(ctx, player))

	season := &models.Season{Name: "Spring", StartDate: "2024-08-01", EndDate: "2025-05-30"}
	require.NoError(t, s.CreateSeason(ctx, season))

	coach := &models.Personnel{Name: "Dana", Role: models.RoleHeadCoach}
	require.NoError(t, s.CreatePersonnel(ctx, coach))

	team = &models.Team{Name: "Lions U10", SeasonID: season.ID}
	require.NoError(t, s.CreateTeam(ctx, team))
	require.NoError(t, s.SetTeamRoster(ctx, team.ID, []*models.RosterEntry{
		{PlayerID: player.ID, Name: "Alice"},
	}))

	game = &models.Game{
		TeamName:     "Lions U10",
		OpponentName: "Hawks",
		Date:         "2025-05-10",
		SeasonID:     season.ID,
		TeamID:       team.ID,
		PersonnelIDs: []models.PersonnelID{coach.ID},
		AvailablePlayers: []models.PlayerSnapshot{
			{PlayerID: player.ID, Name: "Alice"},
		},
		SelectedPlayerIDs: []models.PlayerID{player.ID},
	}
	require.NoError(t, s.SaveGame(ctx, game))

	require.NoError(t, s.CreateAdjustment(ctx, &models.PlayerAdjustment{
		PlayerID: player.ID, GoalsDelta: 3, SeasonID: season.ID,
	}))
	return player, team, game
}

func TestRunMigratesEverything(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	target := newStore(t)
	player, team, game := seed(t, source)

	var stages []Stage
	svc := New(source, target, Options{
		Logger: zerolog.Nop(),
		OnProgress: func(p Progress) {
			if len(stages) == 0 || stages[len(stages)-1] != p.Stage {
				stages = append(stages, p.Stage)
			}
		},
	})
	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, StageComplete, svc.Stage())
	assert.Equal(t, []Stage{StageExporting, StageValidating, StageUploading, StageVerifying, StageComplete}, stages)

	// Identity survives verbatim.
	got, err := target.GetPlayer(ctx, player.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	roster, err := target.GetTeamRoster(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, player.ID, roster[0].PlayerID)

	migrated, err := target.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, migrated)
	assert.Equal(t, game.PersonnelIDs, migrated.PersonnelIDs)

	srcCounts, err := source.Counts(ctx)
	require.NoError(t, err)
	dstCounts, err := target.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, srcCounts, dstCounts)
}

func TestRunLeavesSourceUntouched(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	target := newStore(t)
	seed(t, source)

	before, err := source.Counts(ctx)
	require.NoError(t, err)

	svc := New(source, target, Options{Logger: zerolog.Nop()})
	require.NoError(t, svc.Run(ctx))

	after, err := source.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReplaceModeClearsTargetFirst(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	target := newStore(t)
	seed(t, source)

	// Pre-existing remote data from an earlier device.
	stale := &models.Player{Name: "Stale"}
	require.NoError(t, target.CreatePlayer(ctx, stale))

	svc := New(source, target, Options{Replace: true, Logger: zerolog.Nop()})
	require.NoError(t, svc.Run(ctx))

	gone, err := target.GetPlayer(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestValidationAbortsBeforeUpload(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	target := newStore(t)

	// A team pointing at a season that does not exist.
	team := &models.Team{Name: "Lions U10", SeasonID: models.NewSeasonID()}
	require.NoError(t, source.CreateTeam(ctx, team))

	svc := New(source, target, Options{Logger: zerolog.Nop()})
	err := svc.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing season")
	assert.Equal(t, StageFailed, svc.Stage())

	counts, err := target.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total(), "validation failure must precede any remote write")
}

func TestRunIsOneShot(t *testing.T) {
	source := newStore(t)
	target := newStore(t)
	svc := New(source, target, Options{Logger: zerolog.Nop()})
	require.NoError(t, svc.Run(context.Background()))
	assert.Error(t, svc.Run(context.Background()))
}

func TestInterruptBetweenBatches(t *testing.T) {
	source := newStore(t)
	target := newStore(t)
	seed(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(source, target, Options{Logger: zerolog.Nop()})
	err := svc.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, StageFailed, svc.Stage())
}

func TestRerunAfterInterruptCompletes(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	target := newStore(t)
	seed(t, source)

	// First run aborted mid-upload; upserted data stays put.
	interrupted, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, New(source, target, Options{Logger: zerolog.Nop()}).Run(interrupted))

	// A fresh run over the same data completes because upserts are
	// idempotent.
	require.NoError(t, New(source, target, Options{Logger: zerolog.Nop()}).Run(ctx))
	srcCounts, err := source.Counts(ctx)
	require.NoError(t, err)
	dstCounts, err := target.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, srcCounts, dstCounts)
}

func TestClearLocal(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	seed(t, source)

	require.NoError(t, ClearLocal(ctx, source))
	counts, err := source.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total())
}

func TestMarker(t *testing.T) {
	m := NewMarker(t.TempDir())
	assert.False(t, m.IsComplete("coach@example.com"))
	require.NoError(t, m.Complete("coach@example.com"))
	assert.True(t, m.IsComplete("coach@example.com"))
	assert.False(t, m.IsComplete("other@example.com"))
	require.NoError(t, m.Clear("coach@example.com"))
	assert.False(t, m.IsComplete("coach@example.com"))
}

// wipeFailStore refuses DeleteAll, simulating a clear that dies mid-flight.
type wipeFailStore struct {
	store.Store
	uploads int
}

func (s *wipeFailStore) DeleteAll(ctx context.Context) error {
	return errors.New("connection reset by peer")
}

func (s *wipeFailStore) UpsertPlayer(ctx context.Context, p *models.Player) error {
	s.uploads++
	return s.Store.UpsertPlayer(ctx, p)
}

func TestReplaceModeAbortsWhenClearFails(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	seed(t, source)

	target := &wipeFailStore{Store: newStore(t)}
	svc := New(source, target, Options{Replace: true, Logger: zerolog.Nop()})

	err := svc.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, StageFailed, svc.Stage())
	assert.Zero(t, target.uploads, "a failed clear must abort before any upload")
}
