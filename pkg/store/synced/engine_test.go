package synced

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
)

func newLocal(t *testing.T, queue bool) *local.Store {
	t.Helper()
	s, err := local.Open(":memory:", local.Options{QueueMutations: queue, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// flakyStore fails a configurable number of upserts before succeeding,
// standing in for a remote replica behind an unreliable link.
type flakyStore struct {
	store.Store
	failures int
	err      error
	calls    int
}

func (f *flakyStore) UpsertPlayer(ctx context.Context, p *models.Player) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.Store.UpsertPlayer(ctx, p)
}

func testEngine(t *testing.T, remote store.Store, opts EngineOptions) (*local.Store, *Engine) {
	t.Helper()
	src := newLocal(t, true)
	if opts.BackoffBase == 0 {
		opts.BackoffBase = time.Nanosecond
	}
	return src, NewEngine(src, remote, opts, zerolog.Nop())
}

func TestDrainReplaysInOrder(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	src, engine := testEngine(t, replica, EngineOptions{})

	p := &models.Player{Name: "Alice"}
	require.NoError(t, src.CreatePlayer(ctx, p))
	nick := "Ace"
	_, err := src.UpdatePlayer(ctx, p.ID, models.PlayerUpdate{Nickname: &nick})
	require.NoError(t, err)
	team := &models.Team{Name: "Lions U10"}
	require.NoError(t, src.CreateTeam(ctx, team))
	require.NoError(t, src.SetTeamRoster(ctx, team.ID, []*models.RosterEntry{
		{PlayerID: p.ID, Name: "Alice"},
	}))
	g := &models.Game{TeamName: "Lions U10", OpponentName: "Hawks", Date: "2025-05-10"}
	require.NoError(t, src.SaveGame(ctx, g))

	require.NoError(t, engine.Drain(ctx))

	got, err := replica.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "create must replay with its original id")
	assert.Equal(t, models.NullableString("Ace"), got.Nickname, "later update replays after the create")

	roster, err := replica.GetTeamRoster(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	replayed, err := replica.GetGame(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, replayed)
	assert.Equal(t, g.ID, replayed.ID)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestDrainReplaysDeletes(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	src, engine := testEngine(t, replica, EngineOptions{})

	p := &models.Player{Name: "Alice"}
	require.NoError(t, src.CreatePlayer(ctx, p))
	require.NoError(t, engine.Drain(ctx))

	deleted, err := src.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.NoError(t, engine.Drain(ctx))

	got, err := replica.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDrainIsIdempotentAfterPartialMark(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	src, engine := testEngine(t, replica, EngineOptions{})

	p := &models.Player{Name: "Alice"}
	require.NoError(t, src.CreatePlayer(ctx, p))
	require.NoError(t, engine.Drain(ctx))
	// Simulate a crash between remote success and queue marking by
	// re-enqueueing the same upsert and draining again.
	require.NoError(t, src.UpsertPlayer(ctx, p))
	require.NoError(t, engine.Drain(ctx))

	players, err := replica.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1, "replaying an applied upsert must not duplicate")
}

func TestTransientFailureRetriesThenParks(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	flaky := &flakyStore{Store: replica, failures: 100, err: &store.NetworkError{Op: "upsert", Err: store.ErrOffline}}
	src, engine := testEngine(t, flaky, EngineOptions{MaxAttempts: 3})

	var parked *store.Mutation
	engine.opts.OnDeadLetter = func(m *store.Mutation, err error) { parked = m }

	require.NoError(t, src.CreatePlayer(ctx, &models.Player{Name: "Alice"}))

	// First two failed passes keep the entry pending with backoff.
	err := engine.Drain(ctx)
	require.Error(t, err)
	time.Sleep(time.Millisecond)
	err = engine.Drain(ctx)
	require.Error(t, err)
	time.Sleep(time.Millisecond)

	// Third attempt reaches the cap and parks.
	require.NoError(t, engine.Drain(ctx))
	require.NotNil(t, parked)
	assert.Equal(t, store.EntityPlayer, parked.EntityType)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)

	// Manual retry resets the entry; the replica has recovered by now.
	flaky.failures = 0
	retried, err := engine.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), retried)
	require.NoError(t, engine.Drain(ctx))
	players, err := replica.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestPermanentFailureParksImmediately(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	flaky := &flakyStore{Store: replica, failures: 100, err: &store.StorageError{Backend: "remote", Op: "upsert", Err: assert.AnError}}
	src, engine := testEngine(t, flaky, EngineOptions{MaxAttempts: 5})

	require.NoError(t, src.CreatePlayer(ctx, &models.Player{Name: "Alice"}))
	require.NoError(t, engine.Drain(ctx))

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed, "non-transient failures never burn retries")
}

func TestFailureBlocksLaterMutations(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	flaky := &flakyStore{Store: replica, failures: 1, err: &store.NetworkError{Op: "upsert", Err: store.ErrOffline}}
	src, engine := testEngine(t, flaky, EngineOptions{MaxAttempts: 5})

	p := &models.Player{Name: "Alice"}
	require.NoError(t, src.CreatePlayer(ctx, p))
	require.NoError(t, src.CreateSeason(ctx, &models.Season{Name: "Spring"}))

	err := engine.Drain(ctx)
	require.Error(t, err)

	seasons, err := replica.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Empty(t, seasons, "a failed head entry must stop the pass")

	time.Sleep(time.Millisecond)
	require.NoError(t, engine.Drain(ctx))
	seasons, err = replica.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Len(t, seasons, 1)
}

func TestSyncedStoreServesLocalReads(t *testing.T) {
	ctx := context.Background()
	replica := newLocal(t, false)
	src := newLocal(t, true)
	s := New(src, replica, EngineOptions{}, zerolog.Nop())

	p := &models.Player{Name: "Alice"}
	require.NoError(t, s.CreatePlayer(ctx, p))

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "reads are served locally before any sync")

	remoteCopy, err := replica.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, remoteCopy, "nothing reaches the replica until the engine drains")
}
