package matchkeeper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

func TestParseRoutesSubcommands(t *testing.T) {
	cmd, config, err := Parse([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", cmd.Name())
	assert.Equal(t, ModeLocal, config.Mode)

	cmd, _, err = Parse([]string{"-mode", "synced", "-retry-failed", "sync"})
	require.NoError(t, err)
	sync, ok := cmd.(*SyncCommand)
	require.True(t, ok)
	assert.True(t, sync.RetryFailed)

	cmd, _, err = Parse([]string{"-replace", "migrate-data"})
	require.NoError(t, err)
	mig, ok := cmd.(*MigrateDataCommand)
	require.True(t, ok)
	assert.True(t, mig.Replace)
	assert.False(t, mig.Force)
}

func TestParseRejectsUnknownCommandAndMode(t *testing.T) {
	_, _, err := Parse([]string{"frobnicate"})
	assert.ErrorContains(t, err, "unknown command")

	_, _, err = Parse([]string{"-mode", "hybrid", "run"})
	assert.ErrorContains(t, err, "invalid backend mode")

	_, _, err = Parse([]string{})
	assert.ErrorContains(t, err, "subcommand required")
}

func TestParseEnvironmentDefaults(t *testing.T) {
	t.Setenv("MATCHKEEPER_DB", "")
	t.Setenv("SURREALDB_NS", "clubhouse")

	_, config, err := Parse([]string{"status"})
	require.NoError(t, err)
	assert.Equal(t, "matchkeeper.db", config.LocalPath)
	assert.Equal(t, "clubhouse", config.SurrealDBNS)

	// A flag beats the environment.
	_, config, err = Parse([]string{"-db", "/tmp/club.db", "status"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/club.db", config.LocalPath)
}

func TestLocalModeLifecycle(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, &Config{Mode: ModeLocal, LocalPath: ":memory:", LogLevel: "error"})
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Initialize(ctx))

	p := &models.Player{Name: "Robin"}
	require.NoError(t, app.Store().CreatePlayer(ctx, p))
	got, err := app.Store().GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Robin", got.Name)
}

func TestReadOnlyModeRejectsWrites(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, &Config{Mode: ModeLocal, LocalPath: ":memory:", ReadOnly: true, LogLevel: "error"})
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Initialize(ctx))

	err = app.Store().CreatePlayer(ctx, &models.Player{Name: "Robin"})
	assert.True(t, errors.Is(err, store.ErrReadOnly))

	_, err = app.Store().ListPlayers(ctx)
	assert.NoError(t, err)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(context.Background(), &Config{Mode: Mode("hybrid")})
	assert.ErrorContains(t, err, "invalid backend mode")
}
