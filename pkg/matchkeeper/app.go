package matchkeeper

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
	"github.com/matchkeeper/matchkeeper/pkg/store/remote"
	"github.com/matchkeeper/matchkeeper/pkg/store/synced"
)

// Mode selects which storage backend the application runs against.
//
// The mode is fixed for the lifetime of an [App]. Changing it means closing
// the application and constructing a new one with the new configuration;
// there is no silent hot-swap, because half the point of an explicit mode is
// that the user always knows where their data lives.
type Mode string

const (
	// ModeLocal stores everything in the embedded SQLite file. Fully
	// offline; no queue, no cloud.
	ModeLocal Mode = "local"

	// ModeRemote talks to SurrealDB directly with no local replica.
	ModeRemote Mode = "remote"

	// ModeSynced serves everything from the local replica and replicates
	// each write to the cloud through the durable queue.
	ModeSynced Mode = "synced"
)

// Config holds application configuration shared across all commands.
type Config struct {
	// Mode selects the storage backend.
	Mode Mode

	// LocalPath is the SQLite database file (local and synced modes).
	LocalPath string

	// DataDir holds application state such as migration markers.
	DataDir string

	// SurrealDB connection settings (remote and synced modes).
	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	// ReadOnly rejects every write operation at the store boundary while
	// reads continue to work. Useful during maintenance and before
	// migration.
	ReadOnly bool

	// SyncInterval is the background drain interval in synced mode.
	// Zero selects the engine default.
	SyncInterval time.Duration

	// MaxAttempts is how many replays a queue entry gets before it is
	// parked. Zero selects the engine default.
	MaxAttempts int

	// LogLevel is a zerolog level name; unparseable values fall back to
	// info.
	LogLevel string
}

// App holds the application state: the active store, the optional sync
// engine behind it, and the logger every component writes through.
type App struct {
	config *Config
	log    zerolog.Logger

	store  store.Store
	local  *local.Store  // non-nil in local and synced modes
	synced *synced.Store // non-nil in synced mode
}

// New creates a new application instance for the configured backend mode.
// Remote connections are established here, so a bad URL or credentials fail
// fast instead of on the first operation.
func New(ctx context.Context, config *Config) (*App, error) {
	log := newLogger(config.LogLevel)

	app := &App{config: config, log: log}

	switch config.Mode {
	case ModeLocal:
		ls, err := local.Open(config.LocalPath, local.Options{Logger: log})
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		app.local = ls
		app.store = ls

	case ModeRemote:
		rs, err := remote.Connect(ctx, remoteConfig(config, log))
		if err != nil {
			return nil, fmt.Errorf("connect to SurrealDB: %w", err)
		}
		app.store = rs

	case ModeSynced:
		ls, err := local.Open(config.LocalPath, local.Options{
			QueueMutations: true,
			Logger:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		rs, err := remote.Connect(ctx, remoteConfig(config, log))
		if err != nil {
			_ = ls.Close()
			return nil, fmt.Errorf("connect to SurrealDB: %w", err)
		}
		ss := synced.New(ls, rs, synced.EngineOptions{
			Interval:    config.SyncInterval,
			MaxAttempts: config.MaxAttempts,
			OnDeadLetter: func(m *store.Mutation, err error) {
				log.Error().
					Uint("mutation", m.ID).
					Str("entity", m.EntityType).
					Err(err).
					Msg("sync entry parked; run 'sync -retry-failed' once the cause is fixed")
			},
		}, log)
		app.local = ls
		app.synced = ss
		app.store = ss

	default:
		return nil, fmt.Errorf("invalid backend mode: %q", config.Mode)
	}

	if config.ReadOnly {
		app.store = store.NewReadOnly(app.store)
	}

	log.Info().Str("mode", string(config.Mode)).Str("store", app.store.Name()).Msg("backend selected")
	return app, nil
}

func remoteConfig(config *Config, log zerolog.Logger) remote.Config {
	return remote.Config{
		URL:       config.SurrealDBURL,
		Namespace: config.SurrealDBNS,
		Database:  config.SurrealDBDB,
		Auth: &remote.Credentials{
			Username: config.SurrealDBUser,
			Password: config.SurrealDBPass,
		},
		Logger: log,
	}
}

// Initialize prepares the active store: schema migration for SQLite, and in
// synced mode also starts the background engine.
func (a *App) Initialize(ctx context.Context) error {
	return a.store.Initialize(ctx)
}

// Close closes the application and its resources.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the active store (useful for testing).
func (a *App) Store() store.Store {
	return a.store
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

// getEnv retrieves an environment variable value with a fallback default.
// Empty values are treated the same as unset, which matters in container
// environments where empty variables get set by accident.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
