package matchkeeper

import (
	"flag"
	"fmt"
)

// Parse parses command line arguments and returns the command to execute,
// the application configuration, and any error that occurred.
// The Command carries command-specific options; the Config carries backend
// and credential configuration shared across all commands.
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("matchkeeper", flag.ContinueOnError)

	var (
		mode         = flagSet.String("mode", "local", "Backend mode: local, remote, synced")
		dbPath       = flagSet.String("db", "", "Path to the local SQLite database file")
		dataDir      = flagSet.String("data-dir", "", "Directory for application state such as migration markers")
		readOnly     = flagSet.Bool("read-only", false, "Reject all write operations")
		logLevel     = flagSet.String("log-level", "info", "Log level: trace, debug, info, warn, error")
		syncInterval = flagSet.Duration("sync-interval", 0, "Background sync drain interval (synced mode)")
		maxAttempts  = flagSet.Int("sync-max-attempts", 0, "Replay attempts before a queue entry is parked")
		replace      = flagSet.Bool("replace", false, "migrate-data: clear existing cloud data before uploading")
		retryFailed  = flagSet.Bool("retry-failed", false, "sync: revive parked queue entries before draining")
		force        = flagSet.Bool("force", false, "Override completion-marker safety checks")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	remainingArgs := flagSet.Args()
	if len(remainingArgs) == 0 {
		return nil, nil, fmt.Errorf(`subcommand required

Usage: matchkeeper [flags] <command>

Commands:
  run           Keep the store open; in synced mode, drain the queue in the background
  sync          Drain the sync queue once and exit
  migrate-data  Move all local data to the cloud backend (one-shot)
  clear-local   Wipe the local replica after a completed migration
  status        Print entity counts and queue depth

Flags come before the command.

Examples:
  matchkeeper run                                # Offline, SQLite only
  matchkeeper -mode synced run                   # Local writes replicated to the cloud
  matchkeeper -mode synced sync                  # One catch-up pass
  matchkeeper -mode synced -retry-failed sync    # Also revive parked entries
  matchkeeper -replace migrate-data              # Migrate, clearing stale cloud data first
  matchkeeper clear-local                        # Safe only after migrate-data completed
  matchkeeper -mode remote status`)
	}

	var cmd Command
	switch remainingArgs[0] {
	case "run":
		cmd = &RunCommand{}
	case "sync":
		cmd = &SyncCommand{RetryFailed: *retryFailed}
	case "migrate-data":
		cmd = &MigrateDataCommand{Replace: *replace, Force: *force}
	case "clear-local":
		cmd = &ClearLocalCommand{Force: *force}
	case "status":
		cmd = &StatusCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: run, sync, migrate-data, clear-local, status", remainingArgs[0])
	}

	config := &Config{
		ReadOnly:     *readOnly,
		LogLevel:     *logLevel,
		SyncInterval: *syncInterval,
		MaxAttempts:  *maxAttempts,
	}

	switch *mode {
	case "local":
		config.Mode = ModeLocal
	case "remote":
		config.Mode = ModeRemote
	case "synced":
		config.Mode = ModeSynced
	default:
		return nil, nil, fmt.Errorf("invalid backend mode: %s (must be 'local', 'remote' or 'synced')", *mode)
	}

	// Load configuration from environment; flags win where both are set.
	config.LocalPath = *dbPath
	if config.LocalPath == "" {
		config.LocalPath = getEnv("MATCHKEEPER_DB", "matchkeeper.db")
	}
	config.DataDir = *dataDir
	if config.DataDir == "" {
		config.DataDir = getEnv("MATCHKEEPER_DATA_DIR", ".matchkeeper")
	}
	config.SurrealDBURL = getEnv("SURREALDB_URL", "ws://localhost:8000/rpc")
	config.SurrealDBNS = getEnv("SURREALDB_NS", "matchkeeper")
	config.SurrealDBDB = getEnv("SURREALDB_DB", "matchkeeper")
	config.SurrealDBUser = getEnv("SURREALDB_USER", "root")
	config.SurrealDBPass = getEnv("SURREALDB_PASS", "root")

	return cmd, config, nil
}
