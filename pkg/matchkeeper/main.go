package matchkeeper

import (
	"context"
	"fmt"
)

// Main is the main entry point for the matchkeeper application.
// It takes a context for cancellation and command line arguments, then
// executes the appropriate command. This function can be called directly
// from tests without building the binary.
//
// # Environment Variables
//
// The application reads configuration from these environment variables:
//
//	MATCHKEEPER_DB        - SQLite database file (default: matchkeeper.db)
//	MATCHKEEPER_DATA_DIR  - state directory for migration markers (default: .matchkeeper)
//	SURREALDB_URL         - SurrealDB WebSocket URL (default: ws://localhost:8000/rpc)
//	SURREALDB_NS          - SurrealDB namespace (default: matchkeeper)
//	SURREALDB_DB          - SurrealDB database (default: matchkeeper)
//	SURREALDB_USER        - SurrealDB username (default: root)
//	SURREALDB_PASS        - SurrealDB password (default: root)
//
// # Adoption Path
//
// The intended progression from offline-only to cloud-backed operation:
//
//  1. Start offline (mode: local)
//     Everything lives in the SQLite file; no account needed.
//
//  2. Migrate (migrate-data)
//     One-shot upload of the whole local dataset to the cloud account.
//
//  3. Go synced (mode: synced)
//     Reads and writes stay local-first; the queue replicates every write
//     to the cloud in the background.
//
//  4. Optionally clear the replica (clear-local) and run remote-only
//     (mode: remote) on devices that should hold no local copy.
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	if err := app.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", app.store.Name(), err)
	}

	switch c := cmd.(type) {
	case *RunCommand:
		return app.Run(ctx, c)
	case *SyncCommand:
		return app.Sync(ctx, c)
	case *MigrateDataCommand:
		return app.MigrateData(ctx, c)
	case *ClearLocalCommand:
		return app.ClearLocal(ctx, c)
	case *StatusCommand:
		return app.Status(ctx, c)
	default:
		return fmt.Errorf("unhandled command: %s", cmd.Name())
	}
}
