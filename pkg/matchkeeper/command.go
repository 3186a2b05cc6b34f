package matchkeeper

// Command represents a discrete application operation with its specific
// configuration.
//
// Commands are produced by [Parse] and executed by [Main], which routes each
// one to the matching method on [App]. Shared configuration (backend mode,
// database locations, credentials) lives in [Config]; a Command carries only
// the options specific to its operation.
//
// Current command implementations:
//   - [RunCommand]: keep the store open and drain the sync queue in the
//     background until interrupted
//   - [SyncCommand]: one-shot queue drain, optionally reviving parked entries
//   - [MigrateDataCommand]: one-shot local-to-cloud data migration
//   - [ClearLocalCommand]: wipe the local replica after a completed migration
//   - [StatusCommand]: print entity counts and queue depth
type Command interface {
	// Name returns the command identifier used for routing.
	Name() string
}

// RunCommand keeps the application open in the configured backend mode.
//
// In synced mode this starts the background sync engine, so queued local
// writes flow to the cloud while the process lives. In local or remote mode
// there is no background work; the command simply holds the store open until
// the context is cancelled, which is useful for supervising health from a
// service manager.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// SyncCommand performs a single synchronization pass: drain the pending
// queue head-first, stopping at the first entry that fails or is not yet due
// for retry.
type SyncCommand struct {
	// RetryFailed revives parked (dead-letter) entries before draining,
	// resetting their attempt counts so they are tried again immediately.
	RetryFailed bool
}

func (c *SyncCommand) Name() string { return "sync" }

// MigrateDataCommand runs the one-shot local-to-cloud data migration.
//
// This is data movement, not schema migration: every locally stored entity
// is exported, validated for referential integrity, uploaded to the cloud
// backend, and count-verified. Completion is recorded in a per-user marker
// file so the migration is never silently repeated.
type MigrateDataCommand struct {
	// Replace clears the user's existing cloud data before uploading.
	// Without it the upload merges over whatever is already there.
	Replace bool

	// Force runs the migration even when the completion marker says this
	// user already migrated.
	Force bool
}

func (c *MigrateDataCommand) Name() string { return "migrate-data" }

// ClearLocalCommand wipes the local replica.
//
// The wipe refuses to run unless the completion marker confirms this user's
// data reached the cloud, because clearing an unmigrated replica is data
// loss. It never changes the configured backend mode; switching modes is a
// separate, explicit decision.
type ClearLocalCommand struct {
	// Force wipes even without a completion marker.
	Force bool
}

func (c *ClearLocalCommand) Name() string { return "clear-local" }

// StatusCommand prints entity counts for the active backend and, in synced
// mode, the pending and parked queue depths.
type StatusCommand struct{}

func (c *StatusCommand) Name() string { return "status" }
