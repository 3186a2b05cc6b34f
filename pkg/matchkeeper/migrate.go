package matchkeeper

import (
	"context"
	"fmt"

	"github.com/matchkeeper/matchkeeper/pkg/migrate"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
	"github.com/matchkeeper/matchkeeper/pkg/store/remote"
)

// MigrateData moves the whole local dataset to the cloud backend.
//
// This is data movement, not schema migration. The run is one-shot per
// user: completion is recorded in a marker file under Config.DataDir and a
// second invocation refuses unless -force is given. The local database is
// opened read-only for the duration, so an interrupted run can always be
// retried from the untouched source.
//
// The command works regardless of the configured -mode; it always reads the
// SQLite file at Config.LocalPath and writes to the configured SurrealDB
// account. Switching the running mode to synced or remote afterwards is a
// separate, explicit step.
func (a *App) MigrateData(ctx context.Context, cmd *MigrateDataCommand) error {
	if a.synced != nil {
		// No background replays while the dataset is being copied.
		a.synced.Engine().Stop()
	}

	marker := migrate.NewMarker(a.config.DataDir)
	user := a.config.SurrealDBUser
	if marker.IsComplete(user) && !cmd.Force {
		return fmt.Errorf("migration already completed for %q; pass -force to repeat it", user)
	}

	source, err := local.Open(a.config.LocalPath, local.Options{Logger: a.log})
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer source.Close()
	if err := source.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize local store: %w", err)
	}

	target, err := remote.Connect(ctx, remoteConfig(a.config, a.log))
	if err != nil {
		return fmt.Errorf("connect to SurrealDB: %w", err)
	}
	defer target.Close()
	if err := target.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize remote store: %w", err)
	}

	service := migrate.New(source, target, migrate.Options{
		Replace: cmd.Replace,
		Logger:  a.log,
		OnProgress: func(p migrate.Progress) {
			ev := a.log.Info().Str("stage", string(p.Stage)).Int("percent", p.Percent)
			if p.Entity != "" {
				ev = ev.Str("entity", p.Entity)
			}
			ev.Msg("migration progress")
		},
	})

	if err := service.Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := marker.Complete(user); err != nil {
		// The data is safely uploaded; only the marker write failed.
		a.log.Warn().Err(err).Msg("could not record migration completion marker")
	}
	a.log.Info().Str("user", user).Msg("migration complete")
	return nil
}

// ClearLocal wipes the local replica.
//
// Without a completion marker for the configured user the wipe refuses to
// run: clearing an unmigrated replica is data loss, not cleanup. The
// configured backend mode is never changed here.
func (a *App) ClearLocal(ctx context.Context, cmd *ClearLocalCommand) error {
	if a.synced != nil {
		a.synced.Engine().Stop()
	}

	marker := migrate.NewMarker(a.config.DataDir)
	user := a.config.SurrealDBUser
	if !marker.IsComplete(user) && !cmd.Force {
		return fmt.Errorf("no completed migration recorded for %q; pass -force to wipe anyway", user)
	}

	ls, err := local.Open(a.config.LocalPath, local.Options{Logger: a.log})
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer ls.Close()
	if err := ls.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize local store: %w", err)
	}

	if err := migrate.ClearLocal(ctx, ls); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	a.log.Info().Str("path", a.config.LocalPath).Msg("local data cleared")
	return nil
}
