package matchkeeper

import (
	"context"
	"fmt"
)

// Run keeps the application open until the context is cancelled.
//
// In synced mode the background engine (started by Initialize) drains the
// queue on its interval for as long as the process lives, so this is the
// daemon form of the application. In local and remote mode there is nothing
// to do in the background; the command just holds the store open, which
// gives service managers a process whose liveness equals store health.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	a.log.Info().Msg("running; press Ctrl-C to stop")
	<-ctx.Done()
	a.log.Info().Msg("shutting down")
	return nil
}

// Sync performs a single catch-up pass over the durable queue.
//
// Entries replay oldest-first and the pass stops at the first entry that
// fails or is still inside its backoff window, preserving cross-entity
// write order. With RetryFailed set, parked entries are revived first.
func (a *App) Sync(ctx context.Context, cmd *SyncCommand) error {
	if a.synced == nil {
		return fmt.Errorf("sync requires -mode synced (current mode: %s)", a.config.Mode)
	}
	engine := a.synced.Engine()
	// One-shot mode: the foreground drain should be the only pass running.
	engine.Stop()

	if cmd.RetryFailed {
		revived, err := engine.RetryFailed(ctx)
		if err != nil {
			return fmt.Errorf("revive parked entries: %w", err)
		}
		a.log.Info().Int64("revived", revived).Msg("parked entries returned to the queue")
	}

	if err := engine.Drain(ctx); err != nil {
		return fmt.Errorf("sync pass stopped early: %w", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}
	a.log.Info().
		Int64("pending", stats.Pending).
		Int64("parked", stats.Failed).
		Msg("sync pass complete")
	if stats.Pending > 0 || stats.Failed > 0 {
		return fmt.Errorf("%d pending and %d parked entries remain", stats.Pending, stats.Failed)
	}
	return nil
}

// Status prints the active backend's entity counts and, in synced mode, the
// queue depth.
func (a *App) Status(ctx context.Context, cmd *StatusCommand) error {
	counts, err := a.store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count entities: %w", err)
	}

	fmt.Printf("backend:      %s\n", a.store.Name())
	fmt.Printf("available:    %v\n", a.store.Available(ctx))
	fmt.Printf("players:      %d\n", counts.Players)
	fmt.Printf("teams:        %d\n", counts.Teams)
	fmt.Printf("seasons:      %d\n", counts.Seasons)
	fmt.Printf("tournaments:  %d\n", counts.Tournaments)
	fmt.Printf("personnel:    %d\n", counts.Personnel)
	fmt.Printf("adjustments:  %d\n", counts.Adjustments)
	fmt.Printf("games:        %d\n", counts.Games)
	fmt.Printf("total:        %d\n", counts.Total())

	if a.synced != nil {
		stats, err := a.synced.Engine().Stats(ctx)
		if err != nil {
			return fmt.Errorf("queue stats: %w", err)
		}
		fmt.Printf("queue:        %d pending, %d parked\n", stats.Pending, stats.Failed)
	}
	return nil
}
