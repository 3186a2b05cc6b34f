package synced

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// EngineOptions tunes the background replay worker.
type EngineOptions struct {
	// Interval between drain attempts. Zero selects the default.
	Interval time.Duration

	// MaxAttempts parks an entry for manual resolution after this many
	// failed replays. Zero selects the default.
	MaxAttempts int

	// BackoffBase is the first retry delay; it doubles per attempt.
	BackoffBase time.Duration

	// BatchSize caps how many entries one drain pass loads.
	BatchSize int

	// OnDeadLetter is invoked when an entry is parked. Optional.
	OnDeadLetter func(m *store.Mutation, err error)
}

const (
	defaultInterval    = 15 * time.Second
	defaultMaxAttempts = 8
	defaultBackoffBase = 2 * time.Second
	defaultBatchSize   = 100
)

// Engine is the single background worker that drains the sync queue
// against the remote backend.
//
// Replay is strictly FIFO: a failure of the head entry stops the pass so a
// later mutation of the same entity can never overtake an earlier one.
// Conflict resolution is last-write-wins at whole-record granularity:
// every queued upsert carries the full entity or aggregate, so replay
// simply overwrites whatever the remote holds. Field-level merging is
// deliberately out of scope.
type Engine struct {
	queue  store.MutationQueue
	remote store.Store
	opts   EngineOptions
	log    zerolog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewEngine builds a stopped engine; call Start to begin draining.
func NewEngine(queue store.MutationQueue, remote store.Store, opts EngineOptions, log zerolog.Logger) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Engine{
		queue:  queue,
		remote: remote,
		opts:   opts,
		log:    log.With().Str("component", "sync-engine").Logger(),
	}
}

// Start launches the background loop. Safe to call once per engine.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.loop(e.stop, e.done)
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stop)
	done := e.done
	e.mu.Unlock()
	<-done
}

func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.opts.Interval)
			if err := e.Drain(ctx); err != nil {
				e.log.Debug().Err(err).Msg("drain pass ended early")
			}
			cancel()
		}
	}
}

// Drain replays pending mutations in order until the queue is empty, an
// entry is not yet due for retry, or a transient failure stops the pass.
// Callable directly for a foreground "sync now".
func (e *Engine) Drain(ctx context.Context) error {
	if !e.remote.Available(ctx) {
		return store.ErrOffline
	}
	for {
		pending, err := e.queue.PendingMutations(ctx, e.opts.BatchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		for _, m := range pending {
			if wait := e.retryDelay(m); wait > 0 {
				return nil
			}
			if err := e.replay(ctx, m); err != nil {
				return e.recordFailure(ctx, m, err)
			}
			if err := e.queue.MarkMutationDone(ctx, m.ID); err != nil {
				return err
			}
			e.log.Debug().
				Str("entity", m.EntityType).
				Str("id", m.EntityID).
				Str("op", string(m.Op)).
				Msg("mutation replayed")
		}
		if len(pending) < e.opts.BatchSize {
			return nil
		}
	}
}

// retryDelay returns how long until the entry may be attempted again.
func (e *Engine) retryDelay(m *store.Mutation) time.Duration {
	if m.Attempts == 0 {
		return 0
	}
	backoff := e.opts.BackoffBase << (m.Attempts - 1)
	due := m.UpdatedAt.Add(backoff)
	if wait := time.Until(due); wait > 0 {
		return wait
	}
	return 0
}

// recordFailure books the failed attempt. Transient failures stay pending
// until the attempt cap; permanent ones park immediately since they would
// fail identically forever.
func (e *Engine) recordFailure(ctx context.Context, m *store.Mutation, cause error) error {
	attempts := m.Attempts + 1
	park := !store.IsRetryable(cause) || attempts >= e.opts.MaxAttempts
	if err := e.queue.MarkMutationFailed(ctx, m.ID, attempts, cause.Error(), park); err != nil {
		return err
	}
	if park {
		e.log.Warn().
			Str("entity", m.EntityType).
			Str("id", m.EntityID).
			Int("attempts", attempts).
			Err(cause).
			Msg("mutation parked for manual resolution")
		if e.opts.OnDeadLetter != nil {
			e.opts.OnDeadLetter(m, cause)
		}
		return nil
	}
	return cause
}

// replay applies one queue entry through the same contract operations
// foreground code uses. Upserts decode the full payload; deletes need only
// the id. Replaying an already applied entry is a no-op by construction:
// upserts are idempotent and deleting an absent record reports false, not
// an error.
func (e *Engine) replay(ctx context.Context, m *store.Mutation) error {
	switch m.EntityType {
	case store.EntityPlayer:
		if m.Op == store.OpDelete {
			id, err := models.ParsePlayerID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeletePlayer(ctx, id)
			return err
		}
		var p models.Player
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return err
		}
		return e.remote.UpsertPlayer(ctx, &p)

	case store.EntityTeam:
		if m.Op == store.OpDelete {
			id, err := models.ParseTeamID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeleteTeam(ctx, id)
			return err
		}
		var t models.Team
		if err := json.Unmarshal(m.Payload, &t); err != nil {
			return err
		}
		return e.remote.UpsertTeam(ctx, &t)

	case store.EntityTeamRoster:
		teamID, err := models.ParseTeamID(m.EntityID)
		if err != nil {
			return err
		}
		var entries []*models.RosterEntry
		if err := json.Unmarshal(m.Payload, &entries); err != nil {
			return err
		}
		err = e.remote.SetTeamRoster(ctx, teamID, entries)
		if store.IsNotFound(err) {
			// The team's own queued upsert is still ahead of or gone from the
			// queue; a roster for a deleted team has nothing to attach to.
			return nil
		}
		return err

	case store.EntitySeason:
		if m.Op == store.OpDelete {
			id, err := models.ParseSeasonID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeleteSeason(ctx, id)
			return err
		}
		var se models.Season
		if err := json.Unmarshal(m.Payload, &se); err != nil {
			return err
		}
		return e.remote.UpsertSeason(ctx, &se)

	case store.EntityTournament:
		if m.Op == store.OpDelete {
			id, err := models.ParseTournamentID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeleteTournament(ctx, id)
			return err
		}
		var t models.Tournament
		if err := json.Unmarshal(m.Payload, &t); err != nil {
			return err
		}
		return e.remote.UpsertTournament(ctx, &t)

	case store.EntityPersonnel:
		if m.Op == store.OpDelete {
			id, err := models.ParsePersonnelID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeletePersonnel(ctx, id)
			return err
		}
		var p models.Personnel
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return err
		}
		return e.remote.UpsertPersonnel(ctx, &p)

	case store.EntityAdjustment:
		if m.Op == store.OpDelete {
			id, err := models.ParseAdjustmentID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeleteAdjustment(ctx, id)
			return err
		}
		var a models.PlayerAdjustment
		if err := json.Unmarshal(m.Payload, &a); err != nil {
			return err
		}
		return e.remote.UpsertAdjustment(ctx, &a)

	case store.EntityGame:
		if m.Op == store.OpDelete {
			id, err := models.ParseGameID(m.EntityID)
			if err != nil {
				return err
			}
			_, err = e.remote.DeleteGame(ctx, id)
			return err
		}
		var g models.Game
		if err := json.Unmarshal(m.Payload, &g); err != nil {
			return err
		}
		return e.remote.SaveGame(ctx, &g)

	default:
		return fmt.Errorf("unknown queued entity type %q", m.EntityType)
	}
}

// Stats reports queue depth for status displays.
func (e *Engine) Stats(ctx context.Context) (store.QueueStats, error) {
	return e.queue.QueueStats(ctx)
}

// RetryFailed moves parked entries back into the pending scan.
func (e *Engine) RetryFailed(ctx context.Context) (int64, error) {
	return e.queue.RetryFailedMutations(ctx)
}
