// Package migrate implements the one-shot bulk migration of a local
// dataset to the remote backend. The procedure is user-triggered, never
// automatic, and treats the local store as strictly read-only: whatever
// the outcome, local data is untouched. Clearing local data afterwards is
// a separate, explicit action.
package migrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// Stage is a migration state-machine phase.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageExporting  Stage = "exporting"
	StageValidating Stage = "validating"
	StageUploading  Stage = "uploading"
	StageVerifying  Stage = "verifying"
	StageComplete   Stage = "complete"
	StageFailed     Stage = "failed"
)

// Progress is reported to the caller as the migration advances.
type Progress struct {
	Stage   Stage
	Percent int
	// Entity names the batch currently uploading, e.g. "teams".
	Entity string
}

// Options configures a migration run.
type Options struct {
	// Replace clears the user's existing remote data before uploading. The
	// clear runs in reverse dependency order and a clear failure aborts the
	// whole run before any upload happens.
	Replace bool

	// OnProgress receives stage transitions and per-batch advances.
	// Optional.
	OnProgress func(Progress)

	Logger zerolog.Logger
}

// snapshot is the full local dataset read during the exporting stage.
// Reads go through the storage contract, so legacy normalization has
// already been applied to every record here.
type snapshot struct {
	Players     []*models.Player
	Seasons     []*models.Season
	Tournaments []*models.Tournament
	Personnel   []*models.Personnel
	Teams       []*models.Team
	Rosters     map[models.TeamID][]*models.RosterEntry
	Games       []*models.Game
	Adjustments []*models.PlayerAdjustment
}

func (s *snapshot) counts() store.EntityCounts {
	adjustments := int64(len(s.Adjustments))
	return store.EntityCounts{
		Players:     int64(len(s.Players)),
		Teams:       int64(len(s.Teams)),
		Seasons:     int64(len(s.Seasons)),
		Tournaments: int64(len(s.Tournaments)),
		Personnel:   int64(len(s.Personnel)),
		Adjustments: adjustments,
		Games:       int64(len(s.Games)),
	}
}

// Service runs the migration state machine.
type Service struct {
	source store.Store
	target store.Store
	opts   Options
	log    zerolog.Logger
	stage  Stage
}

// New builds a service migrating source into target. The source is wrapped
// read-only immediately so not even a service bug can mutate it.
func New(source, target store.Store, opts Options) *Service {
	return &Service{
		source: store.NewReadOnly(source),
		target: target,
		opts:   opts,
		log:    opts.Logger.With().Str("component", "migration").Logger(),
		stage:  StageIdle,
	}
}

// Stage reports the current state-machine phase.
func (s *Service) Stage() Stage { return s.stage }

func (s *Service) setStage(st Stage, percent int, entity string) {
	s.stage = st
	s.log.Info().Str("stage", string(st)).Int("percent", percent).Str("entity", entity).Msg("migration progress")
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(Progress{Stage: st, Percent: percent, Entity: entity})
	}
}

func (s *Service) fail(err error) error {
	s.setStage(StageFailed, 100, "")
	return err
}

// Run executes the full procedure: export, validate, optionally clear the
// remote dataset, upload in foreign-key-safe order, then verify counts.
// The context is honored between entity-type batches; aborting mid-upload
// leaves already-upserted remote data intact and the run safely
// repeatable.
func (s *Service) Run(ctx context.Context) error {
	if s.stage != StageIdle {
		return fmt.Errorf("migration already ran (stage %s); create a new service to run again", s.stage)
	}

	s.setStage(StageExporting, 0, "")
	snap, err := s.export(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("export local data: %w", err))
	}

	s.setStage(StageValidating, 10, "")
	if err := validate(snap); err != nil {
		return s.fail(err)
	}

	if s.opts.Replace {
		if err := s.target.DeleteAll(ctx); err != nil {
			// A half-cleared remote is worse than a stale one; never proceed
			// to upload after a failed clear.
			return s.fail(fmt.Errorf("clear remote data: %w", err))
		}
	}

	s.setStage(StageUploading, 20, "")
	if err := s.upload(ctx, snap); err != nil {
		return s.fail(err)
	}

	s.setStage(StageVerifying, 90, "")
	if err := s.verify(ctx, snap); err != nil {
		return s.fail(err)
	}

	s.setStage(StageComplete, 100, "")
	return nil
}

func (s *Service) export(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{Rosters: map[models.TeamID][]*models.RosterEntry{}}
	var err error
	if snap.Players, err = s.source.ListPlayers(ctx); err != nil {
		return nil, err
	}
	if snap.Seasons, err = s.source.ListSeasons(ctx); err != nil {
		return nil, err
	}
	if snap.Tournaments, err = s.source.ListTournaments(ctx); err != nil {
		return nil, err
	}
	if snap.Personnel, err = s.source.ListPersonnel(ctx); err != nil {
		return nil, err
	}
	if snap.Teams, err = s.source.ListTeams(ctx); err != nil {
		return nil, err
	}
	for _, team := range snap.Teams {
		roster, err := s.source.GetTeamRoster(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		if len(roster) > 0 {
			snap.Rosters[team.ID] = roster
		}
	}
	if snap.Games, err = s.source.ListGames(ctx); err != nil {
		return nil, err
	}
	for _, p := range snap.Players {
		adjustments, err := s.source.ListAdjustments(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		snap.Adjustments = append(snap.Adjustments, adjustments...)
	}
	return snap, nil
}

// validate checks referential integrity before anything touches the
// remote. Nothing is written during this stage.
func validate(snap *snapshot) error {
	seasons := map[models.SeasonID]bool{}
	for _, se := range snap.Seasons {
		seasons[se.ID] = true
	}
	tournaments := map[models.TournamentID]bool{}
	for _, tr := range snap.Tournaments {
		tournaments[tr.ID] = true
	}
	players := map[models.PlayerID]bool{}
	for _, p := range snap.Players {
		players[p.ID] = true
	}

	for _, team := range snap.Teams {
		if !team.SeasonID.IsZero() && !seasons[team.SeasonID] {
			return fmt.Errorf("team %s references missing season %s", team.ID, team.SeasonID)
		}
		if !team.TournamentID.IsZero() && !tournaments[team.TournamentID] {
			return fmt.Errorf("team %s references missing tournament %s", team.ID, team.TournamentID)
		}
	}
	for _, g := range snap.Games {
		if !g.SeasonID.IsZero() && !seasons[g.SeasonID] {
			return fmt.Errorf("game %s references missing season %s", g.ID, g.SeasonID)
		}
		if !g.TournamentID.IsZero() && !tournaments[g.TournamentID] {
			return fmt.Errorf("game %s references missing tournament %s", g.ID, g.TournamentID)
		}
	}
	for _, a := range snap.Adjustments {
		if !players[a.PlayerID] {
			return fmt.Errorf("adjustment %s references missing player %s", a.ID, a.PlayerID)
		}
	}
	return nil
}

type uploadBatch struct {
	entity string
	run    func(context.Context) error
}

// upload writes in foreign-key-safe order: independent entities first,
// then teams, rosters, games and adjustments. Everything goes through
// upserts so original ids survive verbatim and a rerun is idempotent.
func (s *Service) upload(ctx context.Context, snap *snapshot) error {
	batches := []uploadBatch{
		{"players", func(ctx context.Context) error {
			for _, p := range snap.Players {
				if err := s.target.UpsertPlayer(ctx, p); err != nil {
					return err
				}
			}
			return nil
		}},
		{"seasons", func(ctx context.Context) error {
			for _, se := range snap.Seasons {
				if err := s.target.UpsertSeason(ctx, se); err != nil {
					return err
				}
			}
			return nil
		}},
		{"tournaments", func(ctx context.Context) error {
			for _, tr := range snap.Tournaments {
				if err := s.target.UpsertTournament(ctx, tr); err != nil {
					return err
				}
			}
			return nil
		}},
		{"personnel", func(ctx context.Context) error {
			for _, p := range snap.Personnel {
				if err := s.target.UpsertPersonnel(ctx, p); err != nil {
					return err
				}
			}
			return nil
		}},
		{"teams", func(ctx context.Context) error {
			for _, team := range snap.Teams {
				if err := s.target.UpsertTeam(ctx, team); err != nil {
					return err
				}
			}
			return nil
		}},
		{"team rosters", func(ctx context.Context) error {
			for teamID, roster := range snap.Rosters {
				if err := s.target.SetTeamRoster(ctx, teamID, roster); err != nil {
					return err
				}
			}
			return nil
		}},
		{"games", func(ctx context.Context) error {
			return s.target.SaveAllGames(ctx, snap.Games)
		}},
		{"player adjustments", func(ctx context.Context) error {
			for _, a := range snap.Adjustments {
				if err := s.target.UpsertAdjustment(ctx, a); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	for i, batch := range batches {
		// Interruption points sit between batches; a single batch is small
		// enough to finish once started.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("migration interrupted before %s: %w", batch.entity, err)
		}
		percent := 20 + (70*i)/len(batches)
		s.setStage(StageUploading, percent, batch.entity)
		if err := batch.run(ctx); err != nil {
			return fmt.Errorf("upload %s: %w", batch.entity, err)
		}
	}
	return nil
}

// verify compares per-entity counts between the exported snapshot and the
// remote dataset. Any mismatch fails the run; a silent partial migration
// is the one outcome this stage exists to prevent.
func (s *Service) verify(ctx context.Context, snap *snapshot) error {
	want := snap.counts()
	got, err := s.target.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count remote data: %w", err)
	}
	if want != got {
		return fmt.Errorf("verification mismatch: local %+v, remote %+v", want, got)
	}
	return nil
}

// ClearLocal is the explicit post-migration action that wipes the local
// durable stores. It is deliberately not part of Run: the user invokes it
// separately after a verified success, and it only ever touches data
// tables, never the configuration that selects the active backend.
func ClearLocal(ctx context.Context, localStore store.Store) error {
	return localStore.DeleteAll(ctx)
}
