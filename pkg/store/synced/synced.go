// Package synced composes the local and remote backends into the
// local-first mode: every operation is served by the embedded store for
// immediate durability and latency, each write also lands in the sync
// queue inside the same transaction, and a background engine replays the
// queue against the remote backend whenever it is reachable.
package synced

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/local"
)

// Store is the composing implementation of store.Store.
type Store struct {
	local  *local.Store
	remote store.Store
	engine *Engine
	log    zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// New composes a queue-enabled local store with a remote replica and
// starts the sync engine. The caller owns both stores' lifetimes through
// Close.
func New(localStore *local.Store, remoteStore store.Store, opts EngineOptions, log zerolog.Logger) *Store {
	s := &Store{
		local:  localStore,
		remote: remoteStore,
		log:    log.With().Str("store", "synced").Logger(),
	}
	s.engine = NewEngine(localStore, remoteStore, opts, log)
	return s
}

// Engine exposes the background worker for status queries and manual
// drains.
func (s *Store) Engine() *Engine { return s.engine }

// Initialize prepares the local store and starts the engine. The remote
// store may be unreachable at startup; the engine simply waits for it.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.local.Initialize(ctx); err != nil {
		return err
	}
	s.engine.Start()
	return nil
}

// Close stops the engine, then closes both backends.
func (s *Store) Close() error {
	s.engine.Stop()
	lErr := s.local.Close()
	rErr := s.remote.Close()
	if lErr != nil {
		return lErr
	}
	return rErr
}

// Name identifies the backend.
func (s *Store) Name() string { return "synced" }

// Available mirrors the local store: the synced mode never blocks on the
// network.
func (s *Store) Available(ctx context.Context) bool { return s.local.Available(ctx) }

// Every contract method delegates to the local store; the queue entry
// written inside the same local transaction carries the change to the
// remote replica asynchronously.

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	return s.local.CreatePlayer(ctx, p)
}
func (s *Store) GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error) {
	return s.local.GetPlayer(ctx, id)
}
func (s *Store) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return s.local.ListPlayers(ctx)
}
func (s *Store) UpdatePlayer(ctx context.Context, id models.PlayerID, upd models.PlayerUpdate) (*models.Player, error) {
	return s.local.UpdatePlayer(ctx, id, upd)
}
func (s *Store) UpsertPlayer(ctx context.Context, p *models.Player) error {
	return s.local.UpsertPlayer(ctx, p)
}
func (s *Store) DeletePlayer(ctx context.Context, id models.PlayerID) (bool, error) {
	return s.local.DeletePlayer(ctx, id)
}

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	return s.local.CreateTeam(ctx, t)
}
func (s *Store) GetTeam(ctx context.Context, id models.TeamID) (*models.Team, error) {
	return s.local.GetTeam(ctx, id)
}
func (s *Store) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.local.ListTeams(ctx)
}
func (s *Store) UpdateTeam(ctx context.Context, id models.TeamID, upd models.TeamUpdate) (*models.Team, error) {
	return s.local.UpdateTeam(ctx, id, upd)
}
func (s *Store) UpsertTeam(ctx context.Context, t *models.Team) error {
	return s.local.UpsertTeam(ctx, t)
}
func (s *Store) DeleteTeam(ctx context.Context, id models.TeamID) (bool, error) {
	return s.local.DeleteTeam(ctx, id)
}

func (s *Store) GetTeamRoster(ctx context.Context, teamID models.TeamID) ([]*models.RosterEntry, error) {
	return s.local.GetTeamRoster(ctx, teamID)
}
func (s *Store) SetTeamRoster(ctx context.Context, teamID models.TeamID, entries []*models.RosterEntry) error {
	return s.local.SetTeamRoster(ctx, teamID, entries)
}

func (s *Store) CreateSeason(ctx context.Context, se *models.Season) error {
	return s.local.CreateSeason(ctx, se)
}
func (s *Store) GetSeason(ctx context.Context, id models.SeasonID) (*models.Season, error) {
	return s.local.GetSeason(ctx, id)
}
func (s *Store) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	return s.local.ListSeasons(ctx)
}
func (s *Store) UpdateSeason(ctx context.Context, id models.SeasonID, upd models.SeasonUpdate) (*models.Season, error) {
	return s.local.UpdateSeason(ctx, id, upd)
}
func (s *Store) UpsertSeason(ctx context.Context, se *models.Season) error {
	return s.local.UpsertSeason(ctx, se)
}
func (s *Store) DeleteSeason(ctx context.Context, id models.SeasonID) (bool, error) {
	return s.local.DeleteSeason(ctx, id)
}

func (s *Store) CreateTournament(ctx context.Context, t *models.Tournament) error {
	return s.local.CreateTournament(ctx, t)
}
func (s *Store) GetTournament(ctx context.Context, id models.TournamentID) (*models.Tournament, error) {
	return s.local.GetTournament(ctx, id)
}
func (s *Store) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	return s.local.ListTournaments(ctx)
}
func (s *Store) UpdateTournament(ctx context.Context, id models.TournamentID, upd models.TournamentUpdate) (*models.Tournament, error) {
	return s.local.UpdateTournament(ctx, id, upd)
}
func (s *Store) UpsertTournament(ctx context.Context, t *models.Tournament) error {
	return s.local.UpsertTournament(ctx, t)
}
func (s *Store) DeleteTournament(ctx context.Context, id models.TournamentID) (bool, error) {
	return s.local.DeleteTournament(ctx, id)
}

func (s *Store) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	return s.local.CreatePersonnel(ctx, p)
}
func (s *Store) GetPersonnel(ctx context.Context, id models.PersonnelID) (*models.Personnel, error) {
	return s.local.GetPersonnel(ctx, id)
}
func (s *Store) ListPersonnel(ctx context.Context) ([]*models.Personnel, error) {
	return s.local.ListPersonnel(ctx)
}
func (s *Store) UpdatePersonnel(ctx context.Context, id models.PersonnelID, upd models.PersonnelUpdate) (*models.Personnel, error) {
	return s.local.UpdatePersonnel(ctx, id, upd)
}
func (s *Store) UpsertPersonnel(ctx context.Context, p *models.Personnel) error {
	return s.local.UpsertPersonnel(ctx, p)
}
func (s *Store) DeletePersonnel(ctx context.Context, id models.PersonnelID) (bool, error) {
	return s.local.DeletePersonnel(ctx, id)
}

func (s *Store) CreateAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	return s.local.CreateAdjustment(ctx, a)
}
func (s *Store) ListAdjustments(ctx context.Context, playerID models.PlayerID) ([]*models.PlayerAdjustment, error) {
	return s.local.ListAdjustments(ctx, playerID)
}
func (s *Store) UpsertAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	return s.local.UpsertAdjustment(ctx, a)
}
func (s *Store) DeleteAdjustment(ctx context.Context, id models.AdjustmentID) (bool, error) {
	return s.local.DeleteAdjustment(ctx, id)
}

func (s *Store) SaveGame(ctx context.Context, g *models.Game) error {
	return s.local.SaveGame(ctx, g)
}
func (s *Store) SaveAllGames(ctx context.Context, games []*models.Game) error {
	return s.local.SaveAllGames(ctx, games)
}
func (s *Store) GetGame(ctx context.Context, id models.GameID) (*models.Game, error) {
	return s.local.GetGame(ctx, id)
}
func (s *Store) ListGames(ctx context.Context) ([]*models.Game, error) {
	return s.local.ListGames(ctx)
}
func (s *Store) DeleteGame(ctx context.Context, id models.GameID) (bool, error) {
	return s.local.DeleteGame(ctx, id)
}

func (s *Store) AddGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) error {
	return s.local.AddGameEvent(ctx, gameID, ev)
}
func (s *Store) UpdateGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) (bool, error) {
	return s.local.UpdateGameEvent(ctx, gameID, ev)
}
func (s *Store) RemoveGameEvent(ctx context.Context, gameID models.GameID, eventID models.EventID) (bool, error) {
	return s.local.RemoveGameEvent(ctx, gameID, eventID)
}
func (s *Store) SaveAssessment(ctx context.Context, gameID models.GameID, a models.PlayerAssessment) error {
	return s.local.SaveAssessment(ctx, gameID, a)
}
func (s *Store) DeleteAssessment(ctx context.Context, gameID models.GameID, playerID models.PlayerID) (bool, error) {
	return s.local.DeleteAssessment(ctx, gameID, playerID)
}

func (s *Store) Counts(ctx context.Context) (store.EntityCounts, error) {
	return s.local.Counts(ctx)
}

// DeleteAll clears the local dataset only. Remote data is managed through
// the migration service's replace mode, never wiped implicitly.
func (s *Store) DeleteAll(ctx context.Context) error {
	return s.local.DeleteAll(ctx)
}
