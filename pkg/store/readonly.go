package store

import (
	"context"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// ReadOnly wraps a Store and rejects every mutating call with ErrReadOnly.
// The migration service wraps the source store this way during export and
// upload so a bug can never corrupt the data being migrated.
type ReadOnly struct {
	inner Store
}

// NewReadOnly wraps s in a read-only guard.
func NewReadOnly(s Store) *ReadOnly { return &ReadOnly{inner: s} }

var _ Store = (*ReadOnly)(nil)

func (r *ReadOnly) Initialize(ctx context.Context) error { return r.inner.Initialize(ctx) }
func (r *ReadOnly) Close() error                         { return r.inner.Close() }
func (r *ReadOnly) Name() string                         { return r.inner.Name() + " (read-only)" }
func (r *ReadOnly) Available(ctx context.Context) bool   { return r.inner.Available(ctx) }

func (r *ReadOnly) CreatePlayer(ctx context.Context, p *models.Player) error { return ErrReadOnly }
func (r *ReadOnly) GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error) {
	return r.inner.GetPlayer(ctx, id)
}
func (r *ReadOnly) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return r.inner.ListPlayers(ctx)
}
func (r *ReadOnly) UpdatePlayer(ctx context.Context, id models.PlayerID, upd models.PlayerUpdate) (*models.Player, error) {
	return nil, ErrReadOnly
}
func (r *ReadOnly) UpsertPlayer(ctx context.Context, p *models.Player) error { return ErrReadOnly }
func (r *ReadOnly) DeletePlayer(ctx context.Context, id models.PlayerID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) CreateTeam(ctx context.Context, t *models.Team) error { return ErrReadOnly }
func (r *ReadOnly) GetTeam(ctx context.Context, id models.TeamID) (*models.Team, error) {
	return r.inner.GetTeam(ctx, id)
}
func (r *ReadOnly) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return r.inner.ListTeams(ctx)
}
func (r *ReadOnly) UpdateTeam(ctx context.Context, id models.TeamID, upd models.TeamUpdate) (*models.Team, error) {
	return nil, ErrReadOnly
}
func (r *ReadOnly) UpsertTeam(ctx context.Context, t *models.Team) error { return ErrReadOnly }
func (r *ReadOnly) DeleteTeam(ctx context.Context, id models.TeamID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) GetTeamRoster(ctx context.Context, teamID models.TeamID) ([]*models.RosterEntry, error) {
	return r.inner.GetTeamRoster(ctx, teamID)
}
func (r *ReadOnly) SetTeamRoster(ctx context.Context, teamID models.TeamID, entries []*models.RosterEntry) error {
	return ErrReadOnly
}

func (r *ReadOnly) CreateSeason(ctx context.Context, s *models.Season) error { return ErrReadOnly }
func (r *ReadOnly) GetSeason(ctx context.Context, id models.SeasonID) (*models.Season, error) {
	return r.inner.GetSeason(ctx, id)
}
func (r *ReadOnly) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	return r.inner.ListSeasons(ctx)
}
func (r *ReadOnly) UpdateSeason(ctx context.Context, id models.SeasonID, upd models.SeasonUpdate) (*models.Season, error) {
	return nil, ErrReadOnly
}
func (r *ReadOnly) UpsertSeason(ctx context.Context, s *models.Season) error { return ErrReadOnly }
func (r *ReadOnly) DeleteSeason(ctx context.Context, id models.SeasonID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) CreateTournament(ctx context.Context, t *models.Tournament) error {
	return ErrReadOnly
}
func (r *ReadOnly) GetTournament(ctx context.Context, id models.TournamentID) (*models.Tournament, error) {
	return r.inner.GetTournament(ctx, id)
}
func (r *ReadOnly) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	return r.inner.ListTournaments(ctx)
}
func (r *ReadOnly) UpdateTournament(ctx context.Context, id models.TournamentID, upd models.TournamentUpdate) (*models.Tournament, error) {
	return nil, ErrReadOnly
}
func (r *ReadOnly) UpsertTournament(ctx context.Context, t *models.Tournament) error {
	return ErrReadOnly
}
func (r *ReadOnly) DeleteTournament(ctx context.Context, id models.TournamentID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	return ErrReadOnly
}
func (r *ReadOnly) GetPersonnel(ctx context.Context, id models.PersonnelID) (*models.Personnel, error) {
	return r.inner.GetPersonnel(ctx, id)
}
func (r *ReadOnly) ListPersonnel(ctx context.Context) ([]*models.Personnel, error) {
	return r.inner.ListPersonnel(ctx)
}
func (r *ReadOnly) UpdatePersonnel(ctx context.Context, id models.PersonnelID, upd models.PersonnelUpdate) (*models.Personnel, error) {
	return nil, ErrReadOnly
}
func (r *ReadOnly) UpsertPersonnel(ctx context.Context, p *models.Personnel) error {
	return ErrReadOnly
}
func (r *ReadOnly) DeletePersonnel(ctx context.Context, id models.PersonnelID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) CreateAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	return ErrReadOnly
}
func (r *ReadOnly) ListAdjustments(ctx context.Context, playerID models.PlayerID) ([]*models.PlayerAdjustment, error) {
	return r.inner.ListAdjustments(ctx, playerID)
}
func (r *ReadOnly) UpsertAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	return ErrReadOnly
}
func (r *ReadOnly) DeleteAdjustment(ctx context.Context, id models.AdjustmentID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) SaveGame(ctx context.Context, g *models.Game) error { return ErrReadOnly }
func (r *ReadOnly) SaveAllGames(ctx context.Context, games []*models.Game) error {
	return ErrReadOnly
}
func (r *ReadOnly) GetGame(ctx context.Context, id models.GameID) (*models.Game, error) {
	return r.inner.GetGame(ctx, id)
}
func (r *ReadOnly) ListGames(ctx context.Context) ([]*models.Game, error) {
	return r.inner.ListGames(ctx)
}
func (r *ReadOnly) DeleteGame(ctx context.Context, id models.GameID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) AddGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) error {
	return ErrReadOnly
}
func (r *ReadOnly) UpdateGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) (bool, error) {
	return false, ErrReadOnly
}
func (r *ReadOnly) RemoveGameEvent(ctx context.Context, gameID models.GameID, eventID models.EventID) (bool, error) {
	return false, ErrReadOnly
}
func (r *ReadOnly) SaveAssessment(ctx context.Context, gameID models.GameID, a models.PlayerAssessment) error {
	return ErrReadOnly
}
func (r *ReadOnly) DeleteAssessment(ctx context.Context, gameID models.GameID, playerID models.PlayerID) (bool, error) {
	return false, ErrReadOnly
}

func (r *ReadOnly) Counts(ctx context.Context) (EntityCounts, error) { return r.inner.Counts(ctx) }
func (r *ReadOnly) DeleteAll(ctx context.Context) error              { return ErrReadOnly }
