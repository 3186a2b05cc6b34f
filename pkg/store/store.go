// Package store defines the storage contract implemented by every backend,
// plus the shared error taxonomy and validation rules. Backends differ only
// in where bytes land; callers program against this interface and must be
// able to swap local, remote and synced implementations without behavioral
// surprises.
package store

import (
	"context"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// EntityCounts is the per-table census used by migration verification and
// diagnostics.
type EntityCounts struct {
	Players     int64 `json:"players"`
	Teams       int64 `json:"teams"`
	Seasons     int64 `json:"seasons"`
	Tournaments int64 `json:"tournaments"`
	Personnel   int64 `json:"personnel"`
	Adjustments int64 `json:"playerAdjustments"`
	Games       int64 `json:"games"`
}

// Total sums every entity class.
func (c EntityCounts) Total() int64 {
	return c.Players + c.Teams + c.Seasons + c.Tournaments + c.Personnel + c.Adjustments + c.Games
}

// Store is the single contract every backend implements.
//
// Lookup semantics: Get* returns (nil, nil) when the entity does not exist;
// a non-nil error always means the lookup itself failed. Update* likewise
// returns (nil, nil) for an absent target rather than failing. Delete*
// returns (false, nil) when there was nothing to delete. Create* mutates
// the passed value in place, assigning identity and bookkeeping timestamps.
//
// Game writes are whole-aggregate: SaveGame atomically replaces the header
// and every dependent collection (events, per-player rows, assessments,
// tactics) in one transaction. There is no partial game update.
type Store interface {
	// Initialize prepares the backend (opens connections, runs schema
	// migration). Safe to call once per process before any other method.
	Initialize(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error

	// Name identifies the backend for logs and error messages.
	Name() string

	// Available reports whether the backend can currently serve requests.
	// The local backend is always available; the remote backend reflects
	// connectivity.
	Available(ctx context.Context) bool

	// Players.
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id models.PlayerID, upd models.PlayerUpdate) (*models.Player, error)
	UpsertPlayer(ctx context.Context, p *models.Player) error
	DeletePlayer(ctx context.Context, id models.PlayerID) (bool, error)

	// Teams. Deleting a team also removes its roster snapshot.
	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id models.TeamID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id models.TeamID, upd models.TeamUpdate) (*models.Team, error)
	UpsertTeam(ctx context.Context, t *models.Team) error
	DeleteTeam(ctx context.Context, id models.TeamID) (bool, error)

	// Roster snapshots. SetTeamRoster replaces the team's snapshot wholesale
	// in entry order; GetTeamRoster returns entries in stored order and an
	// empty (never nil) slice for a team with no snapshot.
	GetTeamRoster(ctx context.Context, teamID models.TeamID) ([]*models.RosterEntry, error)
	SetTeamRoster(ctx context.Context, teamID models.TeamID, entries []*models.RosterEntry) error

	// Seasons. Reads pass through models.NormalizeSeason.
	CreateSeason(ctx context.Context, s *models.Season) error
	GetSeason(ctx context.Context, id models.SeasonID) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]*models.Season, error)
	UpdateSeason(ctx context.Context, id models.SeasonID, upd models.SeasonUpdate) (*models.Season, error)
	UpsertSeason(ctx context.Context, s *models.Season) error
	DeleteSeason(ctx context.Context, id models.SeasonID) (bool, error)

	// Tournaments. Reads pass through models.NormalizeTournament.
	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id models.TournamentID) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id models.TournamentID, upd models.TournamentUpdate) (*models.Tournament, error)
	UpsertTournament(ctx context.Context, t *models.Tournament) error
	DeleteTournament(ctx context.Context, id models.TournamentID) (bool, error)

	// Personnel. Deleting a member also strips the reference from every
	// stored game.
	CreatePersonnel(ctx context.Context, p *models.Personnel) error
	GetPersonnel(ctx context.Context, id models.PersonnelID) (*models.Personnel, error)
	ListPersonnel(ctx context.Context) ([]*models.Personnel, error)
	UpdatePersonnel(ctx context.Context, id models.PersonnelID, upd models.PersonnelUpdate) (*models.Personnel, error)
	UpsertPersonnel(ctx context.Context, p *models.Personnel) error
	DeletePersonnel(ctx context.Context, id models.PersonnelID) (bool, error)

	// Player adjustments.
	CreateAdjustment(ctx context.Context, a *models.PlayerAdjustment) error
	ListAdjustments(ctx context.Context, playerID models.PlayerID) ([]*models.PlayerAdjustment, error)
	UpsertAdjustment(ctx context.Context, a *models.PlayerAdjustment) error
	DeleteAdjustment(ctx context.Context, id models.AdjustmentID) (bool, error)

	// Games.
	SaveGame(ctx context.Context, g *models.Game) error
	SaveAllGames(ctx context.Context, games []*models.Game) error
	GetGame(ctx context.Context, id models.GameID) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	DeleteGame(ctx context.Context, id models.GameID) (bool, error)

	// Game sub-operations. Each loads the aggregate, applies the change and
	// re-saves atomically; they exist so callers never hand-roll the
	// read-modify-write.
	AddGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) error
	UpdateGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) (bool, error)
	RemoveGameEvent(ctx context.Context, gameID models.GameID, eventID models.EventID) (bool, error)
	SaveAssessment(ctx context.Context, gameID models.GameID, a models.PlayerAssessment) error
	DeleteAssessment(ctx context.Context, gameID models.GameID, playerID models.PlayerID) (bool, error)

	// Census and bulk wipe. DeleteAll removes every entity of every class,
	// dependents first.
	Counts(ctx context.Context) (EntityCounts, error)
	DeleteAll(ctx context.Context) error
}
