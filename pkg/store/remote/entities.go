package remote

import (
	"context"
	"time"

	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// The entity operations share three SurrealQL shapes: an owner-stamped
// upsert, an owner-filtered select and an owner-filtered delete. The
// upsert runs as a two-statement transaction so the owner column can never
// be missing, and so a replayed or migrated row keeps its original id.

const upsertQuery = `
BEGIN;
UPSERT $id CONTENT $content;
UPDATE $id SET owner = $owner;
COMMIT;
`

func upsertRecord[T any](ctx context.Context, s *Store, op string, rid surrealdb_models.RecordID, entity *T) error {
	return s.run(ctx, op, func() error {
		_, err := query[any](ctx, s, upsertQuery, map[string]any{
			"id":      rid,
			"content": entity,
		})
		return err
	})
}

func getRecord[T any](ctx context.Context, s *Store, op string, rid surrealdb_models.RecordID) (*T, error) {
	var out *T
	err := s.run(ctx, op, func() error {
		res, err := query[[]T](ctx, s, "SELECT * FROM $id WHERE owner = $owner", map[string]any{"id": rid})
		if err != nil {
			return err
		}
		rows := firstResult(res)
		if len(rows) > 0 {
			out = &rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func listRecords[T any](ctx context.Context, s *Store, op, q string, params map[string]any) ([]T, error) {
	out := []T{}
	err := s.run(ctx, op, func() error {
		res, err := query[[]T](ctx, s, q, params)
		if err != nil {
			return err
		}
		out = append(out[:0], firstResult(res)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func deleteRecord(ctx context.Context, s *Store, op string, rid surrealdb_models.RecordID) (bool, error) {
	deleted := false
	err := s.run(ctx, op, func() error {
		res, err := query[[]map[string]any](ctx, s, "DELETE $id WHERE owner = $owner RETURN BEFORE", map[string]any{"id": rid})
		if err != nil {
			return err
		}
		deleted = len(firstResult(res)) > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Players.

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	// Create and upsert coincide here: replayed and migrated writes carry
	// pre-assigned ids that must be accepted, not rejected as duplicates.
	return s.UpsertPlayer(ctx, p)
}

func (s *Store) UpsertPlayer(ctx context.Context, p *models.Player) error {
	if err := store.ValidatePlayer(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPlayerID()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	return upsertRecord(ctx, s, "upsertPlayer", p.ID.RecordID(), p)
}

func (s *Store) GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error) {
	return getRecord[models.Player](ctx, s, "getPlayer", id.RecordID())
}

func (s *Store) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	list, err := listRecords[*models.Player](ctx, s, "listPlayers",
		"SELECT * FROM players WHERE owner = $owner ORDER BY name", nil)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, id models.PlayerID, upd models.PlayerUpdate) (*models.Player, error) {
	cur, err := s.GetPlayer(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	upd.Apply(cur)
	if err := s.UpsertPlayer(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *Store) DeletePlayer(ctx context.Context, id models.PlayerID) (bool, error) {
	deleted, err := deleteRecord(ctx, s, "deletePlayer", id.RecordID())
	if err != nil || !deleted {
		return deleted, err
	}
	err = s.run(ctx, "deletePlayer", func() error {
		_, qErr := query[any](ctx, s, `
BEGIN;
DELETE player_adjustments WHERE playerId = $player AND owner = $owner;
DELETE team_rosters WHERE player_id = $player AND owner = $owner;
COMMIT;
`, map[string]any{"player": id.RecordID()})
		return qErr
	})
	return deleted, err
}

// Teams.

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	return s.UpsertTeam(ctx, t)
}

func (s *Store) UpsertTeam(ctx context.Context, t *models.Team) error {
	if err := store.ValidateTeam(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTeamID()
	}
	stamp(&t.CreatedAt, &t.UpdatedAt)
	return upsertRecord(ctx, s, "upsertTeam", t.ID.RecordID(), t)
}

func (s *Store) GetTeam(ctx context.Context, id models.TeamID) (*models.Team, error) {
	return getRecord[models.Team](ctx, s, "getTeam", id.RecordID())
}

func (s *Store) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return listRecords[*models.Team](ctx, s, "listTeams",
		"SELECT * FROM teams WHERE owner = $owner ORDER BY name", nil)
}

func (s *Store) UpdateTeam(ctx context.Context, id models.TeamID, upd models.TeamUpdate) (*models.Team, error) {
	cur, err := s.GetTeam(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	upd.Apply(cur)
	if err := s.UpsertTeam(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// DeleteTeam removes the team and its roster snapshot in one transaction.
func (s *Store) DeleteTeam(ctx context.Context, id models.TeamID) (bool, error) {
	existing, err := s.GetTeam(ctx, id)
	if err != nil || existing == nil {
		return false, err
	}
	err = s.run(ctx, "deleteTeam", func() error {
		_, qErr := query[any](ctx, s, `
BEGIN;
DELETE team_rosters WHERE team_id = $team AND owner = $owner;
DELETE $team WHERE owner = $owner;
COMMIT;
`, map[string]any{"team": id.RecordID()})
		return qErr
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Roster snapshots.

func (s *Store) GetTeamRoster(ctx context.Context, teamID models.TeamID) ([]*models.RosterEntry, error) {
	return listRecords[*models.RosterEntry](ctx, s, "getTeamRoster",
		"SELECT * FROM team_rosters WHERE team_id = $team AND owner = $owner ORDER BY slot",
		map[string]any{"team": teamID.RecordID()})
}

// SetTeamRoster replaces the snapshot wholesale in one transaction.
func (s *Store) SetTeamRoster(ctx context.Context, teamID models.TeamID, entries []*models.RosterEntry) error {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return &store.NotFoundError{Entity: "team", ID: teamID.String()}
	}
	for i, e := range entries {
		e.TeamID = teamID
		e.Slot = i
	}
	return s.run(ctx, "setTeamRoster", func() error {
		_, qErr := query[any](ctx, s, `
BEGIN;
DELETE team_rosters WHERE team_id = $team AND owner = $owner;
INSERT INTO team_rosters $entries;
UPDATE team_rosters SET owner = $owner WHERE team_id = $team;
COMMIT;
`, map[string]any{"team": teamID.RecordID(), "entries": entries})
		return qErr
	})
}

// Seasons.

func (s *Store) CreateSeason(ctx context.Context, se *models.Season) error {
	return s.UpsertSeason(ctx, se)
}

func (s *Store) UpsertSeason(ctx context.Context, se *models.Season) error {
	if err := store.ValidateSeason(se); err != nil {
		return err
	}
	if se.ID.IsZero() {
		se.ID = models.NewSeasonID()
	}
	stamp(&se.CreatedAt, &se.UpdatedAt)
	return upsertRecord(ctx, s, "upsertSeason", se.ID.RecordID(), se)
}

func (s *Store) GetSeason(ctx context.Context, id models.SeasonID) (*models.Season, error) {
	se, err := getRecord[models.Season](ctx, s, "getSeason", id.RecordID())
	if err != nil || se == nil {
		return nil, err
	}
	models.NormalizeSeason(se)
	return se, nil
}

func (s *Store) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	list, err := listRecords[*models.Season](ctx, s, "listSeasons",
		"SELECT * FROM seasons WHERE owner = $owner ORDER BY startDate DESC", nil)
	if err != nil {
		return nil, err
	}
	for _, se := range list {
		models.NormalizeSeason(se)
	}
	return list, nil
}

func (s *Store) UpdateSeason(ctx context.Context, id models.SeasonID, upd models.SeasonUpdate) (*models.Season, error) {
	cur, err := s.GetSeason(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	upd.Apply(cur)
	if err := s.UpsertSeason(ctx, cur); err != nil {
		return nil, err
	}
	models.NormalizeSeason(cur)
	return cur, nil
}

func (s *Store) DeleteSeason(ctx context.Context, id models.SeasonID) (bool, error) {
	return deleteRecord(ctx, s, "deleteSeason", id.RecordID())
}

// Tournaments.

func (s *Store) CreateTournament(ctx context.Context, t *models.Tournament) error {
	return s.UpsertTournament(ctx, t)
}

func (s *Store) UpsertTournament(ctx context.Context, t *models.Tournament) error {
	if err := store.ValidateTournament(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTournamentID()
	}
	stamp(&t.CreatedAt, &t.UpdatedAt)
	return upsertRecord(ctx, s, "upsertTournament", t.ID.RecordID(), t)
}

func (s *Store) GetTournament(ctx context.Context, id models.TournamentID) (*models.Tournament, error) {
	t, err := getRecord[models.Tournament](ctx, s, "getTournament", id.RecordID())
	if err != nil || t == nil {
		return nil, err
	}
	models.NormalizeTournament(t)
	return t, nil
}

func (s *Store) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	list, err := listRecords[*models.Tournament](ctx, s, "listTournaments",
		"SELECT * FROM tournaments WHERE owner = $owner ORDER BY startDate DESC", nil)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		models.NormalizeTournament(t)
	}
	return list, nil
}

func (s *Store) UpdateTournament(ctx context.Context, id models.TournamentID, upd models.TournamentUpdate) (*models.Tournament, error) {
	cur, err := s.GetTournament(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	upd.Apply(cur)
	if err := s.UpsertTournament(ctx, cur); err != nil {
		return nil, err
	}
	models.NormalizeTournament(cur)
	return cur, nil
}

func (s *Store) DeleteTournament(ctx context.Context, id models.TournamentID) (bool, error) {
	return deleteRecord(ctx, s, "deleteTournament", id.RecordID())
}

// Personnel.

func (s *Store) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	return s.UpsertPersonnel(ctx, p)
}

func (s *Store) UpsertPersonnel(ctx context.Context, p *models.Personnel) error {
	if err := store.ValidatePersonnel(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPersonnelID()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	return upsertRecord(ctx, s, "upsertPersonnel", p.ID.RecordID(), p)
}

func (s *Store) GetPersonnel(ctx context.Context, id models.PersonnelID) (*models.Personnel, error) {
	return getRecord[models.Personnel](ctx, s, "getPersonnel", id.RecordID())
}

func (s *Store) ListPersonnel(ctx context.Context) ([]*models.Personnel, error) {
	return listRecords[*models.Personnel](ctx, s, "listPersonnel",
		"SELECT * FROM personnel WHERE owner = $owner ORDER BY name", nil)
}

func (s *Store) UpdatePersonnel(ctx context.Context, id models.PersonnelID, upd models.PersonnelUpdate) (*models.Personnel, error) {
	cur, err := s.GetPersonnel(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	upd.Apply(cur)
	if err := s.UpsertPersonnel(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// DeletePersonnel removes the staff member and strips the reference from
// every game header server-side, in one transaction.
func (s *Store) DeletePersonnel(ctx context.Context, id models.PersonnelID) (bool, error) {
	existing, err := s.GetPersonnel(ctx, id)
	if err != nil || existing == nil {
		return false, err
	}
	err = s.run(ctx, "deletePersonnel", func() error {
		_, qErr := query[any](ctx, s, `
BEGIN;
DELETE $person WHERE owner = $owner;
UPDATE games SET personnelIds -= $needle WHERE owner = $owner AND personnelIds CONTAINS $needle;
COMMIT;
`, map[string]any{"person": id.RecordID(), "needle": id.String()})
		return qErr
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Player adjustments.

func (s *Store) CreateAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	return s.UpsertAdjustment(ctx, a)
}

func (s *Store) UpsertAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	if err := store.ValidateAdjustment(a); err != nil {
		return err
	}
	if a.ID.IsZero() {
		a.ID = models.NewAdjustmentID()
	}
	stamp(&a.CreatedAt, &a.UpdatedAt)
	return upsertRecord(ctx, s, "upsertAdjustment", a.ID.RecordID(), a)
}

func (s *Store) ListAdjustments(ctx context.Context, playerID models.PlayerID) ([]*models.PlayerAdjustment, error) {
	return listRecords[*models.PlayerAdjustment](ctx, s, "listAdjustments",
		"SELECT * FROM player_adjustments WHERE playerId = $player AND owner = $owner ORDER BY created_at",
		map[string]any{"player": playerID.RecordID()})
}

func (s *Store) DeleteAdjustment(ctx context.Context, id models.AdjustmentID) (bool, error) {
	return deleteRecord(ctx, s, "deleteAdjustment", id.RecordID())
}
