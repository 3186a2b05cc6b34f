package local

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// Players.

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	if err := store.ValidatePlayer(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPlayerID()
	}
	touch(&p.CreatedAt, &p.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPlayer, p.ID.String(), store.OpUpsert, p)
	})
	if err != nil {
		return s.storageErr("createPlayer", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id models.PlayerID) (*models.Player, error) {
	var p models.Player
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageErr("getPlayer", err)
	}
	return &p, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players := []*models.Player{}
	if err := s.db.WithContext(ctx).Order("name, id").Find(&players).Error; err != nil {
		return nil, s.storageErr("listPlayers", err)
	}
	return players, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, id models.PlayerID, upd models.PlayerUpdate) (*models.Player, error) {
	var p *models.Player
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Player
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		upd.Apply(&cur)
		if err := store.ValidatePlayer(&cur); err != nil {
			return err
		}
		touch(&cur.CreatedAt, &cur.UpdatedAt)
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		p = &cur
		return s.enqueueTx(tx, store.EntityPlayer, id.String(), store.OpUpsert, &cur)
	})
	if err != nil {
		if store.IsValidation(err) {
			return nil, err
		}
		return nil, s.storageErr("updatePlayer", err)
	}
	return p, nil
}

func (s *Store) UpsertPlayer(ctx context.Context, p *models.Player) error {
	if err := store.ValidatePlayer(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPlayerID()
	}
	touch(&p.CreatedAt, &p.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPlayer, p.ID.String(), store.OpUpsert, p)
	})
	if err != nil {
		return s.storageErr("upsertPlayer", err)
	}
	return nil
}

// DeletePlayer also drops the player's adjustments and roster snapshot
// rows. Game snapshots stay: they are historical record, not references.
func (s *Store) DeletePlayer(ctx context.Context, id models.PlayerID) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Player{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		var adjustments []models.PlayerAdjustment
		if err := tx.Find(&adjustments, "player_id = ?", id).Error; err != nil {
			return err
		}
		for _, a := range adjustments {
			if err := s.enqueueTx(tx, store.EntityAdjustment, a.ID.String(), store.OpDelete, nil); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.PlayerAdjustment{}, "player_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.RosterEntry{}, "player_id = ?", id).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPlayer, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deletePlayer", err)
	}
	return deleted, nil
}

// Teams.

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := store.ValidateTeam(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTeamID()
	}
	touch(&t.CreatedAt, &t.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityTeam, t.ID.String(), store.OpUpsert, t)
	})
	if err != nil {
		return s.storageErr("createTeam", err)
	}
	return nil
}

func (s *Store) GetTeam(ctx context.Context, id models.TeamID) (*models.Team, error) {
	var t models.Team
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageErr("getTeam", err)
	}
	return &t, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams := []*models.Team{}
	if err := s.db.WithContext(ctx).Order("name, id").Find(&teams).Error; err != nil {
		return nil, s.storageErr("listTeams", err)
	}
	return teams, nil
}

func (s *Store) UpdateTeam(ctx context.Context, id models.TeamID, upd models.TeamUpdate) (*models.Team, error) {
	var t *models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Team
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		upd.Apply(&cur)
		if err := store.ValidateTeam(&cur); err != nil {
			return err
		}
		touch(&cur.CreatedAt, &cur.UpdatedAt)
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		t = &cur
		return s.enqueueTx(tx, store.EntityTeam, id.String(), store.OpUpsert, &cur)
	})
	if err != nil {
		if store.IsValidation(err) {
			return nil, err
		}
		return nil, s.storageErr("updateTeam", err)
	}
	return t, nil
}

func (s *Store) UpsertTeam(ctx context.Context, t *models.Team) error {
	if err := store.ValidateTeam(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTeamID()
	}
	touch(&t.CreatedAt, &t.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(t).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityTeam, t.ID.String(), store.OpUpsert, t)
	})
	if err != nil {
		return s.storageErr("upsertTeam", err)
	}
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id models.TeamID) (bool, error) {
	s.locks.Lock(lockRoster)
	defer s.locks.Unlock(lockRoster)

	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Team{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Delete(&models.RosterEntry{}, "team_id = ?", id).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityTeam, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deleteTeam", err)
	}
	return deleted, nil
}

// Roster snapshots.

func (s *Store) GetTeamRoster(ctx context.Context, teamID models.TeamID) ([]*models.RosterEntry, error) {
	entries := []*models.RosterEntry{}
	err := s.db.WithContext(ctx).Where("team_id = ?", teamID).Order("slot").Find(&entries).Error
	if err != nil {
		return nil, s.storageErr("getTeamRoster", err)
	}
	return entries, nil
}

// SetTeamRoster replaces the team's snapshot wholesale. Entry order is
// authoritative; the slot column is reassigned from the slice position.
func (s *Store) SetTeamRoster(ctx context.Context, teamID models.TeamID, entries []*models.RosterEntry) error {
	s.locks.Lock(lockRoster)
	defer s.locks.Unlock(lockRoster)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, "id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &store.NotFoundError{Entity: "team", ID: teamID.String()}
			}
			return err
		}
		if err := tx.Delete(&models.RosterEntry{}, "team_id = ?", teamID).Error; err != nil {
			return err
		}
		for i, e := range entries {
			e.TeamID = teamID
			e.Slot = i
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return s.enqueueTx(tx, store.EntityTeamRoster, teamID.String(), store.OpUpsert, entries)
	})
	if err != nil {
		if store.IsNotFound(err) {
			return err
		}
		return s.storageErr("setTeamRoster", err)
	}
	return nil
}

// Seasons.

func (s *Store) CreateSeason(ctx context.Context, se *models.Season) error {
	if err := store.ValidateSeason(se); err != nil {
		return err
	}
	if se.ID.IsZero() {
		se.ID = models.NewSeasonID()
	}
	touch(&se.CreatedAt, &se.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(se).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntitySeason, se.ID.String(), store.OpUpsert, se)
	})
	if err != nil {
		return s.storageErr("createSeason", err)
	}
	return nil
}

func (s *Store) GetSeason(ctx context.Context, id models.SeasonID) (*models.Season, error) {
	var se models.Season
	err := s.db.WithContext(ctx).First(&se, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageErr("getSeason", err)
	}
	models.NormalizeSeason(&se)
	return &se, nil
}

func (s *Store) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	seasons := []*models.Season{}
	if err := s.db.WithContext(ctx).Order("start_date DESC, name").Find(&seasons).Error; err != nil {
		return nil, s.storageErr("listSeasons", err)
	}
	for _, se := range seasons {
		models.NormalizeSeason(se)
	}
	return seasons, nil
}

func (s *Store) UpdateSeason(ctx context.Context, id models.SeasonID, upd models.SeasonUpdate) (*models.Season, error) {
	var se *models.Season
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Season
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		upd.Apply(&cur)
		if err := store.ValidateSeason(&cur); err != nil {
			return err
		}
		touch(&cur.CreatedAt, &cur.UpdatedAt)
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		se = &cur
		return s.enqueueTx(tx, store.EntitySeason, id.String(), store.OpUpsert, &cur)
	})
	if err != nil {
		if store.IsValidation(err) {
			return nil, err
		}
		return nil, s.storageErr("updateSeason", err)
	}
	if se != nil {
		models.NormalizeSeason(se)
	}
	return se, nil
}

func (s *Store) UpsertSeason(ctx context.Context, se *models.Season) error {
	if err := store.ValidateSeason(se); err != nil {
		return err
	}
	if se.ID.IsZero() {
		se.ID = models.NewSeasonID()
	}
	touch(&se.CreatedAt, &se.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(se).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntitySeason, se.ID.String(), store.OpUpsert, se)
	})
	if err != nil {
		return s.storageErr("upsertSeason", err)
	}
	return nil
}

func (s *Store) DeleteSeason(ctx context.Context, id models.SeasonID) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Season{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return s.enqueueTx(tx, store.EntitySeason, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deleteSeason", err)
	}
	return deleted, nil
}

// Tournaments.

func (s *Store) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if err := store.ValidateTournament(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTournamentID()
	}
	touch(&t.CreatedAt, &t.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityTournament, t.ID.String(), store.OpUpsert, t)
	})
	if err != nil {
		return s.storageErr("createTournament", err)
	}
	return nil
}

func (s *Store) GetTournament(ctx context.Context, id models.TournamentID) (*models.Tournament, error) {
	var t models.Tournament
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageErr("getTournament", err)
	}
	models.NormalizeTournament(&t)
	return &t, nil
}

func (s *Store) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	tournaments := []*models.Tournament{}
	if err := s.db.WithContext(ctx).Order("start_date DESC, name").Find(&tournaments).Error; err != nil {
		return nil, s.storageErr("listTournaments", err)
	}
	for _, t := range tournaments {
		models.NormalizeTournament(t)
	}
	return tournaments, nil
}

func (s *Store) UpdateTournament(ctx context.Context, id models.TournamentID, upd models.TournamentUpdate) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Tournament
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		upd.Apply(&cur)
		if err := store.ValidateTournament(&cur); err != nil {
			return err
		}
		touch(&cur.CreatedAt, &cur.UpdatedAt)
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		t = &cur
		return s.enqueueTx(tx, store.EntityTournament, id.String(), store.OpUpsert, &cur)
	})
	if err != nil {
		if store.IsValidation(err) {
			return nil, err
		}
		return nil, s.storageErr("updateTournament", err)
	}
	if t != nil {
		models.NormalizeTournament(t)
	}
	return t, nil
}

func (s *Store) UpsertTournament(ctx context.Context, t *models.Tournament) error {
	if err := store.ValidateTournament(t); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = models.NewTournamentID()
	}
	touch(&t.CreatedAt, &t.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(t).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityTournament, t.ID.String(), store.OpUpsert, t)
	})
	if err != nil {
		return s.storageErr("upsertTournament", err)
	}
	return nil
}

func (s *Store) DeleteTournament(ctx context.Context, id models.TournamentID) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Tournament{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return s.enqueueTx(tx, store.EntityTournament, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deleteTournament", err)
	}
	return deleted, nil
}

// Personnel.

func (s *Store) CreatePersonnel(ctx context.Context, p *models.Personnel) error {
	if err := store.ValidatePersonnel(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPersonnelID()
	}
	touch(&p.CreatedAt, &p.UpdatedAt)
	s.locks.Lock(lockPersonnel)
	defer s.locks.Unlock(lockPersonnel)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPersonnel, p.ID.String(), store.OpUpsert, p)
	})
	if err != nil {
		return s.storageErr("createPersonnel", err)
	}
	return nil
}

func (s *Store) GetPersonnel(ctx context.Context, id models.PersonnelID) (*models.Personnel, error) {
	var p models.Personnel
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageErr("getPersonnel", err)
	}
	return &p, nil
}

func (s *Store) ListPersonnel(ctx context.Context) ([]*models.Personnel, error) {
	people := []*models.Personnel{}
	if err := s.db.WithContext(ctx).Order("name, id").Find(&people).Error; err != nil {
		return nil, s.storageErr("listPersonnel", err)
	}
	return people, nil
}

func (s *Store) UpdatePersonnel(ctx context.Context, id models.PersonnelID, upd models.PersonnelUpdate) (*models.Personnel, error) {
	var p *models.Personnel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Personnel
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		upd.Apply(&cur)
		if err := store.ValidatePersonnel(&cur); err != nil {
			return err
		}
		touch(&cur.CreatedAt, &cur.UpdatedAt)
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		p = &cur
		return s.enqueueTx(tx, store.EntityPersonnel, id.String(), store.OpUpsert, &cur)
	})
	if err != nil {
		if store.IsValidation(err) {
			return nil, err
		}
		return nil, s.storageErr("updatePersonnel", err)
	}
	return p, nil
}

func (s *Store) UpsertPersonnel(ctx context.Context, p *models.Personnel) error {
	if err := store.ValidatePersonnel(p); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = models.NewPersonnelID()
	}
	touch(&p.CreatedAt, &p.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPersonnel, p.ID.String(), store.OpUpsert, p)
	})
	if err != nil {
		return s.storageErr("upsertPersonnel", err)
	}
	return nil
}

// DeletePersonnel removes the staff member and strips the reference from
// every stored game header in the same transaction. The games and
// personnel sections are both held so the cascade cannot race a concurrent
// game save re-introducing the id.
func (s *Store) DeletePersonnel(ctx context.Context, id models.PersonnelID) (bool, error) {
	s.locks.Lock(lockGames, lockPersonnel)
	defer s.locks.Unlock(lockGames, lockPersonnel)

	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Personnel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := s.stripPersonnelFromGamesTx(tx, id); err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityPersonnel, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deletePersonnel", err)
	}
	return deleted, nil
}

// Player adjustments.

func (s *Store) CreateAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	if err := store.ValidateAdjustment(a); err != nil {
		return err
	}
	if a.ID.IsZero() {
		a.ID = models.NewAdjustmentID()
	}
	touch(&a.CreatedAt, &a.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityAdjustment, a.ID.String(), store.OpUpsert, a)
	})
	if err != nil {
		return s.storageErr("createAdjustment", err)
	}
	return nil
}

func (s *Store) ListAdjustments(ctx context.Context, playerID models.PlayerID) ([]*models.PlayerAdjustment, error) {
	adjustments := []*models.PlayerAdjustment{}
	err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Order("created_at, id").Find(&adjustments).Error
	if err != nil {
		return nil, s.storageErr("listAdjustments", err)
	}
	return adjustments, nil
}

func (s *Store) UpsertAdjustment(ctx context.Context, a *models.PlayerAdjustment) error {
	if err := store.ValidateAdjustment(a); err != nil {
		return err
	}
	if a.ID.IsZero() {
		a.ID = models.NewAdjustmentID()
	}
	touch(&a.CreatedAt, &a.UpdatedAt)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(a).Error; err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityAdjustment, a.ID.String(), store.OpUpsert, a)
	})
	if err != nil {
		return s.storageErr("upsertAdjustment", err)
	}
	return nil
}

func (s *Store) DeleteAdjustment(ctx context.Context, id models.AdjustmentID) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.PlayerAdjustment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return s.enqueueTx(tx, store.EntityAdjustment, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deleteAdjustment", err)
	}
	return deleted, nil
}
