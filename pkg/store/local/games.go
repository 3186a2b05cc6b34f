package local

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/rows"
)

// SaveGame atomically replaces the whole aggregate: header plus every
// dependent collection in one transaction.
func (s *Store) SaveGame(ctx context.Context, g *models.Game) error {
	if err := store.ValidateGame(g); err != nil {
		return err
	}
	if g.ID.IsZero() {
		g.ID = models.NewGameID()
	}
	touch(&g.CreatedAt, &g.UpdatedAt)

	s.locks.Lock(lockGames)
	defer s.locks.Unlock(lockGames)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveGameTx(tx, g)
	})
	if err != nil {
		return s.storageErr("saveGame", err)
	}
	return nil
}

// SaveAllGames writes every aggregate in a single transaction; one failure
// rolls back the whole batch.
func (s *Store) SaveAllGames(ctx context.Context, games []*models.Game) error {
	for _, g := range games {
		if err := store.ValidateGame(g); err != nil {
			return err
		}
	}

	s.locks.Lock(lockGames)
	defer s.locks.Unlock(lockGames)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range games {
			if g.ID.IsZero() {
				g.ID = models.NewGameID()
			}
			touch(&g.CreatedAt, &g.UpdatedAt)
			if err := s.saveGameTx(tx, g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.storageErr("saveAllGames", err)
	}
	return nil
}

func (s *Store) saveGameTx(tx *gorm.DB, g *models.Game) error {
	set := rows.ToRows(g)
	if err := deleteGameDependentsTx(tx, g.ID); err != nil {
		return err
	}
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&set.Game).Error; err != nil {
		return err
	}
	if len(set.Players) > 0 {
		if err := tx.Create(&set.Players).Error; err != nil {
			return err
		}
	}
	if len(set.Events) > 0 {
		if err := tx.Create(&set.Events).Error; err != nil {
			return err
		}
	}
	if len(set.Assessments) > 0 {
		if err := tx.Create(&set.Assessments).Error; err != nil {
			return err
		}
	}
	if err := tx.Create(&set.Tactics).Error; err != nil {
		return err
	}
	return s.enqueueTx(tx, store.EntityGame, g.ID.String(), store.OpUpsert, g)
}

func deleteGameDependentsTx(tx *gorm.DB, id models.GameID) error {
	for _, model := range []interface{}{
		&rows.GameTacticsRow{},
		&rows.GameAssessmentRow{},
		&rows.GameEventRow{},
		&rows.GamePlayerRow{},
	} {
		if err := tx.Delete(model, "game_id = ?", id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id models.GameID) (*models.Game, error) {
	var g *models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadGameTx(tx, id)
		if err != nil {
			return err
		}
		g = loaded
		return nil
	})
	if err != nil {
		return nil, s.storageErr("getGame", err)
	}
	return g, nil
}

// loadGameTx assembles one aggregate. Returns (nil, nil) when the header
// row is absent.
func loadGameTx(tx *gorm.DB, id models.GameID) (*models.Game, error) {
	var set rows.GameRowSet
	err := tx.First(&set.Game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Where("game_id = ?", id).Order("slot").Find(&set.Players).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("game_id = ?", id).Order("seq").Find(&set.Events).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("game_id = ?", id).Find(&set.Assessments).Error; err != nil {
		return nil, err
	}
	err = tx.First(&set.Tactics, "game_id = ?", id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return rows.FromRows(set), nil
}

// ListGames loads every aggregate, batching the dependent tables to avoid a
// query-per-game fan-out.
func (s *Store) ListGames(ctx context.Context) ([]*models.Game, error) {
	games := []*models.Game{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var headers []rows.GameRow
		if err := tx.Order("date DESC, id").Find(&headers).Error; err != nil {
			return err
		}
		if len(headers) == 0 {
			return nil
		}

		players := map[models.GameID][]rows.GamePlayerRow{}
		var playerRows []rows.GamePlayerRow
		if err := tx.Order("slot").Find(&playerRows).Error; err != nil {
			return err
		}
		for _, r := range playerRows {
			players[r.GameID] = append(players[r.GameID], r)
		}

		events := map[models.GameID][]rows.GameEventRow{}
		var eventRows []rows.GameEventRow
		if err := tx.Order("seq").Find(&eventRows).Error; err != nil {
			return err
		}
		for _, r := range eventRows {
			events[r.GameID] = append(events[r.GameID], r)
		}

		assessments := map[models.GameID][]rows.GameAssessmentRow{}
		var assessmentRows []rows.GameAssessmentRow
		if err := tx.Find(&assessmentRows).Error; err != nil {
			return err
		}
		for _, r := range assessmentRows {
			assessments[r.GameID] = append(assessments[r.GameID], r)
		}

		tactics := map[models.GameID]rows.GameTacticsRow{}
		var tacticsRows []rows.GameTacticsRow
		if err := tx.Find(&tacticsRows).Error; err != nil {
			return err
		}
		for _, r := range tacticsRows {
			tactics[r.GameID] = r
		}

		for _, h := range headers {
			games = append(games, rows.FromRows(rows.GameRowSet{
				Game:        h,
				Players:     players[h.ID],
				Events:      events[h.ID],
				Assessments: assessments[h.ID],
				Tactics:     tactics[h.ID],
			}))
		}
		return nil
	})
	if err != nil {
		return nil, s.storageErr("listGames", err)
	}
	return games, nil
}

func (s *Store) DeleteGame(ctx context.Context, id models.GameID) (bool, error) {
	s.locks.Lock(lockGames)
	defer s.locks.Unlock(lockGames)

	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&rows.GameRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := deleteGameDependentsTx(tx, id); err != nil {
			return err
		}
		return s.enqueueTx(tx, store.EntityGame, id.String(), store.OpDelete, nil)
	})
	if err != nil {
		return false, s.storageErr("deleteGame", err)
	}
	return deleted, nil
}

// mutateGame loads the aggregate, applies fn and re-saves atomically. fn
// returns false to skip the save (target sub-record absent).
func (s *Store) mutateGame(ctx context.Context, op string, id models.GameID, fn func(*models.Game) bool) (bool, error) {
	s.locks.Lock(lockGames)
	defer s.locks.Unlock(lockGames)

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := loadGameTx(tx, id)
		if err != nil {
			return err
		}
		if g == nil {
			return &store.NotFoundError{Entity: "game", ID: id.String()}
		}
		if !fn(g) {
			return nil
		}
		changed = true
		touch(&g.CreatedAt, &g.UpdatedAt)
		return s.saveGameTx(tx, g)
	})
	if err != nil {
		if store.IsNotFound(err) {
			return false, err
		}
		return false, s.storageErr(op, err)
	}
	return changed, nil
}

// AddGameEvent appends to the game's event log.
func (s *Store) AddGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) error {
	if ev.ID.IsZero() {
		ev.ID = models.NewEventID()
	}
	_, err := s.mutateGame(ctx, "addGameEvent", gameID, func(g *models.Game) bool {
		g.Events = append(g.Events, ev)
		return true
	})
	return err
}

// UpdateGameEvent replaces the event with a matching id, keeping its
// position in the log. Returns false when no such event exists.
func (s *Store) UpdateGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) (bool, error) {
	return s.mutateGame(ctx, "updateGameEvent", gameID, func(g *models.Game) bool {
		for i := range g.Events {
			if g.Events[i].ID == ev.ID {
				g.Events[i] = ev
				return true
			}
		}
		return false
	})
}

// RemoveGameEvent deletes one event; remaining events close ranks and are
// re-sequenced by the save.
func (s *Store) RemoveGameEvent(ctx context.Context, gameID models.GameID, eventID models.EventID) (bool, error) {
	return s.mutateGame(ctx, "removeGameEvent", gameID, func(g *models.Game) bool {
		for i := range g.Events {
			if g.Events[i].ID == eventID {
				g.Events = append(g.Events[:i], g.Events[i+1:]...)
				return true
			}
		}
		return false
	})
}

// SaveAssessment inserts or replaces the single assessment for the player.
func (s *Store) SaveAssessment(ctx context.Context, gameID models.GameID, a models.PlayerAssessment) error {
	_, err := s.mutateGame(ctx, "saveAssessment", gameID, func(g *models.Game) bool {
		for i := range g.Assessments {
			if g.Assessments[i].PlayerID == a.PlayerID {
				g.Assessments[i] = a
				return true
			}
		}
		g.Assessments = append(g.Assessments, a)
		return true
	})
	return err
}

// DeleteAssessment removes the player's assessment if present.
func (s *Store) DeleteAssessment(ctx context.Context, gameID models.GameID, playerID models.PlayerID) (bool, error) {
	return s.mutateGame(ctx, "deleteAssessment", gameID, func(g *models.Game) bool {
		for i := range g.Assessments {
			if g.Assessments[i].PlayerID == playerID {
				g.Assessments = append(g.Assessments[:i], g.Assessments[i+1:]...)
				return true
			}
		}
		return false
	})
}

// stripPersonnelFromGamesTx removes a deleted staff id from every game
// header. Affected aggregates are re-saved through the normal path so the
// change is also queued for replay.
func (s *Store) stripPersonnelFromGamesTx(tx *gorm.DB, id models.PersonnelID) error {
	var headers []rows.GameRow
	needle := id.String()
	if err := tx.Where("personnel_ids LIKE ?", "%"+needle+"%").Find(&headers).Error; err != nil {
		return err
	}
	for _, h := range headers {
		g, err := loadGameTx(tx, h.ID)
		if err != nil {
			return err
		}
		if g == nil || !g.RemovePersonnel(id) {
			continue
		}
		g.UpdatedAt = g.UpdatedAt.UTC()
		if err := s.saveGameTx(tx, g); err != nil {
			return err
		}
	}
	return nil
}
