package remote

import (
	"context"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/rows"
)

// saveGameQuery replaces the whole aggregate server-side. One transaction:
// a crash or disconnect mid-save leaves either the old aggregate or the new
// one, never a mix. The owner stamps run inside the same transaction so no
// row is ever visible unscoped.
const saveGameQuery = `
BEGIN;
DELETE game_tactics WHERE gameId = $game AND owner = $owner;
DELETE game_assessments WHERE gameId = $game AND owner = $owner;
DELETE game_events WHERE gameId = $game AND owner = $owner;
DELETE game_players WHERE gameId = $game AND owner = $owner;
UPSERT $game CONTENT $header;
UPDATE $game SET owner = $owner;
INSERT INTO game_players $players;
UPDATE game_players SET owner = $owner WHERE gameId = $game;
INSERT INTO game_events $events;
UPDATE game_events SET owner = $owner WHERE gameId = $game;
INSERT INTO game_assessments $assessments;
UPDATE game_assessments SET owner = $owner WHERE gameId = $game;
INSERT INTO game_tactics $tactics;
UPDATE game_tactics SET owner = $owner WHERE gameId = $game;
COMMIT;
`

// SaveGame atomically replaces the header and every dependent collection.
func (s *Store) SaveGame(ctx context.Context, g *models.Game) error {
	if err := store.ValidateGame(g); err != nil {
		return err
	}
	if g.ID.IsZero() {
		g.ID = models.NewGameID()
	}
	stamp(&g.CreatedAt, &g.UpdatedAt)

	set := rows.ToRows(g)
	return s.run(ctx, "saveGame", func() error {
		_, err := query[any](ctx, s, saveGameQuery, map[string]any{
			"game":        g.ID.RecordID(),
			"header":      set.Game,
			"players":     set.Players,
			"events":      set.Events,
			"assessments": set.Assessments,
			"tactics":     set.Tactics,
		})
		return err
	})
}

// SaveAllGames writes each aggregate in turn; every aggregate save is
// individually atomic.
func (s *Store) SaveAllGames(ctx context.Context, games []*models.Game) error {
	for _, g := range games {
		if err := store.ValidateGame(g); err != nil {
			return err
		}
	}
	for _, g := range games {
		if err := s.SaveGame(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id models.GameID) (*models.Game, error) {
	header, err := getRecord[rows.GameRow](ctx, s, "getGame", id.RecordID())
	if err != nil || header == nil {
		return nil, err
	}
	set, err := s.loadGameDependents(ctx, id)
	if err != nil {
		return nil, err
	}
	set.Game = *header
	return rows.FromRows(set), nil
}

func (s *Store) loadGameDependents(ctx context.Context, id models.GameID) (rows.GameRowSet, error) {
	var set rows.GameRowSet
	params := map[string]any{"game": id.RecordID()}

	players, err := listRecords[rows.GamePlayerRow](ctx, s, "getGame",
		"SELECT * FROM game_players WHERE gameId = $game AND owner = $owner ORDER BY slot", params)
	if err != nil {
		return set, err
	}
	set.Players = players

	events, err := listRecords[rows.GameEventRow](ctx, s, "getGame",
		"SELECT * FROM game_events WHERE gameId = $game AND owner = $owner ORDER BY seq", params)
	if err != nil {
		return set, err
	}
	set.Events = events

	assessments, err := listRecords[rows.GameAssessmentRow](ctx, s, "getGame",
		"SELECT * FROM game_assessments WHERE gameId = $game AND owner = $owner", params)
	if err != nil {
		return set, err
	}
	set.Assessments = assessments

	tactics, err := listRecords[rows.GameTacticsRow](ctx, s, "getGame",
		"SELECT * FROM game_tactics WHERE gameId = $game AND owner = $owner", params)
	if err != nil {
		return set, err
	}
	if len(tactics) > 0 {
		set.Tactics = tactics[0]
	}
	return set, nil
}

// ListGames reassembles every aggregate, batching per table rather than per
// game.
func (s *Store) ListGames(ctx context.Context) ([]*models.Game, error) {
	headers, err := listRecords[rows.GameRow](ctx, s, "listGames",
		"SELECT * FROM games WHERE owner = $owner ORDER BY date DESC", nil)
	if err != nil {
		return nil, err
	}
	games := []*models.Game{}
	if len(headers) == 0 {
		return games, nil
	}

	playerRows, err := listRecords[rows.GamePlayerRow](ctx, s, "listGames",
		"SELECT * FROM game_players WHERE owner = $owner ORDER BY slot", nil)
	if err != nil {
		return nil, err
	}
	eventRows, err := listRecords[rows.GameEventRow](ctx, s, "listGames",
		"SELECT * FROM game_events WHERE owner = $owner ORDER BY seq", nil)
	if err != nil {
		return nil, err
	}
	assessmentRows, err := listRecords[rows.GameAssessmentRow](ctx, s, "listGames",
		"SELECT * FROM game_assessments WHERE owner = $owner", nil)
	if err != nil {
		return nil, err
	}
	tacticsRows, err := listRecords[rows.GameTacticsRow](ctx, s, "listGames",
		"SELECT * FROM game_tactics WHERE owner = $owner", nil)
	if err != nil {
		return nil, err
	}

	players := map[models.GameID][]rows.GamePlayerRow{}
	for _, r := range playerRows {
		players[r.GameID] = append(players[r.GameID], r)
	}
	events := map[models.GameID][]rows.GameEventRow{}
	for _, r := range eventRows {
		events[r.GameID] = append(events[r.GameID], r)
	}
	assessments := map[models.GameID][]rows.GameAssessmentRow{}
	for _, r := range assessmentRows {
		assessments[r.GameID] = append(assessments[r.GameID], r)
	}
	tactics := map[models.GameID]rows.GameTacticsRow{}
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
	return games, nil
}

// DeleteGame removes the aggregate in one transaction.
func (s *Store) DeleteGame(ctx context.Context, id models.GameID) (bool, error) {
	existing, err := getRecord[rows.GameRow](ctx, s, "deleteGame", id.RecordID())
	if err != nil || existing == nil {
		return false, err
	}
	err = s.run(ctx, "deleteGame", func() error {
		_, qErr := query[any](ctx, s, `
BEGIN;
DELETE game_tactics WHERE gameId = $game AND owner = $owner;
DELETE game_assessments WHERE gameId = $game AND owner = $owner;
DELETE game_events WHERE gameId = $game AND owner = $owner;
DELETE game_players WHERE gameId = $game AND owner = $owner;
DELETE $game WHERE owner = $owner;
COMMIT;
`, map[string]any{"game": id.RecordID()})
		return qErr
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// mutateGame is the read-modify-write helper behind the sub-operations.
// The final save is atomic; the read is a separate round-trip, which is
// acceptable under the single-writer-per-user model.
func (s *Store) mutateGame(ctx context.Context, id models.GameID, fn func(*models.Game) bool) (bool, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return false, err
	}
	if g == nil {
		return false, &store.NotFoundError{Entity: "game", ID: id.String()}
	}
	if !fn(g) {
		return false, nil
	}
	return true, s.SaveGame(ctx, g)
}

func (s *Store) AddGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) error {
	if ev.ID.IsZero() {
		ev.ID = models.NewEventID()
	}
	_, err := s.mutateGame(ctx, gameID, func(g *models.Game) bool {
		g.Events = append(g.Events, ev)
		return true
	})
	return err
}

func (s *Store) UpdateGameEvent(ctx context.Context, gameID models.GameID, ev models.GameEvent) (bool, error) {
	return s.mutateGame(ctx, gameID, func(g *models.Game) bool {
		for i := range g.Events {
			if g.Events[i].ID == ev.ID {
				g.Events[i] = ev
				return true
			}
		}
		return false
	})
}

func (s *Store) RemoveGameEvent(ctx context.Context, gameID models.GameID, eventID models.EventID) (bool, error) {
	return s.mutateGame(ctx, gameID, func(g *models.Game) bool {
		for i := range g.Events {
			if g.Events[i].ID == eventID {
				g.Events = append(g.Events[:i], g.Events[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Store) SaveAssessment(ctx context.Context, gameID models.GameID, a models.PlayerAssessment) error {
	_, err := s.mutateGame(ctx, gameID, func(g *models.Game) bool {
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

func (s *Store) DeleteAssessment(ctx context.Context, gameID models.GameID, playerID models.PlayerID) (bool, error) {
	return s.mutateGame(ctx, gameID, func(g *models.Game) bool {
		for i := range g.Assessments {
			if g.Assessments[i].PlayerID == playerID {
				g.Assessments = append(g.Assessments[:i], g.Assessments[i+1:]...)
				return true
			}
		}
		return false
	})
}
