package rows

import (
	"sort"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// ToRows converts a game aggregate to its persisted row set. The transform
// is where write-time normalization happens, identically for both backends:
//
//   - the per-player projections collapse into one row per available
//     player, and an on-field player that was not marked selected is
//     promoted rather than rejected;
//   - selected or on-field references to players missing from the
//     available list are dropped;
//   - event order is reassigned densely from zero so the seq column always
//     reflects current slice order regardless of inserts and removals;
//   - homeOrAway persists as "home" unless explicitly away.
func ToRows(g *models.Game) GameRowSet {
	isPlayed := g.IsPlayed
	homeOrAway := string(models.Home)
	if g.HomeOrAway == models.Away {
		homeOrAway = string(models.Away)
	}
	status := string(g.GameStatus)
	if status == "" {
		status = string(models.StatusNotStarted)
	}

	personnelIDs := make(IDList, 0, len(g.PersonnelIDs))
	for _, id := range g.PersonnelIDs {
		if !id.IsZero() {
			personnelIDs = append(personnelIDs, id.String())
		}
	}

	set := GameRowSet{
		Game: GameRow{
			ID:                 g.ID,
			TeamName:           g.TeamName,
			OpponentName:       g.OpponentName,
			Date:               g.Date,
			Time:               g.Time,
			Location:           g.Location,
			SeasonID:           g.SeasonID,
			TournamentID:       g.TournamentID,
			TeamID:             g.TeamID,
			TournamentLevel:    g.TournamentLevel,
			TournamentSeriesID: g.TournamentSeriesID,
			AgeGroup:           g.AgeGroup,
			LeagueID:           g.LeagueID,
			LeagueName:         g.LeagueName,
			GameType:           g.GameType,
			HomeOrAway:         homeOrAway,
			IsPlayed:           &isPlayed,
			HomeScore:          g.HomeScore,
			AwayScore:          g.AwayScore,
			GameStatus:         status,
			PeriodCount:        g.PeriodCount,
			PeriodDuration:     g.PeriodDuration,
			CurrentPeriod:      g.CurrentPeriod,
			DemandFactor:       g.DemandFactor,
			GameNotes:          g.GameNotes,
			PersonnelIDs:       personnelIDs,
			CreatedAt:          g.CreatedAt,
			UpdatedAt:          g.UpdatedAt,
		},
	}

	selected := g.SelectedSet()
	onField := make(map[models.PlayerID]models.FieldPosition, len(g.FieldPlayers))
	for _, fp := range g.FieldPlayers {
		onField[fp.PlayerID] = fp
	}

	set.Players = make([]GamePlayerRow, 0, len(g.AvailablePlayers))
	for i, p := range g.AvailablePlayers {
		row := GamePlayerRow{
			GameID:       g.ID,
			PlayerID:     p.PlayerID,
			Slot:         i,
			Name:         p.Name,
			Nickname:     p.Nickname,
			JerseyNumber: p.JerseyNumber,
			IsGoalie:     p.IsGoalie,
			Selected:     selected[p.PlayerID],
		}
		if fp, ok := onField[p.PlayerID]; ok {
			x, y := fp.X, fp.Y
			row.Selected = true
			row.OnField = true
			row.X = &x
			row.Y = &y
		}
		set.Players = append(set.Players, row)
	}

	set.Events = make([]GameEventRow, 0, len(g.Events))
	for i, ev := range g.Events {
		set.Events = append(set.Events, GameEventRow{
			ID:         ev.ID,
			GameID:     g.ID,
			Seq:        i,
			Type:       string(ev.Type),
			TimeSec:    ev.TimeSec,
			ScorerID:   ev.ScorerID,
			AssisterID: ev.AssisterID,
			Period:     ev.Period,
			Note:       ev.Note,
		})
	}

	set.Assessments = make([]GameAssessmentRow, 0, len(g.Assessments))
	for _, a := range g.Assessments {
		set.Assessments = append(set.Assessments, GameAssessmentRow{
			GameID:        g.ID,
			PlayerID:      a.PlayerID,
			Overall:       a.Overall,
			Intensity:     a.Sliders.Intensity,
			Courage:       a.Sliders.Courage,
			Duels:         a.Sliders.Duels,
			Technique:     a.Sliders.Technique,
			Creativity:    a.Sliders.Creativity,
			Decisions:     a.Sliders.Decisions,
			Awareness:     a.Sliders.Awareness,
			Teamwork:      a.Sliders.Teamwork,
			FairPlay:      a.Sliders.FairPlay,
			Impact:        a.Sliders.Impact,
			Notes:         a.Notes,
			MinutesPlayed: a.MinutesPlayed,
			CreatedBy:     a.CreatedBy,
			CreatedAt:     a.CreatedAt,
		})
	}

	set.Tactics = GameTacticsRow{
		GameID:   g.ID,
		Discs:    DiscList(g.Tactics.Discs),
		Drawings: StrokeList(g.Tactics.Drawings),
	}
	if set.Tactics.Discs == nil {
		set.Tactics.Discs = DiscList{}
	}
	if set.Tactics.Drawings == nil {
		set.Tactics.Drawings = StrokeList{}
	}
	if bp := g.Tactics.BallPosition; bp != nil {
		x, y := bp.X, bp.Y
		set.Tactics.BallX = &x
		set.Tactics.BallY = &y
	}

	return set
}

// FromRows reassembles a game aggregate. Read-time normalization mirrors
// the write side: players come back in slot order, events in seq order,
// selected ids list the on-field players first, and collections are always
// non-nil. A NULL isPlayed column decodes as played because rows predating
// the column were all completed games.
func FromRows(set GameRowSet) *models.Game {
	g := &models.Game{
		ID:                 set.Game.ID,
		TeamName:           set.Game.TeamName,
		OpponentName:       set.Game.OpponentName,
		Date:               set.Game.Date,
		Time:               set.Game.Time,
		Location:           set.Game.Location,
		SeasonID:           set.Game.SeasonID,
		TournamentID:       set.Game.TournamentID,
		TeamID:             set.Game.TeamID,
		TournamentLevel:    set.Game.TournamentLevel,
		TournamentSeriesID: set.Game.TournamentSeriesID,
		AgeGroup:           set.Game.AgeGroup,
		LeagueID:           set.Game.LeagueID,
		LeagueName:         set.Game.LeagueName,
		GameType:           set.Game.GameType,
		HomeOrAway:         models.Home,
		IsPlayed:           true,
		HomeScore:          set.Game.HomeScore,
		AwayScore:          set.Game.AwayScore,
		GameStatus:         models.StatusNotStarted,
		PeriodCount:        set.Game.PeriodCount,
		PeriodDuration:     set.Game.PeriodDuration,
		CurrentPeriod:      set.Game.CurrentPeriod,
		DemandFactor:       set.Game.DemandFactor,
		GameNotes:          set.Game.GameNotes,
		CreatedAt:          set.Game.CreatedAt,
		UpdatedAt:          set.Game.UpdatedAt,
	}
	if set.Game.HomeOrAway == string(models.Away) {
		g.HomeOrAway = models.Away
	}
	if set.Game.IsPlayed != nil {
		g.IsPlayed = *set.Game.IsPlayed
	}
	if set.Game.GameStatus != "" {
		g.GameStatus = models.GameStatus(set.Game.GameStatus)
	}

	g.PersonnelIDs = make([]models.PersonnelID, 0, len(set.Game.PersonnelIDs))
	for _, s := range set.Game.PersonnelIDs {
		id, err := models.ParsePersonnelID(s)
		if err != nil || id.IsZero() {
			continue
		}
		g.PersonnelIDs = append(g.PersonnelIDs, id)
	}

	players := make([]GamePlayerRow, len(set.Players))
	copy(players, set.Players)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Slot < players[j].Slot })

	g.AvailablePlayers = make([]models.PlayerSnapshot, 0, len(players))
	g.SelectedPlayerIDs = make([]models.PlayerID, 0, len(players))
	g.FieldPlayers = make([]models.FieldPosition, 0, len(players))
	var benchSelected []models.PlayerID
	for _, row := range players {
		g.AvailablePlayers = append(g.AvailablePlayers, models.PlayerSnapshot{
			PlayerID:     row.PlayerID,
			Name:         row.Name,
			Nickname:     row.Nickname,
			JerseyNumber: row.JerseyNumber,
			IsGoalie:     row.IsGoalie,
		})
		if row.OnField {
			fp := models.FieldPosition{PlayerID: row.PlayerID}
			if row.X != nil {
				fp.X = *row.X
			}
			if row.Y != nil {
				fp.Y = *row.Y
			}
			g.FieldPlayers = append(g.FieldPlayers, fp)
			g.SelectedPlayerIDs = append(g.SelectedPlayerIDs, row.PlayerID)
		} else if row.Selected {
			benchSelected = append(benchSelected, row.PlayerID)
		}
	}
	g.SelectedPlayerIDs = append(g.SelectedPlayerIDs, benchSelected...)

	events := make([]GameEventRow, len(set.Events))
	copy(events, set.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	g.Events = make([]models.GameEvent, 0, len(events))
	for _, row := range events {
		g.Events = append(g.Events, models.GameEvent{
			ID:         row.ID,
			Type:       models.GameEventType(row.Type),
			TimeSec:    row.TimeSec,
			ScorerID:   row.ScorerID,
			AssisterID: row.AssisterID,
			Period:     row.Period,
			Note:       row.Note,
		})
	}

	g.Assessments = make([]models.PlayerAssessment, 0, len(set.Assessments))
	for _, row := range set.Assessments {
		g.Assessments = append(g.Assessments, models.PlayerAssessment{
			PlayerID: row.PlayerID,
			Overall:  row.Overall,
			Sliders: models.AssessmentSliders{
				Intensity:  row.Intensity,
				Courage:    row.Courage,
				Duels:      row.Duels,
				Technique:  row.Technique,
				Creativity: row.Creativity,
				Decisions:  row.Decisions,
				Awareness:  row.Awareness,
				Teamwork:   row.Teamwork,
				FairPlay:   row.FairPlay,
				Impact:     row.Impact,
			},
			Notes:         row.Notes,
			MinutesPlayed: row.MinutesPlayed,
			CreatedBy:     row.CreatedBy,
			CreatedAt:     row.CreatedAt,
		})
	}

	g.Tactics = models.TacticalState{
		Discs:    []models.TacticalDisc(set.Tactics.Discs),
		Drawings: [][]models.Point(set.Tactics.Drawings),
	}
	if g.Tactics.Discs == nil {
		g.Tactics.Discs = []models.TacticalDisc{}
	}
	if g.Tactics.Drawings == nil {
		g.Tactics.Drawings = [][]models.Point{}
	}
	if set.Tactics.BallX != nil && set.Tactics.BallY != nil {
		g.Tactics.BallPosition = &models.Point{X: *set.Tactics.BallX, Y: *set.Tactics.BallY}
	}

	return g
}
