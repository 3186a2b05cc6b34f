package models

import (
	"strings"
	"time"
)

// HomeOrAway marks which side the coached team plays on.
type HomeOrAway string

const (
	Home HomeOrAway = "home"
	Away HomeOrAway = "away"
)

// GameStatus tracks live-recording progress of a game.
type GameStatus string

const (
	StatusNotStarted GameStatus = "notStarted"
	StatusInProgress GameStatus = "inProgress"
	StatusPeriodEnd  GameStatus = "periodEnd"
	StatusGameEnd    GameStatus = "gameEnd"
)

// GameEventType enumerates the recordable in-game events.
type GameEventType string

const (
	EventGoal         GameEventType = "goal"
	EventOpponentGoal GameEventType = "opponentGoal"
	EventSubstitution GameEventType = "substitution"
	EventPeriodEnd    GameEventType = "periodEnd"
	EventFairPlayCard GameEventType = "fairPlayCard"
)

// Point is a normalized field coordinate in [0,1] on both axes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerSnapshot is the per-game copy of a player's display fields, captured
// when the game roster is assembled. It does not track later Player edits.
type PlayerSnapshot struct {
	PlayerID     PlayerID       `json:"playerId"`
	Name         string         `json:"name"`
	Nickname     NullableString `json:"nickname,omitempty"`
	JerseyNumber NullableString `json:"jerseyNumber,omitempty"`
	IsGoalie     bool           `json:"isGoalie"`
}

// FieldPosition places a selected player on the field.
type FieldPosition struct {
	PlayerID PlayerID `json:"playerId"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// GameEvent is one entry in a game's strictly ordered event log. The order
// is the slice position in the domain model; the persisted form carries an
// explicit order column re-derived on every save.
type GameEvent struct {
	ID         EventID       `json:"id"`
	Type       GameEventType `json:"type"`
	TimeSec    Factor        `json:"timeSec"`
	ScorerID   PlayerID      `json:"scorerId,omitempty"`
	AssisterID PlayerID      `json:"assisterId,omitempty"`
	Period     int           `json:"period,omitempty"`
	Note       string        `json:"note,omitempty"`
}

// AssessmentSliders are the ten per-player sub-ratings recorded after a game.
type AssessmentSliders struct {
	Intensity  int `json:"intensity"`
	Courage    int `json:"courage"`
	Duels      int `json:"duels"`
	Technique  int `json:"technique"`
	Creativity int `json:"creativity"`
	Decisions  int `json:"decisions"`
	Awareness  int `json:"awareness"`
	Teamwork   int `json:"teamwork"`
	FairPlay   int `json:"fairPlay"`
	Impact     int `json:"impact"`
}

// PlayerAssessment rates one player in one game; exactly one exists per
// (game, player) pair.
type PlayerAssessment struct {
	PlayerID      PlayerID          `json:"playerId"`
	Overall       int               `json:"overall"`
	Sliders       AssessmentSliders `json:"sliders"`
	Notes         string            `json:"notes,omitempty"`
	MinutesPlayed int               `json:"minutesPlayed"`
	CreatedBy     string            `json:"createdBy,omitempty"`
	CreatedAt     Millis            `json:"createdAt"`
}

// TacticalDisc is one marker on the tactics board.
type TacticalDisc struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"` // "home", "opponent" or "goalie"
}

// TacticalState is the single tactics-board row attached to a game. The
// collections are never nil in the domain model; an empty board has empty
// slices. BallPosition alone is a legitimately nullable scalar.
type TacticalState struct {
	Discs        []TacticalDisc `json:"discs"`
	Drawings     [][]Point      `json:"drawings"`
	BallPosition *Point         `json:"ballPosition,omitempty"`
}

// Game is the central aggregate: one header plus four dependent collections
// that are always written and read together.
//
// The three player views are projections of one per-player-per-game record:
// every snapshot in AvailablePlayers is a row; SelectedPlayerIDs marks the
// subset dressed for the game; FieldPlayers places the on-field subset.
// The containment invariant on-field ⊆ selected ⊆ available holds for every
// stored game; writes heal an on-field-but-unselected player by promoting
// it to selected.
type Game struct {
	ID GameID `json:"id"`

	TeamName     string `json:"teamName"`
	OpponentName string `json:"opponentName"`
	Date         string `json:"date"` // YYYY-MM-DD, required

	Time     NullableString `json:"time,omitempty"`
	Location NullableString `json:"location,omitempty"`

	SeasonID           SeasonID       `json:"seasonId,omitempty"`
	TournamentID       TournamentID   `json:"tournamentId,omitempty"`
	TeamID             TeamID         `json:"teamId,omitempty"`
	TournamentLevel    NullableString `json:"tournamentLevel,omitempty"`
	TournamentSeriesID NullableString `json:"tournamentSeriesId,omitempty"`
	AgeGroup           NullableString `json:"ageGroup,omitempty"`
	LeagueID           NullableString `json:"leagueId,omitempty"`
	LeagueName         NullableString `json:"leagueName,omitempty"`
	GameType           NullableString `json:"gameType,omitempty"`

	HomeOrAway HomeOrAway `json:"homeOrAway"`
	IsPlayed   bool       `json:"isPlayed"`
	HomeScore  int        `json:"homeScore"`
	AwayScore  int        `json:"awayScore"`

	GameStatus     GameStatus `json:"gameStatus,omitempty"`
	PeriodCount    int        `json:"periodCount"`
	PeriodDuration int        `json:"periodDuration"`
	CurrentPeriod  int        `json:"currentPeriod"`

	DemandFactor Factor `json:"demandFactor,omitempty"`
	GameNotes    string `json:"gameNotes,omitempty"`

	PersonnelIDs []PersonnelID `json:"personnelIds,omitempty"`

	AvailablePlayers  []PlayerSnapshot `json:"availablePlayers"`
	SelectedPlayerIDs []PlayerID       `json:"selectedPlayerIds"`
	FieldPlayers      []FieldPosition  `json:"fieldPlayers"`

	Events      []GameEvent        `json:"events"`
	Assessments []PlayerAssessment `json:"assessments"`
	Tactics     TacticalState      `json:"tactics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MissingRequiredField reports the first required header field that is blank
// or whitespace-only, or "" when the header is complete. Both backends
// reject a save before any I/O when this returns non-empty.
func (g *Game) MissingRequiredField() string {
	switch {
	case strings.TrimSpace(g.TeamName) == "":
		return "teamName"
	case strings.TrimSpace(g.OpponentName) == "":
		return "opponentName"
	case strings.TrimSpace(g.Date) == "":
		return "date"
	}
	return ""
}

// SelectedSet returns the selected player ids as a set for containment
// checks.
func (g *Game) SelectedSet() map[PlayerID]bool {
	set := make(map[PlayerID]bool, len(g.SelectedPlayerIDs))
	for _, id := range g.SelectedPlayerIDs {
		set[id] = true
	}
	return set
}

// RemovePersonnel strips a staff id from the header's assignment list.
// Returns true if the list changed.
func (g *Game) RemovePersonnel(id PersonnelID) bool {
	kept := g.PersonnelIDs[:0]
	changed := false
	for _, pid := range g.PersonnelIDs {
		if pid == id {
			changed = true
			continue
		}
		kept = append(kept, pid)
	}
	g.PersonnelIDs = kept
	return changed
}
