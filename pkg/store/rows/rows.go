// Package rows defines the normalized persisted form of the domain model
// and the bidirectional transform between the two. Both backends persist
// exactly these row shapes, so structural encode/decode behavior is shared
// and the backends differ only in transport.
package rows

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// IDList is a JSON-encoded list of entity id strings stored in a single
// text column, for reference lists too small to justify a join table.
type IDList []string

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(value interface{}) error {
	return scanJSONColumn(value, (*[]string)(l))
}

// GormDataType tells GORM the column type.
func (IDList) GormDataType() string { return "text" }

// DiscList stores the tactics-board markers as one JSON text column.
type DiscList []models.TacticalDisc

func (l DiscList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *DiscList) Scan(value interface{}) error {
	return scanJSONColumn(value, (*[]models.TacticalDisc)(l))
}

func (DiscList) GormDataType() string { return "text" }

// StrokeList stores freehand tactics drawings, each a polyline of
// normalized points, as one JSON text column.
type StrokeList [][]models.Point

func (l StrokeList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StrokeList) Scan(value interface{}) error {
	return scanJSONColumn(value, (*[][]models.Point)(l))
}

func (StrokeList) GormDataType() string { return "text" }

func scanJSONColumn(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// GameRow is the persisted game header.
//
// IsPlayed is tri-state on disk for compatibility with rows written before
// the column existed: NULL decodes as played, not as the zero value.
type GameRow struct {
	ID models.GameID `gorm:"type:uuid;primary_key" json:"id"`

	TeamName     string                `gorm:"not null" json:"teamName"`
	OpponentName string                `gorm:"not null" json:"opponentName"`
	Date         string                `gorm:"not null;index" json:"date"`
	Time         models.NullableString `json:"time,omitempty"`
	Location     models.NullableString `json:"location,omitempty"`

	SeasonID           models.SeasonID       `gorm:"type:uuid;index" json:"seasonId,omitempty"`
	TournamentID       models.TournamentID   `gorm:"type:uuid;index" json:"tournamentId,omitempty"`
	TeamID             models.TeamID         `gorm:"type:uuid;index" json:"teamId,omitempty"`
	TournamentLevel    models.NullableString `json:"tournamentLevel,omitempty"`
	TournamentSeriesID models.NullableString `json:"tournamentSeriesId,omitempty"`
	AgeGroup           models.NullableString `json:"ageGroup,omitempty"`
	LeagueID           models.NullableString `json:"leagueId,omitempty"`
	LeagueName         models.NullableString `json:"leagueName,omitempty"`
	GameType           models.NullableString `json:"gameType,omitempty"`

	HomeOrAway string `gorm:"not null;default:home" json:"homeOrAway"`
	IsPlayed   *bool  `json:"isPlayed,omitempty"`
	HomeScore  int    `json:"homeScore"`
	AwayScore  int    `json:"awayScore"`

	GameStatus     string `json:"gameStatus,omitempty"`
	PeriodCount    int    `json:"periodCount"`
	PeriodDuration int    `json:"periodDuration"`
	CurrentPeriod  int    `json:"currentPeriod"`

	DemandFactor models.Factor `json:"demandFactor,omitempty"`
	GameNotes    string        `gorm:"type:text" json:"gameNotes,omitempty"`

	PersonnelIDs IDList `gorm:"type:text" json:"personnelIds,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GameRow) TableName() string { return "games" }

// GamePlayerRow is the single per-player-per-game record behind the three
// domain projections: one row exists per available player, Selected marks
// the dressed subset, OnField plus coordinates places the playing subset.
type GamePlayerRow struct {
	GameID   models.GameID  `gorm:"type:uuid;primaryKey" json:"gameId"`
	PlayerID models.PlayerID `gorm:"type:uuid;primaryKey" json:"playerId"`
	Slot     int            `gorm:"not null" json:"slot"`

	Name         string                `gorm:"not null" json:"name"`
	Nickname     models.NullableString `json:"nickname,omitempty"`
	JerseyNumber models.NullableString `json:"jerseyNumber,omitempty"`
	IsGoalie     bool                  `json:"isGoalie"`

	Selected bool     `json:"selected"`
	OnField  bool     `json:"onField"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

func (GamePlayerRow) TableName() string { return "game_players" }

// GameEventRow is one persisted event-log entry. Seq is authoritative for
// ordering and is reassigned densely from zero on every aggregate save.
type GameEventRow struct {
	ID     models.EventID `gorm:"type:uuid;primary_key" json:"id"`
	GameID models.GameID  `gorm:"type:uuid;not null;index" json:"gameId"`
	Seq    int            `gorm:"not null" json:"seq"`

	Type       string          `gorm:"not null" json:"type"`
	TimeSec    models.Factor   `json:"timeSec"`
	ScorerID   models.PlayerID `gorm:"type:uuid" json:"scorerId,omitempty"`
	AssisterID models.PlayerID `gorm:"type:uuid" json:"assisterId,omitempty"`
	Period     int             `json:"period,omitempty"`
	Note       string          `gorm:"type:text" json:"note,omitempty"`
}

func (GameEventRow) TableName() string { return "game_events" }

// GameAssessmentRow flattens a player assessment; the ten sliders become
// ten integer columns.
type GameAssessmentRow struct {
	GameID   models.GameID   `gorm:"type:uuid;primaryKey" json:"gameId"`
	PlayerID models.PlayerID `gorm:"type:uuid;primaryKey" json:"playerId"`

	Overall int `json:"overall"`

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

	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	MinutesPlayed int           `json:"minutesPlayed"`
	CreatedBy     string        `json:"createdBy,omitempty"`
	CreatedAt     models.Millis `json:"createdAt"`
}

func (GameAssessmentRow) TableName() string { return "game_assessments" }

// GameTacticsRow is the single tactics-board row per game. The ball
// position is the one field that is legitimately NULL.
type GameTacticsRow struct {
	GameID   models.GameID `gorm:"type:uuid;primary_key" json:"gameId"`
	Discs    DiscList      `gorm:"type:text" json:"discs"`
	Drawings StrokeList    `gorm:"type:text" json:"drawings"`
	BallX    *float64      `json:"ballX,omitempty"`
	BallY    *float64      `json:"ballY,omitempty"`
}

func (GameTacticsRow) TableName() string { return "game_tactics" }

// GameRowSet is the complete persisted form of one game aggregate. A save
// replaces the whole set atomically; a read reassembles the aggregate from
// it.
type GameRowSet struct {
	Game        GameRow
	Players     []GamePlayerRow
	Events      []GameEventRow
	Assessments []GameAssessmentRow
	Tactics     GameTacticsRow
}
