package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GameType tags a team or game with the competition format it belongs to.
type GameType string

const (
	GameTypeSeason     GameType = "season"
	GameTypeTournament GameType = "tournament"
)

// PersonnelRole identifies a staff member's function.
type PersonnelRole string

const (
	RoleHeadCoach      PersonnelRole = "head_coach"
	RoleAssistantCoach PersonnelRole = "assistant_coach"
	RoleGoalieCoach    PersonnelRole = "goalie_coach"
	RolePhysio         PersonnelRole = "physio"
	RoleTeamManager    PersonnelRole = "team_manager"
)

// Player is a roster-independent person record. Teams and games reference
// players by id but copy display fields into snapshots at assignment time.
type Player struct {
	ID           PlayerID       `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Nickname     NullableString `json:"nickname,omitempty"`
	JerseyNumber NullableString `json:"jerseyNumber,omitempty"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	IsGoalie     bool           `json:"isGoalie"`
	ReceivedFairPlayCard bool   `json:"receivedFairPlayCard"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// RosterEntry is a snapshot of a player at the moment of assignment to a
// team. Editing the source Player later does not rewrite the snapshot; only
// an explicit SetTeamRoster does. Slot is the persisted order column.
type RosterEntry struct {
	TeamID       TeamID         `gorm:"type:uuid;primaryKey" json:"team_id"`
	PlayerID     PlayerID       `gorm:"type:uuid;primaryKey" json:"player_id"`
	Slot         int            `gorm:"not null" json:"slot"`
	Name         string         `gorm:"not null" json:"name"`
	Nickname     NullableString `json:"nickname,omitempty"`
	JerseyNumber NullableString `json:"jerseyNumber,omitempty"`
	IsGoalie     bool           `json:"isGoalie"`
}

// Team binds a named squad to at most one season or tournament context.
// All reference fields are optional; a zero ID or empty string means unset
// and persists as NULL.
type Team struct {
	ID                 TeamID         `gorm:"type:uuid;primary_key" json:"id"`
	Name               string         `gorm:"not null" json:"name"`
	SeasonID           SeasonID       `gorm:"type:uuid" json:"seasonId,omitempty"`
	TournamentID       TournamentID   `gorm:"type:uuid" json:"tournamentId,omitempty"`
	TournamentSeriesID NullableString `json:"tournamentSeriesId,omitempty"`
	GameType           NullableString `json:"gameType,omitempty"`
	Color              NullableString `json:"color,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Season groups games over a date range.
type Season struct {
	ID             SeasonID       `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Location       NullableString `json:"location,omitempty"`
	StartDate      NullableString `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate        NullableString `json:"endDate,omitempty"`
	AgeGroup       NullableString `json:"ageGroup,omitempty"`
	// ClubSeason is derived from the date range on read when the stored
	// value is empty; records created before the field existed never get
	// it rewritten.
	ClubSeason     NullableString `json:"clubSeason,omitempty"`
	PeriodCount    int            `json:"periodCount"`
	PeriodDuration int            `json:"periodDuration"`
	Archived       bool           `json:"archived"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TournamentSeries is one competition bracket within a tournament.
type TournamentSeries struct {
	ID    string `json:"id"`
	Level string `json:"level"`
}

// SeriesList persists the series array as a JSON column so both backends
// share one representation.
type SeriesList []TournamentSeries

func (s SeriesList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SeriesList) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan type %T into SeriesList", value)
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, s)
}

func (SeriesList) GormDataType() string { return "text" }

// Tournament mirrors Season but additionally carries competition series.
// Level is the legacy single-value form; reads normalize it into Series
// when the array is absent.
type Tournament struct {
	ID             TournamentID   `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Location       NullableString `json:"location,omitempty"`
	StartDate      NullableString `json:"startDate,omitempty"`
	EndDate        NullableString `json:"endDate,omitempty"`
	AgeGroup       NullableString `json:"ageGroup,omitempty"`
	ClubSeason     NullableString `json:"clubSeason,omitempty"`
	Level          NullableString `json:"level,omitempty"`
	Series         SeriesList     `json:"series,omitempty"`
	PeriodCount    int            `json:"periodCount"`
	PeriodDuration int            `json:"periodDuration"`
	Archived       bool           `json:"archived"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Personnel is a role-tagged staff entry. Games reference personnel through
// an id list on the game header; removing a member strips the id from every
// game.
type Personnel struct {
	ID        PersonnelID    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Role      PersonnelRole  `gorm:"not null" json:"role"`
	Phone     NullableString `json:"phone,omitempty"`
	Email     NullableString `json:"email,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PlayerAdjustment corrects a player's aggregate statistics outside normal
// game recording, optionally scoped to a season, team or tournament.
type PlayerAdjustment struct {
	ID           AdjustmentID   `gorm:"type:uuid;primary_key" json:"id"`
	PlayerID     PlayerID       `gorm:"type:uuid;not null;index" json:"playerId"`
	SeasonID     SeasonID       `gorm:"type:uuid" json:"seasonId,omitempty"`
	TeamID       TeamID         `gorm:"type:uuid" json:"teamId,omitempty"`
	TournamentID TournamentID   `gorm:"type:uuid" json:"tournamentId,omitempty"`
	GamesDelta   int            `json:"gamesDelta"`
	GoalsDelta   int            `json:"goalsDelta"`
	AssistsDelta int            `json:"assistsDelta"`
	FairPlayDelta int           `json:"fairPlayDelta"`
	Note         string         `gorm:"type:text" json:"note,omitempty"`
	AppliedDate  NullableString `json:"appliedDate,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
