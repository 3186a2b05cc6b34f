package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Typed IDs wrap UUIDv7 values. Entities are identified at the moment of the
// user action that creates them, never by a store-generated surrogate key, so
// the same identity survives local creation, later sync and bulk migration.
// The v7 layout makes the string form sort by creation time.

func newV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// PlayerID is a typed ID for players
type PlayerID struct {
	uuid uuid.UUID
}

func NewPlayerID() PlayerID {
	return PlayerID{uuid: newV7()}
}

func ParsePlayerID(s string) (PlayerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player ID: %w", err)
	}
	return PlayerID{uuid: id}, nil
}

func (p PlayerID) UUID() uuid.UUID { return p.uuid }
func (p PlayerID) String() string  { return p.uuid.String() }
func (p PlayerID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PlayerID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "players", ID: p.uuid.String()}
}

func (p PlayerID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PlayerID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.uuid)
}

func (p PlayerID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("players", p.uuid)
}

func (p *PlayerID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "players", &p.uuid)
}

func (p PlayerID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PlayerID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PlayerID) GormDataType() string { return "uuid" }

// TeamID is a typed ID for teams
type TeamID struct {
	uuid uuid.UUID
}

func NewTeamID() TeamID {
	return TeamID{uuid: newV7()}
}

func ParseTeamID(s string) (TeamID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TeamID{}, fmt.Errorf("invalid team ID: %w", err)
	}
	return TeamID{uuid: id}, nil
}

func (t TeamID) UUID() uuid.UUID { return t.uuid }
func (t TeamID) String() string  { return t.uuid.String() }
func (t TeamID) IsZero() bool    { return t.uuid == uuid.Nil }

func (t TeamID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "teams", ID: t.uuid.String()}
}

func (t TeamID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.uuid.String())
}

func (t *TeamID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &t.uuid)
}

func (t TeamID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("teams", t.uuid)
}

func (t *TeamID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "teams", &t.uuid)
}

func (t TeamID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.uuid.String(), nil
}

func (t *TeamID) Scan(value any) error {
	return scanUUID(value, &t.uuid)
}

func (TeamID) GormDataType() string { return "uuid" }

// SeasonID is a typed ID for seasons
type SeasonID struct {
	uuid uuid.UUID
}

func NewSeasonID() SeasonID {
	return SeasonID{uuid: newV7()}
}

func ParseSeasonID(s string) (SeasonID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SeasonID{}, fmt.Errorf("invalid season ID: %w", err)
	}
	return SeasonID{uuid: id}, nil
}

func (s SeasonID) UUID() uuid.UUID { return s.uuid }
func (s SeasonID) String() string  { return s.uuid.String() }
func (s SeasonID) IsZero() bool    { return s.uuid == uuid.Nil }

func (s SeasonID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "seasons", ID: s.uuid.String()}
}

func (s SeasonID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.uuid.String())
}

func (s *SeasonID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &s.uuid)
}

func (s SeasonID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("seasons", s.uuid)
}

func (s *SeasonID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "seasons", &s.uuid)
}

func (s SeasonID) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	return s.uuid.String(), nil
}

func (s *SeasonID) Scan(value any) error {
	return scanUUID(value, &s.uuid)
}

func (SeasonID) GormDataType() string { return "uuid" }

// TournamentID is a typed ID for tournaments
type TournamentID struct {
	uuid uuid.UUID
}

func NewTournamentID() TournamentID {
	return TournamentID{uuid: newV7()}
}

func ParseTournamentID(s string) (TournamentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TournamentID{}, fmt.Errorf("invalid tournament ID: %w", err)
	}
	return TournamentID{uuid: id}, nil
}

func (t TournamentID) UUID() uuid.UUID { return t.uuid }
func (t TournamentID) String() string  { return t.uuid.String() }
func (t TournamentID) IsZero() bool    { return t.uuid == uuid.Nil }

func (t TournamentID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "tournaments", ID: t.uuid.String()}
}

func (t TournamentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.uuid.String())
}

func (t *TournamentID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &t.uuid)
}

func (t TournamentID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("tournaments", t.uuid)
}

func (t *TournamentID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "tournaments", &t.uuid)
}

func (t TournamentID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.uuid.String(), nil
}

func (t *TournamentID) Scan(value any) error {
	return scanUUID(value, &t.uuid)
}

func (TournamentID) GormDataType() string { return "uuid" }

// GameID is a typed ID for games
type GameID struct {
	uuid uuid.UUID
}

func NewGameID() GameID {
	return GameID{uuid: newV7()}
}

func ParseGameID(s string) (GameID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return GameID{}, fmt.Errorf("invalid game ID: %w", err)
	}
	return GameID{uuid: id}, nil
}

func (g GameID) UUID() uuid.UUID { return g.uuid }
func (g GameID) String() string  { return g.uuid.String() }
func (g GameID) IsZero() bool    { return g.uuid == uuid.Nil }

func (g GameID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "games", ID: g.uuid.String()}
}

func (g GameID) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.uuid.String())
}

func (g *GameID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &g.uuid)
}

func (g GameID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("games", g.uuid)
}

func (g *GameID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "games", &g.uuid)
}

func (g GameID) Value() (driver.Value, error) {
	if g.IsZero() {
		return nil, nil
	}
	return g.uuid.String(), nil
}

func (g *GameID) Scan(value any) error {
	return scanUUID(value, &g.uuid)
}

func (GameID) GormDataType() string { return "uuid" }

// EventID is a typed ID for game events
type EventID struct {
	uuid uuid.UUID
}

func NewEventID() EventID {
	return EventID{uuid: newV7()}
}

func ParseEventID(s string) (EventID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("invalid event ID: %w", err)
	}
	return EventID{uuid: id}, nil
}

func (e EventID) UUID() uuid.UUID { return e.uuid }
func (e EventID) String() string  { return e.uuid.String() }
func (e EventID) IsZero() bool    { return e.uuid == uuid.Nil }

func (e EventID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "game_events", ID: e.uuid.String()}
}

func (e EventID) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.uuid.String())
}

func (e *EventID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &e.uuid)
}

func (e EventID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("game_events", e.uuid)
}

func (e *EventID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "game_events", &e.uuid)
}

func (e EventID) Value() (driver.Value, error) {
	if e.IsZero() {
		return nil, nil
	}
	return e.uuid.String(), nil
}

func (e *EventID) Scan(value any) error {
	return scanUUID(value, &e.uuid)
}

func (EventID) GormDataType() string { return "uuid" }

// PersonnelID is a typed ID for staff members
type PersonnelID struct {
	uuid uuid.UUID
}

func NewPersonnelID() PersonnelID {
	return PersonnelID{uuid: newV7()}
}

func ParsePersonnelID(s string) (PersonnelID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PersonnelID{}, fmt.Errorf("invalid personnel ID: %w", err)
	}
	return PersonnelID{uuid: id}, nil
}

func (p PersonnelID) UUID() uuid.UUID { return p.uuid }
func (p PersonnelID) String() string  { return p.uuid.String() }
func (p PersonnelID) IsZero() bool    { return p.uuid == uuid.Nil }

func (p PersonnelID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "personnel", ID: p.uuid.String()}
}

func (p PersonnelID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.uuid.String())
}

func (p *PersonnelID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.uuid)
}

func (p PersonnelID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("personnel", p.uuid)
}

func (p *PersonnelID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "personnel", &p.uuid)
}

func (p PersonnelID) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.uuid.String(), nil
}

func (p *PersonnelID) Scan(value any) error {
	return scanUUID(value, &p.uuid)
}

func (PersonnelID) GormDataType() string { return "uuid" }

// AdjustmentID is a typed ID for player adjustments
type AdjustmentID struct {
	uuid uuid.UUID
}

func NewAdjustmentID() AdjustmentID {
	return AdjustmentID{uuid: newV7()}
}

func ParseAdjustmentID(s string) (AdjustmentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AdjustmentID{}, fmt.Errorf("invalid adjustment ID: %w", err)
	}
	return AdjustmentID{uuid: id}, nil
}

func (a AdjustmentID) UUID() uuid.UUID { return a.uuid }
func (a AdjustmentID) String() string  { return a.uuid.String() }
func (a AdjustmentID) IsZero() bool    { return a.uuid == uuid.Nil }

func (a AdjustmentID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: "player_adjustments", ID: a.uuid.String()}
}

func (a AdjustmentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.uuid.String())
}

func (a *AdjustmentID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &a.uuid)
}

func (a AdjustmentID) MarshalCBOR() ([]byte, error) {
	return marshalCBORID("player_adjustments", a.uuid)
}

func (a *AdjustmentID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "player_adjustments", &a.uuid)
}

func (a AdjustmentID) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return a.uuid.String(), nil
}

func (a *AdjustmentID) Scan(value any) error {
	return scanUUID(value, &a.uuid)
}

func (AdjustmentID) GormDataType() string { return "uuid" }

// Helper functions

func unmarshalJSONID(data []byte, target *uuid.UUID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*target = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = id
	return nil
}

// marshalCBORID encodes an ID as a SurrealDB RecordID (CBOR tag 8,
// [table, id]). A zero ID marshals to nil so unset references become
// NULL columns on the remote side rather than dangling record pointers.
func marshalCBORID(table string, id uuid.UUID) ([]byte, error) {
	if id == uuid.Nil {
		return cbor.Marshal(nil)
	}
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{table, id.String()},
	})
}

// scanUUID is a helper for implementing sql.Scanner for GORM-backed stores
func scanUUID(value any, target *uuid.UUID) error {
	if value == nil {
		*target = uuid.Nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			*target = uuid.Nil
			return nil
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		*target = id
	case []byte:
		id, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		*target = id
	default:
		return fmt.Errorf("cannot scan type %T into UUID", value)
	}
	return nil
}

// unmarshalCBORID is a helper for unmarshaling a SurrealDB RecordID from CBOR.
// SurrealDB uses CBOR tag 8 for RecordIDs, encoded as [table_name, id_string].
// Plain strings and nil are also accepted so rows written by other clients
// still decode.
func unmarshalCBORID(data []byte, expectedTable string, target *uuid.UUID) error {
	if len(data) == 0 {
		return fmt.Errorf("empty CBOR data")
	}

	majorType := data[0] >> 5
	if majorType == 6 {
		var tag cbor.Tag
		if err := cbor.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag.Number != 8 {
			return fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
		}
		arr, ok := tag.Content.([]any)
		if !ok || len(arr) != 2 {
			return fmt.Errorf("invalid RecordID content format")
		}
		if table, ok := arr[0].(string); ok && table != expectedTable {
			return fmt.Errorf("expected RecordID from table %q, got %q", expectedTable, table)
		}
		idStr, ok := arr[1].(string)
		if !ok {
			return fmt.Errorf("invalid RecordID content format")
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID in RecordID: %w", err)
		}
		*target = id
		return nil
	}

	var s *string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*target = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return err
	}
	*target = id
	return nil
}
