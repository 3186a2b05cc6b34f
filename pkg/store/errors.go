package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matchkeeper/matchkeeper/pkg/models"
)

// Error taxonomy shared by every backend. Callers branch on these with
// errors.Is / errors.As; backends wrap their driver errors so the concrete
// store never leaks through the contract.

// ErrOffline is returned immediately by a mutating call on the remote
// backend while no connection is available. Remote operations are
// online-only by policy; queuing offline writes belongs exclusively to the
// optimistic local-then-sync path.
var ErrOffline = errors.New("remote backend unavailable while offline")

// ErrSessionExpired is wrapped by an AuthError after the single transparent
// refresh-and-retry attempt has also failed; the caller must re-authenticate.
var ErrSessionExpired = errors.New("session expired, re-authentication required")

// ErrReadOnly is returned for writes attempted while the store is wrapped in
// read-only mode (e.g. during a migration upload).
var ErrReadOnly = errors.New("store is in read-only mode")

// ValidationError reports invalid input detected before any I/O.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s: %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s is required", e.Entity, e.Field)
}

// NotFoundError reports a missing referenced entity where the operation's
// semantics require a hard failure. Plain lookups return nil instead.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// AlreadyExistsError reports a uniqueness violation.
type AlreadyExistsError struct {
	Entity string
	Detail string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Detail)
}

// NetworkError wraps a transport failure talking to the remote backend,
// including the explicit offline case (Unwrap yields ErrOffline then).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError reports an authentication or session failure on the remote
// backend. When the session expired and the one internal refresh attempt
// failed, Err is ErrSessionExpired.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failure during %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StorageError reports a backend-internal failure such as a failed
// transaction.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a hard not-found failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err was rejected before I/O.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRetryable reports whether the sync engine should re-attempt the
// mutation later. Only transient transport failures qualify; validation,
// not-found and storage errors will fail the same way every time.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, ErrOffline)
}

// requireName rejects blank or whitespace-only required names before any
// I/O is attempted.
func requireName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Entity: entity, Field: "name"}
	}
	return nil
}

// ValidatePlayer checks create-time player input.
func ValidatePlayer(p *models.Player) error {
	return requireName("player", p.Name)
}

// ValidateTeam checks create-time team input.
func ValidateTeam(t *models.Team) error {
	return requireName("team", t.Name)
}

// ValidateSeason checks create-time season input.
func ValidateSeason(s *models.Season) error {
	return requireName("season", s.Name)
}

// ValidateTournament checks create-time tournament input.
func ValidateTournament(t *models.Tournament) error {
	return requireName("tournament", t.Name)
}

// ValidatePersonnel checks create-time personnel input.
func ValidatePersonnel(p *models.Personnel) error {
	return requireName("personnel", p.Name)
}

// ValidateAdjustment checks create-time adjustment input.
func ValidateAdjustment(a *models.PlayerAdjustment) error {
	if a.PlayerID.IsZero() {
		return &ValidationError{Entity: "playerAdjustment", Field: "playerId"}
	}
	return nil
}

// ValidateGame checks the header fields required by saveGame on every
// backend. Identical across backends so parity tests can rely on the same
// rejection.
func ValidateGame(g *models.Game) error {
	if field := g.MissingRequiredField(); field != "" {
		return &ValidationError{Entity: "game", Field: field}
	}
	return nil
}
