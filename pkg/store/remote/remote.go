// Package remote implements the storage contract against a SurrealDB
// server over WebSocket. It is online-only: there is no request queue here,
// a mutation either reaches the server or fails immediately with a
// NetworkError, and offline buffering is the synced composition's job.
//
// Every row is stamped with an owner field and every query filters on it,
// so one server instance safely holds many users' datasets. Multi-statement
// writes (the whole-game aggregate replace, bulk deletes) are submitted as
// a single BEGIN/COMMIT query so the server applies them atomically.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// Config describes a remote store connection.
type Config struct {
	// URL is the WebSocket RPC endpoint, e.g. ws://localhost:8000/rpc.
	URL       string
	Namespace string
	Database  string
	Auth      AuthProvider
	Logger    zerolog.Logger
}

// Store is the SurrealDB implementation of store.Store.
type Store struct {
	db    *surrealdb.DB
	auth  AuthProvider
	owner string
	log   zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Connect dials the server, authenticates and selects the namespace and
// database. The connection uses the surrealcbor codec so typed ids land as
// native record ids and time.Time as native datetimes.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url %q: %w", cfg.URL, err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, &store.NetworkError{Op: "connect", Err: err}
	}

	if err := cfg.Auth.SignIn(ctx, db); err != nil {
		_ = db.Close(ctx)
		return nil, &store.AuthError{Op: "connect", Err: err}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, &store.NetworkError{Op: "use", Err: err}
	}

	return &Store{
		db:    db,
		auth:  cfg.Auth,
		owner: cfg.Auth.Owner(),
		log:   cfg.Logger.With().Str("store", "remote").Logger(),
	}, nil
}

// Initialize is a no-op: SurrealDB creates tables on first insert.
func (s *Store) Initialize(ctx context.Context) error { return nil }

// Close shuts the WebSocket connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// Name identifies the backend.
func (s *Store) Name() string { return "remote" }

// Available probes the connection with a trivial query.
func (s *Store) Available(ctx context.Context) bool {
	probe, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := surrealdb.Query[int](probe, s.db, "RETURN 1", nil)
	return err == nil
}

// classify maps an SDK error into the shared taxonomy.
func (s *Store) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case isAuthMessage(msg):
		return &store.AuthError{Op: op, Err: err}
	case isNetworkMessage(msg):
		return &store.NetworkError{Op: op, Err: fmt.Errorf("%w: %v", store.ErrOffline, err)}
	default:
		return &store.StorageError{Backend: s.Name(), Op: op, Err: err}
	}
}

func isAuthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "token") ||
		strings.Contains(lower, "session") ||
		strings.Contains(lower, "authentication")
}

func isNetworkMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection") ||
		strings.Contains(lower, "broken pipe") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "eof")
}

// run executes fn, refreshing the session once on an expired token before
// giving up. The retry is transparent to the caller; the second failure
// comes back wrapping ErrSessionExpired.
func (s *Store) run(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if !isAuthMessage(err.Error()) {
		return s.classify(op, err)
	}
	s.log.Debug().Str("op", op).Msg("session rejected, refreshing sign-in")
	if signErr := s.auth.SignIn(ctx, s.db); signErr != nil {
		return &store.AuthError{Op: op, Err: store.ErrSessionExpired}
	}
	if err = fn(); err != nil {
		if isAuthMessage(err.Error()) {
			return &store.AuthError{Op: op, Err: store.ErrSessionExpired}
		}
		return s.classify(op, err)
	}
	return nil
}

// query runs a SurrealQL statement with the owner parameter merged in.
func query[T any](ctx context.Context, s *Store, q string, params map[string]any) (*[]surrealdb.QueryResult[T], error) {
	if params == nil {
		params = map[string]any{}
	}
	params["owner"] = s.owner
	return surrealdb.Query[T](ctx, s.db, q, params)
}

// firstResult unwraps the first statement's result rows.
func firstResult[T any](res *[]surrealdb.QueryResult[[]T]) []T {
	if res == nil || len(*res) == 0 {
		return nil
	}
	return (*res)[0].Result
}

type countRow struct {
	Count int64 `json:"count"`
}

var countTables = []struct {
	table string
	pick  func(*store.EntityCounts) *int64
}{
	{"players", func(c *store.EntityCounts) *int64 { return &c.Players }},
	{"teams", func(c *store.EntityCounts) *int64 { return &c.Teams }},
	{"seasons", func(c *store.EntityCounts) *int64 { return &c.Seasons }},
	{"tournaments", func(c *store.EntityCounts) *int64 { return &c.Tournaments }},
	{"personnel", func(c *store.EntityCounts) *int64 { return &c.Personnel }},
	{"player_adjustments", func(c *store.EntityCounts) *int64 { return &c.Adjustments }},
	{"games", func(c *store.EntityCounts) *int64 { return &c.Games }},
}

// Counts returns the per-table census for the authenticated owner.
func (s *Store) Counts(ctx context.Context) (store.EntityCounts, error) {
	var counts store.EntityCounts
	err := s.run(ctx, "counts", func() error {
		for _, ct := range countTables {
			q := fmt.Sprintf("SELECT count() FROM %s WHERE owner = $owner GROUP ALL", ct.table)
			res, err := query[[]countRow](ctx, s, q, nil)
			if err != nil {
				return err
			}
			rows := firstResult(res)
			if len(rows) > 0 {
				*ct.pick(&counts) = rows[0].Count
			}
		}
		return nil
	})
	if err != nil {
		return store.EntityCounts{}, err
	}
	return counts, nil
}

// deleteAllQuery wipes the owner's rows, dependents before the tables they
// reference, in one server-side transaction.
const deleteAllQuery = `
BEGIN;
DELETE game_tactics WHERE owner = $owner;
DELETE game_assessments WHERE owner = $owner;
DELETE game_events WHERE owner = $owner;
DELETE game_players WHERE owner = $owner;
DELETE games WHERE owner = $owner;
DELETE player_adjustments WHERE owner = $owner;
DELETE team_rosters WHERE owner = $owner;
DELETE teams WHERE owner = $owner;
DELETE personnel WHERE owner = $owner;
DELETE tournaments WHERE owner = $owner;
DELETE seasons WHERE owner = $owner;
DELETE players WHERE owner = $owner;
COMMIT;
`

// DeleteAll removes every row belonging to the authenticated owner.
func (s *Store) DeleteAll(ctx context.Context) error {
	err := s.run(ctx, "deleteAll", func() error {
		_, qErr := query[any](ctx, s, deleteAllQuery, nil)
		return qErr
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("owner", s.owner).Msg("remote data deleted")
	return nil
}
