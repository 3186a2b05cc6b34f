// Package local implements the storage contract on an embedded SQLite
// database. It is the always-available backend: every read and write is
// served from the local file with no network dependency, and when mutation
// queueing is enabled each write also appends a replay record inside the
// same transaction for the sync engine to drain later.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/matchkeeper/matchkeeper/pkg/models"
	"github.com/matchkeeper/matchkeeper/pkg/store"
	"github.com/matchkeeper/matchkeeper/pkg/store/rows"
)

// Options configures a local store.
type Options struct {
	// QueueMutations records every successful write in the sync queue,
	// inside the same transaction as the write itself.
	QueueMutations bool

	Logger zerolog.Logger
}

// Store is the embedded SQLite implementation of store.Store.
type Store struct {
	db    *gorm.DB
	log   zerolog.Logger
	queue bool
	locks *keyedMutex
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.MutationQueue = (*Store)(nil)
)

// Open opens (creating if needed) the SQLite database at path. Use
// ":memory:" for an ephemeral store in tests.
func Open(path string, opts Options) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		// WAL keeps readers unblocked during the sync engine's queue scans.
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	return &Store{
		db:    db,
		log:   opts.Logger.With().Str("store", "local").Logger(),
		queue: opts.QueueMutations,
		locks: newKeyedMutex(),
	}, nil
}

// Initialize runs schema migration for every persisted table.
func (s *Store) Initialize(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Player{},
		&models.Team{},
		&models.RosterEntry{},
		&models.Season{},
		&models.Tournament{},
		&models.Personnel{},
		&models.PlayerAdjustment{},
		&rows.GameRow{},
		&rows.GamePlayerRow{},
		&rows.GameEventRow{},
		&rows.GameAssessmentRow{},
		&rows.GameTacticsRow{},
		&store.Mutation{},
	)
	if err != nil {
		return &store.StorageError{Backend: s.Name(), Op: "initialize", Err: err}
	}
	s.log.Debug().Msg("schema migrated")
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Name identifies the backend.
func (s *Store) Name() string { return "local" }

// Available always reports true; the embedded store has no connectivity to
// lose.
func (s *Store) Available(ctx context.Context) bool { return true }

// storageErr wraps a gorm error in the shared taxonomy.
func (s *Store) storageErr(op string, err error) error {
	return &store.StorageError{Backend: s.Name(), Op: op, Err: err}
}

// enqueueTx appends a replay record inside tx. payload may be nil for
// deletes. No-op unless queueing is enabled.
func (s *Store) enqueueTx(tx *gorm.DB, entityType, entityID string, op store.MutationOp, payload interface{}) error {
	if !s.queue {
		return nil
	}
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", entityType, err)
		}
	}
	return tx.Create(&store.Mutation{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		Payload:    body,
		Status:     store.MutationPending,
	}).Error
}

// Counts returns the per-entity census.
func (s *Store) Counts(ctx context.Context) (store.EntityCounts, error) {
	var c store.EntityCounts
	db := s.db.WithContext(ctx)
	for _, q := range []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Player{}, &c.Players},
		{&models.Team{}, &c.Teams},
		{&models.Season{}, &c.Seasons},
		{&models.Tournament{}, &c.Tournaments},
		{&models.Personnel{}, &c.Personnel},
		{&models.PlayerAdjustment{}, &c.Adjustments},
		{&rows.GameRow{}, &c.Games},
	} {
		if err := db.Model(q.model).Count(q.dst).Error; err != nil {
			return store.EntityCounts{}, s.storageErr("counts", err)
		}
	}
	return c, nil
}

// DeleteAll wipes every durable data table, dependents first. The sync
// queue and any configuration survive: clearing data must never flip the
// active-backend selection or orphan pending uploads silently.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.locks.Lock(lockGames, lockPersonnel)
	defer s.locks.Unlock(lockGames, lockPersonnel)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&rows.GameTacticsRow{},
			&rows.GameAssessmentRow{},
			&rows.GameEventRow{},
			&rows.GamePlayerRow{},
			&rows.GameRow{},
			&models.PlayerAdjustment{},
			&models.RosterEntry{},
			&models.Team{},
			&models.Personnel{},
			&models.Tournament{},
			&models.Season{},
			&models.Player{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.storageErr("deleteAll", err)
	}
	s.log.Info().Msg("all local data deleted")
	return nil
}

// touch stamps bookkeeping timestamps for a create.
func touch(created *time.Time, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
