package store

import (
	"context"
	"time"
)

// MutationOp names the remote operation a queued mutation replays.
type MutationOp string

const (
	OpUpsert MutationOp = "upsert"
	OpDelete MutationOp = "delete"
)

// Entity type discriminators carried by queued mutations.
const (
	EntityPlayer     = "player"
	EntityTeam       = "team"
	EntityTeamRoster = "teamRoster"
	EntitySeason     = "season"
	EntityTournament = "tournament"
	EntityPersonnel  = "personnel"
	EntityAdjustment = "playerAdjustment"
	EntityGame       = "game"
)

// Mutation statuses.
const (
	MutationPending = "pending"
	MutationDone    = "done"
	MutationFailed  = "failed"
)

// Mutation is one durable entry in the outbound sync queue. The payload is
// the full JSON of the entity (or game aggregate) as of the local write, so
// replay is a whole-record upsert and last-write-wins falls out of FIFO
// order naturally.
type Mutation struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType string     `gorm:"not null;index:idx_mutations_pending" json:"entityType"`
	EntityID   string     `gorm:"not null" json:"entityId"`
	Op         MutationOp `gorm:"not null" json:"op"`
	Payload    []byte     `gorm:"type:blob" json:"payload,omitempty"`
	Status     string     `gorm:"not null;default:pending;index:idx_mutations_pending" json:"status"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	LastError  string     `gorm:"type:text" json:"lastError,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (Mutation) TableName() string { return "sync_mutations" }

// QueueStats summarizes the queue for status displays.
type QueueStats struct {
	Pending int64 `json:"pending"`
	Failed  int64 `json:"failed"`
}

// MutationQueue is the optional capability a backend exposes when it records
// local writes for later replay. The local backend implements it; the sync
// engine is its only consumer.
type MutationQueue interface {
	// PendingMutations returns up to limit pending entries in enqueue order.
	PendingMutations(ctx context.Context, limit int) ([]*Mutation, error)

	// MarkMutationDone removes a successfully replayed entry.
	MarkMutationDone(ctx context.Context, id uint) error

	// MarkMutationFailed records a failed attempt. Once attempts reaches the
	// engine's cap the entry is parked with status failed and no longer
	// returned by PendingMutations.
	MarkMutationFailed(ctx context.Context, id uint, attempts int, lastErr string, park bool) error

	// RetryFailedMutations moves parked entries back to pending.
	RetryFailedMutations(ctx context.Context) (int64, error)

	// QueueStats counts pending and parked entries.
	QueueStats(ctx context.Context) (QueueStats, error)
}
