package local

import (
	"context"

	"github.com/matchkeeper/matchkeeper/pkg/store"
)

// Sync queue accessors. Entries are written by enqueueTx inside the same
// transaction as the write they mirror; these methods are the drain side
// used by the sync engine.

// PendingMutations returns up to limit pending entries in enqueue order.
func (s *Store) PendingMutations(ctx context.Context, limit int) ([]*store.Mutation, error) {
	pending := []*store.Mutation{}
	q := s.db.WithContext(ctx).Where("status = ?", store.MutationPending).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&pending).Error; err != nil {
		return nil, s.storageErr("pendingMutations", err)
	}
	return pending, nil
}

// MarkMutationDone removes a replayed entry entirely; a drained queue holds
// no history.
func (s *Store) MarkMutationDone(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&store.Mutation{}, "id = ?", id).Error; err != nil {
		return s.storageErr("markMutationDone", err)
	}
	return nil
}

// MarkMutationFailed records a failed attempt; park moves the entry out of
// the pending scan until the user retries it explicitly.
func (s *Store) MarkMutationFailed(ctx context.Context, id uint, attempts int, lastErr string, park bool) error {
	status := store.MutationPending
	if park {
		status = store.MutationFailed
	}
	err := s.db.WithContext(ctx).Model(&store.Mutation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   attempts,
			"last_error": lastErr,
			"status":     status,
		}).Error
	if err != nil {
		return s.storageErr("markMutationFailed", err)
	}
	return nil
}

// RetryFailedMutations moves parked entries back into the pending scan with
// a fresh attempt budget.
func (s *Store) RetryFailedMutations(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&store.Mutation{}).
		Where("status = ?", store.MutationFailed).
		Updates(map[string]interface{}{
			"status":   store.MutationPending,
			"attempts": 0,
		})
	if res.Error != nil {
		return 0, s.storageErr("retryFailedMutations", res.Error)
	}
	return res.RowsAffected, nil
}

// QueueStats counts pending and parked entries.
func (s *Store) QueueStats(ctx context.Context) (store.QueueStats, error) {
	var stats store.QueueStats
	db := s.db.WithContext(ctx).Model(&store.Mutation{})
	if err := db.Where("status = ?", store.MutationPending).Count(&stats.Pending).Error; err != nil {
		return store.QueueStats{}, s.storageErr("queueStats", err)
	}
	db = s.db.WithContext(ctx).Model(&store.Mutation{})
	if err := db.Where("status = ?", store.MutationFailed).Count(&stats.Failed).Error; err != nil {
		return store.QueueStats{}, s.storageErr("queueStats", err)
	}
	return stats, nil
}
