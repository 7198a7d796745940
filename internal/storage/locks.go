package storage

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
)

// lockKey hashes a scope string into an advisory-lock key. Wraparound into
// negative int64 is fine; the key only needs to be stable.
func lockKey(scope string) int64 {
	h := fnv.New64a()
	h.Write([]byte(scope))
	return int64(h.Sum64()) //nolint:gosec
}

// AssignmentLockKey derives the advisory-lock key for a distribution date.
// The key depends only on the calendar date, so two runs for the same date
// always contend for the same lock regardless of which process starts them.
func AssignmentLockKey(date time.Time) int64 {
	return lockKey("dunning/assign/" + date.Format("2006-01-02"))
}

// lockAssignmentDate takes the per-date advisory lock inside tx. The lock is
// transaction-scoped (pg_advisory_xact_lock), so it is held until commit or
// rollback, which is exactly the read-compute-write window that must be exclusive.
// A second run for the same date blocks here until the first commits, then
// observes the already-assigned cases as ineligible.
func lockAssignmentDate(ctx context.Context, tx pgx.Tx, date time.Time) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, AssignmentLockKey(date)); err != nil {
		return fmt.Errorf("storage: acquire assignment lock for %s: %w", date.Format("2006-01-02"), err)
	}
	return nil
}
