package storage

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// RetryPolicy bounds how a transient Postgres failure is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; it doubles after
	// each failure and carries full jitter.
	BaseDelay time.Duration
}

// AssignmentRetryPolicy governs the distribution write path. Conflicts there
// come from concurrent runs racing on the same date, so a handful of short,
// jittered attempts is enough for the loser to observe the winner's commit.
var AssignmentRetryPolicy = RetryPolicy{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond}

// retriablePgCodes lists the SQLSTATE values where the statement failed
// because of a concurrent transaction rather than the statement itself.
var retriablePgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available (lock_timeout expired)
}

func (p RetryPolicy) retriable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && retriablePgCodes[pgErr.Code]
}

// WithRetry runs fn under the given policy, sleeping between attempts and
// giving up early when ctx is done. The last error is returned verbatim so
// callers can still match sentinel errors through it.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = time.Millisecond
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !policy.retriable(err) || attempt >= policy.MaxAttempts {
			return err
		}

		wait := delay + time.Duration(rand.Int63n(int64(delay)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
