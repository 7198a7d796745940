package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldpay/dunning/internal/model"
)

// AddPromise appends a promise-to-pay record. The table is append-only;
// superseding a promise means inserting a new active row, and reporting
// always picks the latest active one per payment.
func (db *DB) AddPromise(ctx context.Context, p model.PromiseRecord) (model.PromiseRecord, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO promises (payment_id, amount, promised_at, active, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.PaymentID, p.Amount, p.PromisedAt, p.Active, p.CreatedBy, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return model.PromiseRecord{}, fmt.Errorf("storage: add promise: %w", err)
	}
	return p, nil
}

// LatestActivePromiseByPayment bulk-fetches the latest active promise per
// payment id: active flag set, greatest created_at, ties broken by greatest
// id. Payments with no active promise are absent from the map.
func (db *DB) LatestActivePromiseByPayment(ctx context.Context, paymentIDs []string) (map[string]model.PromiseRecord, error) {
	result := make(map[string]model.PromiseRecord, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT ON (payment_id)
		   id, payment_id, amount, promised_at, active, created_by, created_at
		 FROM promises
		 WHERE payment_id = ANY($1) AND active
		 ORDER BY payment_id, created_at DESC, id DESC`,
		paymentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: latest active promises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PromiseRecord
		if err := rows.Scan(&p.ID, &p.PaymentID, &p.Amount, &p.PromisedAt, &p.Active, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan promise: %w", err)
		}
		result[p.PaymentID] = p
	}
	return result, rows.Err()
}
