package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldpay/dunning/internal/model"
)

// LogAttempt inserts one call attempt. Attempts are immutable once logged;
// corrections happen via soft-delete and a new row.
func (db *DB) LogAttempt(ctx context.Context, a model.CallAttempt) (model.CallAttempt, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO call_attempts
		   (case_id, contract_id, started_at, ended_at, outcome_id, reason_id, remark, asked_postpone, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		a.CaseID, a.ContractID, a.StartedAt, a.EndedAt, a.OutcomeID, a.ReasonID,
		a.Remark, a.AskedPostpone, a.CreatedBy, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return model.CallAttempt{}, fmt.Errorf("storage: log attempt: %w", err)
	}
	return a, nil
}

// LatestAttemptsByCase bulk-fetches the latest attempt per case in one query.
// Latest means greatest started_at; identical timestamps fall back to the
// greatest id so the result is deterministic.
func (db *DB) LatestAttemptsByCase(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID]model.CallAttempt, error) {
	result := make(map[uuid.UUID]model.CallAttempt, len(caseIDs))
	if len(caseIDs) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT ON (case_id)
		   id, case_id, contract_id, started_at, ended_at, outcome_id, reason_id,
		   remark, asked_postpone, created_by, created_at, deleted_at
		 FROM call_attempts
		 WHERE case_id = ANY($1) AND deleted_at IS NULL
		 ORDER BY case_id, started_at DESC NULLS LAST, id DESC`,
		caseIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: latest attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.CallAttempt
		if err := rows.Scan(
			&a.ID, &a.CaseID, &a.ContractID, &a.StartedAt, &a.EndedAt, &a.OutcomeID,
			&a.ReasonID, &a.Remark, &a.AskedPostpone, &a.CreatedBy, &a.CreatedAt, &a.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan attempt: %w", err)
		}
		result[a.CaseID] = a
	}
	return result, rows.Err()
}

// RemarksByCase bulk-fetches all non-empty remarks on live attempts for the
// given cases, ordered by attempt id so first-occurrence deduplication in
// the report layer is stable.
func (db *DB) RemarksByCase(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	return db.textsByCase(ctx, caseIDs,
		`SELECT case_id, remark
		 FROM call_attempts
		 WHERE case_id = ANY($1) AND deleted_at IS NULL AND remark IS NOT NULL AND remark <> ''
		 ORDER BY id ASC`,
		"remarks")
}

// ReasonNamesByCase bulk-fetches reason names for live attempts per case,
// ordered by attempt id.
func (db *DB) ReasonNamesByCase(ctx context.Context, caseIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	return db.textsByCase(ctx, caseIDs,
		`SELECT a.case_id, r.name
		 FROM call_attempts a
		 JOIN call_reasons r ON r.id = a.reason_id
		 WHERE a.case_id = ANY($1) AND a.deleted_at IS NULL
		 ORDER BY a.id ASC`,
		"reasons")
}

func (db *DB) textsByCase(ctx context.Context, caseIDs []uuid.UUID, sql, what string) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(caseIDs))
	if len(caseIDs) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx, sql, caseIDs)
	if err != nil {
		return nil, fmt.Errorf("storage: %s by case: %w", what, err)
	}
	defer rows.Close()

	for rows.Next() {
		var caseID uuid.UUID
		var text string
		if err := rows.Scan(&caseID, &text); err != nil {
			return nil, fmt.Errorf("storage: scan %s: %w", what, err)
		}
		result[caseID] = append(result[caseID], text)
	}
	return result, rows.Err()
}

// PostponeCountsByContract counts live attempts with the asked_postpone flag
// across all cases of each contract.
func (db *DB) PostponeCountsByContract(ctx context.Context, contractIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(contractIDs))
	if len(contractIDs) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT contract_id, count(*)
		 FROM call_attempts
		 WHERE contract_id = ANY($1) AND asked_postpone AND deleted_at IS NULL
		 GROUP BY contract_id`,
		contractIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: postpone counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contractID string
		var n int
		if err := rows.Scan(&contractID, &n); err != nil {
			return nil, fmt.Errorf("storage: scan postpone count: %w", err)
		}
		result[contractID] = n
	}
	return result, rows.Err()
}

// OutcomeNames bulk-fetches outcome display names keyed by id.
func (db *DB) OutcomeNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx, `SELECT id, name FROM call_outcomes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("storage: outcome names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("storage: scan outcome name: %w", err)
		}
		result[id] = name
	}
	return result, rows.Err()
}
