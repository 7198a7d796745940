package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpay/dunning/internal/model"
)

// AvailableAgents returns the agents on duty for the given date: active
// users with a live duty_roster entry where is_working is set. The order is
// agent id ascending, which is the canonical rotation order for the
// distributor; source ordering is never relied on.
//
// An empty result is not an error; it means no distribution is possible
// that day and callers must treat the run as a no-op.
func (db *DB) AvailableAgents(ctx context.Context, date time.Time) ([]model.Agent, error) {
	return availableAgents(ctx, db.pool, date)
}

// querier is the subset of pgxpool.Pool and pgx.Tx the read helpers need,
// so roster and case reads can run inside the assignment transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func availableAgents(ctx context.Context, q querier, date time.Time) ([]model.Agent, error) {
	rows, err := q.Query(ctx,
		`SELECT DISTINCT u.id, u.full_name
		 FROM duty_roster r
		 JOIN users u ON u.id = r.agent_id
		 WHERE r.work_date = $1
		   AND r.is_working
		   AND r.deleted_at IS NULL
		   AND u.is_active
		 ORDER BY u.id ASC`,
		date.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: available agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("storage: scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// UpsertRosterEntry creates or updates the live roster entry for
// (agent, work date) and returns the stored row. Soft-deleted entries don't
// conflict, so an agent can be re-rostered after removal under a fresh id.
func (db *DB) UpsertRosterEntry(ctx context.Context, agentID uuid.UUID, workDate time.Time, isWorking bool, createdBy uuid.UUID) (model.DutyRosterEntry, error) {
	var e model.DutyRosterEntry
	err := db.pool.QueryRow(ctx,
		`INSERT INTO duty_roster (agent_id, work_date, is_working, created_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (agent_id, work_date) WHERE deleted_at IS NULL
		 DO UPDATE SET is_working = EXCLUDED.is_working
		 RETURNING id, agent_id, work_date, is_working, created_by, created_at`,
		agentID, workDate.Format("2006-01-02"), isWorking, createdBy,
	).Scan(&e.ID, &e.AgentID, &e.WorkDate, &e.IsWorking, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return model.DutyRosterEntry{}, fmt.Errorf("storage: upsert roster entry: %w", err)
	}
	return e, nil
}

// RemoveRosterEntry soft-deletes the live roster entry for (agent, work date).
// Removing an entry that doesn't exist is a no-op.
func (db *DB) RemoveRosterEntry(ctx context.Context, agentID uuid.UUID, workDate time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE duty_roster SET deleted_at = now()
		 WHERE agent_id = $1 AND work_date = $2 AND deleted_at IS NULL`,
		agentID, workDate.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("storage: remove roster entry: %w", err)
	}
	return nil
}
