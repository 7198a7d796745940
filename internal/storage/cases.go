package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpay/dunning/internal/model"
)

const caseColumns = `id, contract_id, payment_id, customer_name, amount_due, status,
	assigned_to, assigned_by, assigned_at, updated_by, created_at, updated_at, deleted_at`

func scanCase(row pgx.Row) (model.CollectionCase, error) {
	var c model.CollectionCase
	err := row.Scan(
		&c.ID, &c.ContractID, &c.PaymentID, &c.CustomerName, &c.AmountDue, &c.Status,
		&c.AssignedTo, &c.AssignedBy, &c.AssignedAt, &c.UpdatedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

func collectCases(rows pgx.Rows) ([]model.CollectionCase, error) {
	defer rows.Close()
	var cases []model.CollectionCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// CreateCase inserts a new collection case.
func (db *DB) CreateCase(ctx context.Context, c model.CollectionCase) (model.CollectionCase, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = model.StatusOpen
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO collection_cases
		   (id, contract_id, payment_id, customer_name, amount_due, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ContractID, c.PaymentID, c.CustomerName, c.AmountDue, string(c.Status),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("storage: create case: %w", err)
	}
	return c, nil
}

// GetCaseByID retrieves a single case.
func (db *DB) GetCaseByID(ctx context.Context, id uuid.UUID) (model.CollectionCase, error) {
	c, err := scanCase(db.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM collection_cases WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CollectionCase{}, fmt.Errorf("storage: case %s: %w", id, ErrNotFound)
		}
		return model.CollectionCase{}, fmt.Errorf("storage: get case: %w", err)
	}
	return c, nil
}

// ListEligibleCases returns all cases eligible for assignment, oldest first.
// The explicit (created_at, id) sort is what makes the round-robin mapping
// reproducible; incidental storage order is never used.
func (db *DB) ListEligibleCases(ctx context.Context) ([]model.CollectionCase, error) {
	return eligibleCases(ctx, db.pool)
}

func eligibleCases(ctx context.Context, q querier) ([]model.CollectionCase, error) {
	rows, err := q.Query(ctx,
		`SELECT `+caseColumns+`
		 FROM collection_cases
		 WHERE status <> $1 AND assigned_to IS NULL AND deleted_at IS NULL
		 ORDER BY created_at ASC, id ASC`,
		string(model.StatusCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list eligible cases: %w", err)
	}
	return collectCases(rows)
}

// ListCasesAssignedBetween returns cases whose assigned_at falls in
// [from, to). The bounds are instants; the report service derives them from
// the business-local day window so timezone bucketing happens in one place.
func (db *DB) ListCasesAssignedBetween(ctx context.Context, from, to time.Time) ([]model.CollectionCase, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+caseColumns+`
		 FROM collection_cases
		 WHERE assigned_at >= $1 AND assigned_at < $2 AND deleted_at IS NULL
		 ORDER BY assigned_at ASC, id ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list cases assigned between: %w", err)
	}
	return collectCases(rows)
}

// AssignmentRun carries everything the assignment transaction needs.
// Distribute is the pure mapping step; it is invoked exactly once, inside
// the advisory-locked transaction, with the ordered snapshots read there.
type AssignmentRun struct {
	Date       time.Time
	AssignedBy uuid.UUID
	Now        time.Time
	Distribute func(cases []model.CollectionCase, agents []model.Agent) []model.AssignmentPair
}

// AssignEligibleCases executes one distribution run as a single atomic unit
// of work. The per-date advisory lock is held from before the eligibility
// read until commit, so concurrent runs for the same date serialize instead
// of double-assigning from a shared snapshot.
//
// Empty rosters and empty case sets commit without writes and report a
// skip reason in the summary; they are successful no-ops, not failures.
func (db *DB) AssignEligibleCases(ctx context.Context, run AssignmentRun) (model.AssignmentSummary, error) {
	summary := model.AssignmentSummary{
		Date:       run.Date,
		AssignedBy: run.AssignedBy,
		PerAgent:   map[uuid.UUID]int{},
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("storage: begin assignment tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockAssignmentDate(ctx, tx, run.Date); err != nil {
		return summary, err
	}

	agents, err := availableAgents(ctx, tx, run.Date)
	if err != nil {
		return summary, err
	}
	summary.TotalAgents = len(agents)
	if len(agents) == 0 {
		summary.Skipped = model.SkipNoAgents
		if err := tx.Commit(ctx); err != nil {
			return summary, fmt.Errorf("storage: commit empty assignment tx: %w", err)
		}
		return summary, nil
	}

	cases, err := eligibleCases(ctx, tx)
	if err != nil {
		return summary, err
	}
	if len(cases) == 0 {
		summary.Skipped = model.SkipNoEligibleCases
		if err := tx.Commit(ctx); err != nil {
			return summary, fmt.Errorf("storage: commit empty assignment tx: %w", err)
		}
		return summary, nil
	}

	pairs := run.Distribute(cases, agents)

	caseIDs := make([]uuid.UUID, len(pairs))
	agentIDs := make([]uuid.UUID, len(pairs))
	for i, p := range pairs {
		caseIDs[i] = p.CaseID
		agentIDs[i] = p.AgentID
	}

	now := run.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// One statement writes all four assignment fields for every pair. The
	// eligibility predicate is repeated in the WHERE clause as a guard: the
	// advisory lock already excludes concurrent runs, so a shortfall in
	// affected rows means the mapping is stale and the run must roll back.
	tag, err := tx.Exec(ctx,
		`UPDATE collection_cases c
		 SET assigned_to = v.agent_id,
		     assigned_by = $1,
		     assigned_at = $2,
		     updated_by  = $1,
		     updated_at  = $2
		 FROM (SELECT unnest($3::uuid[]) AS case_id, unnest($4::uuid[]) AS agent_id) v
		 WHERE c.id = v.case_id
		   AND c.status <> $5
		   AND c.assigned_to IS NULL
		   AND c.deleted_at IS NULL`,
		run.AssignedBy, now, caseIDs, agentIDs, string(model.StatusCompleted),
	)
	if err != nil {
		return summary, fmt.Errorf("storage: apply assignments: %w", err)
	}
	if tag.RowsAffected() != int64(len(pairs)) {
		return summary, fmt.Errorf("storage: applied %d of %d assignments: %w",
			tag.RowsAffected(), len(pairs), ErrStaleAssignment)
	}

	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("storage: commit assignment tx: %w", err)
	}

	summary.TotalCases = len(pairs)
	summary.Pairs = pairs
	for _, p := range pairs {
		summary.PerAgent[p.AgentID]++
	}
	return summary, nil
}
