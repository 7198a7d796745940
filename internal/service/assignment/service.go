// Package assignment implements the daily round-robin distribution of
// eligible collection cases across the on-duty roster.
//
// The mapping step is a pure function over snapshots read inside an
// advisory-locked transaction; the service wraps it with operator
// validation, retry on transient conflicts, metrics, and audit logging.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldpay/dunning/internal/model"
	"github.com/fieldpay/dunning/internal/storage"
	"github.com/fieldpay/dunning/internal/telemetry"
)

var tracer = otel.Tracer("dunning/assignment")

// ErrNoOperator is returned when a run is started without a resolvable
// operator identity. This is a configuration error: no writes are attempted.
var ErrNoOperator = errors.New("assignment: operator identity is required")

// Service coordinates one distribution run per invocation.
type Service struct {
	db     *storage.DB
	logger *slog.Logger

	casesAssigned metric.Int64Counter
	runDuration   metric.Float64Histogram
}

// New creates an assignment Service.
func New(db *storage.DB, logger *slog.Logger) *Service {
	meter := telemetry.Meter("dunning/assignment")
	assigned, _ := meter.Int64Counter("dunning.assignment.cases_assigned",
		metric.WithDescription("Cases assigned per distribution run"),
	)
	runDur, _ := meter.Float64Histogram("dunning.assignment.run_duration",
		metric.WithDescription("Distribution run duration (ms)"),
		metric.WithUnit("ms"),
	)
	return &Service{
		db:            db,
		logger:        logger,
		casesAssigned: assigned,
		runDuration:   runDur,
	}
}

// RunInput parameterizes one distribution run.
type RunInput struct {
	// Date is the assignment date, interpreted as a calendar date in the
	// organization's business timezone.
	Date time.Time
	// AssignedBy is the operator identity stamped on every assignment.
	// Required; there is no implicit fallback identity.
	AssignedBy uuid.UUID
}

// Run executes one distribution run to completion. The run either commits
// every computed assignment or none; "no agents on duty" and "no eligible
// cases" commit nothing and return a summary carrying the skip reason.
func (s *Service) Run(ctx context.Context, input RunInput) (model.AssignmentSummary, error) {
	ctx, span := tracer.Start(ctx, "assignment.run",
		trace.WithAttributes(
			attribute.String("dunning.assignment_date", input.Date.Format("2006-01-02")),
			attribute.String("dunning.assigned_by", input.AssignedBy.String()),
		),
	)
	defer span.End()

	// Fail-fast precondition: the operator must resolve to a real, active
	// identity before any transaction is opened.
	if input.AssignedBy == uuid.Nil {
		return model.AssignmentSummary{}, ErrNoOperator
	}
	operator, err := s.db.GetUserByID(ctx, input.AssignedBy)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.AssignmentSummary{}, fmt.Errorf("assignment: operator %s: %w", input.AssignedBy, ErrNoOperator)
		}
		return model.AssignmentSummary{}, fmt.Errorf("assignment: resolve operator: %w", err)
	}
	if !operator.Active {
		return model.AssignmentSummary{}, fmt.Errorf("assignment: operator %s is inactive: %w", input.AssignedBy, ErrNoOperator)
	}

	start := time.Now()
	var summary model.AssignmentSummary
	err = storage.WithRetry(ctx, storage.AssignmentRetryPolicy, func() error {
		var runErr error
		summary, runErr = s.db.AssignEligibleCases(ctx, storage.AssignmentRun{
			Date:       input.Date,
			AssignedBy: input.AssignedBy,
			Distribute: Distribute,
		})
		return runErr
	})
	s.runDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return model.AssignmentSummary{}, fmt.Errorf("assignment: run for %s: %w", input.Date.Format("2006-01-02"), err)
	}

	s.casesAssigned.Add(ctx, int64(summary.TotalCases))
	s.audit(summary, operator)
	return summary, nil
}

// audit emits the structured run summary to the observability sink.
func (s *Service) audit(summary model.AssignmentSummary, operator model.User) {
	perAgent := make(map[string]int, len(summary.PerAgent))
	for id, n := range summary.PerAgent {
		perAgent[id.String()] = n
	}

	s.logger.Info("assignment run complete",
		"date", summary.Date.Format("2006-01-02"),
		"total_cases", summary.TotalCases,
		"total_agents", summary.TotalAgents,
		"assigned_by", operator.FullName,
		"per_agent", perAgent,
		"skipped", summary.Skipped,
	)
}
