// Package report generates the daily collections report: the cases assigned
// within a business-local day window, denormalized into flat rows.
//
// The preload step bulk-fetches every cross-referenced relation before any
// row is mapped, so generation issues a constant number of queries no matter
// how many rows the window covers.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/fieldpay/dunning/internal/model"
	"github.com/fieldpay/dunning/internal/storage"
	"github.com/fieldpay/dunning/internal/telemetry"
)

// Renderer receives the finished row sequence. File formatting, storage and
// delivery are the renderer's concern, not the engine's.
type Renderer interface {
	Render(ctx context.Context, rows []model.ReportRow) error
}

// Service generates report rows for a business-local date.
type Service struct {
	db     *storage.DB
	loc    *time.Location
	logger *slog.Logger

	rowCount metric.Int64Histogram
}

// New creates a report Service. loc is the organization's business timezone;
// all window bucketing happens in it.
func New(db *storage.DB, loc *time.Location, logger *slog.Logger) *Service {
	meter := telemetry.Meter("dunning/report")
	rows, _ := meter.Int64Histogram("dunning.report.rows",
		metric.WithDescription("Rows generated per report"),
	)
	return &Service{db: db, loc: loc, logger: logger, rowCount: rows}
}

// DayWindow returns the half-open instant range [from, to) covering the
// calendar date in loc. A case belongs to date D iff its assignment instant
// falls inside D's local day, regardless of storage timezone.
func DayWindow(date time.Time, loc *time.Location) (from, to time.Time) {
	y, m, d := date.Year(), date.Month(), date.Day()
	from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

// Generate builds the report rows for every case assigned on the given
// business-local date, ordered by assignment time.
func (s *Service) Generate(ctx context.Context, date time.Time) ([]model.ReportRow, error) {
	from, to := DayWindow(date, s.loc)

	cases, err := s.db.ListCasesAssignedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("report: list window cases: %w", err)
	}
	if len(cases) == 0 {
		s.logger.Info("report window empty", "date", date.Format("2006-01-02"))
		return []model.ReportRow{}, nil
	}

	bundle, err := s.preload(ctx, cases)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ReportRow, len(cases))
	for i, c := range cases {
		rows[i] = mapRow(c, bundle, s.loc)
	}

	s.rowCount.Record(ctx, int64(len(rows)))
	s.logger.Info("report generated",
		"date", date.Format("2006-01-02"),
		"rows", len(rows),
	)
	return rows, nil
}
