// Command dunning runs the collections assignment and reporting engine as a
// batch job: one invocation, one run, no resident process.
//
//	dunning assign --date 2024-07-01 --assigned-by <operator-uuid>
//	dunning report --date 2024-07-01
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fieldpay/dunning/internal/config"
	"github.com/fieldpay/dunning/internal/model"
	"github.com/fieldpay/dunning/internal/service/assignment"
	"github.com/fieldpay/dunning/internal/service/report"
	"github.com/fieldpay/dunning/internal/storage"
	"github.com/fieldpay/dunning/internal/telemetry"
	"github.com/fieldpay/dunning/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("DUNNING_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dunning <assign|report> [flags]")
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// A run has a bounded wall-clock budget; exceeding it cancels the
	// context, which rolls back any in-flight transaction.
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	loc := cfg.Location()
	switch args[0] {
	case "assign":
		return runAssign(ctx, db, logger, loc, args[1:])
	case "report":
		return runReport(ctx, db, logger, loc, args[1:])
	default:
		return fmt.Errorf("unknown command %q (want assign or report)", args[0])
	}
}

func runAssign(ctx context.Context, db *storage.DB, logger *slog.Logger, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	dateStr := fs.String("date", "", "assignment date (YYYY-MM-DD, default today in business timezone)")
	assignedByStr := fs.String("assigned-by", "", "operator identity stamped on assignments (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *assignedByStr == "" {
		return assignment.ErrNoOperator
	}
	assignedBy, err := uuid.Parse(*assignedByStr)
	if err != nil {
		return fmt.Errorf("parse --assigned-by: %w", err)
	}

	date, err := parseDate(*dateStr, loc)
	if err != nil {
		return err
	}

	summary, err := assignment.New(db, logger).Run(ctx, assignment.RunInput{
		Date:       date,
		AssignedBy: assignedBy,
	})
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(summary)
}

func runReport(ctx context.Context, db *storage.DB, logger *slog.Logger, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	dateStr := fs.String("date", "", "report date (YYYY-MM-DD, default today in business timezone)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	date, err := parseDate(*dateStr, loc)
	if err != nil {
		return err
	}

	rows, err := report.New(db, loc, logger).Generate(ctx, date)
	if err != nil {
		return err
	}

	var renderer report.Renderer = jsonLinesRenderer{out: os.Stdout}
	return renderer.Render(ctx, rows)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --date: %w", err)
	}
	return date, nil
}

// jsonLinesRenderer writes one JSON object per row to out. Spreadsheet and
// delivery formats live in downstream tooling.
type jsonLinesRenderer struct {
	out *os.File
}

func (r jsonLinesRenderer) Render(_ context.Context, rows []model.ReportRow) error {
	enc := json.NewEncoder(r.out)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("render row %s: %w", row.CaseID, err)
		}
	}
	return nil
}
