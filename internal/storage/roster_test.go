package storage_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldpay/dunning/internal/model"
	"github.com/fieldpay/dunning/internal/storage"
	"github.com/fieldpay/dunning/internal/testutil"
	"github.com/fieldpay/dunning/migrations"
)

var testDB *storage.DB

func TestMain(m *testing.M) {
	tc := testutil.MustStartPostgres()
	defer tc.Terminate()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	var err error
	testDB, err = tc.NewTestDB(context.Background(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create DB: %v\n", err)
		os.Exit(1)
	}
	defer testDB.Close()

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	_, err := testDB.Pool().Exec(context.Background(),
		`TRUNCATE call_attempts, promises, duty_roster, collection_cases, users CASCADE`)
	require.NoError(t, err)
}

func seedUser(t *testing.T, name string) model.User {
	t.Helper()
	u, err := testDB.CreateUser(context.Background(), model.User{FullName: name, Active: true})
	require.NoError(t, err)
	return u
}

func TestRosterSoftDeleteThenReroster(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	operator := seedUser(t, "Supervisor")
	agent := seedUser(t, "Agent")
	date := time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC)

	first, err := testDB.UpsertRosterEntry(ctx, agent.ID, date, true, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, first.AgentID)
	assert.Equal(t, operator.ID, first.CreatedBy)
	assert.True(t, first.IsWorking)
	assert.Equal(t, "2024-08-05", first.WorkDate.Format("2006-01-02"))

	agents, err := testDB.AvailableAgents(ctx, date)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, agent.ID, agents[0].ID)

	require.NoError(t, testDB.RemoveRosterEntry(ctx, agent.ID, date))
	agents, err = testDB.AvailableAgents(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, agents)

	// The unique index only covers live rows, so re-rostering after a
	// soft delete inserts a fresh entry instead of conflicting.
	second, err := testDB.UpsertRosterEntry(ctx, agent.ID, date, true, operator.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	agents, err = testDB.AvailableAgents(ctx, date)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	// Both rows remain; removal is history-preserving.
	var total int
	require.NoError(t, testDB.Pool().QueryRow(ctx,
		`SELECT count(*) FROM duty_roster WHERE agent_id = $1`, agent.ID).Scan(&total))
	assert.Equal(t, 2, total)
}

func TestUpsertRosterEntryUpdatesLiveRow(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	operator := seedUser(t, "Supervisor")
	agent := seedUser(t, "Agent")
	date := time.Date(2024, 8, 6, 0, 0, 0, 0, time.UTC)

	first, err := testDB.UpsertRosterEntry(ctx, agent.ID, date, true, operator.ID)
	require.NoError(t, err)

	// Flipping is_working updates the live row in place.
	second, err := testDB.UpsertRosterEntry(ctx, agent.ID, date, false, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsWorking)

	agents, err := testDB.AvailableAgents(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestRemoveRosterEntryMissingIsNoop(t *testing.T) {
	resetDB(t)
	operator := seedUser(t, "Supervisor")
	date := time.Date(2024, 8, 7, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, testDB.RemoveRosterEntry(context.Background(), operator.ID, date))
}

func TestRunMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()

	// TestMain already migrated this database; a second run applies nothing.
	require.NoError(t, testDB.RunMigrations(ctx, migrations.FS))

	var versions int
	require.NoError(t, testDB.Pool().QueryRow(ctx,
		`SELECT count(*) FROM schema_migrations`).Scan(&versions))
	assert.Equal(t, 2, versions)
}
