package testdb

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

var (
	shared   *PostgresContainer
	sharedMu sync.Mutex
)

// PostgresContainer is a throwaway portal database.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts PostgreSQL on first use and hands the same
// instance to every later caller in the test binary. Callers must not run in
// parallel and should truncate what they touch.
//
//	func TestCourses(t *testing.T) {
//	    pg := testdb.SetupSharedPostgres(t)
//	    defer pg.Cleanup(t)
//	    pg.RunMigrations(t, schema.Tables()...)
//
//	    t.Run("Create", func(t *testing.T) {
//	        testdb.CleanupTables(t, pg.DB, "courses")
//	    })
//	}
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("course_portal_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	bunDB, err := db.NewWithDSN(ctx, dsn)
	require.NoError(t, err)

	shared = &PostgresContainer{Container: container, DB: bunDB, DSN: dsn}
	return shared
}

// Cleanup closes the pool and terminates the container; the next
// SetupSharedPostgres starts a fresh one.
func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	_ = pc.DB.Close()
	if err := pc.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate postgres container: %s", err)
	}
	shared = nil
}

func (pc *PostgresContainer) RunMigrations(t *testing.T, tables ...db.Table) {
	t.Helper()

	require.NoError(t, db.RunMigrations(context.Background(), pc.DB, tables...), "failed to run migrations")
}

// CleanupTables empties tables in one statement and resets their id sequences.
func CleanupTables(t *testing.T, bunDB *bun.DB, tables ...string) {
	t.Helper()

	if len(tables) == 0 {
		return
	}
	_, err := bunDB.ExecContext(context.Background(),
		"TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate %v", tables)
}
