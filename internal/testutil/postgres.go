package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// SeedSQL leaves a stale snapshot behind so tests can check that a write
// replaces it rather than appending.
const SeedSQL = `
CREATE TABLE IF NOT EXISTS kmb_routes (
	route_no text PRIMARY KEY,
	run_id uuid NOT NULL
);

INSERT INTO kmb_routes (route_no, run_id) VALUES
	('STALE1', '00000000-0000-0000-0000-000000000001'),
	('STALE2', '00000000-0000-0000-0000-000000000001')
ON CONFLICT DO NOTHING;
`

const testDBEnv = "KMBFEED_TEST_DB_URL"

// runPostgresContainer starts a PG container, recovering from panics if Docker is unavailable.
func runPostgresContainer(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("kmbfeed"),
		postgres.WithUsername("kmb"),
		postgres.WithPassword("kmb"),
		postgres.BasicWaitStrategies(),
	)
}

func seedDatabase(ctx context.Context, connStr string) error {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return fmt.Errorf("seed connect: %w", err)
	}
	if _, err := conn.Exec(ctx, SeedSQL); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("seed: %w", err)
	}
	return conn.Close(ctx)
}

// Setup starts a PostgreSQL container, seeds it with a stale snapshot,
// and returns the connection string and a cleanup function.
// If KMBFEED_TEST_DB_URL is set, it seeds that database instead of Docker.
// Returns an error if Docker is not available.
func Setup() (string, func(), error) {
	ctx := context.Background()

	if connStr := os.Getenv(testDBEnv); connStr != "" {
		if err := seedDatabase(ctx, connStr); err != nil {
			return "", nil, fmt.Errorf("seed %s: %w", testDBEnv, err)
		}
		return connStr, func() {}, nil
	}

	container, err := runPostgresContainer(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("docker not available: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("connection string: %w", err)
	}

	if err := seedDatabase(ctx, connStr); err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return connStr, cleanup, nil
}

// SetupPostgres is a test helper that starts a PostgreSQL container and seeds it.
// Skips the test if Docker is not available.
func SetupPostgres(t *testing.T) (string, func()) {
	t.Helper()
	connStr, cleanup, err := Setup()
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	return connStr, cleanup
}
