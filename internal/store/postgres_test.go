package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Integration tests against a real PostgreSQL started with testcontainers-go.
// Run locally with:
//   GO_TEST_INTEGRATION=1 go test ./internal/store -run Postgres -v -count=1

func readMigration(t *testing.T, name string) string {
	t.Helper()
	// internal/store -> repository root.
	_, thisFile, _, _ := runtime.Caller(0)
	root := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))

	b, err := os.ReadFile(filepath.Join(root, "migrations", name))
	require.NoError(t, err, "read migration %s", name)
	return string(b)
}

func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Contract(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	up := readMigration(t, "1_init_tutorials.up.sql")
	down := readMigration(t, "1_init_tutorials.down.sql")

	runStoreContract(t, func(t *testing.T) Store {
		// Fresh schema per subtest so every run starts empty.
		_, err := pool.Exec(ctx, down)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, up)
		require.NoError(t, err)

		st, err := NewPostgresStore(ctx, dsn)
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		return st
	})
}

func TestPostgresStore_BadDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "://not-a-dsn")
	require.Error(t, err)
}
