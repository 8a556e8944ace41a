package setup

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/sentinel/config"
	"github.com/goto/sentinel/internal/store/postgres"
)

const envTestDBURL = "TEST_SENTINEL_DB_URL"

var (
	poolOnce sync.Once
	testPool *pgxpool.Pool
	poolErr  error
)

// TestPool returns a migrated pool for the test database, skipping the test
// when no database is configured.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(envTestDBURL)
	if dsn == "" {
		t.Skipf("%s is not set, skipping database test", envTestDBURL)
	}

	poolOnce.Do(func() {
		if poolErr = postgres.Migrate(dsn); poolErr != nil {
			return
		}
		testPool, poolErr = postgres.Open(config.DBConfig{DSN: dsn, MaxOpenConnection: 5})
	})
	if poolErr != nil {
		t.Fatalf("unable to setup test database: %s", poolErr)
	}
	return testPool
}

func TruncateTablesWith(pool *pgxpool.Pool) {
	ctx := context.Background()
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE alerts_source_freshness, delivery_logs"); err != nil {
		panic(err)
	}
}
