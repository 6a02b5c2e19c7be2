package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/compensation-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL and resets the tables. Tests are
// skipped when it is not set.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.EnsureSchema(ctx, db))
	for _, table := range []string{"compensation_rows", "compensation_worksheets", "workflow_configs"} {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err)
	}
	return db
}
