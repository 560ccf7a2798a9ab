package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Dan9191/fee-reminder/internal/database"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase is a migrated Postgres running in a throwaway container
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	URL       string
}

// SetupTestDatabase starts a Postgres container and applies the migrations.
// Skipped with -short since it needs a container runtime.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fees_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"test":      "fee-reminder-repository",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() {
		if testDB.DB != nil {
			testDB.DB.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, connStr)
	require.NoError(t, err)
	testDB.DB = db
	testDB.URL = connStr

	logger, _ := test.NewNullLogger()
	require.NoError(t, database.MigrateUp(db, logger))

	return testDB
}

// InsertAccount writes an account row
func InsertAccount(t *testing.T, db *sql.DB, id, name, status, total, paid, oldPaid string, admission *string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO fees.accounts (id, full_name, status, total_fees, paid_fees, old_paid_fees, admission_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, name, status, total, paid, oldPaid, admission)
	require.NoError(t, err)
}

// InsertInstallment writes an installment row
func InsertInstallment(t *testing.T, db *sql.DB, accountID string, paidOn *string, amount string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO fees.installments (account_id, paid_on, amount)
		VALUES ($1, $2, $3)`,
		accountID, paidOn, amount)
	require.NoError(t, err)
}
