// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers. Every test here is skipped under -short.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/farmacia/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MedicamentosCategoryID is seeded by the first migration
var MedicamentosCategoryID = uuid.MustParse("7b0c7f3e-5c2a-4d8e-9a51-0d1f6a3c2b01")

// TestDB represents a test database connection
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a fresh PostgreSQL container and migrates it to the
// latest version. The container is terminated on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("farmacia_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	tdb := &TestDB{Container: container, DSN: dsn, t: t}
	t.Cleanup(tdb.Close)

	tdb.DB, tdb.SqlDB = connectToDatabase(t, dsn)
	tdb.Migrate()
	return tdb
}

// Migrate applies every migration
func (tdb *TestDB) Migrate() {
	tdb.t.Helper()
	m, err := migration.New(tdb.SqlDB, MigrationsPath(tdb.t), nil)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, m.Up())
}

// Close closes the database connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CreateProduct inserts a product in the seeded medicine category
func (tdb *TestDB) CreateProduct(name string, price decimal.Decimal, stock int) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO products (id, name, stock, price, category_id)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, stock, price, MedicamentosCategoryID).Error
	require.NoError(tdb.t, err, "Failed to create test product")
	return id
}

// CreateAddress inserts a delivery address owned by userID
func (tdb *TestDB) CreateAddress(userID uuid.UUID) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO addresses (id, user_id, label, street, city, latitude, longitude)
		VALUES (?, ?, 'Casa', 'Av. Arequipa 1234', 'Lima', -12.0931, -77.0465)
	`, id, userID).Error
	require.NoError(tdb.t, err, "Failed to create test address")
	return id
}

// Stock returns the stored stock of a product
func (tdb *TestDB) Stock(productID uuid.UUID) int {
	tdb.t.Helper()
	var stock int
	require.NoError(tdb.t, tdb.DB.Raw("SELECT stock FROM products WHERE id = ?", productID).Scan(&stock).Error)
	return stock
}

// Count returns the number of rows in table matching where
func (tdb *TestDB) Count(table, where string, args ...any) int64 {
	tdb.t.Helper()
	var n int64
	q := tdb.DB.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(tdb.t, q.Count(&n).Error)
	return n
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	// Enough connections for the concurrency tests to contend on row locks.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// MigrationsPath walks up from this file to the repository's migrations
func MigrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for range 5 {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("Could not find migrations directory")
	return ""
}
