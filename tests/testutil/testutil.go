// Package testutil provides shared helpers for the storefront tests: mock
// and in-memory databases, fake clocks, standard callers and repository
// mocks.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a new mock database for testing.
// The caller is responsible for calling Close() when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// Close closes the mock database connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	err := m.Mock.ExpectationsWereMet()
	require.NoError(t, err, "Unmet database expectations")
}

// NewSQLiteDB opens a private in-memory SQLite database and migrates the
// given models. A single connection keeps the database alive for the test
// and serialises concurrent transactions the way row locks would.
func NewSQLiteDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "Failed to migrate sqlite schema")
	}
	return db
}

// actorNamespace keeps the standard callers' ids stable across runs
var actorNamespace = uuid.MustParse("2f1d4c7e-8a3b-4e5f-9c6d-7b8a9e0f1a2b")

func actorID(role shared.Role) uuid.UUID {
	return uuid.NewSHA1(actorNamespace, []byte(role))
}

// CustomerActor is the customer every service test places orders as
func CustomerActor() shared.Actor {
	return shared.Actor{UserID: actorID(shared.RoleCustomer), Role: shared.RoleCustomer}
}

// StaffActor is a back-office caller
func StaffActor() shared.Actor {
	return shared.Actor{UserID: actorID(shared.RoleStaff), Role: shared.RoleStaff}
}

// AdminActor is the admin caller
func AdminActor() shared.Actor {
	return shared.Actor{UserID: actorID(shared.RoleAdmin), Role: shared.RoleAdmin}
}
