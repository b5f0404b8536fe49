package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("telemetry:before_query"))
}

func TestRegisterDBTracing_QueriesStillWork(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "sqlite",
	}, zap.NewNop()))

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.NotNil(t, db.Callback().Query().Get("telemetry:before_query"))
}

func TestMarkSlowQuery(t *testing.T) {
	db := openSQLite(t)

	assert.False(t, markSlowQuery(db, time.Millisecond), "no start time recorded")

	tx := db.InstanceSet(startTimeKey, time.Now().Add(-time.Second))
	assert.True(t, markSlowQuery(tx, 200*time.Millisecond))
	assert.False(t, markSlowQuery(tx, 2*time.Second))
	assert.False(t, markSlowQuery(tx, 0), "zero threshold disables the check")
}
