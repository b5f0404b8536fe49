package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.Mock.ExpectClose()
	require.NoError(t, mockDB.Close())
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB(t *testing.T) {
	type widget struct {
		ID   uint
		Name string
	}
	db := NewSQLiteDB(t, &widget{})

	require.NoError(t, db.Create(&widget{Name: "pastillero"}).Error)
	var n int64
	require.NoError(t, db.Model(&widget{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestStandardActors(t *testing.T) {
	assert.Equal(t, CustomerActor(), CustomerActor(), "ids are stable")
	assert.NotEqual(t, CustomerActor().UserID, StaffActor().UserID)
	assert.NotEqual(t, StaffActor().UserID, AdminActor().UserID)
	assert.False(t, CustomerActor().IsBackOffice())
	assert.True(t, StaffActor().IsBackOffice())
	assert.True(t, AdminActor().IsBackOffice())
}

func TestNewClockAt(t *testing.T) {
	t.Run("past instant is kept", func(t *testing.T) {
		at := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
		clock := NewClockAt(at)
		assert.True(t, clock.Now().Equal(at))
		assert.Equal(t, time.UTC, clock.Now().Location())
	})

	t.Run("future instant keeps its location", func(t *testing.T) {
		at := time.Date(2031, 5, 14, 15, 0, 0, 0, time.UTC)
		clock := NewClockAt(at)
		assert.Equal(t, at, clock.Now())
	})

	t.Run("advances from the pinned instant", func(t *testing.T) {
		at := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
		clock := NewClockAt(at)
		clock.Advance(90 * time.Minute)
		assert.Equal(t, at.Add(90*time.Minute), clock.Now())
	})
}
