package customer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	t.Run("valid address", func(t *testing.T) {
		a, err := NewAddress(userID, "Casa", " Cra 7 # 45-10 ", "Bogotá", 4.63, -74.06, now)
		require.NoError(t, err)
		assert.Equal(t, "Cra 7 # 45-10", a.Street)
		assert.True(t, a.BelongsTo(userID))
		assert.False(t, a.BelongsTo(uuid.New()))
	})

	tests := []struct {
		name     string
		user     uuid.UUID
		lat, lng float64
		street   string
	}{
		{"missing owner", uuid.Nil, 4.6, -74.0, "x"},
		{"latitude out of range", userID, 91, -74.0, "x"},
		{"longitude out of range", userID, 4.6, -181, "x"},
		{"empty street", userID, 4.6, -74.0, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAddress(tt.user, "", tt.street, "", tt.lat, tt.lng, now)
			assert.Error(t, err)
		})
	}
}
