package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEntry_DisplaysBefore(t *testing.T) {
	older := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)

	tests := []struct {
		name string
		a, b CatalogEntry
		want bool
	}{
		{"lower order first", CatalogEntry{ID: "z", Order: 1, CreatedAt: older}, CatalogEntry{ID: "a", Order: 2, CreatedAt: newer}, true},
		{"higher order last", CatalogEntry{ID: "a", Order: 2}, CatalogEntry{ID: "b", Order: 1}, false},
		{"newer wins a tie", CatalogEntry{ID: "z", Order: 5, CreatedAt: newer}, CatalogEntry{ID: "a", Order: 5, CreatedAt: older}, true},
		{"id breaks a full tie", CatalogEntry{ID: "a", Order: 5, CreatedAt: older}, CatalogEntry{ID: "b", Order: 5, CreatedAt: older}, true},
		{"not before itself", CatalogEntry{ID: "a", Order: 5}, CatalogEntry{ID: "a", Order: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.DisplaysBefore(&tt.b))
		})
	}
}

func TestCatalogEntry_HandlesInJSON(t *testing.T) {
	withImage, err := json.Marshal(CatalogEntry{ID: "a", ImageHandle: "frame_weavers/images/a.jpg"})
	require.NoError(t, err)
	assert.Contains(t, string(withImage), `"imageHandle":"frame_weavers/images/a.jpg"`)
	assert.NotContains(t, string(withImage), "videoHandle")
}
