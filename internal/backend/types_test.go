package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2025-03-01T10:00:00Z"`, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{`"2025-03-01T10:00:00.5"`, time.Date(2025, 3, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{`"2025-03-01 10:00:00"`, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{`"2025-03-01"`, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`""`, time.Time{}},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(timeOf(ts)), "got %v", timeOf(ts))
		})
	}

	var ts timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestEmailEntry(t *testing.T) {
	var entries []emailEntry
	require.NoError(t, json.Unmarshal([]byte(`["a@x.com", {"id": 2, "email": "b@x.com"}]`), &entries))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, entriesToStrings(entries))
}
