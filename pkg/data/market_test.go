package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMarketToForecast(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	resolved := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name        string
		market      Market
		wantNil     bool
		wantOutcome *int
	}{
		{
			name:        "resolved yes",
			market:      Market{ID: "a", OutcomeType: "BINARY", Probability: 0.7, IsResolved: true, Resolution: "YES", CreatedTime: created, ResolutionTime: resolved},
			wantOutcome: intPtr(1),
		},
		{
			name:        "resolved no",
			market:      Market{ID: "b", OutcomeType: "BINARY", Probability: 0.2, IsResolved: true, Resolution: "NO", CreatedTime: created, ResolutionTime: resolved},
			wantOutcome: intPtr(0),
		},
		{
			name:   "open market keeps nil outcome",
			market: Market{ID: "c", OutcomeType: "BINARY", Probability: 0.5, CreatedTime: created},
		},
		{
			name:   "mkt resolution stays unresolved",
			market: Market{ID: "d", OutcomeType: "BINARY", Probability: 0.5, IsResolved: true, Resolution: "MKT", CreatedTime: created},
		},
		{
			name:    "non-binary dropped",
			market:  Market{ID: "e", OutcomeType: "MULTIPLE_CHOICE", CreatedTime: created},
			wantNil: true,
		},
		{
			name:    "missing id dropped",
			market:  Market{OutcomeType: "BINARY", CreatedTime: created},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := mapMarketToForecast(&tt.market, "src")
			if tt.wantNil {
				assert.Nil(t, fc)
				return
			}
			require.NotNil(t, fc)
			assert.Equal(t, "src", fc.Source)
			assert.Equal(t, tt.wantOutcome, fc.Outcome)
			assert.Equal(t, "2025-03-01T10:00:00Z", fc.Created)
		})
	}
}

func TestMarketImporter_Run(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	markets := []Market{
		{ID: "m1", Question: "Q1", OutcomeType: "BINARY", Probability: 0.8, IsResolved: true, Resolution: "YES", CreatedTime: created, ResolutionTime: created},
		{ID: "m2", Question: "Q2", OutcomeType: "BINARY", Probability: 0.3, IsResolved: true, Resolution: "NO", CreatedTime: created, ResolutionTime: created},
		{ID: "m3", Question: "Q3", OutcomeType: "POLL", CreatedTime: created},
		{ID: "m4", Question: "Q4", OutcomeType: "BINARY", Probability: 0.5, CreatedTime: created},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/markets", r.URL.Path)
		if r.URL.Query().Get("before") != "" {
			require.NoError(t, json.NewEncoder(w).Encode([]Market{}))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(markets))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	imp := NewMarketImporter(srv.Client(), db, srv.URL, time.Time{}, 0)

	summary, err := imp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 3, summary.Binary)
	assert.Equal(t, 2, summary.Resolved)
	assert.Equal(t, 3, summary.Saved)

	ds, err := LoadResolved(db, nil)
	require.NoError(t, err)
	assert.Len(t, ds, 2)
}

func TestMarketImporter_SinceCutoff(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	markets := []Market{
		{ID: "new", OutcomeType: "BINARY", Probability: 0.6, IsResolved: true, Resolution: "YES", CreatedTime: recent.UnixMilli(), ResolutionTime: recent.UnixMilli()},
		{ID: "old", OutcomeType: "BINARY", Probability: 0.4, IsResolved: true, Resolution: "NO", CreatedTime: old.UnixMilli(), ResolutionTime: old.UnixMilli()},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(markets))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	imp := NewMarketImporter(srv.Client(), db, srv.URL, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0)

	summary, err := imp.Run(context.Background())
	require.NoError(t, err)

	// paging stops at the first market older than the cutoff
	assert.Equal(t, 1, summary.Saved)
}

func TestMarketImporter_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	db := setupTestDB(t)
	imp := NewMarketImporter(srv.Client(), db, srv.URL, time.Time{}, 0)

	_, err := imp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
