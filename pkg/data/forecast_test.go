package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func seedForecasts(t *testing.T) []*Forecast {
	t.Helper()
	return []*Forecast{
		{ID: "m1", Source: "test", Question: "Q1", Probability: 0.8, Outcome: intPtr(1), Created: "2025-01-01T00:00:00Z", Resolved: "2025-02-01T00:00:00Z"},
		{ID: "m2", Source: "test", Question: "Q2", Probability: 0.3, Outcome: intPtr(0), Created: "2025-01-02T00:00:00Z", Resolved: "2025-02-02T00:00:00Z"},
		{ID: "m3", Source: "test", Question: "Q3", Probability: 0.5, Created: "2025-01-03T00:00:00Z"},
		{ID: "m4", Source: "other", Question: "Q4", Probability: 1.7, Outcome: intPtr(1), Created: "2025-01-04T00:00:00Z"},
	}
}

func TestSaveForecasts(t *testing.T) {
	db := setupTestDB(t)

	saved, err := SaveForecasts(db, seedForecasts(t))
	require.NoError(t, err)
	assert.Equal(t, 4, saved)

	// duplicate rows are skipped, not errors
	saved, err = SaveForecasts(db, seedForecasts(t))
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestSaveForecasts_NilDB(t *testing.T) {
	_, err := SaveForecasts(nil, seedForecasts(t))
	assert.Error(t, err)
}

func TestSaveForecasts_Empty(t *testing.T) {
	db := setupTestDB(t)
	saved, err := SaveForecasts(db, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, saved)
}

func TestQueryForecasts(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveForecasts(db, seedForecasts(t))
	require.NoError(t, err)

	list, err := QueryForecasts(db, nil)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	src := "test"
	list, err = QueryForecasts(db, &ForecastSearchCriteria{Source: &src})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	since := "2025-01-02T00:00:00Z"
	list, err = QueryForecasts(db, &ForecastSearchCriteria{Since: &since})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = QueryForecasts(db, &ForecastSearchCriteria{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLoadResolved(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveForecasts(db, seedForecasts(t))
	require.NoError(t, err)

	// m3 is unresolved and m4 has an out-of-range probability: both excluded
	ds, err := LoadResolved(db, nil)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.InDelta(t, 0.8, ds[0].Probability, 1e-12)
	assert.Equal(t, 1, ds[0].Outcome)
	assert.Equal(t, 2025, ds[0].Created.Year())
	assert.InDelta(t, 0.3, ds[1].Probability, 1e-12)
	assert.Equal(t, 0, ds[1].Outcome)
}

func TestLoadResolved_Empty(t *testing.T) {
	db := setupTestDB(t)

	ds, err := LoadResolved(db, nil)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestGetSourceSummaries(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveForecasts(db, seedForecasts(t))
	require.NoError(t, err)

	list, err := GetSourceSummaries(db)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "test", list[0].Source)
	assert.Equal(t, 3, list[0].Total)
	assert.Equal(t, 2, list[0].Resolved)
}
