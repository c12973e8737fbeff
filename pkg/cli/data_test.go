package cli

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forecastlab/pmeval/pkg/data"
	"github.com/forecastlab/pmeval/pkg/eval"
)

func setupServerDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), data.DataFileName)
	require.NoError(t, data.Init(path))

	db, err := data.GetDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedReport(t *testing.T, db *sql.DB) *eval.Report {
	t.Helper()
	ds := make(eval.Dataset, 0, 200)
	for i := 0; i < 200; i++ {
		ds = append(ds, eval.Record{
			Probability: float64(i%10)/10 + 0.05,
			Outcome:     i % 2,
		})
	}

	report, err := eval.Evaluate(ds, eval.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, data.SaveReport(db, report))
	return report
}

func TestLatestReportAPIHandler(t *testing.T) {
	db := setupServerDB(t)

	// no reports yet
	w := httptest.NewRecorder()
	latestReportAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/report/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	saved := seedReport(t, db)

	w = httptest.NewRecorder()
	latestReportAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/report/latest", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got eval.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, eval.SchemaVersion, got.SchemaVersion)
}

func TestReportAPIHandler(t *testing.T) {
	db := setupServerDB(t)
	saved := seedReport(t, db)

	w := httptest.NewRecorder()
	reportAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/report", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	reportAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/report?id=nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	reportAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/report?id="+saved.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCalibrationAPIHandler(t *testing.T) {
	db := setupServerDB(t)
	seedReport(t, db)

	w := httptest.NewRecorder()
	calibrationAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/calibration", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cal eval.Calibration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cal))
	assert.Len(t, cal.Bins, eval.DefaultBins)
	assert.NotZero(t, cal.Samples)
}

func TestReportListAPIHandler(t *testing.T) {
	db := setupServerDB(t)
	seedReport(t, db)

	w := httptest.NewRecorder()
	reportListAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/reports", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list []*data.ReportListItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestSourceSummaryAPIHandler(t *testing.T) {
	db := setupServerDB(t)

	w := httptest.NewRecorder()
	sourceSummaryAPIHandler(db)(w, httptest.NewRequest(http.MethodGet, "/data/sources", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestQueryParamInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/data/reports", nil)
	assert.Equal(t, 50, queryParamInt(r, "limit", 50))

	r = httptest.NewRequest(http.MethodGet, "/data/reports?limit=5", nil)
	assert.Equal(t, 5, queryParamInt(r, "limit", 50))

	r = httptest.NewRequest(http.MethodGet, "/data/reports?limit=bogus", nil)
	assert.Equal(t, 50, queryParamInt(r, "limit", 50))

	r = httptest.NewRequest(http.MethodGet, "/data/reports?limit=99999", nil)
	assert.Equal(t, 50, queryParamInt(r, "limit", 50))
}

func TestMakeRouter(t *testing.T) {
	db := setupServerDB(t)
	seedReport(t, db)

	srv := httptest.NewServer(makeRouter(db))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
