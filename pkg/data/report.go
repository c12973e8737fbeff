package data

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/forecastlab/pmeval/pkg/eval"
)

const (
	insertReportSQL = `INSERT INTO report (id, created_at, dataset_hash, seed, ready, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectReportSQL = `SELECT body FROM report WHERE id = ?`

	listReportsSQL = `SELECT id, created_at, dataset_hash, seed, ready
		FROM report
		ORDER BY created_at DESC
		LIMIT ?
	`

	latestReportSQL = `SELECT body FROM report ORDER BY created_at DESC LIMIT 1`
)

// ReportListItem is the report index row, without the full body.
type ReportListItem struct {
	ID          string `json:"id" yaml:"id"`
	Created     string `json:"created" yaml:"created"`
	DatasetHash string `json:"datasetHash" yaml:"datasetHash"`
	Seed        int64  `json:"seed" yaml:"seed"`
	Ready       bool   `json:"ready" yaml:"ready"`
}

// SaveReport persists one compiled report. Reports are write-once: an insert
// with an existing id fails rather than overwriting.
func SaveReport(db *sql.DB, r *eval.Report) error {
	if db == nil {
		return errDBRequired
	}
	if r == nil || r.ID == "" {
		return fmt.Errorf("report with id is required")
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report %s: %w", r.ID, err)
	}

	ready := 0
	if r.Verdict.Ready {
		ready = 1
	}

	_, err = db.Exec(insertReportSQL,
		r.ID,
		r.GeneratedAt.UTC().Format(dateFormat),
		r.DatasetHash,
		r.Seed,
		ready,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads one report body by id. Returns nil when not found.
func GetReport(db *sql.DB, id string) (*eval.Report, error) {
	if db == nil {
		return nil, errDBRequired
	}
	return scanReport(db.QueryRow(selectReportSQL, id))
}

// GetLatestReport loads the most recently compiled report, or nil when none
// has been saved yet.
func GetLatestReport(db *sql.DB) (*eval.Report, error) {
	if db == nil {
		return nil, errDBRequired
	}
	return scanReport(db.QueryRow(latestReportSQL))
}

// ListReports returns the report index, newest first.
func ListReports(db *sql.DB, limit int) ([]*ReportListItem, error) {
	if db == nil {
		return nil, errDBRequired
	}
	if limit < 1 {
		limit = 50
	}

	rows, err := db.Query(listReportsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	list := make([]*ReportListItem, 0)
	for rows.Next() {
		item := &ReportListItem{}
		var ready int
		if err := rows.Scan(&item.ID, &item.Created, &item.DatasetHash, &item.Seed, &ready); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		item.Ready = ready == 1
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanReport(row *sql.Row) (*eval.Report, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning report body: %w", err)
	}

	var r eval.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("unmarshaling report body: %w", err)
	}
	return &r, nil
}
