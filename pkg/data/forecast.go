package data

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/forecastlab/pmeval/pkg/eval"
)

const (
	insertForecastSQL = `INSERT INTO forecast (
			id, source, question, probability, outcome, created_at, resolved_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, id) DO NOTHING
	`

	selectForecastSQL = `SELECT
			id, source, question, probability, outcome, created_at, resolved_at
		FROM forecast
		WHERE source = COALESCE(?, source)
		AND created_at >= COALESCE(?, created_at)
		ORDER BY created_at
		LIMIT ?
	`

	selectResolvedSQL = `SELECT probability, outcome, created_at
		FROM forecast
		WHERE outcome IS NOT NULL
		AND probability >= 0 AND probability <= 1
		AND source = COALESCE(?, source)
		AND created_at >= COALESCE(?, created_at)
		ORDER BY created_at
	`

	countBySourceSQL = `SELECT source,
			COUNT(*) AS total,
			SUM(CASE WHEN outcome IS NOT NULL THEN 1 ELSE 0 END) AS resolved
		FROM forecast
		GROUP BY source
		ORDER BY total DESC
	`

	dateFormat = "2006-01-02T15:04:05Z"
)

// Forecast is one stored market forecast. Outcome is nil until the market
// resolves.
type Forecast struct {
	ID          string  `json:"id" yaml:"id"`
	Source      string  `json:"source" yaml:"source"`
	Question    string  `json:"question,omitempty" yaml:"question,omitempty"`
	Probability float64 `json:"probability" yaml:"probability"`
	Outcome     *int    `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Created     string  `json:"created" yaml:"created"`
	Resolved    string  `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// ForecastSearchCriteria narrows forecast queries. Nil fields match anything.
type ForecastSearchCriteria struct {
	Source *string `json:"source,omitempty"`
	Since  *string `json:"since,omitempty"`
	Limit  int     `json:"limit,omitempty"`
}

// SourceSummary is the per-source forecast count breakdown.
type SourceSummary struct {
	Source   string `json:"source" yaml:"source"`
	Total    int    `json:"total" yaml:"total"`
	Resolved int    `json:"resolved" yaml:"resolved"`
}

// SaveForecasts inserts forecasts in one transaction, skipping rows already
// present. Returns the number of rows actually inserted.
func SaveForecasts(db *sql.DB, list []*Forecast) (int, error) {
	if db == nil {
		return 0, errDBRequired
	}
	if len(list) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertForecastSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing forecast insert: %w", err)
	}

	inserted := 0
	for _, fc := range list {
		var outcome any
		if fc.Outcome != nil {
			outcome = *fc.Outcome
		}
		var resolved any
		if fc.Resolved != "" {
			resolved = fc.Resolved
		}
		res, err := stmt.Exec(fc.ID, fc.Source, fc.Question, fc.Probability, outcome, fc.Created, resolved)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, fmt.Errorf("rolling back forecast insert: %w", rbErr)
			}
			return 0, fmt.Errorf("inserting forecast %s/%s: %w", fc.Source, fc.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing forecast insert: %w", err)
	}
	return inserted, nil
}

// QueryForecasts lists stored forecasts matching the criteria.
func QueryForecasts(db *sql.DB, q *ForecastSearchCriteria) ([]*Forecast, error) {
	if db == nil {
		return nil, errDBRequired
	}
	if q == nil {
		q = &ForecastSearchCriteria{}
	}
	limit := q.Limit
	if limit < 1 {
		limit = 500
	}

	rows, err := db.Query(selectForecastSQL, q.Source, q.Since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying forecasts: %w", err)
	}
	defer rows.Close()

	list := make([]*Forecast, 0)
	for rows.Next() {
		fc := &Forecast{}
		var outcome sql.NullInt64
		var resolved sql.NullString
		if err := rows.Scan(&fc.ID, &fc.Source, &fc.Question, &fc.Probability, &outcome, &fc.Created, &resolved); err != nil {
			return nil, fmt.Errorf("scanning forecast row: %w", err)
		}
		if outcome.Valid {
			v := int(outcome.Int64)
			fc.Outcome = &v
		}
		fc.Resolved = resolved.String
		list = append(list, fc)
	}
	return list, rows.Err()
}

// LoadResolved returns the evaluation dataset: resolved forecasts only, with
// probabilities validated to [0,1]. This is the upstream filter the engine in
// pkg/eval relies on; unresolved or out-of-range rows never reach it.
func LoadResolved(db *sql.DB, q *ForecastSearchCriteria) (eval.Dataset, error) {
	if db == nil {
		return nil, errDBRequired
	}
	if q == nil {
		q = &ForecastSearchCriteria{}
	}

	rows, err := db.Query(selectResolvedSQL, q.Source, q.Since)
	if err != nil {
		return nil, fmt.Errorf("querying resolved forecasts: %w", err)
	}
	defer rows.Close()

	ds := make(eval.Dataset, 0)
	for rows.Next() {
		var prob float64
		var outcome int
		var created string
		if err := rows.Scan(&prob, &outcome, &created); err != nil {
			return nil, fmt.Errorf("scanning resolved forecast row: %w", err)
		}
		r := eval.Record{Probability: prob, Outcome: outcome}
		if ts, err := time.Parse(dateFormat, created); err == nil {
			r.Created = ts
		}
		ds = append(ds, r)
	}
	return ds, rows.Err()
}

// GetSourceSummaries returns forecast counts per source.
func GetSourceSummaries(db *sql.DB) ([]*SourceSummary, error) {
	if db == nil {
		return nil, errDBRequired
	}

	rows, err := db.Query(countBySourceSQL)
	if err != nil {
		return nil, fmt.Errorf("querying source summaries: %w", err)
	}
	defer rows.Close()

	list := make([]*SourceSummary, 0)
	for rows.Next() {
		s := &SourceSummary{}
		if err := rows.Scan(&s.Source, &s.Total, &s.Resolved); err != nil {
			return nil, fmt.Errorf("scanning source summary row: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
