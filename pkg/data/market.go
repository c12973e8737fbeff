package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// MarketSourceDefault is the default market API base URL (Manifold-style
	// REST surface: GET {base}/markets?limit=N&before=ID).
	MarketSourceDefault = "https://api.manifold.markets/v0"

	marketPageSize   = 500
	importBatchSize  = 500
	importMaxDefault = 5000

	outcomeTypeBinary = "BINARY"
	resolutionYes     = "YES"
	resolutionNo      = "NO"
)

// Market is the wire shape of one market returned by the API. Timestamps are
// epoch milliseconds.
type Market struct {
	ID             string  `json:"id"`
	Question       string  `json:"question"`
	OutcomeType    string  `json:"outcomeType"`
	Probability    float64 `json:"probability"`
	IsResolved     bool    `json:"isResolved"`
	Resolution     string  `json:"resolution"`
	CreatedTime    int64   `json:"createdTime"`
	ResolutionTime int64   `json:"resolutionTime"`
}

// ImportSummary reports what one import run did.
type ImportSummary struct {
	Source   string `json:"source" yaml:"source"`
	Fetched  int    `json:"fetched" yaml:"fetched"`
	Binary   int    `json:"binary" yaml:"binary"`
	Resolved int    `json:"resolved" yaml:"resolved"`
	Saved    int    `json:"saved" yaml:"saved"`
}

// MarketImporter pages a market API and batches resolved binary markets into
// the forecast table.
type MarketImporter struct {
	client  *http.Client
	db      *sql.DB
	baseURL string
	since   time.Time
	max     int

	batch   []*Forecast
	summary ImportSummary
}

// NewMarketImporter wires an importer for one source API.
func NewMarketImporter(client *http.Client, db *sql.DB, baseURL string, since time.Time, max int) *MarketImporter {
	if baseURL == "" {
		baseURL = MarketSourceDefault
	}
	if max < 1 {
		max = importMaxDefault
	}
	return &MarketImporter{
		client:  client,
		db:      db,
		baseURL: baseURL,
		since:   since,
		max:     max,
		batch:   make([]*Forecast, 0, importBatchSize),
		summary: ImportSummary{Source: baseURL},
	}
}

// Run pages through markets newest-first until the age or count limit is
// reached, keeping resolved YES/NO binary markets.
func (m *MarketImporter) Run(ctx context.Context) (*ImportSummary, error) {
	if m.db == nil {
		return nil, errDBRequired
	}
	if m.client == nil {
		m.client = http.DefaultClient
	}

	before := ""
	for m.summary.Fetched < m.max {
		page, err := m.fetchPage(ctx, before)
		if err != nil {
			return nil, fmt.Errorf("fetching markets page: %w", err)
		}
		if len(page) == 0 {
			break
		}

		done := false
		for _, mk := range page {
			m.summary.Fetched++
			created := time.UnixMilli(mk.CreatedTime).UTC()
			if !m.since.IsZero() && created.Before(m.since) {
				done = true
				break
			}
			if fc := mapMarketToForecast(&mk, m.baseURL); fc != nil {
				m.summary.Binary++
				if fc.Outcome != nil {
					m.summary.Resolved++
				}
				m.batch = append(m.batch, fc)
			}
			if len(m.batch) >= importBatchSize {
				if err := m.flush(); err != nil {
					return nil, err
				}
			}
		}

		slog.Debug("fetched markets page",
			"count", len(page),
			"total", m.summary.Fetched,
			"before", before,
		)

		if done || len(page) < marketPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	if err := m.flush(); err != nil {
		return nil, err
	}
	return &m.summary, nil
}

func (m *MarketImporter) fetchPage(ctx context.Context, before string) ([]Market, error) {
	u, err := url.Parse(m.baseURL + "/markets")
	if err != nil {
		return nil, fmt.Errorf("parsing market URL: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(marketPageSize))
	if before != "" {
		q.Set("before", before)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating market request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("market API returned %d: %s", resp.StatusCode, string(body))
	}

	var page []Market
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding markets page: %w", err)
	}
	return page, nil
}

func (m *MarketImporter) flush() error {
	if len(m.batch) == 0 {
		return nil
	}
	saved, err := SaveForecasts(m.db, m.batch)
	if err != nil {
		return fmt.Errorf("flushing %d forecasts: %w", len(m.batch), err)
	}
	m.summary.Saved += saved
	m.batch = m.batch[:0]
	return nil
}

// mapMarketToForecast keeps binary markets, translating YES/NO resolutions to
// 1/0 outcomes. Markets resolved any other way (MKT, CANCEL) stay unresolved
// so they never enter an evaluation dataset.
func mapMarketToForecast(mk *Market, source string) *Forecast {
	if mk.OutcomeType != outcomeTypeBinary || mk.ID == "" {
		return nil
	}

	fc := &Forecast{
		ID:          mk.ID,
		Source:      source,
		Question:    mk.Question,
		Probability: mk.Probability,
		Created:     time.UnixMilli(mk.CreatedTime).UTC().Format(dateFormat),
	}

	if mk.IsResolved {
		switch mk.Resolution {
		case resolutionYes:
			one := 1
			fc.Outcome = &one
		case resolutionNo:
			zero := 0
			fc.Outcome = &zero
		}
		if fc.Outcome != nil && mk.ResolutionTime > 0 {
			fc.Resolved = time.UnixMilli(mk.ResolutionTime).UTC().Format(dateFormat)
		}
	}
	return fc
}
