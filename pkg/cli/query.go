package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/forecastlab/pmeval/pkg/data"
	"github.com/forecastlab/pmeval/pkg/eval"
)

const (
	queryResultLimitDefault = 500
)

var (
	queryLimitFlag = &cli.IntFlag{
		Name:     "limit",
		Usage:    "Limits number of results returned",
		Value:    queryResultLimitDefault,
		Required: false,
	}

	querySourceFlag = &cli.StringFlag{
		Name:  "source",
		Usage: "Only forecasts from this source",
	}

	querySinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only forecasts created on or after this date (YYYY-MM-DD)",
	}

	reportIDFlag = &cli.StringFlag{
		Name:  "id",
		Usage: "Report ID (omit for the latest saved report)",
	}

	queryCmd = &cli.Command{
		Name:            "query",
		Aliases:         []string{"q"},
		Usage:           "List data query operations",
		HideHelpCommand: true,
		Subcommands: []*cli.Command{
			{
				Name:    "forecasts",
				Usage:   "List imported forecasts",
				Aliases: []string{"f"},
				Action:  cmdQueryForecasts,
				Flags: []cli.Flag{
					querySourceFlag,
					querySinceFlag,
					queryLimitFlag,
				},
			},
			{
				Name:    "sources",
				Usage:   "List per-source forecast counts",
				Aliases: []string{"s"},
				Action:  cmdQuerySources,
			},
			{
				Name:    "report",
				Usage:   "Get a saved evaluation report",
				Aliases: []string{"r"},
				Action:  cmdQueryReport,
				Flags: []cli.Flag{
					reportIDFlag,
				},
			},
			{
				Name:    "reports",
				Usage:   "List saved evaluation reports",
				Aliases: []string{"rs"},
				Action:  cmdQueryReports,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
		},
	}
)

func cmdQueryForecasts(c *cli.Context) error {
	applyFlags(c)
	cfg := getConfig(c)

	limit := c.Int(queryLimitFlag.Name)
	if limit == 0 || limit > queryResultLimitDefault {
		limit = queryResultLimitDefault
	}

	q := &data.ForecastSearchCriteria{
		Source: optional(c.String(querySourceFlag.Name)),
		Since:  optional(c.String(querySinceFlag.Name)),
		Limit:  limit,
	}

	list, err := data.QueryForecasts(cfg.DB, q)
	if err != nil {
		return fmt.Errorf("failed to query forecasts: %w", err)
	}

	if err := encode(list); err != nil {
		return fmt.Errorf("error encoding list: %w", err)
	}

	return nil
}

func cmdQuerySources(c *cli.Context) error {
	applyFlags(c)
	cfg := getConfig(c)

	list, err := data.GetSourceSummaries(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query sources: %w", err)
	}

	if err := encode(list); err != nil {
		return fmt.Errorf("error encoding list: %w", err)
	}

	return nil
}

func cmdQueryReport(c *cli.Context) error {
	applyFlags(c)
	cfg := getConfig(c)

	var err error
	var report *eval.Report

	if id := c.String(reportIDFlag.Name); id != "" {
		report, err = data.GetReport(cfg.DB, id)
	} else {
		report, err = data.GetLatestReport(cfg.DB)
	}
	if err != nil {
		return fmt.Errorf("failed to query report: %w", err)
	}

	if report == nil {
		_, err = fmt.Println("{}")
		return err
	}

	if err := encode(report); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}

	return nil
}

func cmdQueryReports(c *cli.Context) error {
	applyFlags(c)
	cfg := getConfig(c)

	limit := c.Int(queryLimitFlag.Name)
	if limit == 0 || limit > queryResultLimitDefault {
		limit = queryResultLimitDefault
	}

	list, err := data.ListReports(cfg.DB, limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if err := encode(list); err != nil {
		return fmt.Errorf("error encoding list: %w", err)
	}

	return nil
}
