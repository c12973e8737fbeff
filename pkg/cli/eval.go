package cli

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/forecastlab/pmeval/pkg/data"
	"github.com/forecastlab/pmeval/pkg/eval"
)

var (
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: fmt.Sprintf("Seed for the deterministic shuffle (default: %d)", eval.DefaultSeed),
	}

	testFracFlag = &cli.Float64Flag{
		Name:  "test-fraction",
		Usage: fmt.Sprintf("Fraction of records held out for the test split (default: %v)", eval.DefaultTestFraction),
	}

	valFracFlag = &cli.Float64Flag{
		Name:  "val-fraction",
		Usage: fmt.Sprintf("Fraction of records held out for the validation split (default: %v)", eval.DefaultValFraction),
	}

	foldsFlag = &cli.IntFlag{
		Name:  "folds",
		Usage: fmt.Sprintf("Number of cross-validation folds (default: %d)", eval.DefaultFolds),
	}

	binsFlag = &cli.IntFlag{
		Name:  "bins",
		Usage: fmt.Sprintf("Number of calibration bins (default: %d)", eval.DefaultBins),
	}

	evalSourceFlag = &cli.StringFlag{
		Name:  "source",
		Usage: "Only evaluate forecasts from this source",
	}

	evalSinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only evaluate forecasts created on or after this date (YYYY-MM-DD)",
	}

	saveFlag = &cli.BoolFlag{
		Name:  "save",
		Usage: "Persist the report for later retrieval",
	}

	evalCmd = &cli.Command{
		Name:    "eval",
		Aliases: []string{"e"},
		Usage:   "Evaluate imported forecasts and produce a readiness report",
		UsageText: `pmeval eval                                # evaluate all resolved forecasts
   pmeval eval --seed 7 --folds 10            # custom split and CV settings
   pmeval eval --since 2025-01-01 --save      # evaluate recent data, keep the report`,
		HideHelpCommand: true,
		Action:          cmdEval,
		Flags: []cli.Flag{
			seedFlag,
			testFracFlag,
			valFracFlag,
			foldsFlag,
			binsFlag,
			evalSourceFlag,
			evalSinceFlag,
			saveFlag,
			debugFlag,
		},
	}
)

func cmdEval(c *cli.Context) error {
	applyFlags(c)
	cfg := getConfig(c)

	opts := evalOptions(c, cfg)

	q := &data.ForecastSearchCriteria{
		Source: optional(c.String(evalSourceFlag.Name)),
		Since:  optional(c.String(evalSinceFlag.Name)),
	}

	ds, err := data.LoadResolved(cfg.DB, q)
	if err != nil {
		return fmt.Errorf("loading resolved forecasts: %w", err)
	}

	slog.Debug("evaluating", "records", len(ds), "seed", opts.Seed, "folds", opts.Folds)

	report, err := eval.Evaluate(ds, opts)
	if err != nil {
		return fmt.Errorf("evaluating forecasts: %w", err)
	}

	if c.Bool(saveFlag.Name) {
		if err := data.SaveReport(cfg.DB, report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		slog.Info("report saved", "id", report.ID)
	}

	if err := encode(report); err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}

	return nil
}

// evalOptions starts from the file config and overlays any flags set on this
// invocation.
func evalOptions(c *cli.Context, cfg *appConfig) eval.Options {
	opts := cfg.Conf.Options()

	if c.IsSet(seedFlag.Name) {
		opts.Seed = c.Int64(seedFlag.Name)
	}
	if c.IsSet(testFracFlag.Name) {
		opts.TestFraction = c.Float64(testFracFlag.Name)
	}
	if c.IsSet(valFracFlag.Name) {
		opts.ValFraction = c.Float64(valFracFlag.Name)
	}
	if c.IsSet(foldsFlag.Name) {
		opts.Folds = c.Int(foldsFlag.Name)
	}
	if c.IsSet(binsFlag.Name) {
		opts.Bins = c.Int(binsFlag.Name)
	}

	return opts
}
