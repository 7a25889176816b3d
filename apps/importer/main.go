package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/mensaplan/internal/clock"
	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/importjob"
	"github.com/smallbiznis/mensaplan/internal/mealplan"
	"github.com/smallbiznis/mensaplan/internal/migration"
	"github.com/smallbiznis/mensaplan/internal/observability"
	obsmetrics "github.com/smallbiznis/mensaplan/internal/observability/metrics"
	"github.com/smallbiznis/mensaplan/internal/upstream"
	"github.com/smallbiznis/mensaplan/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const dateLayout = "2006-01-02"

var errInvalidFlags = errors.New("invalid flags")

type options struct {
	from string
	to   string
	days int
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "mensaplan-importer:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "mensaplan-importer",
		Short: "Import the vendor meal plan for a date range once",
		Long: `Fetches the vendor meal plan for a date range and reconciles it into the
database. Without flags the range is today through today plus IMPORT_DAY_DISTANCE days.`,
		Example: `  mensaplan-importer
  mensaplan-importer --days 7
  mensaplan-importer --from 2024-05-06 --to 2024-05-10`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				opts.days = -1
			}
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "first day to import (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day to import (YYYY-MM-DD, default from + days)")
	cmd.Flags().IntVar(&opts.days, "days", 14, "days after --from when --to is not set")
	return cmd
}

// resolveRange applies defaultDays when opts.days is negative.
func resolveRange(now time.Time, opts options, defaultDays int) (time.Time, time.Time, error) {
	y, m, d := now.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if opts.from != "" {
		parsed, err := time.ParseInLocation(dateLayout, opts.from, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --from %q is not YYYY-MM-DD", errInvalidFlags, opts.from)
		}
		from = parsed
	}

	if opts.to != "" {
		to, err := time.ParseInLocation(dateLayout, opts.to, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --to %q is not YYYY-MM-DD", errInvalidFlags, opts.to)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --to is before --from", errInvalidFlags)
		}
		return from, to, nil
	}

	days := opts.days
	if days < 0 {
		days = defaultDays
	}
	return from, from.AddDate(0, 0, days), nil
}

func runImport(cmd *cobra.Command, opts options) error {
	var (
		cfg    config.Config
		runner *importjob.Runner
		now    clock.Clock
	)
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		upstream.Module,
		mealplan.Module,
		importjob.Module,
		fx.Populate(&cfg, &runner, &now),
	)
	if err := app.Err(); err != nil {
		return err
	}

	from, to, err := resolveRange(now.Now(), opts, cfg.Import.DayDistance)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	startCtx, cancel := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	runCtx, cancelRun := context.WithTimeout(ctx, cfg.Import.Timeout)
	defer cancelRun()
	result, err := runner.Run(runCtx, obsmetrics.TriggerCLI, from, to)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(4)
	if err != nil {
		panic(err)
	}
	return node
}
