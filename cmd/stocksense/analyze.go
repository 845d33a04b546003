package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline/stock_health"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

func analyzeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{Name: "sales", Usage: "Sales file (csv, xlsx or json)", Required: true},
		&cli.PathFlag{Name: "stock", Usage: "Stock file (csv, xlsx or json)", Required: true},
		&cli.PathFlag{Name: "out", Usage: "Write the dashboard JSON here instead of stdout"},
		&cli.StringFlag{Name: "as-of", Usage: "Reference date (YYYY-MM-DD) for the expiry window, defaults to today"},
		&cli.IntFlag{Name: "expiry-window-days", Value: stock_health.DefaultExpiryWindowDays, EnvVars: []string{"EXPIRY_WINDOW_DAYS"}},
	}
}

func runAnalyze(c *cli.Context) error {
	sales, err := ingest.LoadFile(c.Path("sales"))
	if err != nil {
		return fmt.Errorf("sales file: %w", err)
	}
	stock, err := ingest.LoadFile(c.Path("stock"))
	if err != nil {
		return fmt.Errorf("stock file: %w", err)
	}

	opts := stock_health.SnapshotOptions{
		Source:           "cli",
		ExpiryWindowDays: c.Int("expiry-window-days"),
	}
	if asOf := c.String("as-of"); asOf != "" {
		if opts.AsOf, err = time.Parse("2006-01-02", asOf); err != nil {
			return fmt.Errorf("invalid --as-of %q: %w", asOf, err)
		}
	}

	snapshot, err := stock_health.BuildSnapshot(sales, stock, opts)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}

	out := c.Path("out")
	if out == "" {
		_, err = os.Stdout.Write(append(payload, '\n'))
		return err
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Log.Info().
		Str("out", out).
		Int("stock_items", snapshot.Counts.StockItems).
		Int("alerts", len(snapshot.Alerts)).
		Int("rejected_sales_rows", snapshot.RejectedSalesRows).
		Msg("dashboard written")
	return nil
}
