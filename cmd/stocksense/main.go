package main

import (
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "stocksense",
		Usage: "Inventory health analytics from sales and stock spreadsheets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Build a dashboard from one sales file and one stock file",
				Flags:  analyzeFlags(),
				Action: runAnalyze,
			},
			{
				Name:  "batch",
				Usage: "Build one dashboard per snapshot date found in a directory",
				Flags: append(storageFlags(),
					newDBURLFlag(false),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory with dated input files (YYYYMMDD_vendas.csv, YYYYMMDD_estoque.csv)",
						Value:   "./data/uploads/stock_health",
						EnvVars: []string{"STOCK_HEALTH_INPUT_DIR"},
					},
					&cli.StringFlag{
						Name:    "out",
						Usage:   "Directory for per-date dashboard JSON files",
						Value:   "./data/dashboards",
						EnvVars: []string{"PIPELINE_OUTPUT_DIR"},
					},
					&cli.StringFlag{
						Name:    "report-dir",
						Usage:   "Also write a per-date alert CSV here",
						EnvVars: []string{"STOCK_HEALTH_REPORT_DIR"},
					},
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Fetch input files under this object storage prefix into --dir first",
						EnvVars: []string{"STOCK_HEALTH_PREFIX"},
					},
					&cli.StringFlag{
						Name:    "input-date-format",
						Usage:   "Date layout at the start of input filenames (Go layout)",
						Value:   "20060102",
						EnvVars: []string{"STOCK_HEALTH_INPUT_DATE_FORMAT"},
					},
					&cli.IntFlag{
						Name:    "expiry-window-days",
						Usage:   "Items expiring within this many days count as expiring",
						Value:   30,
						EnvVars: []string{"EXPIRY_WINDOW_DAYS"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of dates processed concurrently",
						Value:   runtime.NumCPU(),
						EnvVars: []string{"PIPELINE_WORKER_COUNT"},
					},
				),
				Action: runBatch,
			},
			{
				Name:  "seed-demo",
				Usage: "Generate synthetic demo fixtures and upload them to object storage",
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:    "sales-key",
						Value:   "demo/dados_demo_vendas.csv",
						EnvVars: []string{"DEMO_SALES_KEY"},
					},
					&cli.StringFlag{
						Name:    "stock-key",
						Value:   "demo/dados_demo_estoque.csv",
						EnvVars: []string{"DEMO_STOCK_KEY"},
					},
					&cli.IntFlag{
						Name:  "products",
						Usage: "Number of products to generate",
						Value: 40,
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Days of sales history to generate",
						Value: 30,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed (0 picks a random one)",
					},
				),
				Action: runSeedDemo,
			},
			{
				Name:   "migrate",
				Usage:  "Create the analysis run tables",
				Flags:  []cli.Flag{newDBURLFlag(true)},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stocksense failed")
	}
}
