package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline/stock_health"
	"github.com/andresuchdata/stocksense/backend-go/internal/repository"
	"github.com/andresuchdata/stocksense/backend-go/internal/service"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

// recordingSink saves snapshots and records one analysis run per date.
type recordingSink struct {
	pipeline.Sink
	runs repository.AnalysisRunRepository
}

func (s *recordingSink) Save(ctx context.Context, date time.Time, snapshot *domain.DashboardSnapshot) (string, error) {
	out, err := s.Sink.Save(ctx, date, snapshot)
	if err != nil {
		return "", err
	}
	if err := s.runs.CreateRun(ctx, service.RunFromSnapshot(snapshot)); err != nil {
		logger.Log.Warn().Err(err).Str("dashboard_id", snapshot.ID).Msg("record run failed")
	}
	return out, nil
}

func runBatch(c *cli.Context) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	dir := c.String("dir")
	if prefix := c.String("prefix"); prefix != "" {
		client, err := newStorage(c)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		d, err := newDownloader(client, dir)
		if err != nil {
			return err
		}
		fetched, err := d.download(ctx, prefix)
		if err != nil {
			return err
		}
		logger.Log.Info().Str("prefix", prefix).Int("files", len(fetched)).Msg("fetched input files")
	}

	files, err := listInputFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Log.Info().Str("dir", dir).Msg("no input files found; nothing to process")
		return nil
	}

	pipelineImpl := stock_health.NewStockHealthPipeline(stock_health.Config{
		InputDateFormat:  c.String("input-date-format"),
		ExpiryWindowDays: c.Int("expiry-window-days"),
	})

	pCfg := pipeline.DefaultPipelineConfig(pipelineImpl.Name())
	pCfg.OutputDir = c.String("out")
	pCfg.WorkerCount = c.Int("workers")

	var sink pipeline.Sink = pipeline.NewFileSink(pCfg.OutputDir)
	if reportDir := c.String("report-dir"); reportDir != "" {
		sink = pipeline.MultiSink{sink, pipeline.NewReportSink(reportDir)}
	}
	if c.String("db-url") != "" {
		db, err := openDB(c)
		if err != nil {
			return err
		}
		defer db.Close()
		sink = &recordingSink{Sink: sink, runs: repository.NewAnalysisRunRepository(db)}
	}

	runs, err := pipeline.NewOrchestrator(pCfg, sink).Run(ctx, pipelineImpl, files)
	for _, run := range runs {
		logger.Log.Info().
			Str("date", run.Date.Format("2006-01-02")).
			Str("status", string(run.Status)).
			Str("output", run.OutputPath).
			Int("alerts", run.AlertCount).
			Msg("batch date finished")
	}
	if err != nil {
		return fmt.Errorf("stock health pipeline run failed: %w", err)
	}

	logger.Log.Info().Int("dates", len(runs)).Msg("stock health pipeline completed")
	return nil
}

// listInputFiles returns every supported file under dir, sorted by path.
func listInputFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := ingest.DetectFormat(path); err == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return files, nil
}
