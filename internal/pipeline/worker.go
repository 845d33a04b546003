package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

// Worker processes the files of one snapshot date for a specific pipeline
type Worker struct {
	pipeline Pipeline
	config   PipelineConfig
	sink     Sink
}

// NewWorker creates a new pipeline worker
func NewWorker(pipeline Pipeline, config PipelineConfig, sink Sink) *Worker {
	return &Worker{
		pipeline: pipeline,
		config:   config,
		sink:     sink,
	}
}

// ProcessBatch validates, transforms and saves the files of one date.
func (w *Worker) ProcessBatch(ctx context.Context, date time.Time, files []string) (PipelineRun, error) {
	run := PipelineRun{
		PipelineName: w.pipeline.Name(),
		Date:         date,
		Files:        files,
		Status:       StatusProcessing,
		StartedAt:    time.Now(),
	}
	log := logger.Component("batch").With().
		Str("pipeline", w.pipeline.Name()).
		Str("date", date.Format("2006-01-02")).
		Logger()
	log.Info().Int("files", len(files)).Msg("starting batch")

	for _, f := range files {
		if err := w.pipeline.Validate(f); err != nil {
			return w.fail(run, fmt.Errorf("validation failed: %w", err))
		}
	}

	snapshot, err := w.pipeline.Transform(ctx, date, files)
	if err != nil {
		return w.fail(run, fmt.Errorf("transformation failed: %w", err))
	}

	path, err := w.sink.Save(ctx, date, snapshot)
	if err != nil {
		return w.fail(run, fmt.Errorf("failed to save snapshot: %w", err))
	}

	now := time.Now()
	run.Status = StatusCompleted
	run.CompletedAt = &now
	run.OutputPath = path
	run.StockItems = snapshot.Counts.StockItems
	run.AlertCount = len(snapshot.Alerts)

	log.Info().
		Str("output", path).
		Int("stock_items", run.StockItems).
		Int("alerts", run.AlertCount).
		Dur("took", now.Sub(run.StartedAt)).
		Msg("batch completed")
	return run, nil
}

func (w *Worker) fail(run PipelineRun, err error) (PipelineRun, error) {
	now := time.Now()
	run.Status = StatusFailed
	run.CompletedAt = &now
	run.ErrorMessage = err.Error()
	log := logger.Component("batch")
	log.Error().
		Err(err).
		Str("pipeline", run.PipelineName).
		Str("date", run.Date.Format("2006-01-02")).
		Msg("batch failed")
	return run, err
}

// FileSink writes each snapshot to <dir>/<YYYYMMDD>.json.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Save implements Sink.
func (s *FileSink) Save(_ context.Context, date time.Time, snapshot *domain.DashboardSnapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, date.Format("20060102")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
