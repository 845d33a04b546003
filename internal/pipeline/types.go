package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

// Pipeline defines the interface that all batch pipelines must implement
type Pipeline interface {
	// Name returns the unique identifier for this pipeline
	Name() string

	// Transform analyzes all files of one snapshot date
	Transform(ctx context.Context, date time.Time, files []string) (*domain.DashboardSnapshot, error)

	// GetSnapshotDate extracts the date from the filename
	GetSnapshotDate(filename string) (time.Time, error)

	// Validate checks if the input file is valid for this pipeline
	Validate(inputFile string) error
}

// Sink receives the snapshot produced for one date.
type Sink interface {
	Save(ctx context.Context, date time.Time, snapshot *domain.DashboardSnapshot) (string, error)
}

// PipelineConfig holds configuration for a pipeline instance
type PipelineConfig struct {
	Name        string
	WorkerCount int    // Number of dates processed concurrently
	OutputDir   string // Directory for per-date snapshots
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig(name string) PipelineConfig {
	return PipelineConfig{
		Name:        name,
		WorkerCount: 4,
		OutputDir:   "data/dashboards/" + name,
	}
}

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// PipelineRun tracks the processing of one snapshot date
type PipelineRun struct {
	PipelineName string
	Date         time.Time
	Files        []string
	Status       PipelineStatus
	OutputPath   string
	StockItems   int
	AlertCount   int
	StartedAt    time.Time
	CompletedAt  *time.Time
	ErrorMessage string
}
