// backend-go/internal/repository/stock_health_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/repository/postgres"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("analysis run not found")

const defaultRunLimit = 20

// AnalysisRunRepository records one summary row per dashboard computation.
// Creating a run with an existing id replaces it, so re-running a batch date
// keeps the latest result.
type AnalysisRunRepository interface {
	CreateRun(ctx context.Context, run *domain.AnalysisRun) error
	GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error)
}

type analysisRunRepository struct {
	db *postgres.DB
}

// NewAnalysisRunRepository stores runs in Postgres.
func NewAnalysisRunRepository(db *postgres.DB) AnalysisRunRepository {
	return &analysisRunRepository{db: db}
}

func (r *analysisRunRepository) CreateRun(ctx context.Context, run *domain.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, source, stock_items, sales_records, at_risk, excess, alert_count,
			critical_cutoff, attention_cutoff, excess_cutoff, created_at
		) VALUES (
			:id, :source, :stock_items, :sales_records, :at_risk, :excess, :alert_count,
			:critical_cutoff, :attention_cutoff, :excess_cutoff, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			stock_items = EXCLUDED.stock_items,
			sales_records = EXCLUDED.sales_records,
			at_risk = EXCLUDED.at_risk,
			excess = EXCLUDED.excess,
			alert_count = EXCLUDED.alert_count,
			critical_cutoff = EXCLUDED.critical_cutoff,
			attention_cutoff = EXCLUDED.attention_cutoff,
			excess_cutoff = EXCLUDED.excess_cutoff,
			created_at = EXCLUDED.created_at
	`

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, run); err != nil {
			return fmt.Errorf("error creating analysis run: %w", err)
		}
		return nil
	})
}

func (r *analysisRunRepository) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := `SELECT * FROM analysis_runs WHERE id = $1`

	var run domain.AnalysisRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error getting analysis run: %w", err)
	}
	return &run, nil
}

func (r *analysisRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := `
		SELECT *
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	runs := make([]domain.AnalysisRun, 0)
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("error listing analysis runs: %w", err)
	}
	return runs, nil
}

type memoryAnalysisRunRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.AnalysisRun
}

// NewMemoryAnalysisRunRepository keeps runs in process memory. It is used
// when no database is configured.
func NewMemoryAnalysisRunRepository() AnalysisRunRepository {
	return &memoryAnalysisRunRepository{runs: make(map[string]domain.AnalysisRun)}
}

func (r *memoryAnalysisRunRepository) CreateRun(ctx context.Context, run *domain.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *memoryAnalysisRunRepository) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

func (r *memoryAnalysisRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	r.mu.RLock()
	runs := make([]domain.AnalysisRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
