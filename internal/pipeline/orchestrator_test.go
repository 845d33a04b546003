package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

type fakePipeline struct {
	mu      sync.Mutex
	failOn  string
	batches map[string][]string
}

func (p *fakePipeline) Name() string { return "fake" }

func (p *fakePipeline) GetSnapshotDate(filename string) (time.Time, error) {
	if len(filename) < 8 {
		return time.Time{}, fmt.Errorf("no date in %s", filename)
	}
	return time.Parse("20060102", filename[:8])
}

func (p *fakePipeline) Validate(string) error { return nil }

func (p *fakePipeline) Transform(_ context.Context, date time.Time, files []string) (*domain.DashboardSnapshot, error) {
	key := date.Format("20060102")
	p.mu.Lock()
	p.batches[key] = files
	p.mu.Unlock()

	if key == p.failOn {
		return nil, errors.New("boom")
	}
	return &domain.DashboardSnapshot{
		ID:     key,
		Counts: domain.DashboardCounts{StockItems: len(files)},
		Alerts: []domain.Alert{{Kind: domain.AlertExcessStock}},
	}, nil
}

func TestGroupByDate(t *testing.T) {
	p := &fakePipeline{batches: map[string][]string{}}

	dates, byDate, err := GroupByDate(p, []string{
		"in/20240302_vendas.csv",
		"in/20240301_vendas.csv",
		"in/20240302_estoque.csv",
	})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Before(dates[1]))
	assert.Len(t, byDate[dates[1]], 2)

	_, _, err = GroupByDate(p, []string{"x.csv"})
	assert.Error(t, err)
}

func TestOrchestratorRun(t *testing.T) {
	out := t.TempDir()
	p := &fakePipeline{batches: map[string][]string{}, failOn: "20240302"}
	cfg := DefaultPipelineConfig(p.Name())
	cfg.OutputDir = out
	cfg.WorkerCount = 2

	runs, err := NewOrchestrator(cfg, nil).Run(context.Background(), p, []string{
		"20240301_vendas.csv",
		"20240301_estoque.csv",
		"20240302_vendas.csv",
		"20240303_vendas.csv",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-03-02")
	require.Len(t, runs, 3)

	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].StockItems)
	assert.Equal(t, 1, runs[0].AlertCount)
	assert.Equal(t, filepath.Join(out, "20240301.json"), runs[0].OutputPath)

	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.True(t, strings.Contains(runs[1].ErrorMessage, "boom"))
	assert.Equal(t, StatusCompleted, runs[2].Status)

	data, err := os.ReadFile(runs[2].OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "20240303"`)
}

func TestOrchestratorRunNoFiles(t *testing.T) {
	runs, err := NewOrchestrator(DefaultPipelineConfig("fake"), nil).Run(context.Background(), &fakePipeline{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, runs)
}
