package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func TestMemoryAnalysisRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAnalysisRunRepository()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := &domain.AnalysisRun{
			ID:        fmt.Sprintf("run-%d", i),
			Source:    "upload",
			AtRisk:    i,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.CreateRun(ctx, run))
	}

	t.Run("newest first with limit", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-2", runs[0].ID)
		assert.Equal(t, "run-1", runs[1].ID)
	})

	t.Run("default limit", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})

	t.Run("get existing", func(t *testing.T) {
		run, err := repo.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, 1, run.AtRisk)
	})

	t.Run("rerun replaces", func(t *testing.T) {
		rerun := &domain.AnalysisRun{ID: "run-1", AtRisk: 99, CreatedAt: base.Add(5 * time.Hour)}
		require.NoError(t, repo.CreateRun(ctx, rerun))

		run, err := repo.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, 99, run.AtRisk)

		runs, err := repo.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "run-1", runs[0].ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetRun(ctx, "nope")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
