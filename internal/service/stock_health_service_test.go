package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline/stock_health"
	"github.com/andresuchdata/stocksense/backend-go/internal/storage"
)

const (
	salesCSV = `data,produto,quantidade
2024-03-01,A,10
2024-03-02,A,12
2024-03-03,A,14
2024-03-01,B,5
sem data,B,3
`
	stockCSV = `produto;estoque;validade
A;1;2024-03-10
B;5;
C;8;
D;50;
E;120;
F;200;
`
)

type recordingObserver struct {
	sources []string
	errs    []error
}

func (o *recordingObserver) ObserveBuild(source string, took time.Duration, err error) {
	o.sources = append(o.sources, source)
	o.errs = append(o.errs, err)
}

func newTestService(t *testing.T) (*StockHealthService, *recordingObserver, storage.ObjectStorage) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.PutObject(ctx, "demo/vendas.csv", []byte(salesCSV)))
	require.NoError(t, store.PutObject(ctx, "demo/estoque.csv", []byte(stockCSV)))

	observer := &recordingObserver{}
	svc := NewStockHealthService(store, nil, nil, nil, Options{
		DemoSalesKey: "demo/vendas.csv",
		DemoStockKey: "demo/estoque.csv",
		Observer:     observer,
		Now:          func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) },
	})
	return svc, observer, store
}

func TestDemoBuildsAndPersistsDashboard(t *testing.T) {
	ctx := context.Background()
	svc, observer, _ := newTestService(t)

	snapshot, err := svc.Demo(ctx)
	require.NoError(t, err)

	assert.Equal(t, SourceDemo, snapshot.Source)
	assert.Equal(t, 1, snapshot.Counts.AtRisk)
	assert.Equal(t, 1, snapshot.Counts.Attention)
	assert.Equal(t, 3, snapshot.Counts.Normal)
	assert.Equal(t, 1, snapshot.Counts.Excess)
	assert.Equal(t, 1, snapshot.Counts.Expiring)
	assert.Equal(t, 1, snapshot.Counts.Opportunities)
	assert.Equal(t, []string{"A"}, snapshot.SuggestedProducts)
	assert.Equal(t, 1, snapshot.RejectedSalesRows)
	assert.Equal(t, []string{"01/03", "02/03", "03/03"}, snapshot.Sales.Labels)
	assert.Equal(t, []float64{15, 12, 14}, snapshot.Sales.Values)
	require.Len(t, snapshot.Alerts, 2)
	assert.Equal(t, domain.AlertImminentStockout, snapshot.Alerts[0].Kind)
	assert.Equal(t, domain.AlertExcessStock, snapshot.Alerts[1].Kind)

	stored, err := svc.GetDashboard(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, stored.ID)
	assert.Equal(t, snapshot.Counts, stored.Counts)

	runs, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, snapshot.ID, runs[0].ID)
	assert.Equal(t, 2, runs[0].AlertCount)

	assert.Equal(t, []string{SourceDemo}, observer.sources)
	assert.NoError(t, observer.errs[0])
}

func TestProcessErrors(t *testing.T) {
	ctx := context.Background()
	svc, observer, _ := newTestService(t)

	t.Run("swapped inputs", func(t *testing.T) {
		_, err := svc.Process(ctx,
			UploadedFile{Name: "estoque.csv", Data: []byte(stockCSV)},
			UploadedFile{Name: "vendas.csv", Data: []byte(salesCSV)},
		)
		var inverted *stock_health.InvertedInputError
		assert.True(t, errors.As(err, &inverted))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.Process(ctx,
			UploadedFile{Name: "vendas.pdf", Data: []byte("%PDF")},
			UploadedFile{Name: "estoque.csv", Data: []byte(stockCSV)},
		)
		var inputErr *InputFileError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, domain.DatasetSales, inputErr.Input)
		assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := svc.Process(ctx,
			UploadedFile{Name: "vendas.csv", Data: []byte(salesCSV)},
			UploadedFile{Name: "estoque.csv", Data: []byte("estoque\n4\n")},
		)
		var schemaErr *stock_health.SchemaResolutionError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, domain.RoleProductID, schemaErr.Role)
	})

	assert.Len(t, observer.errs, 3)
	for _, err := range observer.errs {
		assert.Error(t, err)
	}
}

func TestGetDashboardNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.GetDashboard(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrDashboardNotFound)

	_, err = svc.GetDashboard(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrDashboardNotFound)
}

func TestStockItemsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	all, err := svc.StockItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	critical, err := svc.StockItems(ctx, domain.StatusCritical)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "A", critical[0].Product)
	assert.Equal(t, "Crítico", critical[0].StatusLabel)
}

func TestDemoMissingFixture(t *testing.T) {
	store, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	svc := NewStockHealthService(store, nil, nil, nil, Options{
		DemoSalesKey: "demo/none.csv",
		DemoStockKey: "demo/none.csv",
	})

	_, err = svc.Demo(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
