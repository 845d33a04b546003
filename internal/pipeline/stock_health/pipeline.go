package stock_health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
)

// ResolveAndClassify binds the stock table's columns, normalizes it, derives
// the percentile thresholds and classifies every row. It fails only when a
// required column cannot be bound; an empty table yields empty results.
func ResolveAndClassify(stock *domain.RawTable) (*Classification, error) {
	binding, err := ResolveColumns(stock, domain.DatasetStock)
	if err != nil {
		return nil, err
	}

	records, report := NormalizeStock(stock, binding)
	thresholds := ComputeThresholds(records)
	statuses := Classify(records, thresholds)

	return &Classification{
		Binding:    binding,
		Records:    records,
		Thresholds: thresholds,
		Statuses:   statuses,
		Alerts:     GenerateAlerts(records, statuses),
		Report:     report,
	}, nil
}

// ResolveSales binds and normalizes a sales table.
func ResolveSales(sales *domain.RawTable) (*SalesData, error) {
	binding, err := ResolveColumns(sales, domain.DatasetSales)
	if err != nil {
		return nil, err
	}

	records, report := NormalizeSales(sales, binding)
	return &SalesData{Binding: binding, Records: records, Report: report}, nil
}

// ForecastDemand projects demand for every stock product with sales history.
// Missing history is skipped silently; unmappable tables fail.
func ForecastDemand(sales, stock *domain.RawTable) ([]domain.ForecastResult, error) {
	salesData, err := ResolveSales(sales)
	if err != nil {
		return nil, err
	}

	binding, err := ResolveColumns(stock, domain.DatasetStock)
	if err != nil {
		return nil, err
	}
	records, _ := NormalizeStock(stock, binding)

	return Forecast(salesData.Records, records), nil
}

// Config holds configuration for the batch stock health pipeline.
type Config struct {
	InputDateFormat  string // date layout at the start of input filenames
	ExpiryWindowDays int
}

// StockHealthPipeline runs the analysis over dated sales/stock file pairs.
type StockHealthPipeline struct {
	config Config
}

// NewStockHealthPipeline creates a new stock health pipeline instance.
func NewStockHealthPipeline(cfg Config) *StockHealthPipeline {
	if cfg.InputDateFormat == "" {
		cfg.InputDateFormat = "20060102"
	}
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = DefaultExpiryWindowDays
	}
	return &StockHealthPipeline{config: cfg}
}

// Name returns the unique identifier of this pipeline.
func (p *StockHealthPipeline) Name() string {
	return "stock_health"
}

// GetSnapshotDate extracts the snapshot date from the start of the filename.
func (p *StockHealthPipeline) GetSnapshotDate(filename string) (time.Time, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	layout := p.config.InputDateFormat
	if len(base) < len(layout) {
		return time.Time{}, fmt.Errorf("filename %s does not contain date with layout %s", filename, layout)
	}

	return time.Parse(layout, base[:len(layout)])
}

// Validate performs basic validation on the input file.
func (p *StockHealthPipeline) Validate(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	if _, err := ingest.DetectFormat(inputFile); err != nil {
		return fmt.Errorf("input file %s: %w", inputFile, err)
	}
	return nil
}

// Transform loads one date's files, pairs the sales and stock tables and
// builds the dashboard for that date.
func (p *StockHealthPipeline) Transform(ctx context.Context, date time.Time, files []string) (*domain.DashboardSnapshot, error) {
	sales, stock, err := p.pairTables(ctx, files)
	if err != nil {
		return nil, err
	}

	return BuildSnapshot(sales, stock, SnapshotOptions{
		ID:               fmt.Sprintf("%s-%s", p.Name(), date.Format("20060102")),
		Source:           "batch",
		AsOf:             date,
		ExpiryWindowDays: p.config.ExpiryWindowDays,
	})
}

// pairTables loads files and assigns each to the sales or stock side. A
// filename hint wins over column based detection.
func (p *StockHealthPipeline) pairTables(ctx context.Context, files []string) (*domain.RawTable, *domain.RawTable, error) {
	var sales, stock *domain.RawTable
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		table, err := ingest.LoadFile(f)
		if err != nil {
			return nil, nil, err
		}

		kind := KindFromFilename(f)
		if kind == domain.DatasetUnknown {
			kind = DetectDatasetKind(table)
		}

		switch kind {
		case domain.DatasetSales:
			if sales != nil {
				return nil, nil, fmt.Errorf("more than one sales file: %s", f)
			}
			sales = table
		case domain.DatasetStock:
			if stock != nil {
				return nil, nil, fmt.Errorf("more than one stock file: %s", f)
			}
			stock = table
		default:
			return nil, nil, fmt.Errorf("cannot tell whether %s holds sales or stock (detected %s)", f, kind)
		}
	}

	if sales == nil || stock == nil {
		return nil, nil, fmt.Errorf("expected one sales and one stock file, got %d file(s)", len(files))
	}
	return sales, stock, nil
}

var (
	salesNameHints = []string{"venda", "sales"}
	stockNameHints = []string{"estoque", "stock", "inventario", "inventory"}
)

// KindFromFilename guesses the dataset kind from words in the file name.
func KindFromFilename(name string) domain.DatasetKind {
	base := domain.NormalizeColumnName(filepath.Base(name))
	isSales := containsAny([]string{base}, salesNameHints)
	isStock := containsAny([]string{base}, stockNameHints)
	switch {
	case isSales && !isStock:
		return domain.DatasetSales
	case isStock && !isSales:
		return domain.DatasetStock
	default:
		return domain.DatasetUnknown
	}
}
