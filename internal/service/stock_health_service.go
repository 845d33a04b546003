package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stocksense/backend-go/internal/cache"
	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/internal/ingest"
	"github.com/andresuchdata/stocksense/backend-go/internal/pipeline/stock_health"
	"github.com/andresuchdata/stocksense/backend-go/internal/repository"
	"github.com/andresuchdata/stocksense/backend-go/internal/storage"
)

const (
	SourceUpload = "upload"
	SourceDemo   = "demo"

	dashboardPrefix = "dashboards"
)

// ErrDashboardNotFound is returned when no stored dashboard has the id.
var ErrDashboardNotFound = errors.New("dashboard not found")

// UploadedFile is one tabular input as received from a client.
type UploadedFile struct {
	Name string
	Data []byte
}

// InputFileError wraps a failure to read one of the input files.
type InputFileError struct {
	Input domain.DatasetKind
	Name  string
	Err   error
}

func (e *InputFileError) Error() string {
	return fmt.Sprintf("could not read %s file %q: %v", e.Input, e.Name, e.Err)
}

func (e *InputFileError) Unwrap() error {
	return e.Err
}

// BuildObserver is notified after every dashboard computation.
type BuildObserver interface {
	ObserveBuild(source string, took time.Duration, err error)
}

// Options configures StockHealthService.
type Options struct {
	DemoSalesKey     string
	DemoStockKey     string
	ExpiryWindowDays int
	Observer         BuildObserver
	Now              func() time.Time
}

// StockHealthService runs the stock health analysis for uploads and stored
// fixtures, and keeps the resulting dashboards.
type StockHealthService struct {
	store      storage.ObjectStorage
	dashboards cache.DashboardCache
	items      cache.StockItemsCache
	runs       repository.AnalysisRunRepository
	opts       Options
}

func NewStockHealthService(
	store storage.ObjectStorage,
	dashboards cache.DashboardCache,
	items cache.StockItemsCache,
	runs repository.AnalysisRunRepository,
	opts Options,
) *StockHealthService {
	if dashboards == nil {
		dashboards = cache.NewNoopDashboardCache()
	}
	if items == nil {
		items = cache.NewNoopStockItemsCache()
	}
	if runs == nil {
		runs = repository.NewMemoryAnalysisRunRepository()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &StockHealthService{
		store:      store,
		dashboards: dashboards,
		items:      items,
		runs:       runs,
		opts:       opts,
	}
}

// Process analyzes an uploaded sales/stock pair.
func (s *StockHealthService) Process(ctx context.Context, sales, stock UploadedFile) (*domain.DashboardSnapshot, error) {
	return s.analyze(ctx, SourceUpload, sales, stock)
}

// Demo analyzes the demo fixtures held in object storage.
func (s *StockHealthService) Demo(ctx context.Context) (*domain.DashboardSnapshot, error) {
	sales, stock, err := s.loadDemoFiles(ctx)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, SourceDemo, sales, stock)
}

func (s *StockHealthService) analyze(ctx context.Context, source string, sales, stock UploadedFile) (snapshot *domain.DashboardSnapshot, err error) {
	started := time.Now()
	defer func() {
		if s.opts.Observer != nil {
			s.opts.Observer.ObserveBuild(source, time.Since(started), err)
		}
	}()

	key := cache.ContentKey([]byte(source), sales.Data, stock.Data)
	if cached, ok, cerr := s.dashboards.Get(ctx, key); cerr == nil && ok {
		return cached, nil
	} else if cerr != nil {
		log.Warn().Err(cerr).Msg("stock health: cache get dashboard failed")
	}

	salesTable, stockTable, err := parsePair(ctx, sales, stock)
	if err != nil {
		return nil, err
	}

	snapshot, err = stock_health.BuildSnapshot(salesTable, stockTable, stock_health.SnapshotOptions{
		ID:               uuid.NewString(),
		Source:           source,
		AsOf:             s.opts.Now(),
		ExpiryWindowDays: s.opts.ExpiryWindowDays,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dashboard_id", snapshot.ID).
		Str("source", source).
		Int("stock_items", snapshot.Counts.StockItems).
		Int("sales_records", snapshot.Counts.SalesRecords).
		Int("alerts", len(snapshot.Alerts)).
		Int("rejected_sales_rows", snapshot.RejectedSalesRows).
		Int("substituted_stock_qty", snapshot.SubstitutedStockQty).
		Dur("took", time.Since(started)).
		Msg("stock health: dashboard built")

	s.persist(ctx, snapshot)

	if err := s.dashboards.Set(ctx, key, snapshot); err != nil {
		log.Warn().Err(err).Msg("stock health: cache set dashboard failed")
	}

	return snapshot, nil
}

// persist stores the snapshot and its run summary. Failures are logged only;
// the caller already has the computed dashboard.
func (s *StockHealthService) persist(ctx context.Context, snapshot *domain.DashboardSnapshot) {
	if s.store != nil {
		payload, err := json.Marshal(snapshot)
		if err == nil {
			err = s.store.PutObject(ctx, dashboardKey(snapshot.ID), payload)
		}
		if err != nil {
			log.Warn().Err(err).Str("dashboard_id", snapshot.ID).Msg("stock health: store dashboard failed")
		}
	}

	if err := s.runs.CreateRun(ctx, RunFromSnapshot(snapshot)); err != nil {
		log.Warn().Err(err).Str("dashboard_id", snapshot.ID).Msg("stock health: record run failed")
	}
}

// GetDashboard loads a stored dashboard.
func (s *StockHealthService) GetDashboard(ctx context.Context, id string) (*domain.DashboardSnapshot, error) {
	if _, err := uuid.Parse(id); err != nil || s.store == nil {
		return nil, ErrDashboardNotFound
	}

	payload, err := s.store.GetObject(ctx, dashboardKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDashboardNotFound
		}
		return nil, err
	}

	var snapshot domain.DashboardSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode dashboard %s: %w", id, err)
	}
	return &snapshot, nil
}

// ListRuns returns the most recent analysis runs.
func (s *StockHealthService) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	return s.runs.ListRuns(ctx, limit)
}

// StockItems classifies the demo stock fixture, optionally keeping one status.
func (s *StockHealthService) StockItems(ctx context.Context, status domain.StockStatus) ([]domain.ClassifiedStockItem, error) {
	source := s.opts.DemoStockKey
	if items, ok, err := s.items.GetItems(ctx, source, status); err == nil && ok {
		return items, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("stock health: cache get items failed")
	}

	file, err := s.loadFile(ctx, domain.DatasetStock, source)
	if err != nil {
		return nil, err
	}
	table, err := parseFile(domain.DatasetStock, file)
	if err != nil {
		return nil, err
	}

	cls, err := stock_health.ResolveAndClassify(table)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ClassifiedStockItem, 0, len(cls.Records))
	for _, item := range cls.Items() {
		if status == "" || item.Status == status {
			items = append(items, item)
		}
	}

	if err := s.items.SetItems(ctx, source, status, items); err != nil {
		log.Warn().Err(err).Msg("stock health: cache set items failed")
	}
	return items, nil
}

func (s *StockHealthService) loadDemoFiles(ctx context.Context) (UploadedFile, UploadedFile, error) {
	var sales, stock UploadedFile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.loadFile(gctx, domain.DatasetSales, s.opts.DemoSalesKey)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = s.loadFile(gctx, domain.DatasetStock, s.opts.DemoStockKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return UploadedFile{}, UploadedFile{}, err
	}
	return sales, stock, nil
}

func (s *StockHealthService) loadFile(ctx context.Context, kind domain.DatasetKind, key string) (UploadedFile, error) {
	if s.store == nil {
		return UploadedFile{}, fmt.Errorf("no storage configured for %s fixture", kind)
	}
	data, err := s.store.GetObject(ctx, key)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("load %s fixture %s: %w", kind, key, err)
	}
	return UploadedFile{Name: path.Base(key), Data: data}, nil
}

// parsePair loads both files concurrently.
func parsePair(ctx context.Context, sales, stock UploadedFile) (*domain.RawTable, *domain.RawTable, error) {
	var salesTable, stockTable *domain.RawTable
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		salesTable, err = parseFile(domain.DatasetSales, sales)
		return err
	})
	g.Go(func() error {
		var err error
		stockTable, err = parseFile(domain.DatasetStock, stock)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return salesTable, stockTable, nil
}

func parseFile(kind domain.DatasetKind, file UploadedFile) (*domain.RawTable, error) {
	table, err := ingest.Load(file.Name, bytes.NewReader(file.Data))
	if err != nil {
		return nil, &InputFileError{Input: kind, Name: file.Name, Err: err}
	}
	return table, nil
}

// RunFromSnapshot summarizes a snapshot for the run history.
func RunFromSnapshot(snapshot *domain.DashboardSnapshot) *domain.AnalysisRun {
	return &domain.AnalysisRun{
		ID:              snapshot.ID,
		Source:          snapshot.Source,
		StockItems:      snapshot.Counts.StockItems,
		SalesRecords:    snapshot.Counts.SalesRecords,
		AtRisk:          snapshot.Counts.AtRisk,
		Excess:          snapshot.Counts.Excess,
		AlertCount:      len(snapshot.Alerts),
		CriticalCutoff:  snapshot.Thresholds.CriticalCutoff,
		AttentionCutoff: snapshot.Thresholds.AttentionCutoff,
		ExcessCutoff:    snapshot.Thresholds.ExcessCutoff,
		CreatedAt:       snapshot.GeneratedAt,
	}
}

func dashboardKey(id string) string {
	return path.Join(dashboardPrefix, id+".json")
}
