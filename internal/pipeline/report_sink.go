package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
	"github.com/andresuchdata/stocksense/backend-go/pkg/logger"
)

var reportHeader = []string{"tipo", "produto", "quantidade_atual", "dias_restantes", "dias_parado", "demanda_diaria", "dias_ate_ruptura"}

// ReportSink writes each date's alerts as an action list CSV at
// <dir>/<YYYYMMDD>_alertas.csv, with the product's demand forecast when one exists.
type ReportSink struct {
	dir string
}

// NewReportSink creates a ReportSink rooted at dir.
func NewReportSink(dir string) *ReportSink {
	return &ReportSink{dir: dir}
}

// Save implements Sink.
func (s *ReportSink) Save(_ context.Context, date time.Time, snapshot *domain.DashboardSnapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_alertas.csv", date.Format("20060102")))
	if err := writeReport(path, snapshot); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	logger.Log.Debug().Str("path", path).Int("rows", len(snapshot.Alerts)).Msg("alert report written")
	return path, nil
}

func writeReport(path string, snapshot *domain.DashboardSnapshot) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	forecasts := make(map[string]domain.ForecastResult, len(snapshot.Forecasts))
	for _, f := range snapshot.Forecasts {
		forecasts[f.Product] = f
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(reportHeader); err != nil {
		return err
	}
	for _, a := range snapshot.Alerts {
		record := []string{
			domain.AlertKindLabel(a.Kind),
			a.Product,
			strconv.FormatFloat(a.CurrentQuantity, 'f', -1, 64),
			optionalInt(a.DaysRemaining),
			optionalInt(a.DaysStale),
			"",
			"",
		}
		if f, ok := forecasts[a.Product]; ok {
			record[5] = strconv.FormatFloat(f.ProjectedDailyDemand, 'f', 2, 64)
			if f.Exhausts() {
				record[6] = strconv.FormatFloat(f.DaysUntilExhausted, 'f', 1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// MultiSink saves to every sink in order. The first sink's path is reported.
type MultiSink []Sink

// Save implements Sink.
func (m MultiSink) Save(ctx context.Context, date time.Time, snapshot *domain.DashboardSnapshot) (string, error) {
	if len(m) == 0 {
		return "", errors.New("no sinks configured")
	}

	var first string
	for i, s := range m {
		path, err := s.Save(ctx, date, snapshot)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = path
		}
	}
	return first, nil
}
