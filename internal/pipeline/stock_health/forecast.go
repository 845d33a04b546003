package stock_health

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

const (
	// MinTrendSamples is the fewest sales rows needed to fit a trend.
	// Below it demand falls back to the plain mean.
	MinTrendSamples = 3
	// ForecastHorizonDays is how many future day offsets are averaged.
	ForecastHorizonDays = 7
)

// Trend is a fitted line y = Intercept + Slope*x.
type Trend struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// FitTrend fits an ordinary least squares line of ys on xs. When every x is
// the same the slope is 0 and the intercept is the mean of ys.
func FitTrend(xs, ys []float64) Trend {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return Trend{}
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Trend{Intercept: meanY}
	}

	slope := sxy / sxx
	return Trend{Slope: slope, Intercept: meanY - slope*meanX}
}

// Projection is the short-horizon demand estimate for one series.
type Projection struct {
	Method  domain.ForecastMethod
	Daily   float64
	Slope   float64
	Samples int
	// Next holds one projected value per day of the horizon.
	Next []float64
}

// ProjectDemand projects daily demand from one product's sales history. The
// history need not be sorted. Rows are the unit of evidence: two sales on the
// same day are two samples at the same offset.
func ProjectDemand(history []domain.SalesRecord) Projection {
	if len(history) == 0 {
		return Projection{Method: domain.ForecastMean}
	}

	sorted := append([]domain.SalesRecord(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	first := sorted[0].Date
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, r := range sorted {
		xs[i] = dayOffset(first, r.Date)
		ys[i] = r.Quantity
	}

	return projectSeries(xs, ys)
}

func projectSeries(xs, ys []float64) Projection {
	n := len(ys)
	if n < MinTrendSamples {
		var sum float64
		for _, y := range ys {
			sum += y
		}
		mean := sum / float64(n)
		next := make([]float64, ForecastHorizonDays)
		for i := range next {
			next[i] = mean
		}
		return Projection{Method: domain.ForecastMean, Daily: mean, Samples: n, Next: next}
	}

	trend := FitTrend(xs, ys)
	last := xs[n-1]
	next := make([]float64, ForecastHorizonDays)
	var sum float64
	for i := range next {
		next[i] = trend.At(last + float64(i+1))
		sum += next[i]
	}

	return Projection{
		Method:  domain.ForecastLinearTrend,
		Daily:   sum / ForecastHorizonDays,
		Slope:   trend.Slope,
		Samples: n,
		Next:    next,
	}
}

// DaysUntilExhausted divides stock by daily demand; non-positive demand
// never exhausts and yields +Inf.
func DaysUntilExhausted(stock, daily float64) float64 {
	if daily <= 0 {
		return math.Inf(1)
	}
	return stock / daily
}

// Forecast projects demand for each distinct product of the stock records, in
// first-occurrence order. The first row of a product supplies its current
// stock. Products without any sales history are skipped.
func Forecast(sales []domain.SalesRecord, stock []domain.StockRecord) []domain.ForecastResult {
	history := make(map[string][]domain.SalesRecord)
	for _, s := range sales {
		history[s.Product] = append(history[s.Product], s)
	}

	seen := make(map[string]bool, len(stock))
	results := make([]domain.ForecastResult, 0)
	for _, item := range stock {
		if seen[item.Product] {
			continue
		}
		seen[item.Product] = true

		rows, ok := history[item.Product]
		if !ok || len(rows) == 0 {
			continue
		}

		proj := ProjectDemand(rows)
		results = append(results, domain.ForecastResult{
			Product:              item.Product,
			CurrentStock:         item.QuantityOnHand,
			ProjectedDailyDemand: proj.Daily,
			DaysUntilExhausted:   DaysUntilExhausted(item.QuantityOnHand, proj.Daily),
			Method:               proj.Method,
			SampleSize:           proj.Samples,
			Slope:                proj.Slope,
		})
	}

	return results
}

// DailyTotals sums sales per calendar date, ascending.
func DailyTotals(sales []domain.SalesRecord) ([]time.Time, []float64) {
	totals := make(map[time.Time]float64)
	for _, s := range sales {
		totals[s.Date] += s.Quantity
	}

	dates := make([]time.Time, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = totals[d]
	}
	return dates, values
}

// ProjectTotals projects the aggregate daily series forward over the horizon.
func ProjectTotals(dates []time.Time, values []float64) Projection {
	if len(dates) == 0 || len(dates) != len(values) {
		return Projection{Method: domain.ForecastMean}
	}

	xs := make([]float64, len(dates))
	for i, d := range dates {
		xs[i] = dayOffset(dates[0], d)
	}
	return projectSeries(xs, values)
}

func dayOffset(from, to time.Time) float64 {
	return math.Round(to.Sub(from).Hours() / 24)
}
