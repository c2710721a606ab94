package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// minTransactions is the minimum raw input size accepted by the pipeline.
	minTransactions = 6
	// minMonthlyPoints is the minimum cleaned series length for forecasting.
	minMonthlyPoints = 3
	// anomalyWindow is the number of preceding months a point is scored against.
	anomalyWindow = 3
	// anomalyThreshold is the stddev multiple beyond which a point is an anomaly.
	anomalyThreshold = 2.0
)

// Aggregate groups transactions by calendar month and sums amounts within each
// group. The result is sorted ascending by period with one point per distinct
// month; months without transactions are not synthesized. Aggregate is pure.
func Aggregate(transactions []Transaction) ([]MonthlyPoint, error) {
	if len(transactions) == 0 {
		return nil, newError(ErrData, "no transactions to aggregate")
	}

	totals := make(map[time.Time]decimal.Decimal)
	for _, tx := range transactions {
		date, err := time.Parse("2006-01-02", tx.Date)
		if err != nil {
			return nil, wrapError(ErrData, err, "invalid transaction date %q", tx.Date)
		}
		period := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[period] = totals[period].Add(tx.Amount)
	}

	series := make([]MonthlyPoint, 0, len(totals))
	for period, total := range totals {
		series = append(series, MonthlyPoint{Period: period, Total: total.InexactFloat64()})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period.Before(series[j].Period) })
	return series, nil
}

// FilterAnomalies removes outlier months from a monthly series. A point is an
// anomaly when its total falls more than two rolling standard deviations from
// the rolling mean of the three preceding months; the leading months, which
// have no complete window, are never flagged. Series shorter than six points
// are returned unchanged, as is any series where removal would leave fewer
// than three points. FilterAnomalies never fails: on any numeric degeneracy
// the original series is returned.
func FilterAnomalies(series []MonthlyPoint) []MonthlyPoint {
	if len(series) < minTransactions {
		return series
	}

	cleaned := make([]MonthlyPoint, 0, len(series))
	for i, pt := range series {
		if i < anomalyWindow {
			cleaned = append(cleaned, pt)
			continue
		}
		mean, stddev := windowStats(series[i-anomalyWindow : i])
		if stddev == 0 || math.IsNaN(stddev) {
			cleaned = append(cleaned, pt)
			continue
		}
		if pt.Total > mean+anomalyThreshold*stddev || pt.Total < mean-anomalyThreshold*stddev {
			continue
		}
		cleaned = append(cleaned, pt)
	}

	// Removal must never leave too little data to forecast.
	if len(cleaned) < minMonthlyPoints {
		return series
	}
	return cleaned
}

// windowStats returns the mean and sample standard deviation of the totals in
// window.
func windowStats(window []MonthlyPoint) (mean, stddev float64) {
	n := float64(len(window))
	if n < 2 {
		return 0, 0
	}
	var sum float64
	for _, pt := range window {
		sum += pt.Total
	}
	mean = sum / n
	var sumSq float64
	for _, pt := range window {
		d := pt.Total - mean
		sumSq += d * d
	}
	stddev = math.Sqrt(sumSq / (n - 1))
	return mean, stddev
}
