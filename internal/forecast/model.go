package forecast

import (
	"math"
	"time"
)

const (
	// forecastMonths is how far beyond the last observed month the model predicts.
	forecastMonths = 12
	// intervalZ is the normal quantile for the symmetric 95% prediction interval.
	intervalZ = 1.96
)

// prediction is one future month's point estimate with its interval bounds.
type prediction struct {
	period time.Time
	value  float64
	lower  float64
	upper  float64
}

// Forecast fits a seasonal additive model over the cleaned monthly series and
// returns cumulative totals with 95% prediction intervals for each fixed
// horizon. The model combines a least-squares linear trend with yearly
// (calendar-month) seasonal components; the interval width comes from the
// residual standard deviation.
//
// Each horizon total is the sum of the trailing h predicted rows at or before
// the horizon cutoff (last observed month + h months); interval bounds are the
// sums of the corresponding per-row bounds. Horizons are never re-fitted
// individually.
func Forecast(series []MonthlyPoint) ([]HorizonForecast, error) {
	if len(series) < minMonthlyPoints {
		return nil, newError(ErrInsufficientData,
			"forecasting requires at least %d monthly points, got %d", minMonthlyPoints, len(series))
	}

	predictions, err := fitAndPredict(series)
	if err != nil {
		return nil, err
	}

	lastPeriod := series[len(series)-1].Period
	forecasts := make([]HorizonForecast, 0, len(Horizons))
	for _, h := range Horizons {
		cutoff := lastPeriod.AddDate(0, h, 0)
		var window []prediction
		for _, p := range predictions {
			if !p.period.After(cutoff) {
				window = append(window, p)
			}
		}
		if len(window) > h {
			window = window[len(window)-h:]
		}
		if len(window) == 0 {
			return nil, newError(ErrForecastFailed, "no predicted rows within %d-month horizon", h)
		}

		var total, lower, upper float64
		for _, p := range window {
			total += p.value
			lower += p.lower
			upper += p.upper
		}
		forecasts = append(forecasts, HorizonForecast{Months: h, Total: total, Lower: lower, Upper: upper})
	}
	return forecasts, nil
}

// fitAndPredict fits the additive model and extrapolates forecastMonths beyond
// the last observed month.
func fitAndPredict(series []MonthlyPoint) ([]prediction, error) {
	n := len(series)

	slope, intercept, ok := fitTrend(series)
	if !ok {
		return nil, newError(ErrForecastFailed, "degenerate series: trend fit has no solution")
	}

	// Yearly seasonality: average detrended residual per calendar month.
	seasonalSum := make(map[time.Month]float64)
	seasonalCount := make(map[time.Month]int)
	for i, pt := range series {
		residual := pt.Total - (intercept + slope*float64(i))
		seasonalSum[pt.Period.Month()] += residual
		seasonalCount[pt.Period.Month()]++
	}
	seasonal := func(m time.Month) float64 {
		if c := seasonalCount[m]; c > 0 {
			return seasonalSum[m] / float64(c)
		}
		return 0
	}

	// Residual spread after trend and seasonality drives the interval width.
	var sumSq float64
	for i, pt := range series {
		e := pt.Total - (intercept + slope*float64(i) + seasonal(pt.Period.Month()))
		sumSq += e * e
	}
	sigma := math.Sqrt(sumSq / float64(n-1))

	lastPeriod := series[n-1].Period
	predictions := make([]prediction, 0, forecastMonths)
	for k := 1; k <= forecastMonths; k++ {
		period := lastPeriod.AddDate(0, k, 0)
		value := intercept + slope*float64(n-1+k) + seasonal(period.Month())
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, newError(ErrForecastFailed, "model produced a non-finite prediction for %s",
				period.Format("2006-01"))
		}
		band := intervalZ * sigma
		predictions = append(predictions, prediction{
			period: period,
			value:  value,
			lower:  value - band,
			upper:  value + band,
		})
	}
	return predictions, nil
}

// fitTrend computes the least-squares line through the series totals where
// x = 0, 1, 2, ... (the index).
func fitTrend(series []MonthlyPoint) (slope, intercept float64, ok bool) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumX2 float64
	for i, pt := range series {
		x := float64(i)
		sumX += x
		sumY += pt.Total
		sumXY += x * pt.Total
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
