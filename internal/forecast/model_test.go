package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_RequiresThreePoints(t *testing.T) {
	series := monthlySeries(month(2024, time.January), 100, 120)

	_, err := Forecast(series)
	var pipeErr *Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, ErrInsufficientData, pipeErr.Code)
}

func TestForecast_LinearSeriesExactTotals(t *testing.T) {
	// A perfectly linear series has zero residuals: predictions continue the
	// line and the interval collapses onto the point estimate.
	series := monthlySeries(month(2024, time.January), 100, 110, 120, 130, 140, 150)

	forecasts, err := Forecast(series)
	require.NoError(t, err)
	require.Len(t, forecasts, 5)

	// Future months predict 160, 170, ..., 270.
	expected := map[int]float64{1: 160, 3: 510, 6: 1110, 9: 1800, 12: 2580}
	for _, hf := range forecasts {
		assert.InDelta(t, expected[hf.Months], hf.Total, 1e-6, "horizon %d", hf.Months)
		assert.InDelta(t, hf.Total, hf.Lower, 1e-6, "horizon %d lower", hf.Months)
		assert.InDelta(t, hf.Total, hf.Upper, 1e-6, "horizon %d upper", hf.Months)
	}
}

func TestForecast_HorizonOrderAndMonotonicity(t *testing.T) {
	// Strictly increasing input: cumulative totals must be non-decreasing in
	// the horizon length.
	series := monthlySeries(month(2023, time.June), 200, 230, 245, 280, 310, 330, 360, 395)

	forecasts, err := Forecast(series)
	require.NoError(t, err)
	require.Len(t, forecasts, 5)

	for i, hf := range forecasts {
		assert.Equal(t, Horizons[i], hf.Months)
		if i > 0 {
			assert.GreaterOrEqual(t, hf.Total, forecasts[i-1].Total)
		}
	}
}

func TestForecast_IntervalContainment(t *testing.T) {
	series := monthlySeries(month(2023, time.January),
		520, 480, 610, 505, 570, 450, 530, 615, 490, 560, 500, 580, 540)

	forecasts, err := Forecast(series)
	require.NoError(t, err)

	for _, hf := range forecasts {
		assert.LessOrEqual(t, hf.Lower, hf.Total, "horizon %d", hf.Months)
		assert.LessOrEqual(t, hf.Total, hf.Upper, "horizon %d", hf.Months)
	}
}

func TestForecast_YearlySeasonalityRepeats(t *testing.T) {
	// Two years of data with a fixed December spike: the December prediction
	// must sit above its neighbors.
	totals := make([]float64, 0, 24)
	start := month(2022, time.January)
	for i := 0; i < 24; i++ {
		total := 100.0
		if start.AddDate(0, i, 0).Month() == time.December {
			total = 300.0
		}
		totals = append(totals, total)
	}
	series := monthlySeries(start, totals...)

	forecasts, err := Forecast(series)
	require.NoError(t, err)

	// Last observed month is 2023-12, so the 12-month horizon covers 2024-01
	// through 2024-12 and includes exactly one December spike; the 9-month
	// horizon (through 2024-09) includes none. The gap must reflect it.
	var h9, h12 float64
	for _, hf := range forecasts {
		switch hf.Months {
		case 9:
			h9 = hf.Total
		case 12:
			h12 = hf.Total
		}
	}
	assert.Greater(t, h12-h9*12.0/9.0, 50.0, "December seasonal spike missing from 12-month horizon")
}
