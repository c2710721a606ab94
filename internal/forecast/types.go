// Package forecast implements the expense forecast pipeline: monthly
// aggregation, anomaly filtering, seasonal model fitting with horizon
// extraction, and a fingerprint-keyed result cache with currency conversion.
package forecast

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Horizons are the fixed forward-looking windows, in months, reported by the
// forecast engine.
var Horizons = []int{1, 3, 6, 9, 12}

// Transaction is a single expense record as supplied by the caller.
// Date is a calendar date in YYYY-MM-DD form.
type Transaction struct {
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// MonthlyPoint is the summed spend for one calendar month. Period is always
// the first day of the month.
type MonthlyPoint struct {
	Period time.Time `json:"period"`
	Total  float64   `json:"total"`
}

// HorizonForecast is the cumulative forecast total for one horizon together
// with its 95% prediction interval. Lower <= Total <= Upper always holds.
type HorizonForecast struct {
	Months int     `json:"horizon_months"`
	Total  float64 `json:"total"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ForecastResult is the unit returned to callers and stored in the cache.
// Cached instances are always expressed in the base currency; conversion to
// the requested currency happens on every read.
type ForecastResult struct {
	Horizons  []HorizonForecast `json:"horizons"`
	Narrative string            `json:"narrative"`
	Currency  string            `json:"currency"`
}

// clone returns a deep copy so that per-request currency relabeling never
// mutates the cached instance.
func (r *ForecastResult) clone() *ForecastResult {
	out := &ForecastResult{
		Horizons:  make([]HorizonForecast, len(r.Horizons)),
		Narrative: r.Narrative,
		Currency:  r.Currency,
	}
	copy(out.Horizons, r.Horizons)
	return out
}

// FallbackNarrative is returned whenever every narrative tier fails. The
// numeric result is still complete when this string is present.
const FallbackNarrative = "Unable to generate narrative forecast."

// Narrator produces a free-text summary of a monthly series. Implementations
// must absorb their own failures and always return some narrative string.
type Narrator interface {
	Narrate(ctx context.Context, series []MonthlyPoint, language string) string
}
