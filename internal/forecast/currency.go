package forecast

// BaseCurrency is the currency in which cached results are stored internally.
const BaseCurrency = "INR"

// RateTable maps a currency code to its rate relative to the base currency.
// The table is static and never mutated by the pipeline.
type RateTable map[string]float64

// DefaultRates mirrors the supported conversion set.
var DefaultRates = RateTable{
	"INR": 1.0,
	"USD": 0.012,
	"EUR": 0.011,
	"GBP": 0.0095,
}

// Supports reports whether code is present in the table.
func (r RateTable) Supports(code string) bool {
	_, ok := r[code]
	return ok
}

// Convert converts amount from one currency to another using
// amount * rate[to] / rate[from]. Converting a currency to itself is exact:
// the ratio is computed from identical table entries and is always 1.
func (r RateTable) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := r[from]
	if !ok {
		return 0, newError(ErrUnsupportedCurrency, "unsupported currency %q", from)
	}
	toRate, ok := r[to]
	if !ok {
		return 0, newError(ErrUnsupportedCurrency, "unsupported currency %q", to)
	}
	return amount * (toRate / fromRate), nil
}

// convertResult returns a copy of res with every monetary field, interval
// bounds included, converted from res.Currency to target. The narrative passes
// through untouched.
func convertResult(res *ForecastResult, target string, rates RateTable) (*ForecastResult, error) {
	out := res.clone()
	for i := range out.Horizons {
		var err error
		if out.Horizons[i].Total, err = rates.Convert(out.Horizons[i].Total, res.Currency, target); err != nil {
			return nil, err
		}
		if out.Horizons[i].Lower, err = rates.Convert(out.Horizons[i].Lower, res.Currency, target); err != nil {
			return nil, err
		}
		if out.Horizons[i].Upper, err = rates.Convert(out.Horizons[i].Upper, res.Currency, target); err != nil {
			return nil, err
		}
	}
	out.Currency = target
	return out, nil
}
