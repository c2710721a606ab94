package forecast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/spendcast/backend/internal/cache"
)

const (
	// maxTransactions caps the input size; only the most recent transactions
	// beyond the cap participate in fingerprinting and processing.
	maxTransactions = 1000
	// defaultLanguage is the locale narratives are generated in before any
	// translation step.
	defaultLanguage = "en"

	defaultCacheSize = 100
	defaultCacheTTL  = time.Hour
)

// Service is the pipeline entry point. Results are computed once per distinct
// (transaction-set, language) pair, cached in the base currency, and converted
// to the requested currency on every read.
type Service struct {
	rates    RateTable
	base     string
	cache    *cache.Cache[*ForecastResult]
	narrator Narrator
	group    singleflight.Group
	logger   zerolog.Logger
}

// ServiceOptions configures a Service. Zero values fall back to the defaults
// used in production.
type ServiceOptions struct {
	Rates        RateTable
	BaseCurrency string
	CacheSize    int
	CacheTTL     time.Duration
	Narrator     Narrator
	Logger       zerolog.Logger
}

// NewService creates a Service with its own result cache. Call Close to stop
// the cache's cleanup goroutine.
func NewService(opts ServiceOptions) *Service {
	if opts.Rates == nil {
		opts.Rates = DefaultRates
	}
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = BaseCurrency
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Service{
		rates:    opts.Rates,
		base:     opts.BaseCurrency,
		cache:    cache.New[*ForecastResult](opts.CacheSize, opts.CacheTTL),
		narrator: opts.Narrator,
		logger:   opts.Logger,
	}
}

// Close stops the result cache's background cleanup.
func (s *Service) Close() {
	s.cache.Stop()
}

// GetOrCompute returns the forecast for transactions expressed in
// targetCurrency. Cache hits and fresh computations go through the same
// conversion, applied exactly once per returned field.
func (s *Service) GetOrCompute(ctx context.Context, transactions []Transaction, targetCurrency, language string) (*ForecastResult, error) {
	if targetCurrency == "" {
		targetCurrency = s.base
	}
	if language == "" {
		language = defaultLanguage
	}
	if !s.rates.Supports(targetCurrency) {
		return nil, newError(ErrUnsupportedCurrency, "unsupported currency %q", targetCurrency)
	}
	if len(transactions) < minTransactions {
		return nil, newError(ErrInsufficientData,
			"at least %d transactions required, got %d", minTransactions, len(transactions))
	}

	// Truncation happens before fingerprinting so the cache key is consistent
	// on every call.
	txns := truncateRecent(transactions, maxTransactions)
	key := fingerprint(txns, language)

	if res, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("fingerprint", key).Msg("forecast cache hit")
		return convertResult(res, targetCurrency, s.rates)
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
		res, err := s.compute(ctx, txns, language)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Str("fingerprint", key).Msg("forecast computation deduplicated")
	}
	return convertResult(v.(*ForecastResult), targetCurrency, s.rates)
}

// compute runs the numeric path and, independently, the narrative path. A
// narrative failure never aborts the request; a numeric failure always does.
func (s *Service) compute(ctx context.Context, txns []Transaction, language string) (*ForecastResult, error) {
	series, err := Aggregate(txns)
	if err != nil {
		return nil, err
	}

	cleaned := FilterAnomalies(series)
	if removed := len(series) - len(cleaned); removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("remaining", len(cleaned)).Msg("anomalous months removed")
	}
	if len(cleaned) < minMonthlyPoints {
		return nil, newError(ErrInsufficientData,
			"insufficient data for forecasting (%d monthly points)", len(cleaned))
	}

	narrativeCh := make(chan string, 1)
	go func() {
		if s.narrator == nil {
			narrativeCh <- FallbackNarrative
			return
		}
		narrativeCh <- s.narrator.Narrate(ctx, cleaned, language)
	}()

	horizons, err := Forecast(cleaned)
	if err != nil {
		return nil, err
	}

	narrative := <-narrativeCh
	if narrative == "" {
		narrative = FallbackNarrative
	}

	return &ForecastResult{Horizons: horizons, Narrative: narrative, Currency: s.base}, nil
}

// truncateRecent returns the most recent limit transactions by date. The sort
// is stable so repeated calls with the same input always retain the same rows.
func truncateRecent(transactions []Transaction, limit int) []Transaction {
	if len(transactions) <= limit {
		return transactions
	}
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return sorted[len(sorted)-limit:]
}

// fingerprint digests the (date, amount, category) tuples plus the language
// into a cache key. Tuples are sorted first so reordered inputs collide.
func fingerprint(transactions []Transaction, language string) string {
	tuples := make([]string, len(transactions))
	for i, tx := range transactions {
		tuples[i] = tx.Date + "|" + tx.Amount.String() + "|" + tx.Category
	}
	sort.Strings(tuples)

	h := sha256.New()
	for _, tuple := range tuples {
		h.Write([]byte(tuple))
		h.Write([]byte{'\n'})
	}
	h.Write([]byte(language))
	return hex.EncodeToString(h.Sum(nil))
}
