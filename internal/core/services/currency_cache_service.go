package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/ports"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/utils/currencyconv"
)

// Storage keys for the persisted fallback state.
const (
	storageKeySelected    = "currency:selected"
	storageKeyRates       = "currency:rates"
	storageKeyLastUpdated = "currency:rates_updated_at"
)

// DefaultCacheDuration is the staleness window for the rate snapshot.
const DefaultCacheDuration = 5 * time.Minute

// CurrencyCacheService owns the currency selection state and the cached rate
// snapshot. It is constructed explicitly and injected into its consumers;
// there is no ambient global instance.
//
// Fetch failures never surface as returned errors: the service substitutes
// the best available fallback (previous in-memory state, the persisted
// snapshot, or the built-in defaults) and records a readable error message
// for the UI instead.
type CurrencyCacheService struct {
	currencies ports.CurrencyProvider
	rates      ports.RateProvider
	store      ports.KVStore
	logger     *slog.Logger

	cacheDuration time.Duration
	locale        string
	now           func() time.Time

	// loadMu serializes LoadRates calls: two refreshes triggered back to back
	// run one after the other, so the second observes the first's freshly
	// stamped snapshot and skips its own network call.
	loadMu sync.Mutex

	mu          sync.RWMutex
	selected    *domain.Currency
	available   []domain.Currency
	snapshot    *domain.ExchangeRateSnapshot
	loading     bool
	errMsg      string
	lastUpdated time.Time

	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

// CurrencyCacheOption configures a CurrencyCacheService.
type CurrencyCacheOption func(*CurrencyCacheService)

// WithCacheDuration overrides the staleness window.
func WithCacheDuration(d time.Duration) CurrencyCacheOption {
	return func(s *CurrencyCacheService) {
		if d > 0 {
			s.cacheDuration = d
		}
	}
}

// WithLocale sets the formatting locale, e.g. "en-US".
func WithLocale(locale string) CurrencyCacheOption {
	return func(s *CurrencyCacheService) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) CurrencyCacheOption {
	return func(s *CurrencyCacheService) {
		s.now = now
	}
}

// NewCurrencyCacheService creates the service. Call Initialize before use and
// Dispose when done.
func NewCurrencyCacheService(
	currencies ports.CurrencyProvider,
	rates ports.RateProvider,
	store ports.KVStore,
	logger *slog.Logger,
	opts ...CurrencyCacheOption,
) *CurrencyCacheService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CurrencyCacheService{
		currencies:    currencies,
		rates:         rates,
		store:         store,
		logger:        logger,
		cacheDuration: DefaultCacheDuration,
		locale:        "en-US",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize fetches the available currency list, restores the persisted
// selection if still valid, defaults to USD (or the first entry) otherwise,
// and triggers the initial rate load. On fetch failure the built-in fallback
// list is used so the UI is never left without currencies.
func (s *CurrencyCacheService) Initialize(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	available, err := s.currencies.FetchCurrencies(ctx)
	if err != nil || len(available) == 0 {
		if err != nil {
			s.logger.Warn("Falling back to built-in currency list", slog.String("error", err.Error()))
			s.setError("failed to load currencies: " + err.Error())
		}
		available = domain.FallbackCurrencies()
	}

	selected := s.restoreSelection(available)
	if selected == nil {
		selected = defaultSelection(available)
	}

	s.mu.Lock()
	s.available = available
	s.selected = selected
	// Seed the in-memory snapshot from the persisted fallback so a fresh
	// cache can be reused without a network call.
	var persisted domain.ExchangeRateSnapshot
	if s.snapshot == nil && s.store != nil && s.store.Get(storageKeyRates, &persisted) {
		if persisted.BaseCurrency == selected.Code {
			s.snapshot = &persisted
			var stamp time.Time
			if s.store.Get(storageKeyLastUpdated, &stamp) {
				s.lastUpdated = stamp
			}
		}
	}
	s.mu.Unlock()

	s.LoadRates(ctx, false)
}

func (s *CurrencyCacheService) restoreSelection(available []domain.Currency) *domain.Currency {
	if s.store == nil {
		return nil
	}
	var code string
	if !s.store.Get(storageKeySelected, &code) {
		return nil
	}
	return findByCode(available, code)
}

func defaultSelection(available []domain.Currency) *domain.Currency {
	if c := findByCode(available, "USD"); c != nil {
		return c
	}
	if len(available) > 0 {
		c := available[0]
		return &c
	}
	return nil
}

func findByCode(currencies []domain.Currency, code string) *domain.Currency {
	for i := range currencies {
		if currencies[i].Code == code {
			c := currencies[i]
			return &c
		}
	}
	return nil
}

// LoadRates refreshes the rate snapshot for the currently selected base
// currency. Unless forced, a snapshot younger than the staleness window is
// reused without a network call. On fetch failure the previous in-memory
// snapshot is kept; if none exists the persisted snapshot is restored, and as
// a last resort the built-in table for the base is used. The snapshot is
// replaced wholesale on success, never merged or left half-updated.
func (s *CurrencyCacheService) LoadRates(ctx context.Context, forceRefresh bool) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.RLock()
	base := ""
	if s.selected != nil {
		base = s.selected.Code
	}
	fresh := !s.lastUpdated.IsZero() && s.now().Sub(s.lastUpdated) < s.cacheDuration
	haveSnapshot := s.snapshot != nil && s.snapshot.BaseCurrency == base
	s.mu.RUnlock()

	if base == "" {
		return
	}
	if !forceRefresh && fresh && haveSnapshot {
		return
	}

	s.setLoading(true)
	defer s.setLoading(false)

	snapshot, err := s.rates.FetchRates(ctx, base)
	if err != nil {
		s.logger.Warn("Rate refresh failed", slog.String("base", base), slog.String("error", err.Error()))
		s.applyRateFallback(base, err)
		return
	}

	now := s.now()
	s.mu.Lock()
	s.snapshot = snapshot
	s.lastUpdated = now
	s.errMsg = ""
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(storageKeyRates, snapshot); err != nil {
			s.logger.Warn("Failed to persist rate snapshot", slog.String("error", err.Error()))
		}
		if err := s.store.Set(storageKeyLastUpdated, now); err != nil {
			s.logger.Warn("Failed to persist rate timestamp", slog.String("error", err.Error()))
		}
	}
}

// applyRateFallback keeps previous in-memory state when present, otherwise
// restores the persisted snapshot, otherwise falls back to the built-in
// table. The failure is recorded as a non-fatal error message.
func (s *CurrencyCacheService) applyRateFallback(base string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errMsg = "failed to load exchange rates: " + cause.Error()
	if s.snapshot != nil && s.snapshot.BaseCurrency == base {
		return
	}

	var persisted domain.ExchangeRateSnapshot
	if s.store != nil && s.store.Get(storageKeyRates, &persisted) && persisted.BaseCurrency == base {
		s.snapshot = &persisted
		return
	}

	if builtin := domain.BuiltinRates(base); builtin != nil {
		s.snapshot = builtin
	}
}

// SetSelectedCurrency changes the display currency, persists the choice, and
// force-reloads rates for the new base. A nil currency is a no-op.
func (s *CurrencyCacheService) SetSelectedCurrency(ctx context.Context, currency *domain.Currency) {
	if currency == nil {
		return
	}

	s.mu.Lock()
	selected := *currency
	s.selected = &selected
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(storageKeySelected, currency.Code); err != nil {
			s.logger.Warn("Failed to persist currency selection", slog.String("error", err.Error()))
		}
	}

	// The conversion base changed, so a cached snapshot is unusable.
	s.LoadRates(ctx, true)
}

// SelectByCode selects the available currency with the given code.
func (s *CurrencyCacheService) SelectByCode(ctx context.Context, code string) (*domain.Currency, error) {
	s.mu.RLock()
	currency := findByCode(s.available, code)
	s.mu.RUnlock()
	if currency == nil {
		return nil, fmt.Errorf("%w: currency %q is not available", apperrors.ErrNotFound, code)
	}
	s.SetSelectedCurrency(ctx, currency)
	return currency, nil
}

// ClearError resets the stored error message.
func (s *CurrencyCacheService) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// Selected returns a copy of the currently selected currency, or nil.
func (s *CurrencyCacheService) Selected() *domain.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	c := *s.selected
	return &c
}

// Available returns a copy of the available currency list.
func (s *CurrencyCacheService) Available() []domain.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Currency, len(s.available))
	copy(out, s.available)
	return out
}

// Rates returns a copy of the current rate snapshot, or nil when no snapshot
// has been loaded yet.
func (s *CurrencyCacheService) Rates() *domain.ExchangeRateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// IsLoading reports whether a fetch is in flight.
func (s *CurrencyCacheService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the recorded non-fatal error message, if any.
func (s *CurrencyCacheService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// LastUpdated returns when the snapshot was last refreshed.
func (s *CurrencyCacheService) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Convert converts an amount between two currency codes using the cached
// snapshot. Fail-soft: missing rates leave the amount unchanged.
func (s *CurrencyCacheService) Convert(amount float64, fromCode, toCode string) float64 {
	return currencyconv.Convert(amount, fromCode, toCode, s.Rates())
}

// ConvertAndFormat converts an amount and formats it with the target
// currency's symbol and precision. An empty or unknown target code falls back
// to the selected currency.
func (s *CurrencyCacheService) ConvertAndFormat(amount float64, fromCode, toCode string) string {
	s.mu.RLock()
	target := findByCode(s.available, toCode)
	if target == nil {
		if s.selected != nil {
			c := *s.selected
			target = &c
		}
	}
	locale := s.locale
	s.mu.RUnlock()

	return currencyconv.ConvertAndFormat(amount, fromCode, target, s.Rates(), locale)
}

// StartAutoRefresh launches a background loop that reloads rates on the given
// interval, honoring the staleness window. It is stopped by Dispose.
func (s *CurrencyCacheService) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 || s.refreshCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.refreshCancel = cancel
	s.refreshDone = make(chan struct{})

	go func() {
		defer close(s.refreshDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.LoadRates(ctx, false)
			}
		}
	}()
}

// Dispose stops the background refresh loop. The service remains usable for
// synchronous calls afterwards.
func (s *CurrencyCacheService) Dispose() {
	if s.refreshCancel != nil {
		s.refreshCancel()
		<-s.refreshDone
		s.refreshCancel = nil
	}
}

func (s *CurrencyCacheService) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *CurrencyCacheService) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}
