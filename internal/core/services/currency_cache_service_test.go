package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock providers ---

type MockCurrencyProvider struct {
	mock.Mock
}

func (m *MockCurrencyProvider) FetchCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context, base string) (*domain.ExchangeRateSnapshot, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRateSnapshot), args.Error(1)
}

// fakeKVStore is an in-memory stand-in for the SQLite store.
type fakeKVStore struct {
	values map[string][]byte
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{values: make(map[string][]byte)}
}

func (f *fakeKVStore) Get(key string, dest any) bool {
	raw, ok := f.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeKVStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	return nil
}

func (f *fakeKVStore) Remove(key string) error {
	delete(f.values, key)
	return nil
}

// --- Test Suite ---

type CurrencyCacheServiceTestSuite struct {
	suite.Suite
	currencies *MockCurrencyProvider
	rates      *MockRateProvider
	store      *fakeKVStore
	now        time.Time
}

func (s *CurrencyCacheServiceTestSuite) SetupTest() {
	s.currencies = new(MockCurrencyProvider)
	s.rates = new(MockRateProvider)
	s.store = newFakeKVStore()
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func (s *CurrencyCacheServiceTestSuite) newService(opts ...CurrencyCacheOption) *CurrencyCacheService {
	opts = append(opts, withClock(func() time.Time { return s.now }))
	return NewCurrencyCacheService(s.currencies, s.rates, s.store, nil, opts...)
}

func testCurrencies() []domain.Currency {
	return []domain.Currency{
		{Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
		{Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2},
	}
}

func usdRates() *domain.ExchangeRateSnapshot {
	return &domain.ExchangeRateSnapshot{
		BaseCurrency: "USD",
		Rates:        map[string]float64{"EUR": 0.85},
	}
}

func (s *CurrencyCacheServiceTestSuite) TestInitialize_DefaultsToUSD() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.Require().NotNil(svc.Selected())
	s.Equal("USD", svc.Selected().Code)
	s.Len(svc.Available(), 2)
	s.Require().NotNil(svc.Rates())
	s.Equal(0.85, svc.Rates().Rates["EUR"])
	s.Empty(svc.Err())
	s.False(svc.IsLoading())

	s.currencies.AssertExpectations(s.T())
	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestInitialize_FallsBackToBuiltinCurrencies() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(nil, assert.AnError).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(nil, assert.AnError).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	// UI must never be left without currencies.
	s.Len(svc.Available(), len(domain.FallbackCurrencies()))
	s.Equal("USD", svc.Selected().Code)
	s.NotEmpty(svc.Err())
}

func (s *CurrencyCacheServiceTestSuite) TestInitialize_RestoresPersistedSelection() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(storageKeySelected, "EUR"))
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "EUR").Return(&domain.ExchangeRateSnapshot{
		BaseCurrency: "EUR",
		Rates:        map[string]float64{"USD": 1.18},
	}, nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.Equal("EUR", svc.Selected().Code)
	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestInitialize_IgnoresStaleSelectionCode() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(storageKeySelected, "ZZZ"))
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.Equal("USD", svc.Selected().Code)
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_FreshCacheSkipsNetwork() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	// A second load within the staleness window must not hit the provider;
	// the single .Once() expectation above enforces that.
	s.now = s.now.Add(time.Minute)
	svc.LoadRates(ctx, false)

	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_StaleCacheRefetches() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Twice()

	svc := s.newService()
	svc.Initialize(ctx)

	s.now = s.now.Add(DefaultCacheDuration)
	svc.LoadRates(ctx, false)

	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_ForceBypassesFreshness() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Twice()

	svc := s.newService()
	svc.Initialize(ctx)
	svc.LoadRates(ctx, true)

	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_KeepsPreviousSnapshotOnFailure() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.rates.On("FetchRates", ctx, "USD").Return(nil, assert.AnError).Once()
	s.now = s.now.Add(DefaultCacheDuration)
	svc.LoadRates(ctx, false)

	s.Require().NotNil(svc.Rates())
	s.Equal(0.85, svc.Rates().Rates["EUR"])
	s.NotEmpty(svc.Err())
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_RestoresPersistedSnapshotOnFailure() {
	ctx := context.Background()
	persisted := usdRates()
	persisted.Rates["EUR"] = 0.90
	s.Require().NoError(s.store.Set(storageKeyRates, persisted))

	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(nil, assert.AnError).Once()

	svc := s.newService()
	// Persisted snapshot has no stored timestamp, so the load is attempted
	// and fails; the persisted rates remain as the fallback.
	svc.Initialize(ctx)

	s.Require().NotNil(svc.Rates())
	s.Equal(0.90, svc.Rates().Rates["EUR"])
	s.NotEmpty(svc.Err())
}

func (s *CurrencyCacheServiceTestSuite) TestLoadRates_BuiltinRatesAsLastResort() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(nil, assert.AnError).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.Require().NotNil(svc.Rates())
	s.Equal("USD", svc.Rates().BaseCurrency)
	s.NotZero(svc.Rates().Rates["EUR"])
	s.NotEmpty(svc.Err())
}

func (s *CurrencyCacheServiceTestSuite) TestSetSelectedCurrency_ForcesReload() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()
	s.rates.On("FetchRates", ctx, "EUR").Return(&domain.ExchangeRateSnapshot{
		BaseCurrency: "EUR",
		Rates:        map[string]float64{"USD": 1.18},
	}, nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	eur := &domain.Currency{Code: "EUR", Symbol: "€", DecimalPlaces: 2}
	svc.SetSelectedCurrency(ctx, eur)

	s.Equal("EUR", svc.Selected().Code)
	s.Equal("EUR", svc.Rates().BaseCurrency)

	// Selection must be persisted for the next session.
	var storedCode string
	s.True(s.store.Get(storageKeySelected, &storedCode))
	s.Equal("EUR", storedCode)

	s.rates.AssertExpectations(s.T())
}

func (s *CurrencyCacheServiceTestSuite) TestSetSelectedCurrency_NilIsNoop() {
	svc := s.newService()
	svc.SetSelectedCurrency(context.Background(), nil)
	s.Nil(svc.Selected())
	s.rates.AssertNotCalled(s.T(), "FetchRates", mock.Anything, mock.Anything)
}

func (s *CurrencyCacheServiceTestSuite) TestSelectByCode_UnknownCode() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	_, err := svc.SelectByCode(ctx, "ZZZ")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CurrencyCacheServiceTestSuite) TestClearError() {
	svc := s.newService()
	svc.setError("boom")
	s.Equal("boom", svc.Err())
	svc.ClearError()
	s.Empty(svc.Err())
}

func (s *CurrencyCacheServiceTestSuite) TestConvertAndFormat_UsesSelectedWhenTargetUnknown() {
	ctx := context.Background()
	s.currencies.On("FetchCurrencies", ctx).Return(testCurrencies(), nil).Once()
	s.rates.On("FetchRates", ctx, "USD").Return(usdRates(), nil).Once()

	svc := s.newService()
	svc.Initialize(ctx)

	s.Equal("$100.00", svc.ConvertAndFormat(100, "USD", ""))
	s.Equal("€85.00", svc.ConvertAndFormat(100, "USD", "EUR"))
}

func TestCurrencyCacheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyCacheServiceTestSuite))
}
