package services

import (
	"context"
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
)

// CurrencyStateSvcFacade is the handler-facing surface of the currency state
// cache: the selected currency, the available list, the current rate
// snapshot, and the operations that refresh them.
type CurrencyStateSvcFacade interface {
	Initialize(ctx context.Context)
	LoadRates(ctx context.Context, forceRefresh bool)
	SetSelectedCurrency(ctx context.Context, currency *domain.Currency)
	SelectByCode(ctx context.Context, code string) (*domain.Currency, error)
	ClearError()

	Selected() *domain.Currency
	Available() []domain.Currency
	Rates() *domain.ExchangeRateSnapshot
	IsLoading() bool
	Err() string
	LastUpdated() time.Time

	Convert(amount float64, fromCode, toCode string) float64
	ConvertAndFormat(amount float64, fromCode, toCode string) string
}
