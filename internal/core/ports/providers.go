package ports

import (
	"context"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
)

// CurrencyProvider fetches the available currency list from the upstream
// backend.
type CurrencyProvider interface {
	FetchCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// RateProvider fetches an exchange rate snapshot keyed to a base currency.
type RateProvider interface {
	FetchRates(ctx context.Context, baseCurrency string) (*domain.ExchangeRateSnapshot, error)
}

// OrderProvider fetches the flat order collection from the upstream backend.
type OrderProvider interface {
	FetchOrders(ctx context.Context) ([]domain.Order, error)
}
