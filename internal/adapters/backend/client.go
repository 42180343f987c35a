// Package backend is the HTTP client for the upstream delivery-logistics
// REST API. It normalizes the backend's loose JSON shapes into domain types;
// availability fallbacks (default currency lists, built-in rates) are the
// caller's concern.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client talks to the upstream backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a backend client. A non-positive timeout falls back to 10s.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type currencyPayload struct {
	ID            flexID `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces *int   `json:"decimalPlaces"`
	IsActive      *bool  `json:"isActive"`
}

// FetchCurrencies retrieves the active currency list. Currencies without a
// precision default to two decimal places.
func (c *Client) FetchCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var payload []currencyPayload
	if err := c.getJSON(ctx, "/currencies", nil, &payload); err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, 0, len(payload))
	for _, p := range payload {
		if p.Code == "" {
			continue
		}
		if p.IsActive != nil && !*p.IsActive {
			continue
		}
		places := domain.DefaultDecimalPlaces
		if p.DecimalPlaces != nil && *p.DecimalPlaces >= 0 {
			places = *p.DecimalPlaces
		}
		currencies = append(currencies, domain.Currency{
			Code:          p.Code,
			Symbol:        p.Symbol,
			Name:          p.Name,
			DecimalPlaces: places,
		})
	}
	return currencies, nil
}

type ratesPayload struct {
	Rates       map[string]float64 `json:"rates"`
	LastUpdated flexTime           `json:"lastUpdated"`
}

// FetchRates retrieves the rate snapshot for the given base currency. The
// base entry, if the backend echoes it, is dropped: rate(base->base) is
// implicit.
func (c *Client) FetchRates(ctx context.Context, baseCurrency string) (*domain.ExchangeRateSnapshot, error) {
	var payload ratesPayload
	query := url.Values{"base": {baseCurrency}}
	if err := c.getJSON(ctx, "/exchange-rates", query, &payload); err != nil {
		return nil, err
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table for base %s", apperrors.ErrUnavailable, baseCurrency)
	}

	rates := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		if code == baseCurrency {
			continue
		}
		rates[code] = rate
	}

	updated := payload.LastUpdated.Time()
	if updated.IsZero() {
		updated = time.Now()
	}
	return &domain.ExchangeRateSnapshot{
		BaseCurrency: baseCurrency,
		Rates:        rates,
		LastUpdated:  updated,
	}, nil
}

type orderPayload struct {
	ID            flexID         `json:"id"`
	ParentOrderID flexID         `json:"parent_order_id"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	Customer      identified     `json:"customer"`
	Driver        identified     `json:"driver"`
	TotalPrice    float64        `json:"total_price"`
	Currency      string         `json:"currency"`
	CreatedAt     flexTime       `json:"created_at"`
	ChildOrders   []orderPayload `json:"child_orders"`
}

func (p *orderPayload) toDomain() domain.Order {
	order := domain.Order{
		ID:            string(p.ID),
		ParentOrderID: string(p.ParentOrderID),
		Type:          p.Type,
		Status:        p.Status,
		CustomerName:  p.Customer.Name,
		DriverName:    p.Driver.Name,
		TotalPrice:    p.TotalPrice,
		Currency:      p.Currency,
		CreatedAt:     p.CreatedAt.Time(),
	}
	for i := range p.ChildOrders {
		order.ChildOrders = append(order.ChildOrders, p.ChildOrders[i].toDomain())
	}
	return order
}

// FetchOrders retrieves the flat order collection.
func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	var payload []orderPayload
	if err := c.getJSON(ctx, "/orders", nil, &payload); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(payload))
	for i := range payload {
		orders = append(orders, payload[i].toDomain())
	}
	return orders, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Backend returned non-2xx status", slog.String("path", path), slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s returned status %d", apperrors.ErrUnavailable, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", apperrors.ErrUnavailable, path, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Warn("Backend returned malformed payload", slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: malformed %s payload: %v", apperrors.ErrUnavailable, path, err)
	}
	return nil
}
