package dto

import (
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
)

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimalPlaces"`
}

// ToCurrencyResponse converts a domain.Currency to its response DTO.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:          c.Code,
		Symbol:        c.Symbol,
		Name:          c.Name,
		DecimalPlaces: c.DecimalPlaces,
	}
}

// ToListCurrencyResponse converts a slice of currencies to response DTOs.
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}

// CurrencyStateResponse is the full currency selection state for the UI.
type CurrencyStateResponse struct {
	Selected    *CurrencyResponse  `json:"selected,omitempty"`
	Available   []CurrencyResponse `json:"available"`
	IsLoading   bool               `json:"isLoading"`
	Error       string             `json:"error,omitempty"`
	LastUpdated time.Time          `json:"lastUpdated,omitempty"`
}

// RatesResponse carries the current rate snapshot.
type RatesResponse struct {
	BaseCurrency string             `json:"baseCurrency"`
	Rates        map[string]float64 `json:"rates"`
	LastUpdated  time.Time          `json:"lastUpdated,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// SelectCurrencyRequest selects the display currency by code.
type SelectCurrencyRequest struct {
	Code string `json:"code" binding:"required,uppercase,len=3"`
}

// ConvertResponse is the result of a single price-cell conversion.
type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Converted float64 `json:"converted"`
	Formatted string  `json:"formatted"`
}
