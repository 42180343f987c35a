package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	portssvc "github.com/Noura-Darwazeh/delivery-admin-api/internal/core/ports/services"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/dto"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/middleware"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/utils/currencyconv"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to the currency display
// state.
type currencyHandler struct {
	currencySvc portssvc.CurrencyStateSvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencyStateSvcFacade) *currencyHandler {
	return &currencyHandler{currencySvc: cs}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencySvc portssvc.CurrencyStateSvcFacade) {
	h := newCurrencyHandler(currencySvc)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.getCurrencyState)
		currencies.GET("/rates", h.getRates)
		currencies.PUT("/selected", h.selectCurrency)
		currencies.GET("/convert", h.convert)
		currencies.DELETE("/error", h.clearError)
	}
}

// getCurrencyState godoc
// @Summary Get the currency selection state
// @Description Returns the available currencies, the current selection, and cache status
// @Tags currencies
// @Produce json
// @Success 200 {object} dto.CurrencyStateResponse
// @Router /currencies [get]
func (h *currencyHandler) getCurrencyState(c *gin.Context) {
	resp := dto.CurrencyStateResponse{
		Available:   dto.ToListCurrencyResponse(h.currencySvc.Available()),
		IsLoading:   h.currencySvc.IsLoading(),
		Error:       h.currencySvc.Err(),
		LastUpdated: h.currencySvc.LastUpdated(),
	}
	if selected := h.currencySvc.Selected(); selected != nil {
		s := dto.ToCurrencyResponse(selected)
		resp.Selected = &s
	}
	c.JSON(http.StatusOK, resp)
}

// getRates godoc
// @Summary Get the exchange rate snapshot
// @Description Returns cached rates for the selected base currency, refreshing when stale or forced
// @Tags currencies
// @Produce json
// @Param force query bool false "Bypass the staleness window"
// @Success 200 {object} dto.RatesResponse
// @Router /currencies/rates [get]
func (h *currencyHandler) getRates(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	h.currencySvc.LoadRates(c.Request.Context(), force)

	resp := dto.RatesResponse{
		LastUpdated: h.currencySvc.LastUpdated(),
		Error:       h.currencySvc.Err(),
	}
	if snapshot := h.currencySvc.Rates(); snapshot != nil {
		resp.BaseCurrency = snapshot.BaseCurrency
		resp.Rates = snapshot.Rates
	}
	c.JSON(http.StatusOK, resp)
}

// selectCurrency godoc
// @Summary Change the display currency
// @Description Selects a currency by code, persists the choice, and force-reloads rates
// @Tags currencies
// @Accept json
// @Produce json
// @Param selection body dto.SelectCurrencyRequest true "Currency code"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Currency not available"
// @Router /currencies/selected [put]
func (h *currencyHandler) selectCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.SelectCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for selectCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	selected, err := h.currencySvc.SelectByCode(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Attempted to select unavailable currency", slog.String("code", req.Code))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to select currency", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select currency"})
		}
		return
	}

	logger.Info("Display currency changed", slog.String("code", selected.Code))
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(selected))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Converts and formats a price for display; bad amounts degrade to 0 rather than failing
// @Tags currencies
// @Produce json
// @Param amount query string true "Amount, free-form (e.g. 1,234.50)"
// @Param from query string true "Source currency code"
// @Param to query string false "Target currency code; defaults to the selected currency"
// @Success 200 {object} dto.ConvertResponse
// @Router /currencies/convert [get]
func (h *currencyHandler) convert(c *gin.Context) {
	amount := currencyconv.Parse(c.Query("amount"))
	from := c.Query("from")
	to := c.Query("to")
	if to == "" {
		if selected := h.currencySvc.Selected(); selected != nil {
			to = selected.Code
		}
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: h.currencySvc.Convert(amount, from, to),
		Formatted: h.currencySvc.ConvertAndFormat(amount, from, to),
	})
}

// clearError godoc
// @Summary Clear the stored error message
// @Tags currencies
// @Success 204 "Cleared"
// @Router /currencies/error [delete]
func (h *currencyHandler) clearError(c *gin.Context) {
	h.currencySvc.ClearError()
	c.Status(http.StatusNoContent)
}
