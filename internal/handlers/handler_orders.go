package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	portssvc "github.com/Noura-Darwazeh/delivery-admin-api/internal/core/ports/services"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/dto"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// orderHandler handles HTTP requests for the orders screen.
type orderHandler struct {
	orderSvc portssvc.OrderSvcFacade
}

func newOrderHandler(os portssvc.OrderSvcFacade) *orderHandler {
	return &orderHandler{orderSvc: os}
}

// registerOrderRoutes registers routes related to orders.
func registerOrderRoutes(rg *gin.RouterGroup, orderSvc portssvc.OrderSvcFacade) {
	h := newOrderHandler(orderSvc)

	orders := rg.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.GET("/:orderID/relations", h.getOrderRelations)
	}
}

// listOrders godoc
// @Summary List root orders
// @Description Returns one page of root orders filtered by search text and status chips, sorted and annotated with exchange flags
// @Tags orders
// @Produce json
// @Param search query string false "Free-text search"
// @Param status query []string false "Status filter chips" collectionFormat(multi)
// @Param sortBy query string false "Sort column" default(created_at)
// @Param sortDir query string false "asc or desc" default(desc)
// @Param page query int false "1-indexed page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.OrderListResponse
// @Failure 503 {object} map[string]string "Backend unavailable"
// @Router /orders [get]
func (h *orderHandler) listOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for listOrders", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.orderSvc.ListOrders(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnavailable) {
			logger.Warn("Orders backend unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Orders are temporarily unavailable"})
		} else {
			logger.Error("Failed to list orders", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getOrderRelations godoc
// @Summary Get an order's resolved children
// @Description Returns the delivery/return children of an order and whether the pair constitutes an exchange
// @Tags orders
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} dto.OrderRelationsResponse
// @Failure 503 {object} map[string]string "Backend unavailable"
// @Router /orders/{orderID}/relations [get]
func (h *orderHandler) getOrderRelations(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	orderID := c.Param("orderID")

	resp, err := h.orderSvc.OrderRelations(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrUnavailable):
			logger.Warn("Orders backend unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Orders are temporarily unavailable"})
		default:
			logger.Error("Failed to resolve order relations", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve order relations"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
