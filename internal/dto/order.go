package dto

import (
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
)

// ListOrdersQuery carries the list-screen parameters: search box, status
// chips, column sort, and pagination.
type ListOrdersQuery struct {
	Search   string   `form:"search"`
	Statuses []string `form:"status"`
	SortBy   string   `form:"sortBy"`
	SortDir  string   `form:"sortDir"`
	Page     int      `form:"page"`
	PageSize int      `form:"pageSize"`
}

// OrderResponse is one row of the orders screen, annotated with the resolved
// parent/child relationship flags.
type OrderResponse struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customerName"`
	DriverName   string    `json:"driverName"`
	TotalPrice   float64   `json:"totalPrice"`
	Currency     string    `json:"currency"`
	DisplayTotal string    `json:"displayTotal"`
	CreatedAt    time.Time `json:"createdAt"`
	HasDelivery  bool      `json:"hasDelivery"`
	HasReturn    bool      `json:"hasReturn"`
	HasExchange  bool      `json:"hasExchange"`
	HasChildren  bool      `json:"hasChildren"`
}

// OrderListResponse is one page of the orders screen.
type OrderListResponse struct {
	Items    []OrderResponse `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// OrderRelationsResponse details one order's resolved children.
type OrderRelationsResponse struct {
	OrderID     string         `json:"orderId"`
	Delivery    *OrderResponse `json:"delivery,omitempty"`
	Return      *OrderResponse `json:"return,omitempty"`
	HasDelivery bool           `json:"hasDelivery"`
	HasReturn   bool           `json:"hasReturn"`
	HasExchange bool           `json:"hasExchange"`
	HasChildren bool           `json:"hasChildren"`
}

// ToOrderResponse converts a domain order (without relation flags).
func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		Status:       o.Status,
		CustomerName: o.CustomerName,
		DriverName:   o.DriverName,
		TotalPrice:   o.TotalPrice,
		Currency:     o.Currency,
		CreatedAt:    o.CreatedAt,
	}
}
