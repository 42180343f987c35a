package services

import (
	"context"
	"fmt"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/apperrors"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/ports"
	portssvc "github.com/Noura-Darwazeh/delivery-admin-api/internal/core/ports/services"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/dto"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/utils/tabular"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Fields the orders search box matches against.
var orderSearchKeys = []string{"id", "status", "customer_name", "driver_name"}

// OrderService serves the orders screen: it fetches the flat order
// collection, resolves the parent/child hierarchy, and runs the list through
// the shared tabular pipeline.
type OrderService struct {
	orders   ports.OrderProvider
	currency portssvc.CurrencyStateSvcFacade
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders ports.OrderProvider, currency portssvc.CurrencyStateSvcFacade) *OrderService {
	return &OrderService{orders: orders, currency: currency}
}

// ListOrders returns one page of root orders, annotated with relation flags
// and a display total converted to the selected currency.
func (s *OrderService) ListOrders(ctx context.Context, query dto.ListOrdersQuery) (*dto.OrderListResponse, error) {
	all, err := s.orders.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	processed := domain.BuildProcessedList(all)
	byID := make(map[string]*domain.ProcessedOrder, len(processed))
	records := make([]tabular.Record, 0, len(processed))
	for i := range processed {
		byID[processed[i].ID] = &processed[i]
		records = append(records, orderRecord(&processed[i]))
	}

	if query.Page < 1 {
		query.Page = defaultPage
	}
	if query.PageSize < 1 {
		query.PageSize = defaultPageSize
	}
	sortKey := query.SortBy
	sortDir := query.SortDir
	if sortKey == "" {
		sortKey, sortDir = "created_at", tabular.Descending
	}

	page, total := tabular.Apply(records, tabular.Query{
		Search:     query.Search,
		SearchKeys: orderSearchKeys,
		Groups:     query.Statuses,
		GroupKey:   "status",
		SortKey:    sortKey,
		SortDir:    sortDir,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})

	items := make([]dto.OrderResponse, 0, len(page))
	for _, rec := range page {
		order, ok := byID[rec["id"].(string)]
		if !ok {
			continue
		}
		items = append(items, s.toResponse(order))
	}

	return &dto.OrderListResponse{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// OrderRelations returns the resolved children of a single order. An unknown
// identifier resolves to an empty result rather than an error; only a missing
// identifier is rejected.
func (s *OrderService) OrderRelations(ctx context.Context, orderID string) (*dto.OrderRelationsResponse, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", apperrors.ErrValidation)
	}

	all, err := s.orders.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order relations: %w", err)
	}

	rel := domain.ResolveChildrenByID(orderID, all)
	resp := &dto.OrderRelationsResponse{
		OrderID:     orderID,
		HasDelivery: rel.HasDelivery,
		HasReturn:   rel.HasReturn,
		HasExchange: rel.HasExchange,
		HasChildren: rel.HasChildren,
	}
	if rel.Delivery != nil {
		d := dto.ToOrderResponse(rel.Delivery)
		resp.Delivery = &d
	}
	if rel.Return != nil {
		r := dto.ToOrderResponse(rel.Return)
		resp.Return = &r
	}
	return resp, nil
}

// orderRecord projects a processed order into the scalar row shape the
// tabular engine filters and sorts on.
func orderRecord(o *domain.ProcessedOrder) tabular.Record {
	return tabular.Record{
		"id":            o.ID,
		"status":        o.Status,
		"customer_name": o.CustomerName,
		"driver_name":   o.DriverName,
		"total_price":   o.TotalPrice,
		"created_at":    o.CreatedAt.UnixNano(),
		"has_exchange":  o.Relations.HasExchange,
	}
}

func (s *OrderService) toResponse(o *domain.ProcessedOrder) dto.OrderResponse {
	resp := dto.ToOrderResponse(&o.Order)
	resp.HasDelivery = o.Relations.HasDelivery
	resp.HasReturn = o.Relations.HasReturn
	resp.HasExchange = o.Relations.HasExchange
	resp.HasChildren = o.Relations.HasChildren
	if s.currency != nil {
		resp.DisplayTotal = s.currency.ConvertAndFormat(o.TotalPrice, o.Currency, "")
	}
	return resp
}
