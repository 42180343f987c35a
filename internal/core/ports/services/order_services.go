package services

import (
	"context"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/dto"
)

// OrderSvcFacade serves the orders screen: the filtered/sorted/paginated
// list of root orders and the relation detail of a single order.
type OrderSvcFacade interface {
	ListOrders(ctx context.Context, query dto.ListOrdersQuery) (*dto.OrderListResponse, error)
	OrderRelations(ctx context.Context, orderID string) (*dto.OrderRelationsResponse, error)
}
