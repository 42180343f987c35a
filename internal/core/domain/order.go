package domain

import (
	"sort"
	"time"
)

// Order type tags used for parent/child linking.
const (
	OrderTypeDelivery = "delivery"
	OrderTypeReturn   = "return"
)

// Order is a delivery order as served by the backend. A non-empty
// ParentOrderID marks the order as a child of another order; roots have it
// empty. ChildOrders is an optional denormalized embedding of full child
// records; when absent, children are derived from the flat list.
type Order struct {
	ID            string    `json:"id"`
	ParentOrderID string    `json:"parent_order_id,omitempty"`
	Type          string    `json:"type,omitempty"`
	Status        string    `json:"status,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	DriverName    string    `json:"driver_name,omitempty"`
	TotalPrice    float64   `json:"total_price,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	ChildOrders   []Order   `json:"child_orders,omitempty"`
}

// IsRoot reports whether the order has no parent.
func (o *Order) IsRoot() bool {
	return o.ParentOrderID == ""
}

// OrderRelations describes the resolved children of one order. At most one
// delivery child and one return child are recognized; both present makes the
// order an exchange.
type OrderRelations struct {
	Delivery    *Order  `json:"delivery,omitempty"`
	Return      *Order  `json:"return,omitempty"`
	Children    []Order `json:"children,omitempty"`
	HasDelivery bool    `json:"hasDelivery"`
	HasReturn   bool    `json:"hasReturn"`
	HasExchange bool    `json:"hasExchange"`
	HasChildren bool    `json:"hasChildren"`
}

// ResolveChildren resolves the delivery/return children of the given order.
// Embedded child_orders on the parent take precedence in insertion order, then
// the flat list is scanned for parent_order_id matches, skipping identifiers
// already collected. A nil order yields an empty result, never an error.
// Resolution is side-effect-free: neither the order nor allOrders is mutated.
func ResolveChildren(order *Order, allOrders []Order) OrderRelations {
	if order == nil {
		return OrderRelations{}
	}
	return resolve(order.ID, order.ChildOrders, allOrders)
}

// ResolveChildrenByID is ResolveChildren for callers holding only an
// identifier; embedded children are unavailable on this path.
func ResolveChildrenByID(orderID string, allOrders []Order) OrderRelations {
	return resolve(orderID, nil, allOrders)
}

func resolve(parentID string, embedded []Order, allOrders []Order) OrderRelations {
	if parentID == "" {
		return OrderRelations{}
	}

	seen := make(map[string]bool)
	var children []Order
	collect := func(o Order) {
		if o.ID == "" || seen[o.ID] {
			return
		}
		seen[o.ID] = true
		children = append(children, o)
	}

	for _, child := range embedded {
		collect(child)
	}
	for _, candidate := range allOrders {
		if candidate.ParentOrderID == parentID {
			collect(candidate)
		}
	}

	rel := OrderRelations{
		Children:    children,
		HasChildren: len(children) > 0,
	}
	// First match wins when the data holds duplicate typed children.
	for i := range children {
		switch children[i].Type {
		case OrderTypeDelivery:
			if rel.Delivery == nil {
				rel.Delivery = &children[i]
			}
		case OrderTypeReturn:
			if rel.Return == nil {
				rel.Return = &children[i]
			}
		}
	}
	rel.HasDelivery = rel.Delivery != nil
	rel.HasReturn = rel.Return != nil
	rel.HasExchange = rel.HasDelivery && rel.HasReturn
	return rel
}

// ProcessedOrder is a root order annotated with its resolved relations for
// list-screen display.
type ProcessedOrder struct {
	Order
	Relations OrderRelations `json:"relations"`
}

// BuildProcessedList selects the root orders from a flat collection, attaches
// their resolved relations, and orders them newest-first (stable on ties).
// The input slice and its records are left untouched.
func BuildProcessedList(allOrders []Order) []ProcessedOrder {
	var processed []ProcessedOrder
	for i := range allOrders {
		if !allOrders[i].IsRoot() {
			continue
		}
		processed = append(processed, ProcessedOrder{
			Order:     allOrders[i],
			Relations: ResolveChildren(&allOrders[i], allOrders),
		})
	}
	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].CreatedAt.After(processed[j].CreatedAt)
	})
	return processed
}
