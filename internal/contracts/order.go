package contracts

import (
	"fmt"
	"strings"
	"time"
)

// OrderType distinguishes buy and sell intents.
type OrderType string

const (
	OrderTypeBuy  OrderType = "Buy"
	OrderTypeSell OrderType = "Sell"
)

// OrderStatus tracks an order through the ledger.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPlaced    OrderStatus = "Placed"
	OrderStatusExecuted  OrderStatus = "Executed"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusFailed    OrderStatus = "Failed"
)

// ParseOrderStatus parses a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range []OrderStatus{
		OrderStatusPending, OrderStatusPlaced, OrderStatusExecuted,
		OrderStatusCancelled, OrderStatusFailed,
	} {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is a rebalance order intent. Buys come from a month's added
// set, sells from the removed set of the preceding month's holdings.
type Order struct {
	ID             string      `json:"order_id"`
	Symbol         string      `json:"symbol"`
	Type           OrderType   `json:"order_type"`
	Status         OrderStatus `json:"order_status"`
	Strategy       string      `json:"strategy"`
	Universe       string      `json:"universe"`
	Month          MonthKey    `json:"month"`
	PlacementDate  time.Time   `json:"order_placement_date"`
	ReferencePrice float64     `json:"reference_price"`
	CreatedAt      time.Time   `json:"created_on"`
}
