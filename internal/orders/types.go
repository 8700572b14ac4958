package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopmart/shopmart-backend/internal/cart"
	"github.com/shopmart/shopmart-backend/pkg/kv"
)

const historyField = "orders"

// HistoryKey is the persistence key holding a session's order history.
func HistoryKey(sessionID string) string {
	return kv.SessionKey(sessionID, historyField)
}

// PaymentMethod tags how an order was paid. Card is the only supported
// method; payment itself is simulated.
type PaymentMethod string

const PaymentMethodCard PaymentMethod = "card"

func (p PaymentMethod) Valid() bool {
	return p == PaymentMethodCard
}

// CustomerInfo holds the shipping contact captured at checkout. Presence is
// the only structural requirement.
type CustomerInfo struct {
	Email      string `json:"email" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// Order is an immutable record materialized from a cart at placement time.
// Totals are frozen; they are never recomputed from live prices.
type Order struct {
	OrderID       string          `json:"order_id"`
	Items         []cart.LineItem `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	FinalTotal    decimal.Decimal `json:"final_total"`
	CustomerInfo  CustomerInfo    `json:"customer_info"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// PlaceOrderInput is the checkout submission payload.
type PlaceOrderInput struct {
	CustomerInfo  CustomerInfo
	PaymentMethod PaymentMethod
}
