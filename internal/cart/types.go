package cart

import (
	"github.com/shopspring/decimal"

	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/pricing"
)

const stateField = "cart"

// StateKey is the persistence key holding a session's cart.
func StateKey(sessionID string) string {
	return kv.SessionKey(sessionID, stateField)
}

// LineItem is one product entry in a cart. Title, price and image are
// snapshots taken when the product was first added; later catalog changes do
// not touch them.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered line-item collection, first-added-first. At most one
// line item exists per product id.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Lines projects the cart into the pricing input.
func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}

// ProductSnapshot carries the add-time product data copied into a new line item.
type ProductSnapshot struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Image     string
}
