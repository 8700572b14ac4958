package catalog

import "github.com/shopspring/decimal"

// Product is the typed narrowing of the upstream product payload. Fields the
// storefront does not consume are dropped at this boundary.
type Product struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	PriceAfterDiscount decimal.Decimal `json:"priceAfterDiscount"`
	Discount           decimal.Decimal `json:"discount"`
	ImageCover         string          `json:"imageCover"`
	RatingsAverage     float64         `json:"ratingsAverage"`
	RatingsQuantity    int             `json:"ratingsQuantity"`
}

// EffectivePrice is the discounted price when present, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.PriceAfterDiscount.IsPositive() {
		return p.PriceAfterDiscount
	}
	return p.Price
}

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

type Subcategory struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
}

type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}
