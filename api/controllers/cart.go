package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/api/validators"
	cartsvc "github.com/shopmart/shopmart-backend/internal/cart"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
	"github.com/shopmart/shopmart-backend/pkg/pricing"
)

// CartFetch returns the session's cart with its computed totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		record, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartAdd merges a product into the cart.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		record, err := svc.Add(r.Context(), sessionID, cartsvc.ProductSnapshot{
			ProductID: payload.ProductID,
			Title:     payload.Title,
			UnitPrice: payload.Price,
			Image:     payload.Image,
		}, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartSetQuantity overwrites one line item's quantity.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		productID := chi.URLParam(r, "productId")
		record, err := svc.SetQuantity(r.Context(), sessionID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartRemove drops one line item from the cart.
func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		productID := chi.URLParam(r, "productId")
		record, err := svc.Remove(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear empties the session's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cartsvc.Cart{}))
	}
}

type addCartItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity" validate:"min=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartResponse struct {
	Items     []cartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Tax       decimal.Decimal    `json:"tax"`
	Shipping  decimal.Decimal    `json:"shipping"`
	Total     decimal.Decimal    `json:"total"`
}

func newCartResponse(record cartsvc.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(record.Items))
	count := 0
	for _, item := range record.Items {
		count += item.Quantity
		items = append(items, cartItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	// An empty cart quotes to zeros; the flat shipping fee only applies once
	// there is something to ship.
	var quote pricing.Quote
	if !record.IsEmpty() {
		quote = pricing.QuoteFor(record.Lines())
	}
	return cartResponse{
		Items:     items,
		ItemCount: count,
		Subtotal:  quote.Subtotal,
		Tax:       quote.Tax,
		Shipping:  quote.Shipping,
		Total:     quote.Total,
	}
}
