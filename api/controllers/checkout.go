package controllers

import (
	"net/http"

	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/api/validators"
	"github.com/shopmart/shopmart-backend/internal/orders"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// Checkout materializes the session's cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		order, err := svc.PlaceOrder(r.Context(), sessionID, orders.PlaceOrderInput{
			CustomerInfo: orders.CustomerInfo{
				Email:      payload.Email,
				Address:    payload.Address,
				City:       payload.City,
				PostalCode: payload.PostalCode,
			},
			PaymentMethod: orders.PaymentMethod(payload.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type checkoutRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	PostalCode    string `json:"postal_code" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}
