package controllers

import (
	"net/http"

	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/internal/orders"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// OrdersList returns the session's order history, oldest first.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		history, err := svc.List(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}
