package controllers

import (
	"net/http"

	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/api/validators"
	"github.com/shopmart/shopmart-backend/internal/wishlist"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// WishlistFetch pulls the upstream wishlist and refreshes the session cache.
func WishlistFetch(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		products, err := svc.Refresh(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// WishlistToggle flips a product's liked state.
func WishlistToggle(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		var payload toggleWishlistRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		result, err := svc.Toggle(r.Context(), sessionID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// WishlistLikedIDs returns the cached liked product ids without an upstream call.
func WishlistLikedIDs(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		ids, err := svc.LikedIDs(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]string{"product_ids": ids})
	}
}

type toggleWishlistRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}
