package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shopmart/shopmart-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the caller's session id from the request header, minting
// a fresh one when absent. The id is echoed back so a browser client can
// store it and keep its cart across requests. One session has exactly one
// writer; concurrent tabs sharing an id overwrite each other, which matches
// the storefront's local-storage semantics.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
