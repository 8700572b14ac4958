package controllers

import (
	"net/http"

	"github.com/shopmart/shopmart-backend/api/middleware"
	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/api/validators"
	"github.com/shopmart/shopmart-backend/internal/auth"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// AuthSaveToken stores the upstream credential and profile for this session.
func AuthSaveToken(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload saveTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		err := svc.SaveCredentials(r.Context(), sessionID, payload.Token, auth.User{
			Name:  payload.Name,
			Email: payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "signed_in"})
	}
}

// AuthSignOut drops the stored credential and profile.
func AuthSignOut(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.ClearCredentials(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// AuthSession reports the session's signed-in state and stored profile.
func AuthSession(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		token, err := svc.Token(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.User(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionResponse{
			SignedIn: token != "",
			User:     user,
		})
	}
}

// AuthForgotPassword proxies the reset request and records the email.
func AuthForgotPassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload forgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		message, err := svc.ForgotPassword(r.Context(), sessionID, payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": message})
	}
}

// AuthVerifyResetCode submits the emailed reset code and hands back the
// email the flow started with.
func AuthVerifyResetCode(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload verifyResetCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		message, err := svc.VerifyResetCode(r.Context(), sessionID, payload.ResetCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		email, err := svc.ResetEmail(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": message, "email": email})
	}
}

type saveTokenRequest struct {
	Token string `json:"token" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyResetCodeRequest struct {
	ResetCode string `json:"reset_code" validate:"required"`
}

type sessionResponse struct {
	SignedIn bool       `json:"signed_in"`
	User     *auth.User `json:"user,omitempty"`
}
