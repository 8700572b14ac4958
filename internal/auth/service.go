// Package auth keeps the session's opaque upstream credential and user
// profile, and proxies the password-reset flow. The storefront never mints
// tokens itself; the upstream API owns authentication.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

const (
	tokenField      = "token"
	userField       = "user"
	resetEmailField = "reset_email"
)

// User is the profile stored alongside the credential.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ResetClient is the upstream surface used by the password-reset flow.
type ResetClient interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, code string) (string, error)
}

// Service stores session credentials and drives the reset-code handoff.
type Service interface {
	SaveCredentials(ctx context.Context, sessionID, token string, user User) error
	ClearCredentials(ctx context.Context, sessionID string) error
	Token(ctx context.Context, sessionID string) (string, error)
	User(ctx context.Context, sessionID string) (*User, error)
	ForgotPassword(ctx context.Context, sessionID, email string) (string, error)
	VerifyResetCode(ctx context.Context, sessionID, code string) (string, error)
	ResetEmail(ctx context.Context, sessionID string) (string, error)
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Store  kv.Store
	Client ResetClient
	Logger *logger.Logger
}

type service struct {
	store  kv.Store
	client ResetClient
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persistence store is required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reset client is required")
	}
	return &service{store: params.Store, client: params.Client, logg: params.Logger}, nil
}

// SaveCredentials persists the opaque upstream token and profile. Both are
// written in one batch so a session never holds a token without its user.
func (s *service) SaveCredentials(ctx context.Context, sessionID, token string, user User) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode user")
	}

	ops := []kv.Op{
		kv.SetOp(kv.SessionKey(sessionID, tokenField), []byte(trimmed)),
		kv.SetOp(kv.SessionKey(sessionID, userField), encoded),
	}
	if err := s.store.Apply(ctx, ops); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist credentials")
	}
	return nil
}

// ClearCredentials drops the token and profile, ending the signed-in state.
func (s *service) ClearCredentials(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	ops := []kv.Op{
		kv.DeleteOp(kv.SessionKey(sessionID, tokenField)),
		kv.DeleteOp(kv.SessionKey(sessionID, userField)),
	}
	if err := s.store.Apply(ctx, ops); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear credentials")
	}
	return nil
}

// Token returns the stored credential, or empty when the session is signed out.
func (s *service) Token(ctx context.Context, sessionID string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	raw, err := s.store.Get(ctx, kv.SessionKey(sessionID, tokenField))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token")
	}
	return string(raw), nil
}

// User returns the stored profile; corrupt stored JSON fails closed to absent.
func (s *service) User(ctx context.Context, sessionID string) (*User, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	raw, err := s.store.Get(ctx, kv.SessionKey(sessionID, userField))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "auth.user_corrupt, treating as signed out")
		}
		return nil, nil
	}
	return &user, nil
}

// ForgotPassword proxies the reset request upstream and records the email so
// the verify step can hand it back to the reset form.
func (s *service) ForgotPassword(ctx context.Context, sessionID, email string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	message, err := s.client.ForgotPassword(ctx, trimmed)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, kv.SessionKey(sessionID, resetEmailField), []byte(trimmed)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist reset email")
	}
	return message, nil
}

// VerifyResetCode proxies the emailed code upstream.
func (s *service) VerifyResetCode(ctx context.Context, sessionID, code string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	return s.client.VerifyResetCode(ctx, code)
}

// ResetEmail returns the email captured by the forgot-password step, or
// empty when the flow was never started.
func (s *service) ResetEmail(ctx context.Context, sessionID string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	raw, err := s.store.Get(ctx, kv.SessionKey(sessionID, resetEmailField))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reset email")
	}
	return string(raw), nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
