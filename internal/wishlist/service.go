// Package wishlist mirrors the upstream wishlist into a per-session cache of
// liked product ids. The server is the source of truth: every successful
// fetch replaces the cache wholesale. Two rapid toggles on the same product
// race upstream and the last response wins; that limitation is accepted, not
// engineered away.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopmart/shopmart-backend/internal/catalog"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

const cacheField = "wishlist_ids"

// RemoteClient is the upstream wishlist surface.
type RemoteClient interface {
	GetWishlist(ctx context.Context, token string) ([]catalog.Product, error)
	ToggleWishlist(ctx context.Context, token, productID string) (string, error)
}

// TokenSource resolves the session's stored upstream credential.
type TokenSource interface {
	Token(ctx context.Context, sessionID string) (string, error)
}

// ToggleResult reports the outcome of a wishlist toggle.
type ToggleResult struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// Service exposes wishlist reconciliation for a session.
type Service interface {
	Refresh(ctx context.Context, sessionID string) ([]catalog.Product, error)
	Toggle(ctx context.Context, sessionID, productID string) (*ToggleResult, error)
	LikedIDs(ctx context.Context, sessionID string) ([]string, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store  kv.Store
	Client RemoteClient
	Tokens TokenSource
	Logger *logger.Logger
}

type service struct {
	store  kv.Store
	client RemoteClient
	tokens TokenSource
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persistence store is required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote client is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token source is required")
	}
	return &service{
		store:  params.Store,
		client: params.Client,
		tokens: params.Tokens,
		logg:   params.Logger,
	}, nil
}

// Refresh fetches the upstream wishlist and replaces the cached id set with
// whatever the server returned.
func (s *service) Refresh(ctx context.Context, sessionID string) ([]catalog.Product, error) {
	token, err := s.requireToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	products, err := s.client.GetWishlist(ctx, token)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	if err := s.persistIDs(ctx, sessionID, ids); err != nil {
		return nil, err
	}
	return products, nil
}

// Toggle flips the product's liked state upstream, then mirrors the flip in
// the cache. The reported state is derived from the cache before the call.
func (s *service) Toggle(ctx context.Context, sessionID, productID string) (*ToggleResult, error) {
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	token, err := s.requireToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	message, err := s.client.ToggleWishlist(ctx, token, trimmed)
	if err != nil {
		return nil, err
	}

	ids, err := s.LikedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	liked := true
	next := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		if id == trimmed {
			liked = false
			continue
		}
		next = append(next, id)
	}
	if liked {
		next = append(next, trimmed)
	}

	if err := s.persistIDs(ctx, sessionID, next); err != nil {
		return nil, err
	}
	return &ToggleResult{Message: message, Liked: liked}, nil
}

// LikedIDs returns the cached liked set; corrupt cache fails closed to empty.
func (s *service) LikedIDs(ctx context.Context, sessionID string) ([]string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	raw, err := s.store.Get(ctx, kv.SessionKey(sessionID, cacheField))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []string{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist cache")
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "wishlist.cache_corrupt, resetting to empty")
		}
		return []string{}, nil
	}
	return ids, nil
}

func (s *service) requireToken(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the wishlist")
	}
	return token, nil
}

func (s *service) persistIDs(ctx context.Context, sessionID string, ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode wishlist cache")
	}
	if err := s.store.Set(ctx, kv.SessionKey(sessionID, cacheField), encoded); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist wishlist cache")
	}
	return nil
}
