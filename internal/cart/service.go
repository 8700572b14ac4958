// Package cart owns the session-scoped shopping cart: an ordered,
// persistently stored line-item collection keyed by product id.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// Service exposes the cart operations. Every mutation persists the resulting
// state before returning; in-memory and stored state never diverge.
type Service interface {
	Get(ctx context.Context, sessionID string) (Cart, error)
	Add(ctx context.Context, sessionID string, product ProductSnapshot, delta int) (Cart, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store  kv.Store
	Logger *logger.Logger
}

type service struct {
	store kv.Store
	logg  *logger.Logger
}

// NewService builds a cart service backed by the provided store.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persistence store is required")
	}
	return &service{store: params.Store, logg: params.Logger}, nil
}

// Get loads the persisted cart. A missing key yields an empty cart; corrupt
// stored JSON fails closed to empty rather than surfacing a parse error.
func (s *service) Get(ctx context.Context, sessionID string) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}

	raw, err := s.store.Get(ctx, StateKey(sessionID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return Cart{}, nil
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "cart.state_corrupt, resetting to empty")
		}
		return Cart{}, nil
	}
	return Cart{Items: items}, nil
}

// Add merges the product into the cart: an existing line item gains delta
// units, otherwise a new line item is appended with the product snapshot.
func (s *service) Add(ctx context.Context, sessionID string, product ProductSnapshot, delta int) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}
	if strings.TrimSpace(product.ProductID) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if product.UnitPrice.IsNegative() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if delta < 1 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i := range current.Items {
		if current.Items[i].ProductID == product.ProductID {
			current.Items[i].Quantity += delta
			merged = true
			break
		}
	}
	if !merged {
		current.Items = append(current.Items, LineItem{
			ProductID: product.ProductID,
			Title:     product.Title,
			UnitPrice: product.UnitPrice,
			Image:     product.Image,
			Quantity:  delta,
		})
	}

	if err := s.persist(ctx, sessionID, current); err != nil {
		return Cart{}, err
	}
	return current, nil
}

// SetQuantity overwrites the quantity in place, keeping the line item's
// position. A quantity below one removes the item. An absent product id is a
// silent no-op, mirroring the storefront's filter/map semantics.
func (s *service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}
	if quantity < 1 {
		return s.Remove(ctx, sessionID, productID)
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	changed := false
	for i := range current.Items {
		if current.Items[i].ProductID == productID {
			current.Items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		return current, nil
	}

	if err := s.persist(ctx, sessionID, current); err != nil {
		return Cart{}, err
	}
	return current, nil
}

// Remove deletes the matching line item; absent ids are not an error.
func (s *service) Remove(ctx context.Context, sessionID, productID string) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}

	kept := current.Items[:0]
	for _, item := range current.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(current.Items) {
		return current, nil
	}
	current.Items = kept

	if err := s.persist(ctx, sessionID, current); err != nil {
		return Cart{}, err
	}
	return current, nil
}

// Clear empties the cart. Order placement is the only expected caller.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, StateKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) persist(ctx context.Context, sessionID string, cart Cart) error {
	encoded, err := json.Marshal(cart.Items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, StateKey(sessionID), encoded); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
