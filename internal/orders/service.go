// Package orders materializes carts into immutable order records and keeps
// the per-session, append-only order history.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shopmart/shopmart-backend/internal/cart"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/logger"
	"github.com/shopmart/shopmart-backend/pkg/pricing"
)

// Service exposes order placement and history retrieval.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (*Order, error)
	List(ctx context.Context, sessionID string) ([]Order, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Store  kv.Store
	Cart   cart.Service
	Logger *logger.Logger

	// Now overrides the order clock in tests.
	Now func() time.Time
}

type service struct {
	store    kv.Store
	cart     cart.Service
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

// NewService builds an orders service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "persistence store is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:    params.Store,
		cart:     params.Cart,
		logg:     params.Logger,
		now:      now,
		validate: validator.New(),
	}, nil
}

// PlaceOrder snapshots the cart, freezes the computed totals into an Order,
// appends it to the history and clears the cart. The history append and the
// cart delete commit as one atomic batch, so a persistence fault cannot
// record an order while leaving the cart behind, or vice versa.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (*Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.validate.Struct(input.CustomerInfo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "customer info is incomplete")
	}
	if !input.PaymentMethod.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	snapshot, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot place an order with an empty cart")
	}

	history, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteFor(snapshot.Lines())
	placedAt := s.now().UTC()

	order := Order{
		OrderID:       s.nextOrderID(placedAt, history),
		Items:         copyItems(snapshot.Items),
		Subtotal:      quote.Subtotal,
		Tax:           quote.Tax,
		Shipping:      quote.Shipping,
		FinalTotal:    quote.Total,
		CustomerInfo:  input.CustomerInfo,
		PaymentMethod: input.PaymentMethod,
		PlacedAt:      placedAt,
	}

	encoded, err := json.Marshal(append(history, order))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order history")
	}

	ops := []kv.Op{
		kv.SetOp(HistoryKey(sessionID), encoded),
		kv.DeleteOp(cart.StateKey(sessionID)),
	}
	if err := s.store.Apply(ctx, ops); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	return &order, nil
}

// List returns the session's order history, oldest first. Corrupt stored
// JSON fails closed to an empty history.
func (s *service) List(ctx context.Context, sessionID string) ([]Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	raw, err := s.store.Get(ctx, HistoryKey(sessionID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []Order{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}

	var history []Order
	if err := json.Unmarshal(raw, &history); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "orders.history_corrupt, resetting to empty")
		}
		return []Order{}, nil
	}
	return history, nil
}

// nextOrderID derives a time-based id, bumped with a suffix when the same
// millisecond already produced an order in this history.
func (s *service) nextOrderID(placedAt time.Time, history []Order) string {
	taken := make(map[string]struct{}, len(history))
	for _, past := range history {
		taken[past.OrderID] = struct{}{}
	}

	id := fmt.Sprintf("ORD-%d", placedAt.UnixMilli())
	if _, exists := taken[id]; !exists {
		return id
	}
	for bump := 1; ; bump++ {
		candidate := fmt.Sprintf("%s-%d", id, bump)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

func copyItems(items []cart.LineItem) []cart.LineItem {
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	return out
}
