package cart

import (
	"context"
	"fmt"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const (
	OpAdd      = "add"
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpRemove   = "remove"
	OpClear    = "clear"
)

type mutationObserver interface {
	IncCartMutation(op string)
}

// Store owns the line items of one cart. Every mutation writes the full cart
// to storage before it returns; the persisted and in-memory views are equal
// after any mutating call. A Store is not safe for concurrent use.
type Store struct {
	storage Storage
	key     string
	logg    *logger.Logger
	metrics mutationObserver

	items []LineItem
}

// StoreOption configures optional Store collaborators.
type StoreOption func(*Store)

func WithLogger(logg *logger.Logger) StoreOption {
	return func(s *Store) { s.logg = logg }
}

func WithMetrics(m mutationObserver) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// NewStore builds an empty cart persisted under key.
func NewStore(storage Storage, key string, opts ...StoreOption) *Store {
	s := &Store{storage: storage, key: key}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open builds a store and loads its persisted state.
func Open(ctx context.Context, storage Storage, key string, opts ...StoreOption) (*Store, error) {
	s := NewStore(storage, key, opts...)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key is the storage key of this cart.
func (s *Store) Key() string { return s.key }

// Load replaces the in-memory cart with the persisted one. Malformed data is
// logged and treated as an empty cart; only storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart storage")
	}
	s.items = nil
	if !found {
		return nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		if s.logg != nil {
			ctx = s.logg.WithField(ctx, "storage_key", s.key)
			s.logg.Warn(ctx, fmt.Sprintf("discarding unreadable cart: %v", err))
		}
		return nil
	}
	s.items = items
	return nil
}

// AddOrIncrement bumps the quantity of the product's line item, or appends a
// new line with quantity 1 snapshotting the product's title, image and price.
func (s *Store) AddOrIncrement(ctx context.Context, product catalog.Product) error {
	next := s.Items()
	if i := s.indexOf(product.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, LineItem{
			ID:       product.ID,
			Title:    product.Title,
			Image:    product.Image,
			Price:    product.Price,
			Quantity: 1,
		})
	}
	return s.commit(ctx, OpAdd, next)
}

// SetQuantityDelta changes a line's quantity by delta. A result below 1
// removes the line instead of clamping. Unknown ids are ignored.
func (s *Store) SetQuantityDelta(ctx context.Context, id int64, delta int) error {
	i := s.indexOf(id)
	if i < 0 || delta == 0 {
		return nil
	}

	op := OpIncrease
	if delta < 0 {
		op = OpDecrease
	}
	next := s.Items()
	if q := next[i].Quantity + delta; q < 1 {
		next = append(next[:i], next[i+1:]...)
	} else {
		next[i].Quantity = q
	}
	return s.commit(ctx, op, next)
}

// Remove deletes a line unconditionally. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, id int64) error {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	next := s.Items()
	return s.commit(ctx, OpRemove, append(next[:i], next[i+1:]...))
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.commit(ctx, OpClear, nil)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line for id, if present.
func (s *Store) Item(id int64) (LineItem, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// Len is the number of distinct line items.
func (s *Store) Len() int { return len(s.items) }

// Totals recomputes quantity and price totals from the full item list.
func (s *Store) Totals() Totals {
	return ComputeTotals(s.items)
}

func (s *Store) indexOf(id int64) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and only then adopts it, so a failed write leaves the
// previous state in place.
func (s *Store) commit(ctx context.Context, op string, next []LineItem) error {
	raw, err := encodeItems(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart storage")
	}
	s.items = next
	if s.metrics != nil {
		s.metrics.IncCartMutation(op)
	}
	return nil
}
