package storefront

import (
	"context"
	"strings"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

// Line actions accepted by MutateCartLine.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionRemove   = "remove"
)

// CartResult is the cart after an action plus what the shopper should see.
type CartResult struct {
	Cart  render.CartView
	Lines []cart.LineItem
	Total cart.Totals
	Flash *render.Flash
	// CloseDetail is set when the action came from the detail dialog.
	CloseDetail bool
}

// Cart returns the session's current cart.
func (d *Dispatcher) Cart(ctx context.Context, sessionID string) (CartResult, error) {
	if err := requireSession(sessionID); err != nil {
		return CartResult{}, err
	}
	var result CartResult
	err := d.sessions.withCart(sessionID, func() error {
		store, err := d.openCart(ctx, sessionID)
		if err != nil {
			return err
		}
		result = d.result(store)
		return nil
	})
	return result, err
}

// AddToCart resolves the product through the cache and adds one unit. Adding
// from the detail dialog closes it whether or not the add succeeded.
func (d *Dispatcher) AddToCart(ctx context.Context, sessionID string, id int64, fromDetail bool) (CartResult, error) {
	if err := requireSession(sessionID); err != nil {
		return CartResult{CloseDetail: fromDetail}, err
	}
	if id <= 0 {
		return CartResult{CloseDetail: fromDetail}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	product, err := d.cache.Get(ctx, id)
	if err != nil {
		d.logError(d.withField(ctx, "product_id", id), "add to cart failed", err)
		return CartResult{CloseDetail: fromDetail}, pkgerrors.Wrap(codeOf(err), err, render.MsgAddToCartFailed)
	}

	var result CartResult
	err = d.sessions.withCart(sessionID, func() error {
		store, err := d.openCart(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := store.AddOrIncrement(ctx, product); err != nil {
			return err
		}
		result = d.result(store)
		return nil
	})
	result.CloseDetail = fromDetail
	if err != nil {
		d.logError(d.withField(ctx, "product_id", id), "add to cart failed", err)
		return result, pkgerrors.Wrap(codeOf(err), err, render.MsgAddToCartFailed)
	}
	return result, nil
}

// MutateCartLine applies increase, decrease or remove to one line. Lines that
// are not in the cart are ignored.
func (d *Dispatcher) MutateCartLine(ctx context.Context, sessionID string, id int64, action string) (CartResult, error) {
	if err := requireSession(sessionID); err != nil {
		return CartResult{}, err
	}
	action = strings.ToLower(strings.TrimSpace(action))
	switch action {
	case ActionIncrease, ActionDecrease, ActionRemove:
	default:
		return CartResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown cart action").
			WithDetails(map[string]any{"action": action})
	}

	var result CartResult
	err := d.sessions.withCart(sessionID, func() error {
		store, err := d.openCart(ctx, sessionID)
		if err != nil {
			return err
		}
		switch action {
		case ActionIncrease:
			err = store.SetQuantityDelta(ctx, id, 1)
		case ActionDecrease:
			err = store.SetQuantityDelta(ctx, id, -1)
		case ActionRemove:
			err = store.Remove(ctx, id)
		}
		if err != nil {
			return err
		}
		result = d.result(store)
		result.Cart.Open = true
		return nil
	})
	return result, err
}

// ClearCart empties the cart and keeps the cart panel open.
func (d *Dispatcher) ClearCart(ctx context.Context, sessionID string) (CartResult, error) {
	if err := requireSession(sessionID); err != nil {
		return CartResult{}, err
	}
	var result CartResult
	err := d.sessions.withCart(sessionID, func() error {
		store, err := d.openCart(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := store.Clear(ctx); err != nil {
			return err
		}
		result = d.result(store)
		result.Cart.Open = true
		return nil
	})
	return result, err
}

// Checkout confirms the order total and clears the cart. An empty cart is a
// warning that leaves state untouched and the cart panel open.
func (d *Dispatcher) Checkout(ctx context.Context, sessionID string) (CartResult, error) {
	if err := requireSession(sessionID); err != nil {
		return CartResult{}, err
	}
	var result CartResult
	err := d.sessions.withCart(sessionID, func() error {
		store, err := d.openCart(ctx, sessionID)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			result = d.result(store)
			result.Cart.Open = true
			result.Flash = &render.Flash{Level: render.FlashWarning, Message: render.MsgCartEmpty}
			return nil
		}

		total := render.FormatCurrency(store.Totals().Price)
		if err := store.Clear(ctx); err != nil {
			return err
		}
		if d.logg != nil {
			d.logg.Info(d.withField(ctx, "order_total", total), "order placed")
		}
		result = d.result(store)
		result.Flash = &render.Flash{Level: render.FlashNotice, Message: render.OrderPlaced(total)}
		return nil
	})
	return result, err
}

func (d *Dispatcher) result(store *cart.Store) CartResult {
	return CartResult{
		Cart:  d.cartView(store),
		Lines: store.Items(),
		Total: store.Totals(),
	}
}
