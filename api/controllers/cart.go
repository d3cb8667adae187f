package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/middleware"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/validators"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/storefront"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const cartPage = "/?view=cart"

// AddCartItem adds one unit of the posted product and returns to the page.
func AddCartItem(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := validators.ParseAddItemForm(r)
		if err != nil {
			setFlash(w, flashMessage{Level: render.FlashError, Message: render.MsgAddToCartFailed})
			redirect(w, r, "/")
			return
		}
		result, err := svc.AddToCart(ctx, middleware.SessionIDFromContext(ctx), form.ID, form.From == "detail")
		if err != nil {
			logError(ctx, logg, "cart.add_failed", err)
			setFlash(w, flashMessage{Level: render.FlashError, Message: render.MsgAddToCartFailed})
		} else if result.Flash != nil {
			setFlash(w, flashFrom(result.Flash))
		}
		redirect(w, r, "/")
	}
}

// MutateCartItem applies increase, decrease or remove to one cart line.
func MutateCartItem(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := validators.ParseLineActionForm(r, chi.URLParam(r, "productID"))
		if err != nil {
			setFlash(w, flashMessage{Level: render.FlashError, Message: responses.PublicMessage(err)})
			redirect(w, r, cartPage)
			return
		}
		if _, err := svc.MutateCartLine(ctx, middleware.SessionIDFromContext(ctx), form.ID, form.Action); err != nil {
			logError(ctx, logg, "cart.mutate_failed", err)
			setFlash(w, flashMessage{Level: render.FlashError, Message: responses.PublicMessage(err)})
		}
		redirect(w, r, cartPage)
	}
}

// ClearCart empties the cart and keeps it open.
func ClearCart(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, err := svc.ClearCart(ctx, middleware.SessionIDFromContext(ctx)); err != nil {
			logError(ctx, logg, "cart.clear_failed", err)
			setFlash(w, flashMessage{Level: render.FlashError, Message: responses.PublicMessage(err)})
		}
		redirect(w, r, cartPage)
	}
}

// Checkout places the order. An empty cart stays open with a warning.
func Checkout(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result, err := svc.Checkout(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			logError(ctx, logg, "cart.checkout_failed", err)
			setFlash(w, flashMessage{Level: render.FlashError, Message: responses.PublicMessage(err)})
			redirect(w, r, cartPage)
			return
		}
		if result.Flash != nil {
			setFlash(w, flashFrom(result.Flash))
		}
		if result.Cart.Open {
			redirect(w, r, cartPage)
			return
		}
		redirect(w, r, "/")
	}
}

type cartLinePayload struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartPayload struct {
	Items      []cartLinePayload `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

func newCartPayload(result storefront.CartResult) cartPayload {
	payload := cartPayload{
		Items:      make([]cartLinePayload, 0, len(result.Lines)),
		TotalItems: result.Total.Items,
		TotalPrice: result.Total.Price,
	}
	for _, line := range result.Lines {
		payload.Items = append(payload.Items, cartLinePayload{
			ID:       line.ID,
			Title:    line.Title,
			Image:    line.Image,
			Price:    line.Price,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal(),
		})
	}
	return payload
}

// CartJSON returns the session's cart in the JSON envelope.
func CartJSON(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result, err := svc.Cart(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// CartLineJSON applies a line action and returns the updated cart.
func CartLineJSON(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := validators.ParseLineActionJSON(r, chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.MutateCartLine(ctx, middleware.SessionIDFromContext(ctx), form.ID, form.Action)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// AddCartItemJSON adds one unit and returns the updated cart.
func AddCartItemJSON(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form, err := validators.ParseAddItemJSON(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.AddToCart(ctx, middleware.SessionIDFromContext(ctx), form.ID, false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartPayload(result))
	}
}
