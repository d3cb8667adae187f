package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/middleware"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/validators"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/storefront"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

// StaleListingHeader marks a listing response that was superseded.
const StaleListingHeader = "X-Listing-Stale"

// Home renders the full storefront. Query parameters: category filters the
// listing, product opens the detail dialog, view=cart opens the cart.
func Home(svc Storefront, views PageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		q := storefront.Query{
			Category: validators.SanitizeCategory(query.Get("category")),
			CartOpen: query.Get("view") == "cart",
		}
		productID, idErr := validators.ParseQueryID(r, "product")
		if idErr == nil {
			q.ProductID = productID
		}

		page, err := svc.Home(ctx, middleware.SessionIDFromContext(ctx), q)
		if err != nil {
			writeHTMLError(ctx, logg, w, err)
			return
		}
		if idErr != nil && page.Flash == nil {
			page.Flash = &render.Flash{Level: render.FlashError, Message: render.MsgDetailsFailed}
		}
		if msg, ok := consumeFlash(w, r); ok {
			msg.apply(&page)
		}

		writeHTML(ctx, logg, w, http.StatusOK, func(out io.Writer) error {
			return views.Page(out, page)
		})
	}
}

// ProductsFragment renders the product grid for one category. The optional
// page parameter names the rendered page instance and seq is the client's
// request stamp within it; a superseded request gets an empty 204 so the page
// keeps the newer grid.
func ProductsFragment(svc Storefront, views PageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		page, err := validators.ParseQueryUint(r, "page", 0)
		if err != nil {
			writeHTMLError(ctx, logg, w, err)
			return
		}
		seq, err := validators.ParseQueryUint(r, "seq", 0)
		if err != nil {
			writeHTMLError(ctx, logg, w, err)
			return
		}
		category := validators.SanitizeCategory(r.URL.Query().Get("category"))

		grid, err := svc.SelectCategory(ctx, middleware.SessionIDFromContext(ctx), category, page, seq)
		if errors.Is(err, storefront.ErrStaleListing) {
			w.Header().Set(StaleListingHeader, "1")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			writeHTMLError(ctx, logg, w, err)
			return
		}
		writeHTML(ctx, logg, w, http.StatusOK, func(out io.Writer) error {
			return views.Products(out, grid)
		})
	}
}

// CartFragment renders the cart panel of the session.
func CartFragment(svc Storefront, views PageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result, err := svc.Cart(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			writeHTMLError(ctx, logg, w, err)
			return
		}
		writeHTML(ctx, logg, w, http.StatusOK, func(out io.Writer) error {
			return views.Cart(out, result.Cart)
		})
	}
}

// ProductDetails resolves the product and sends the shopper to the page with
// its detail dialog open.
func ProductDetails(svc Storefront, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			setFlash(w, flashMessage{Level: render.FlashError, Message: render.MsgDetailsFailed})
			redirect(w, r, "/")
			return
		}
		if _, err := svc.ShowDetails(ctx, id); err != nil {
			setFlash(w, flashMessage{Level: render.FlashError, Message: render.MsgDetailsFailed})
			redirect(w, r, "/")
			return
		}
		redirect(w, r, "/?product="+strconv.FormatInt(id, 10))
	}
}
