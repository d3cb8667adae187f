package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/api/responses"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/storefront"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

// Storefront is the shopper-facing surface the handlers drive.
type Storefront interface {
	Home(ctx context.Context, sessionID string, q storefront.Query) (render.Page, error)
	SelectCategory(ctx context.Context, sessionID, category string, page, seq uint64) (render.ProductGrid, error)
	ShowDetails(ctx context.Context, id int64) (render.DetailView, error)
	Cart(ctx context.Context, sessionID string) (storefront.CartResult, error)
	AddToCart(ctx context.Context, sessionID string, id int64, fromDetail bool) (storefront.CartResult, error)
	MutateCartLine(ctx context.Context, sessionID string, id int64, action string) (storefront.CartResult, error)
	ClearCart(ctx context.Context, sessionID string) (storefront.CartResult, error)
	Checkout(ctx context.Context, sessionID string) (storefront.CartResult, error)
	SubscribeNewsletter(ctx context.Context, sessionID, email string) (string, error)
}

// PageRenderer writes HTML for full pages and the fragments fetched by the page.
type PageRenderer interface {
	Page(w io.Writer, page render.Page) error
	Products(w io.Writer, grid render.ProductGrid) error
	Cart(w io.Writer, view render.CartView) error
}

func writeHTML(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		writeHTMLError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil && logg != nil {
		logg.Warn(ctx, "failed to write html response")
	}
}

func writeHTMLError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	logError(ctx, logg, "request.error", err)
	http.Error(w, responses.PublicMessage(err), responses.StatusFor(err))
}

// logError records err with its dumped fields; a nil logger drops it.
func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	logg.Error(ctx, msg, err)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
