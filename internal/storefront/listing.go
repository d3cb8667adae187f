package storefront

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

const defaultTrendingLimit = 3

// Query selects the optional parts of the home page.
type Query struct {
	Category  string
	ProductID int64
	CartOpen  bool
}

// Home loads categories, the listing and trending products concurrently and
// renders them with the session's cart. A failing catalog region is reported
// inside that region only; a failing cart read fails the page.
func (d *Dispatcher) Home(ctx context.Context, sessionID string, q Query) (render.Page, error) {
	if err := requireSession(sessionID); err != nil {
		return render.Page{}, err
	}
	category := normalizeCategory(q.Category)
	listingPage := d.sessions.newListing(sessionID)

	page := render.Page{Year: d.now().Year()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Categories = d.loadCategories(gctx, category)
		return nil
	})
	g.Go(func() error {
		page.Products = d.loadListing(gctx, category, listingPage, 0)
		return nil
	})
	g.Go(func() error {
		page.Trending = d.loadTrending(gctx)
		return nil
	})
	g.Go(func() error {
		return d.sessions.withCart(sessionID, func() error {
			store, err := d.openCart(gctx, sessionID)
			if err != nil {
				return err
			}
			page.Cart = d.cartView(store)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return render.Page{}, err
	}
	page.Cart.Open = q.CartOpen

	if q.ProductID > 0 {
		detail, err := d.ShowDetails(ctx, q.ProductID)
		if err != nil {
			page.Flash = &render.Flash{Level: render.FlashError, Message: render.MsgDetailsFailed}
		} else {
			page.Detail = &detail
		}
	}
	return page, nil
}

// SelectCategory fetches one category listing for the page instance minted by
// Home. A zero seq is stamped by the server; otherwise seq is the client's
// stamp. The result is discarded with ErrStaleListing when a newer stamp of
// the same page exists once the fetch completes; other pages of the session
// never supersede it. Fetch failures are rendered in the grid, not returned.
func (d *Dispatcher) SelectCategory(ctx context.Context, sessionID, category string, page, seq uint64) (render.ProductGrid, error) {
	if err := requireSession(sessionID); err != nil {
		return render.ProductGrid{}, err
	}
	if seq == 0 {
		seq = d.sessions.nextSeq(sessionID, page)
	} else {
		d.sessions.observeSeq(sessionID, page, seq)
	}

	grid := d.loadListing(ctx, normalizeCategory(category), page, seq)
	if !d.sessions.isLatest(sessionID, page, seq) {
		return render.ProductGrid{}, ErrStaleListing
	}
	return grid, nil
}

// ShowDetails resolves a product through the cache for the detail dialog.
func (d *Dispatcher) ShowDetails(ctx context.Context, id int64) (render.DetailView, error) {
	if id <= 0 {
		return render.DetailView{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := d.cache.Get(ctx, id)
	if err != nil {
		d.logError(ctx, "details loading failed", err)
		return render.DetailView{}, pkgerrors.Wrap(codeOf(err), err, render.MsgDetailsFailed)
	}
	return render.NewDetailView(product), nil
}

func (d *Dispatcher) loadCategories(ctx context.Context, active string) render.CategoryBar {
	categories, err := d.source.ListCategories(ctx)
	if err != nil {
		d.logError(ctx, "category loading failed", err)
		return render.CategoryBar{
			Buttons: render.NewCategoryButtons(nil, catalog.AllCategory),
			Error:   render.MsgCategoriesFailed,
		}
	}
	return render.CategoryBar{Buttons: render.NewCategoryButtons(categories, active)}
}

func (d *Dispatcher) loadListing(ctx context.Context, category string, page, seq uint64) render.ProductGrid {
	grid := render.ProductGrid{Category: category, Page: page, Seq: seq}
	products, err := d.source.ListByCategory(ctx, category)
	if err != nil {
		ctx = d.withField(ctx, "category", category)
		d.logError(ctx, "product loading failed", err)
		grid.Error = render.MsgListingFailed
		return grid
	}
	d.cache.AddAll(products)
	grid.Cards = render.NewProductCards(products, d.settings.Limits.CardTitle)
	return grid
}

func (d *Dispatcher) loadTrending(ctx context.Context) render.Trending {
	products, err := d.source.ListProducts(ctx)
	if err != nil {
		d.logError(ctx, "trending loading failed", err)
		return render.Trending{Error: render.MsgTrendingFailed}
	}
	d.cache.AddAll(products)
	top := TopRated(products, d.settings.TrendingLimit)
	return render.Trending{Cards: render.NewProductCards(top, d.settings.Limits.CardTitle)}
}

// TopRated returns the n best rated products. Unknown ratings count as 0 and
// ties keep their listing order.
func TopRated(products []catalog.Product, n int) []catalog.Product {
	sorted := make([]catalog.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating.Rate > sorted[j].Rating.Rate
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return catalog.AllCategory
	}
	return category
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeDependency
}
