package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

const testSession = "0b6c8f5e-7f53-4c55-9a57-2f1d5a3c9e10"

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing", Rating: catalog.Rating{Rate: 3.9, Count: 120, Known: true}},
		{ID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.3"), Category: "men's clothing", Rating: catalog.Rating{Rate: 4.1, Count: 259, Known: true}},
		{ID: 5, Title: "Bracelet", Price: decimal.RequireFromString("9.99"), Category: "jewelery", Rating: catalog.Rating{Rate: 4.6, Count: 400, Known: true}},
		{ID: 9, Title: "Hard Drive", Price: decimal.RequireFromString("64"), Category: "electronics"},
		{ID: 10, Title: "SSD", Price: decimal.RequireFromString("109"), Category: "electronics", Rating: catalog.Rating{Rate: 4.8, Count: 319, Known: true}},
	}
}

type fakeSource struct {
	mu         sync.Mutex
	products   []catalog.Product
	categories []string

	categoriesErr error
	listErr       error
	trendingErr   error

	gates    map[string]chan struct{}
	started  chan string
	requests []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		products:   testProducts(),
		categories: []string{"electronics", "jewelery", "men's clothing"},
		gates:      map[string]chan struct{}{},
	}
}

func (f *fakeSource) record(req string) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
}

func (f *fakeSource) ListProducts(context.Context) ([]catalog.Product, error) {
	f.record("products")
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return f.products, nil
}

func (f *fakeSource) ListByCategory(_ context.Context, category string) ([]catalog.Product, error) {
	f.record("category:" + category)
	if f.started != nil {
		f.started <- category
	}
	f.mu.Lock()
	gate := f.gates[category]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	if category == catalog.AllCategory {
		return f.products, nil
	}
	var out []catalog.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) ListCategories(context.Context) ([]string, error) {
	f.record("categories")
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeSource) GetProduct(_ context.Context, id int64) (catalog.Product, error) {
	f.record(fmt.Sprintf("product:%d", id))
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
}

type fakeLimiter struct {
	allowed bool
	err     error
	scopes  []string
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return false, 0, f.err
	}
	if f.allowed {
		return true, 1, nil
	}
	return false, 6, nil
}

type harness struct {
	source  *fakeSource
	storage *cart.MemoryStorage
	d       *Dispatcher
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	source := newFakeSource()
	storage := cart.NewMemoryStorage()
	opts = append([]Option{WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) })}, opts...)
	d, err := NewDispatcher(source, catalog.NewCache(source, nil), storage, Settings{
		StorageKey:       "swiftcart_cart_v1",
		TrendingLimit:    3,
		NewsletterLimit:  5,
		NewsletterWindow: time.Minute,
	}, opts...)
	require.NoError(t, err)
	return &harness{source: source, storage: storage, d: d}
}

func TestNewDispatcherValidatesDependencies(t *testing.T) {
	source := newFakeSource()
	cache := catalog.NewCache(source, nil)
	storage := cart.NewMemoryStorage()

	_, err := NewDispatcher(nil, cache, storage, Settings{StorageKey: "k"})
	assert.Error(t, err)
	_, err = NewDispatcher(source, cache, storage, Settings{})
	assert.Error(t, err)
	d, err := NewDispatcher(source, cache, storage, Settings{StorageKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, defaultTrendingLimit, d.settings.TrendingLimit)
	assert.Equal(t, render.DefaultCardTitleMax, d.settings.Limits.CardTitle)
}

func TestHomeRendersAllRegions(t *testing.T) {
	h := newHarness(t)

	page, err := h.d.Home(context.Background(), testSession, Query{})
	require.NoError(t, err)

	require.Len(t, page.Categories.Buttons, 4)
	assert.Equal(t, catalog.AllCategory, page.Categories.Buttons[0].Name)
	assert.True(t, page.Categories.Buttons[0].Active)
	assert.Empty(t, page.Categories.Error)

	assert.Equal(t, catalog.AllCategory, page.Products.Category)
	assert.Len(t, page.Products.Cards, 5)
	assert.NotZero(t, page.Products.Page)
	assert.Zero(t, page.Products.Seq)

	require.Len(t, page.Trending.Cards, 3)
	assert.EqualValues(t, 10, page.Trending.Cards[0].ID)
	assert.EqualValues(t, 5, page.Trending.Cards[1].ID)
	assert.EqualValues(t, 2, page.Trending.Cards[2].ID)

	assert.True(t, page.Cart.Empty())
	assert.Equal(t, "$0.00", page.Cart.TotalPrice)
	assert.False(t, page.Cart.Open)
	assert.Nil(t, page.Detail)
	assert.Equal(t, 2026, page.Year)
}

func TestHomeIsolatesRegionFailures(t *testing.T) {
	h := newHarness(t)
	h.source.categoriesErr = errors.New("categories down")
	h.source.listErr = errors.New("listing down")
	h.source.trendingErr = errors.New("trending down")

	page, err := h.d.Home(context.Background(), testSession, Query{Category: "electronics", CartOpen: true})
	require.NoError(t, err)

	require.Len(t, page.Categories.Buttons, 1)
	assert.True(t, page.Categories.Buttons[0].Active)
	assert.Equal(t, render.MsgCategoriesFailed, page.Categories.Error)
	assert.Equal(t, render.MsgListingFailed, page.Products.Error)
	assert.Equal(t, render.MsgTrendingFailed, page.Trending.Error)
	assert.True(t, page.Cart.Open)
}

func TestHomeDetailDialog(t *testing.T) {
	h := newHarness(t)

	page, err := h.d.Home(context.Background(), testSession, Query{ProductID: 5})
	require.NoError(t, err)
	require.NotNil(t, page.Detail)
	assert.Equal(t, "Price: $9.99", page.Detail.Price)
	assert.Nil(t, page.Flash)

	page, err = h.d.Home(context.Background(), testSession, Query{ProductID: 404})
	require.NoError(t, err)
	assert.Nil(t, page.Detail)
	require.NotNil(t, page.Flash)
	assert.Equal(t, render.MsgDetailsFailed, page.Flash.Message)
	assert.Equal(t, render.FlashError, page.Flash.Level)
}

func TestHomeCachesListedProducts(t *testing.T) {
	h := newHarness(t)
	_, err := h.d.Home(context.Background(), testSession, Query{})
	require.NoError(t, err)

	_, err = h.d.AddToCart(context.Background(), testSession, 1, false)
	require.NoError(t, err)
	assert.NotContains(t, h.source.requests, "product:1")
}

func TestSelectCategoryUsesCategoryListing(t *testing.T) {
	h := newHarness(t)

	grid, err := h.d.SelectCategory(context.Background(), testSession, "jewelery", 0, 0)
	require.NoError(t, err)
	require.Len(t, grid.Cards, 1)
	assert.EqualValues(t, 5, grid.Cards[0].ID)
	assert.Contains(t, h.source.requests, "category:jewelery")

	grid, err = h.d.SelectCategory(context.Background(), testSession, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, catalog.AllCategory, grid.Category)
	assert.Len(t, grid.Cards, 5)

	grid, err = h.d.SelectCategory(context.Background(), testSession, "toys", 0, 0)
	require.NoError(t, err)
	assert.True(t, grid.Empty())
}

func TestSelectCategoryDiscardsSupersededListing(t *testing.T) {
	h := newHarness(t)
	h.source.started = make(chan string, 2)
	gate := make(chan struct{})
	h.source.gates["electronics"] = gate

	type outcome struct {
		grid render.ProductGrid
		err  error
	}
	slow := make(chan outcome, 1)
	go func() {
		grid, err := h.d.SelectCategory(context.Background(), testSession, "electronics", 1, 1)
		slow <- outcome{grid, err}
	}()
	require.Equal(t, "electronics", <-h.source.started)

	fast, err := h.d.SelectCategory(context.Background(), testSession, "jewelery", 1, 2)
	require.Equal(t, "jewelery", <-h.source.started)
	require.NoError(t, err)
	assert.Equal(t, "jewelery", fast.Category)

	close(gate)
	res := <-slow
	assert.ErrorIs(t, res.err, ErrStaleListing)
}

func TestSelectCategoryOutOfOrderStampIsStale(t *testing.T) {
	h := newHarness(t)

	_, err := h.d.SelectCategory(context.Background(), testSession, "jewelery", 1, 5)
	require.NoError(t, err)
	_, err = h.d.SelectCategory(context.Background(), testSession, "electronics", 1, 4)
	assert.ErrorIs(t, err, ErrStaleListing)

	_, err = h.d.SelectCategory(context.Background(), "another-session", "electronics", 1, 1)
	assert.NoError(t, err)
}

func TestSelectCategoryPagesOfOneSessionAreIndependent(t *testing.T) {
	h := newHarness(t)

	first, err := h.d.Home(context.Background(), testSession, Query{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = h.d.Home(context.Background(), testSession, Query{})
		require.NoError(t, err)
	}

	grid, err := h.d.SelectCategory(context.Background(), testSession, "jewelery", first.Products.Page, first.Products.Seq+1)
	require.NoError(t, err)
	assert.Equal(t, "jewelery", grid.Category)
	assert.Equal(t, first.Products.Page, grid.Page)

	second, err := h.d.Home(context.Background(), testSession, Query{})
	require.NoError(t, err)
	require.NotEqual(t, first.Products.Page, second.Products.Page)
	_, err = h.d.SelectCategory(context.Background(), testSession, "electronics", second.Products.Page, 1)
	require.NoError(t, err)

	_, err = h.d.SelectCategory(context.Background(), testSession, "electronics", first.Products.Page, 2)
	assert.NoError(t, err)
	_, err = h.d.SelectCategory(context.Background(), testSession, "jewelery", first.Products.Page, 1)
	assert.ErrorIs(t, err, ErrStaleListing)
}

func TestSessionRegistryForgetsOldestListings(t *testing.T) {
	r := newSessionRegistry()
	first := r.newListing(testSession)
	for i := 0; i < maxListingsPerSession; i++ {
		r.newListing(testSession)
	}

	state := r.get(testSession)
	assert.Len(t, state.listings, maxListingsPerSession)
	assert.NotContains(t, state.listings, first)
	assert.False(t, r.isLatest(testSession, first, 0))
}

func TestShowDetailsErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.d.ShowDetails(context.Background(), 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = h.d.ShowDetails(context.Background(), 77)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, render.MsgDetailsFailed, pkgerrors.As(err).Message())
}

func TestAddToCartWorkedExample(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.d.AddToCart(ctx, testSession, 5, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cart.TotalItems)
	assert.Equal(t, "$9.99", res.Cart.TotalPrice)
	assert.False(t, res.CloseDetail)

	res, err = h.d.AddToCart(ctx, testSession, 5, true)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 2, res.Lines[0].Quantity)
	assert.Equal(t, "$19.98", res.Cart.TotalPrice)
	assert.True(t, res.CloseDetail)

	res, err = h.d.MutateCartLine(ctx, testSession, 5, ActionDecrease)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cart.TotalItems)
	assert.True(t, res.Cart.Open)

	res, err = h.d.MutateCartLine(ctx, testSession, 5, ActionDecrease)
	require.NoError(t, err)
	assert.True(t, res.Cart.Empty())
	assert.Equal(t, "$0.00", res.Cart.TotalPrice)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	h := newHarness(t)

	res, err := h.d.AddToCart(context.Background(), testSession, 404, true)
	require.Error(t, err)
	assert.True(t, res.CloseDetail)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, render.MsgAddToCartFailed, pkgerrors.As(err).Message())

	current, err := h.d.Cart(context.Background(), testSession)
	require.NoError(t, err)
	assert.True(t, current.Cart.Empty())
}

func TestMutateCartLineActions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.d.AddToCart(ctx, testSession, 1, false)
	require.NoError(t, err)
	_, err = h.d.AddToCart(ctx, testSession, 2, false)
	require.NoError(t, err)

	res, err := h.d.MutateCartLine(ctx, testSession, 1, "Increase")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total.Items)

	res, err = h.d.MutateCartLine(ctx, testSession, 1, ActionRemove)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.EqualValues(t, 2, res.Lines[0].ID)

	res, err = h.d.MutateCartLine(ctx, testSession, 99, ActionIncrease)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total.Items)

	_, err = h.d.MutateCartLine(ctx, testSession, 2, "double")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCheckoutEmptyCartWarns(t *testing.T) {
	h := newHarness(t)

	res, err := h.d.Checkout(context.Background(), testSession)
	require.NoError(t, err)
	require.NotNil(t, res.Flash)
	assert.Equal(t, render.FlashWarning, res.Flash.Level)
	assert.Equal(t, render.MsgCartEmpty, res.Flash.Message)
	assert.True(t, res.Cart.Open)
}

func TestCheckoutClearsCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := h.d.AddToCart(ctx, testSession, 5, false)
		require.NoError(t, err)
	}

	res, err := h.d.Checkout(ctx, testSession)
	require.NoError(t, err)
	require.NotNil(t, res.Flash)
	assert.Equal(t, render.FlashNotice, res.Flash.Level)
	assert.Equal(t, "Order placed successfully! Total: $19.98", res.Flash.Message)
	assert.True(t, res.Cart.Empty())
	assert.Equal(t, 0, res.Cart.TotalItems)
	assert.False(t, res.Cart.Open)

	raw, found, err := h.storage.Get(ctx, "swiftcart_cart_v1:"+testSession)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestClearCartKeepsPanelOpen(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.d.AddToCart(ctx, testSession, 2, false)
	require.NoError(t, err)

	res, err := h.d.ClearCart(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, res.Cart.Empty())
	assert.True(t, res.Cart.Open)
}

func TestCartsAreScopedPerSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.d.AddToCart(ctx, "session-a", 1, false)
	require.NoError(t, err)

	other, err := h.d.Cart(ctx, "session-b")
	require.NoError(t, err)
	assert.True(t, other.Cart.Empty())

	_, err = h.d.Cart(ctx, " ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestConcurrentAddsToOneSessionAreSerialized(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.d.AddToCart(ctx, testSession, 5, false)
		}()
	}
	wg.Wait()

	res, err := h.d.Cart(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 20, res.Lines[0].Quantity)
}

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage offline")
}

func (brokenStorage) Set(context.Context, string, string) error {
	return errors.New("storage offline")
}

func TestHomeFailsWhenCartStorageFails(t *testing.T) {
	source := newFakeSource()
	d, err := NewDispatcher(source, catalog.NewCache(source, nil), brokenStorage{}, Settings{StorageKey: "k"})
	require.NoError(t, err)

	_, err = d.Home(context.Background(), testSession, Query{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSubscribeNewsletter(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	h := newHarness(t, WithRateLimiter(limiter))
	ctx := context.Background()

	msg, err := h.d.SubscribeNewsletter(ctx, testSession, " shopper@example.com ")
	require.NoError(t, err)
	assert.Equal(t, render.MsgSubscribed, msg)
	assert.Equal(t, []string{"newsletter:" + testSession}, limiter.scopes)

	_, err = h.d.SubscribeNewsletter(ctx, testSession, "not-an-email")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	limiter.allowed = false
	_, err = h.d.SubscribeNewsletter(ctx, testSession, "shopper@example.com")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRateLimit))

	limiter.err = errors.New("redis down")
	msg, err = h.d.SubscribeNewsletter(ctx, testSession, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, render.MsgSubscribed, msg)
}

func TestTopRatedIsStable(t *testing.T) {
	products := []catalog.Product{
		{ID: 1, Rating: catalog.Rating{Rate: 4, Known: true}},
		{ID: 2},
		{ID: 3, Rating: catalog.Rating{Rate: 4, Known: true}},
		{ID: 4, Rating: catalog.Rating{Rate: 5, Known: true}},
	}

	top := TopRated(products, 3)
	require.Len(t, top, 3)
	assert.EqualValues(t, 4, top[0].ID)
	assert.EqualValues(t, 1, top[1].ID)
	assert.EqualValues(t, 3, top[2].ID)
	assert.EqualValues(t, 1, products[0].ID, "input must not be reordered")

	assert.Len(t, TopRated(products[:2], 3), 2)
}
