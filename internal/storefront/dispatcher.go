package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

// ErrStaleListing is returned when a newer listing request of the same session
// was issued while this one was in flight.
var ErrStaleListing = errors.New("listing superseded by a newer request")

type catalogSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type productCache interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
	AddAll(products []catalog.Product)
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type mutationObserver interface {
	IncCartMutation(op string)
}

// Settings are the tunables of the dispatcher.
type Settings struct {
	StorageKey       string
	TrendingLimit    int
	Limits           render.Limits
	NewsletterLimit  int64
	NewsletterWindow time.Duration
}

// Dispatcher turns shopper actions into cart and catalog operations and maps
// the results to view models.
type Dispatcher struct {
	source   catalogSource
	cache    productCache
	storage  cart.Storage
	settings Settings

	logg     *logger.Logger
	metrics  mutationObserver
	limiter  rateLimiter
	validate *validator.Validate
	sessions *sessionRegistry
	now      func() time.Time
}

type Option func(*Dispatcher)

func WithLogger(logg *logger.Logger) Option {
	return func(d *Dispatcher) { d.logg = logg }
}

func WithMetrics(m mutationObserver) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithRateLimiter enables the newsletter rate limit.
func WithRateLimiter(l rateLimiter) Option {
	return func(d *Dispatcher) { d.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(source catalogSource, cache productCache, storage cart.Storage, settings Settings, opts ...Option) (*Dispatcher, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if cache == nil {
		return nil, fmt.Errorf("product cache required")
	}
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if strings.TrimSpace(settings.StorageKey) == "" {
		return nil, fmt.Errorf("cart storage key required")
	}
	if settings.TrendingLimit <= 0 {
		settings.TrendingLimit = defaultTrendingLimit
	}
	settings.Limits = settings.Limits.WithDefaults()

	d := &Dispatcher{
		source:   source,
		cache:    cache,
		storage:  storage,
		settings: settings,
		validate: validator.New(),
		sessions: newSessionRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// cartKey scopes the storage key to one session.
func (d *Dispatcher) cartKey(sessionID string) string {
	return d.settings.StorageKey + ":" + sessionID
}

func (d *Dispatcher) openCart(ctx context.Context, sessionID string) (*cart.Store, error) {
	opts := []cart.StoreOption{cart.WithLogger(d.logg)}
	if d.metrics != nil {
		opts = append(opts, cart.WithMetrics(d.metrics))
	}
	return cart.Open(ctx, d.storage, d.cartKey(sessionID), opts...)
}

func (d *Dispatcher) cartView(store *cart.Store) render.CartView {
	return render.NewCartView(store.Items(), store.Totals(), d.settings.Limits.CartTitle)
}

func (d *Dispatcher) logError(ctx context.Context, msg string, err error) {
	if d.logg != nil {
		d.logg.Error(ctx, msg, err)
	}
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

func (d *Dispatcher) withField(ctx context.Context, key string, value any) context.Context {
	if d.logg == nil {
		return ctx
	}
	return d.logg.WithField(ctx, key, value)
}
