package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/errors"
)

const (
	DefaultBaseURL        = "https://fakestoreapi.com/products"
	responseBodyReadLimit = 1024
)

const (
	endpointProducts   = "products"
	endpointProduct    = "product"
	endpointCategories = "categories"
	endpointCategory   = "category"
)

var errEmptyResponse = errors.New("empty response body")

type requestObserver interface {
	ObserveCatalogRequest(endpoint string, duration time.Duration, err error)
}

// Client talks to the Fake Store style product API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    requestObserver
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMetrics records every request on the given observer.
func WithMetrics(m requestObserver) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a catalog client rooted at the products collection URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ListingURL returns the endpoint that backs a category listing. The "All"
// pseudo-category maps to the unfiltered collection.
func (c *Client) ListingURL(category string) string {
	if category == "" || category == AllCategory {
		return c.baseURL
	}
	return fmt.Sprintf("%s/category/%s", c.baseURL, url.PathEscape(category))
}

// ListProducts fetches the unfiltered product collection.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return c.listing(ctx, endpointProducts, c.baseURL)
}

// ListByCategory fetches the listing for one category, or all products for "All".
func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == "" || category == AllCategory {
		return c.ListProducts(ctx)
	}
	return c.listing(ctx, endpointCategory, c.ListingURL(category))
}

// ListCategories fetches the category names.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, endpointCategories, c.baseURL+"/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetProduct fetches one product. The upstream API answers unknown ids with an
// empty 200 response, which is reported as NOT_FOUND.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var payload *apiProduct
	err := c.getJSON(ctx, endpointProduct, c.baseURL+"/"+strconv.FormatInt(id, 10), &payload)
	if errors.Is(err, errEmptyResponse) || (err == nil && payload == nil) {
		return Product{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}
	if err != nil {
		return Product{}, err
	}
	return payload.toProduct(), nil
}

func (c *Client) listing(ctx context.Context, endpoint, target string) ([]Product, error) {
	var payload []apiProduct
	if err := c.getJSON(ctx, endpoint, target, &payload); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toProduct())
	}
	return products, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, target string, dest any) (err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveCatalogRequest(endpoint, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, errEmptyResponse, "decode catalog response")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	return nil
}
