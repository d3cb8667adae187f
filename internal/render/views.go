package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/cart"
	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/catalog"
)

const (
	MsgNoProducts        = "No products found in this category."
	MsgListingFailed     = "Something went wrong while loading products. Please try again."
	MsgTrendingFailed    = "Could not load trending products right now."
	MsgCategoriesFailed  = "Could not load categories. Showing all products."
	MsgCartEmpty         = "Your cart is empty."
	MsgSubscribed        = "Thanks for subscribing to SwiftCart newsletter!"
	MsgAddToCartFailed   = "Could not add product to cart. Please try again."
	MsgDetailsFailed     = "Could not load product details. Please try again."
	msgOrderPlacedFormat = "Order placed successfully! Total: %s"
)

// OrderPlaced is the checkout confirmation for the given formatted total.
func OrderPlaced(total string) string {
	return fmt.Sprintf(msgOrderPlacedFormat, total)
}

// Limits holds the title truncation lengths.
type Limits struct {
	CardTitle int
	CartTitle int
}

// WithDefaults fills unset limits with the card and cart defaults.
func (l Limits) WithDefaults() Limits {
	if l.CardTitle <= 0 {
		l.CardTitle = DefaultCardTitleMax
	}
	if l.CartTitle <= 0 {
		l.CartTitle = DefaultCartTitleMax
	}
	return l
}

type ProductCard struct {
	ID        int64
	Title     string
	FullTitle string
	Image     string
	Category  string
	Price     string
	Rating    string
}

func NewProductCard(p catalog.Product, maxTitle int) ProductCard {
	return ProductCard{
		ID:        p.ID,
		Title:     TruncateTitle(p.Title, maxTitle),
		FullTitle: p.Title,
		Image:     p.Image,
		Category:  FormatCategory(p.Category),
		Price:     FormatCurrency(p.Price),
		Rating:    fmt.Sprintf("%s (%d)", p.Rating.RateLabel(), p.Rating.ReviewCount()),
	}
}

func NewProductCards(products []catalog.Product, maxTitle int) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewProductCard(p, maxTitle))
	}
	return cards
}

type CartRow struct {
	ID        int64
	Title     string
	FullTitle string
	Image     string
	UnitPrice string
	Quantity  int
	Subtotal  string
}

func NewCartRow(item cart.LineItem, maxTitle int) CartRow {
	return CartRow{
		ID:        item.ID,
		Title:     TruncateTitle(item.Title, maxTitle),
		FullTitle: item.Title,
		Image:     item.Image,
		UnitPrice: FormatCurrency(item.Price),
		Quantity:  item.Quantity,
		Subtotal:  FormatCurrency(item.Subtotal()),
	}
}

// CartView is the cart panel plus the header badge count.
type CartView struct {
	Rows       []CartRow
	TotalItems int
	TotalPrice string
	Open       bool
}

func (v CartView) Empty() bool { return len(v.Rows) == 0 }

func NewCartView(items []cart.LineItem, totals cart.Totals, maxTitle int) CartView {
	rows := make([]CartRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, NewCartRow(item, maxTitle))
	}
	return CartView{
		Rows:       rows,
		TotalItems: totals.Items,
		TotalPrice: FormatCurrency(totals.Price),
	}
}

type DetailView struct {
	ID          int64
	Title       string
	Image       string
	Description string
	Price       string
	Rating      string
}

func NewDetailView(p catalog.Product) DetailView {
	return DetailView{
		ID:          p.ID,
		Title:       p.Title,
		Image:       p.Image,
		Description: p.Description,
		Price:       "Price: " + FormatCurrency(p.Price),
		Rating:      fmt.Sprintf("Rating: %s (%d reviews)", p.Rating.RateLabel(), p.Rating.ReviewCount()),
	}
}

type CategoryButton struct {
	Name   string
	Label  string
	Active bool
}

// Query is the encoded listing query for this category.
func (b CategoryButton) Query() string {
	return url.Values{"category": {b.Name}}.Encode()
}

// Href links the full page filtered by this category.
func (b CategoryButton) Href() template.URL {
	return template.URL("/?" + b.Query() + "#productsSection")
}

// CategoryBar lists the category filters. Error is set when the category list
// could not be fetched and only "All" is offered.
type CategoryBar struct {
	Buttons []CategoryButton
	Error   string
}

// NewCategoryButtons prefixes "All" to categories and marks active.
func NewCategoryButtons(categories []string, active string) []CategoryButton {
	if active == "" {
		active = catalog.AllCategory
	}
	buttons := make([]CategoryButton, 0, len(categories)+1)
	buttons = append(buttons, CategoryButton{
		Name:   catalog.AllCategory,
		Label:  catalog.AllCategory,
		Active: active == catalog.AllCategory,
	})
	for _, name := range categories {
		if name == catalog.AllCategory {
			continue
		}
		buttons = append(buttons, CategoryButton{
			Name:   name,
			Label:  FormatCategory(name),
			Active: name == active,
		})
	}
	return buttons
}

// ProductGrid is the main listing. Page identifies the rendered page instance
// and Seq stamps the listing request of that page that produced it.
type ProductGrid struct {
	Category string
	Page     uint64
	Seq      uint64
	Cards    []ProductCard
	Error    string
}

func (g ProductGrid) Empty() bool { return g.Error == "" && len(g.Cards) == 0 }

func (g ProductGrid) SeqParam() string { return strconv.FormatUint(g.Seq, 10) }

func (g ProductGrid) PageParam() string { return strconv.FormatUint(g.Page, 10) }

type Trending struct {
	Cards []ProductCard
	Error string
}

// Flash levels.
const (
	FlashNotice  = "notice"
	FlashWarning = "warning"
	FlashError   = "error"
)

type Flash struct {
	Level   string
	Message string
}

type Page struct {
	Categories CategoryBar
	Products   ProductGrid
	Trending   Trending
	Cart       CartView
	Detail     *DetailView
	Flash      *Flash
	Newsletter string
	Year       int
}
