package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// AllCategory is the pseudo-category that selects the unfiltered listing.
const AllCategory = "All"

// Product is the read-only product record served by the remote catalog.
type Product struct {
	ID          int64
	Title       string
	Description string
	Image       string
	Price       decimal.Decimal
	Category    string
	Rating      Rating
}

// Rating is the aggregate review score. Known is false when the API omitted it.
type Rating struct {
	Rate  float64
	Count int
	Known bool
}

// RateLabel renders the score the way the storefront shows it, "N/A" when unknown.
func (r Rating) RateLabel() string {
	if !r.Known {
		return "N/A"
	}
	return strconv.FormatFloat(r.Rate, 'f', -1, 64)
}

// ReviewCount is zero for unknown ratings.
func (r Rating) ReviewCount() int {
	if !r.Known {
		return 0
	}
	return r.Count
}

type apiProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Rating      *struct {
		Rate  *float64 `json:"rate"`
		Count *int     `json:"count"`
	} `json:"rating"`
}

func (p apiProduct) toProduct() Product {
	out := Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
		Category:    p.Category,
	}
	if p.Rating != nil && p.Rating.Rate != nil {
		out.Rating = Rating{Rate: *p.Rating.Rate, Known: true}
		if p.Rating.Count != nil {
			out.Rating.Count = *p.Rating.Count
		}
	}
	return out
}
