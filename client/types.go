package client

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  uint            `json:"category_id"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Category struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Statistics mirrors GET /statistics. PriceAverage is invalid when the
// inventory is empty.
type Statistics struct {
	TotalProducts   int64               `json:"total_products"`
	StockTotal      int64               `json:"stock_total"`
	PriceAverage    decimal.NullDecimal `json:"price_average"`
	TotalCategories int64               `json:"total_categories"`
}

// ProductInput is the body of a create or update. Set CategoryID, or
// Category to reference an existing category by name.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  uint            `json:"category_id,omitempty"`
	Category    string          `json:"category,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type categoryInput struct {
	Name string `json:"name"`
}

// Filters are sent verbatim as query parameters; empty values are omitted.
// Category may hold an id or a name.
type Filters struct {
	Name     string
	Category string
	PriceMin string
	PriceMax string
}

func (f Filters) IsZero() bool {
	return f == Filters{}
}

func (f Filters) query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("name", f.Name)
	set("category", f.Category)
	set("price_min", f.PriceMin)
	set("price_max", f.PriceMax)
	return q
}
