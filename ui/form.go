package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/techsalle/inventory/client"
)

// Bounds the server enforces on products.
var (
	maxPrice = decimal.RequireFromString("99999999.99")
	maxStock = decimal.NewFromInt(math.MaxInt32)
)

// FormError is a problem found before anything is sent to the server.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string { return e.Message }

// ProductForm holds raw user input. ID is zero for a new product.
// NewCategory is used when the user types a category that does not exist
// yet; it takes effect only when CategoryID is zero.
type ProductForm struct {
	ID          uint
	Name        string
	Description string
	Price       string
	Stock       string
	CategoryID  uint
	NewCategory string
	Supplier    string
	ImageURL    string
}

// EditForm prefills a form from an existing product.
func EditForm(p client.Product) ProductForm {
	return ProductForm{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       fmt.Sprint(p.Stock),
		CategoryID:  p.CategoryID,
		Supplier:    p.Supplier,
		ImageURL:    p.ImageURL,
	}
}

// Validate checks required fields and converts the form to a request body.
// The category id is left unset when a new category still has to be created.
func (f ProductForm) Validate() (client.ProductInput, error) {
	in := client.ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		CategoryID:  f.CategoryID,
		Supplier:    strings.TrimSpace(f.Supplier),
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}

	if in.Name == "" {
		return in, &FormError{Field: "name", Message: "Name is required"}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil || !price.IsPositive() {
		return in, &FormError{Field: "price", Message: "Price must be a number greater than zero"}
	}
	if !price.Equal(price.Truncate(2)) {
		return in, &FormError{Field: "price", Message: "Price can have at most 2 decimal places"}
	}
	if price.GreaterThan(maxPrice) {
		return in, &FormError{Field: "price", Message: "Price must be at most 99999999.99"}
	}
	in.Price = price

	stock, err := decimal.NewFromString(strings.TrimSpace(f.Stock))
	if err != nil || !stock.IsInteger() || stock.IsNegative() {
		return in, &FormError{Field: "stock", Message: "Stock must be a whole number of zero or more"}
	}
	if stock.GreaterThan(maxStock) {
		return in, &FormError{Field: "stock", Message: "Stock must be at most 2147483647"}
	}
	in.Stock = int(stock.IntPart())

	if f.CategoryID == 0 && strings.TrimSpace(f.NewCategory) == "" {
		return in, &FormError{Field: "category", Message: "Select a category or type a new one"}
	}
	return in, nil
}
