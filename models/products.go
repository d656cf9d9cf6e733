package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an inventory item.
// CategoryName is a copy of the referenced category's name; it is kept in
// sync by the category rename transaction.
type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:255;not null;index"`
	Description  string          `gorm:"type:text;not null;default:''"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int             `gorm:"not null;default:0"`
	CategoryID   uint            `gorm:"not null;index"`
	Category     Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	CategoryName string          `gorm:"size:100;not null"`
	Supplier     string          `gorm:"size:255;not null;default:''"`
	ImageURL     string          `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (p *Product) TableName() string {
	return "products"
}

// ProductInput carries the mutable fields of a product on create and update.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    CategoryRef
	Supplier    string
	ImageURL    string
}

// Apply copies the input onto p and points it at cat.
func (in ProductInput) Apply(p *Product, cat *Category) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = cat.ID
	p.CategoryName = cat.Name
	p.Supplier = in.Supplier
	p.ImageURL = in.ImageURL
}

// ProductFilters narrows a product listing. Zero values mean "no filter".
type ProductFilters struct {
	Name     string
	Category CategoryRef
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// Match reports whether p satisfies the filters. The SQL repository builds
// the equivalent WHERE clause; the memory store uses this directly.
func (f ProductFilters) Match(p *Product) bool {
	if f.Name != "" && !containsFold(p.Name, f.Name) {
		return false
	}
	if !f.Category.IsZero() && !f.Category.matches(p) {
		return false
	}
	if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

// Statistics is the aggregate view over current products.
type Statistics struct {
	TotalProducts   int64
	StockTotal      int64
	PriceAverage    decimal.NullDecimal
	TotalCategories int64
}
