package models

import (
	"strconv"
	"strings"
	"time"
)

// Category represents a named grouping of products.
// Names are unique across the catalog.
type Category struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;uniqueIndex;not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (c *Category) TableName() string {
	return "categories"
}

// CategoryRef points at a category either by id or by its display name.
// The by-name form is the legacy shape older clients still send; both are
// resolved to a Category row before anything is written.
type CategoryRef struct {
	ID   uint
	Name string
}

func CategoryByID(id uint) CategoryRef {
	return CategoryRef{ID: id}
}

func CategoryByName(name string) CategoryRef {
	return CategoryRef{Name: strings.TrimSpace(name)}
}

// ParseCategoryRef turns a raw filter value into a reference. A positive
// integer carries both forms, so "2024" matches category #2024 or a
// category named "2024". Anything else is a name.
func ParseCategoryRef(raw string) CategoryRef {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
		return CategoryRef{ID: uint(id), Name: raw}
	}
	return CategoryByName(raw)
}

// matches reports whether p belongs to the referenced category. A reference
// carrying both an id and a name matches on either.
func (r CategoryRef) matches(p *Product) bool {
	if r.ID != 0 && p.CategoryID == r.ID {
		return true
	}
	if r.Name != "" && p.CategoryName == r.Name {
		return true
	}
	return false
}

func (r CategoryRef) IsZero() bool {
	return r.ID == 0 && r.Name == ""
}

func (r CategoryRef) String() string {
	if r.ID != 0 {
		return "#" + strconv.FormatUint(uint64(r.ID), 10)
	}
	return strconv.Quote(r.Name)
}
