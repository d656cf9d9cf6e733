package ui

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/techsalle/inventory/client"
)

// fakeAPI is an in-memory API with per-call error injection.
type fakeAPI struct {
	mu         sync.Mutex
	products   []client.Product
	categories []client.Category
	nextID     uint

	errs  map[string]error
	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextID: 100,
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeAPI) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) ListProducts(_ context.Context, filters client.Filters) ([]client.Product, error) {
	if err := f.hit("ListProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []client.Product{}
	for _, p := range f.products {
		if filters.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filters.Name)) {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, in client.ProductInput) (*client.Product, error) {
	if err := f.hit("CreateProduct"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := client.Product{ID: f.nextID}
	f.applyLocked(&p, in)
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id uint, in client.ProductInput) (*client.Product, error) {
	if err := f.hit("UpdateProduct"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.applyLocked(&f.products[i], in)
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, &client.Error{Kind: client.KindNotFound, Status: 404, Message: "Product not found"}
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id uint) error {
	if err := f.hit("DeleteProduct"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return &client.Error{Kind: client.KindNotFound, Status: 404, Message: "Product not found"}
}

func (f *fakeAPI) ListCategories(context.Context) ([]client.Category, error) {
	if err := f.hit("ListCategories"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Category(nil), f.categories...), nil
}

func (f *fakeAPI) CreateCategory(_ context.Context, name string) (*client.Category, error) {
	if err := f.hit("CreateCategory"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == name {
			return nil, &client.Error{Kind: client.KindValidation, Status: 400, Message: "A category with that name already exists"}
		}
	}
	f.nextID++
	c := client.Category{ID: f.nextID, Name: name}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeAPI) UpdateCategory(_ context.Context, id uint, name string) (*client.Category, error) {
	if err := f.hit("UpdateCategory"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Name = name
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, &client.Error{Kind: client.KindNotFound, Status: 404, Message: "Category not found"}
}

func (f *fakeAPI) DeleteCategory(_ context.Context, id uint) error {
	if err := f.hit("DeleteCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return &client.Error{Kind: client.KindNotFound, Status: 404, Message: "Category not found"}
}

func (f *fakeAPI) GetStatistics(context.Context) (*client.Statistics, error) {
	if err := f.hit("GetStatistics"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &client.Statistics{TotalProducts: int64(len(f.products))}
	return stats, nil
}

func (f *fakeAPI) applyLocked(p *client.Product, in client.ProductInput) {
	p.Name = in.Name
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	for _, c := range f.categories {
		if c.ID == in.CategoryID {
			p.Category = c.Name
		}
	}
}

func seededAPI() *fakeAPI {
	f := newFakeAPI()
	f.categories = []client.Category{{ID: 1, Name: "Laptops"}, {ID: 2, Name: "Phones"}}
	f.products = []client.Product{
		{ID: 10, Name: "MacBook", Price: decimal.NewFromInt(1200), Stock: 2, CategoryID: 1, Category: "Laptops"},
		{ID: 11, Name: "Pixel", Price: decimal.NewFromInt(500), Stock: 4, CategoryID: 2, Category: "Phones"},
	}
	return f
}
