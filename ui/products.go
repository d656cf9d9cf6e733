// Package ui holds the screen view-models of the inventory client. Each
// screen owns one state value and changes it only through its actions, so a
// front end renders State() and calls actions without keeping its own copies.
package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/techsalle/inventory/client"
)

// API is the subset of client.Client the screens use.
type API interface {
	ListProducts(ctx context.Context, filters client.Filters) ([]client.Product, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (*client.Product, error)
	UpdateProduct(ctx context.Context, id uint, in client.ProductInput) (*client.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ListCategories(ctx context.Context) ([]client.Category, error)
	CreateCategory(ctx context.Context, name string) (*client.Category, error)
	UpdateCategory(ctx context.Context, id uint, name string) (*client.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	GetStatistics(ctx context.Context) (*client.Statistics, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool

type FilterState struct {
	Name     string
	Category string
	PriceMin string
	PriceMax string
}

func (f FilterState) Active() bool {
	return f.Summary() != ""
}

// Summary describes the non-empty filters, or returns "" when none is set.
func (f FilterState) Summary() string {
	var parts []string
	if v := strings.TrimSpace(f.Name); v != "" {
		parts = append(parts, fmt.Sprintf("name contains %q", v))
	}
	if v := strings.TrimSpace(f.Category); v != "" {
		parts = append(parts, "category "+v)
	}
	if v := strings.TrimSpace(f.PriceMin); v != "" {
		parts = append(parts, "price >= "+v)
	}
	if v := strings.TrimSpace(f.PriceMax); v != "" {
		parts = append(parts, "price <= "+v)
	}
	return strings.Join(parts, ", ")
}

func (f FilterState) query() client.Filters {
	return client.Filters{
		Name:     f.Name,
		Category: f.Category,
		PriceMin: f.PriceMin,
		PriceMax: f.PriceMax,
	}
}

type ProductState struct {
	Loading    bool
	Products   []client.Product
	Categories []client.Category
	Stats      *client.Statistics
	Filters    FilterState
	Notice     *Notice
}

type ProductScreen struct {
	api   API
	mu    sync.Mutex
	state ProductState
}

func NewProductScreen(api API) *ProductScreen {
	return &ProductScreen{api: api}
}

// State returns a copy safe to read while actions run.
func (s *ProductScreen) State() ProductState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Products = append([]client.Product(nil), s.state.Products...)
	st.Categories = append([]client.Category(nil), s.state.Categories...)
	if s.state.Notice != nil {
		n := *s.state.Notice
		st.Notice = &n
	}
	return st
}

// Load fetches products, categories and statistics concurrently. Loading
// stays true until all three have answered.
func (s *ProductScreen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	filters := s.state.Filters.query()
	s.mu.Unlock()

	var (
		products   []client.Product
		categories []client.Category
		stats      *client.Statistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.api.ListProducts(gctx, filters)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.api.GetStatistics(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Notice = failure(err)
		return err
	}
	s.state.Products = products
	s.state.Categories = categories
	s.state.Stats = stats
	s.state.Notice = nil
	return nil
}

// ApplyFilters stores f and re-queries the list with it.
func (s *ProductScreen) ApplyFilters(ctx context.Context, f FilterState) error {
	s.mu.Lock()
	s.state.Filters = f
	s.mu.Unlock()
	return s.reloadProducts(ctx, f)
}

func (s *ProductScreen) ClearFilters(ctx context.Context) error {
	return s.ApplyFilters(ctx, FilterState{})
}

func (s *ProductScreen) reloadProducts(ctx context.Context, f FilterState) error {
	products, err := s.api.ListProducts(ctx, f.query())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Notice = failure(err)
		return err
	}
	s.state.Products = products
	s.state.Notice = nil
	return nil
}

// Save validates the form, creates a typed-in category first when needed,
// then creates or updates the product. On success the list is patched in
// place and statistics and categories are refreshed.
func (s *ProductScreen) Save(ctx context.Context, form ProductForm) (*client.Product, error) {
	in, err := form.Validate()
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}

	if in.CategoryID == 0 {
		id, err := s.ensureCategory(ctx, strings.TrimSpace(form.NewCategory))
		if err != nil {
			s.setNotice(failure(err))
			return nil, err
		}
		in.CategoryID = id
	}

	var saved *client.Product
	if form.ID == 0 {
		saved, err = s.api.CreateProduct(ctx, in)
	} else {
		saved, err = s.api.UpdateProduct(ctx, form.ID, in)
	}
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}

	s.mu.Lock()
	s.state.Products = upsertProduct(s.state.Products, *saved)
	s.state.Notice = success(fmt.Sprintf("Product %q saved", saved.Name))
	s.mu.Unlock()

	s.refreshAfterWrite(ctx, true)
	return saved, nil
}

// ensureCategory creates the typed category. When the server refuses the
// name because it already exists, as after a save whose product write
// failed, the existing category is reused.
func (s *ProductScreen) ensureCategory(ctx context.Context, name string) (uint, error) {
	cat, err := s.api.CreateCategory(ctx, name)
	if err == nil {
		return cat.ID, nil
	}
	if client.KindOf(err) != client.KindValidation {
		return 0, err
	}
	categories, listErr := s.api.ListCategories(ctx)
	if listErr != nil {
		return 0, err
	}
	for _, c := range categories {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return 0, err
}

// Delete asks confirm first and sends nothing if the user declines. It
// reports whether the product was removed.
func (s *ProductScreen) Delete(ctx context.Context, id uint, confirm Confirmer) (bool, error) {
	s.mu.Lock()
	name := fmt.Sprintf("#%d", id)
	for _, p := range s.state.Products {
		if p.ID == id {
			name = fmt.Sprintf("%q", p.Name)
			break
		}
	}
	s.mu.Unlock()

	if confirm == nil || !confirm(fmt.Sprintf("Delete product %s?", name)) {
		return false, nil
	}

	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.mu.Lock()
		if client.KindOf(err) == client.KindNotFound {
			s.state.Products = removeProduct(s.state.Products, id)
		}
		s.state.Notice = failure(err)
		s.mu.Unlock()
		return false, err
	}

	s.mu.Lock()
	s.state.Products = removeProduct(s.state.Products, id)
	s.state.Notice = success(fmt.Sprintf("Product %s deleted", name))
	s.mu.Unlock()

	s.refreshAfterWrite(ctx, false)
	return true, nil
}

// refreshAfterWrite refetches statistics, and categories when asked. A
// failure here does not undo the write; it only replaces the notice.
func (s *ProductScreen) refreshAfterWrite(ctx context.Context, withCategories bool) {
	stats, err := s.api.GetStatistics(ctx)
	if err != nil {
		s.setNotice(failure(err))
		return
	}

	var categories []client.Category
	if withCategories {
		categories, err = s.api.ListCategories(ctx)
		if err != nil {
			s.setNotice(failure(err))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Stats = stats
	if withCategories {
		s.state.Categories = categories
	}
}

func (s *ProductScreen) setNotice(n *Notice) {
	s.mu.Lock()
	s.state.Notice = n
	s.mu.Unlock()
}

func upsertProduct(list []client.Product, p client.Product) []client.Product {
	out := make([]client.Product, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if existing.ID == p.ID {
			out = append(out, p)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func removeProduct(list []client.Product, id uint) []client.Product {
	out := make([]client.Product, 0, len(list))
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
