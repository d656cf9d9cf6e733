// Package memory provides an in-process implementation of the product and
// category repositories. It is safe for concurrent use and is intended for
// tests and local demos where no PostgreSQL instance is available.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techsalle/inventory/models"
)

type Store struct {
	mu             sync.RWMutex
	nextProductID  uint
	nextCategoryID uint
	products       map[uint]models.Product
	categories     map[uint]models.Category
	now            func() time.Time
}

func New() *Store {
	return &Store{
		nextProductID:  1,
		nextCategoryID: 1,
		products:       make(map[uint]models.Product),
		categories:     make(map[uint]models.Category),
		now:            time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Products ---------------------------------------------------------------

func (s *Store) GetFilteredProducts(_ context.Context, filters models.ProductFilters) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for _, p := range s.products {
		if filters.Match(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id uint) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, in models.ProductInput) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := s.resolveLocked(in.Category)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := models.Product{ID: s.nextProductID, CreatedAt: now, UpdatedAt: now}
	s.nextProductID++
	in.Apply(&p, cat)
	s.products[p.ID] = p
	return &p, nil
}

func (s *Store) UpdateProduct(_ context.Context, id uint, in models.ProductInput) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	cat, err := s.resolveLocked(in.Category)
	if err != nil {
		return nil, err
	}
	in.Apply(&p, cat)
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p
	return &p, nil
}

func (s *Store) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) GetStatistics(context.Context) (models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.Statistics
	sum := decimal.Zero
	distinct := make(map[uint]struct{})
	for _, p := range s.products {
		stats.TotalProducts++
		stats.StockTotal += int64(p.Stock)
		sum = sum.Add(p.Price)
		distinct[p.CategoryID] = struct{}{}
	}
	stats.TotalCategories = int64(len(distinct))
	if stats.TotalProducts > 0 {
		stats.PriceAverage = decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(stats.TotalProducts)))
	}
	return stats, nil
}

func (s *Store) resolveLocked(ref models.CategoryRef) (*models.Category, error) {
	if ref.ID != 0 {
		if c, ok := s.categories[ref.ID]; ok {
			return &c, nil
		}
		return nil, models.ErrUnknownCategory
	}
	if ref.Name != "" {
		for _, c := range s.categories {
			if c.Name == ref.Name {
				return &c, nil
			}
		}
	}
	return nil, models.ErrUnknownCategory
}

// Categories -------------------------------------------------------------

func (s *Store) GetAllCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(category.Name, 0) {
		return models.ErrCategoryNameTaken
	}
	now := s.now().UTC()
	category.ID = s.nextCategoryID
	s.nextCategoryID++
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = *category
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.categories[category.ID]
	if !ok {
		return models.ErrCategoryNotFound
	}
	if s.nameTakenLocked(category.Name, category.ID) {
		return models.ErrCategoryNameTaken
	}
	current.Name = category.Name
	current.Description = category.Description
	current.UpdatedAt = s.now().UTC()
	s.categories[current.ID] = current

	for id, p := range s.products {
		if p.CategoryID == current.ID {
			p.CategoryName = current.Name
			s.products[id] = p
		}
	}
	*category = current
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return models.ErrCategoryNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return models.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) nameTakenLocked(name string, except uint) bool {
	for _, c := range s.categories {
		if c.Name == name && c.ID != except {
			return true
		}
	}
	return false
}
