package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/techsalle/inventory/client"
)

type CategoryState struct {
	Loading    bool
	Categories []client.Category
	Notice     *Notice
}

type CategoryScreen struct {
	api   API
	mu    sync.Mutex
	state CategoryState
}

func NewCategoryScreen(api API) *CategoryScreen {
	return &CategoryScreen{api: api}
}

func (s *CategoryScreen) State() CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Categories = append([]client.Category(nil), s.state.Categories...)
	if s.state.Notice != nil {
		n := *s.state.Notice
		st.Notice = &n
	}
	return st
}

func (s *CategoryScreen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	categories, err := s.api.ListCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Notice = failure(err)
		return err
	}
	s.state.Categories = categories
	return nil
}

func (s *CategoryScreen) Create(ctx context.Context, name string) (*client.Category, error) {
	name, err := requireName(name)
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}

	cat, err := s.api.CreateCategory(ctx, name)
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}
	return cat, s.reload(ctx, success(fmt.Sprintf("Category %q created", cat.Name)))
}

// Rename changes a category's name. The server updates the products that
// reference it in the same step.
func (s *CategoryScreen) Rename(ctx context.Context, id uint, name string) (*client.Category, error) {
	name, err := requireName(name)
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}

	cat, err := s.api.UpdateCategory(ctx, id, name)
	if err != nil {
		s.setNotice(failure(err))
		return nil, err
	}
	return cat, s.reload(ctx, success(fmt.Sprintf("Category renamed to %q", cat.Name)))
}

// Delete asks confirm first. A category still used by products is refused
// by the server and the refusal becomes the notice.
func (s *CategoryScreen) Delete(ctx context.Context, id uint, confirm Confirmer) (bool, error) {
	s.mu.Lock()
	name := fmt.Sprintf("#%d", id)
	for _, c := range s.state.Categories {
		if c.ID == id {
			name = fmt.Sprintf("%q", c.Name)
			break
		}
	}
	s.mu.Unlock()

	if confirm == nil || !confirm(fmt.Sprintf("Delete category %s?", name)) {
		return false, nil
	}
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		s.setNotice(failure(err))
		return false, err
	}
	return true, s.reload(ctx, success(fmt.Sprintf("Category %s deleted", name)))
}

func (s *CategoryScreen) reload(ctx context.Context, notice *Notice) error {
	categories, err := s.api.ListCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Notice = failure(err)
		return err
	}
	s.state.Categories = categories
	s.state.Notice = notice
	return nil
}

func (s *CategoryScreen) setNotice(n *Notice) {
	s.mu.Lock()
	s.state.Notice = n
	s.mu.Unlock()
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &FormError{Field: "name", Message: "Category name is required"}
	}
	return name, nil
}
