package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/techsalle/inventory/models"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error

	// Fields to capture call arguments
	lastCalledFilters models.ProductFilters
	lastCalledID      uint
	lastInput         *models.ProductInput
}

func (m *MockProductRepo) GetFilteredProducts(_ context.Context, filters models.ProductFilters) ([]models.Product, error) {
	m.lastCalledFilters = filters

	if m.Err != nil {
		return nil, m.Err
	}

	filtered := []models.Product{}
	for _, p := range m.SourceProducts {
		if filters.Match(&p) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (m *MockProductRepo) GetByID(_ context.Context, id uint) (*models.Product, error) {
	m.lastCalledID = id

	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductRepo) CreateProduct(_ context.Context, in models.ProductInput) (*models.Product, error) {
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	p := models.Product{ID: uint(len(m.SourceProducts) + 1)}
	in.Apply(&p, &models.Category{ID: in.Category.ID, Name: in.Category.Name})
	if p.CategoryName == "" {
		p.CategoryName = "Laptops"
	}
	m.SourceProducts = append(m.SourceProducts, p)
	return &p, nil
}

func (m *MockProductRepo) UpdateProduct(_ context.Context, id uint, in models.ProductInput) (*models.Product, error) {
	m.lastCalledID = id
	m.lastInput = &in
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.SourceProducts {
		if m.SourceProducts[i].ID == id {
			in.Apply(&m.SourceProducts[i], &models.Category{ID: in.Category.ID, Name: "Laptops"})
			product := m.SourceProducts[i]
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductRepo) DeleteProduct(_ context.Context, id uint) error {
	m.lastCalledID = id
	if m.Err != nil {
		return m.Err
	}
	for i, p := range m.SourceProducts {
		if p.ID == id {
			m.SourceProducts = append(m.SourceProducts[:i], m.SourceProducts[i+1:]...)
			return nil
		}
	}
	return models.ErrProductNotFound
}

// --- Helpers ---

func newTestProduct(id uint, name string, categoryID uint, categoryName string, price float64) models.Product {
	return models.Product{
		ID:           id,
		Name:         name,
		Price:        decimal.NewFromFloat(price),
		Stock:        5,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
}

func newTestRouter(repo ProductProvider) http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Route("/products", NewCatalogHandler(repo, log).Routes)
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var errResp map[string]string
	err := json.NewDecoder(rec.Body).Decode(&errResp)
	assert.NoError(t, err)
	return errResp["error"]
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	allMockProducts := []models.Product{
		newTestProduct(1, "ThinkPad X1", 1, "Laptops", 999.99),
		newTestProduct(2, "Galaxy S24", 2, "Smartphones", 450.00),
		newTestProduct(3, "USB-C Cable", 3, "Accessories", 10.00),
		newTestProduct(4, "MacBook Air", 1, "Laptops", 100.00),
		newTestProduct(5, "Pixel 8", 2, "Smartphones", 500.00),
	}

	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name: "Success without filters",
			url:  "/products",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 5)
				assert.Equal(t, "ThinkPad X1", resp[0].Name)
				assert.Equal(t, 999.99, resp[0].Price)
				assert.Equal(t, "Laptops", resp[0].Category)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Empty(t, repo.lastCalledFilters.Name)
				assert.True(t, repo.lastCalledFilters.Category.IsZero())
				assert.Nil(t, repo.lastCalledFilters.PriceMin)
				assert.Nil(t, repo.lastCalledFilters.PriceMax)
			},
		},
		{
			name: "Filter by inclusive price range",
			url:  "/products?price_min=100&price_max=500",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 3)
				for _, p := range resp {
					assert.GreaterOrEqual(t, p.Price, 100.0)
					assert.LessOrEqual(t, p.Price, 500.0)
				}
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.True(t, decimal.NewFromInt(100).Equal(*repo.lastCalledFilters.PriceMin))
				assert.True(t, decimal.NewFromInt(500).Equal(*repo.lastCalledFilters.PriceMax))
			},
		},
		{
			name: "Filter by name is case-insensitive",
			url:  "/products?name=THINK",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 1)
				assert.Equal(t, "ThinkPad X1", resp[0].Name)
			},
		},
		{
			name: "Filter by category name",
			url:  "/products?category=Smartphones",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, models.CategoryByName("Smartphones"), repo.lastCalledFilters.Category)
			},
		},
		{
			name: "Filter by category id",
			url:  "/products?category=1",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, models.ParseCategoryRef("1"), repo.lastCalledFilters.Category)
				assert.Equal(t, uint(1), repo.lastCalledFilters.Category.ID)
			},
		},
		{
			name: "Legacy query parameter names",
			url:  "/products?nombre=pixel&categoria=Smartphones&precio_min=400&precio_max=600",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 1)
				assert.Equal(t, "Pixel 8", resp[0].Name)
			},
		},
		{
			name: "Empty result is an empty array",
			url:  "/products?category=Tablets",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, "[]", rec.Body.String())
			},
		},
		{
			name: "Repository error",
			url:  "/products",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "failed to get products", decodeError(t, rec))
			},
		},
		{
			name: "Invalid price values are ignored",
			url:  "/products?price_min=abc&price_max=",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductRepo) {
				assert.Nil(t, repo.lastCalledFilters.PriceMin, "Expected nil price filter for invalid value")
				assert.Nil(t, repo.lastCalledFilters.PriceMax)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			router := newTestRouter(mockRepo)
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, mockRepo)
			}
		})
	}
}
