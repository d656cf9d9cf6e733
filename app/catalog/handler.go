package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/techsalle/inventory/app/metrics"
	"github.com/techsalle/inventory/app/respond"
	"github.com/techsalle/inventory/models"
)

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CategoryID  uint      `json:"category_id"`
	Category    string    `json:"category"`
	Supplier    string    `json:"supplier"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogHandler struct {
	repo ProductProvider
	log  logrus.FieldLogger
}

func NewCatalogHandler(r ProductProvider, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
		log:  log,
	}
}

// Routes mounts the product endpoints on r.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleGet)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGetProduct)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)

	res, err := h.repo.GetFilteredProducts(r.Context(), filters)
	if err != nil {
		respond.Internal(w, r, h.log, "failed to get products", err)
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}
	respond.JSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		respond.Internal(w, r, h.log, "Failed to retrieve product", err)
		return
	}
	respond.JSON(w, http.StatusOK, toProduct(product))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	product, err := h.repo.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeWriteError(w, r, err, "Failed to save product")
		return
	}

	metrics.RecordWrite("product", "create")
	h.log.WithFields(logrus.Fields{"product_id": product.ID, "category_id": product.CategoryID}).Info("Product created")
	respond.JSON(w, http.StatusCreated, toProduct(product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	product, err := h.repo.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.writeWriteError(w, r, err, "Failed to update product")
		return
	}

	metrics.RecordWrite("product", "update")
	h.log.WithField("product_id", product.ID).Info("Product updated")
	respond.JSON(w, http.StatusOK, toProduct(product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		respond.Internal(w, r, h.log, "Failed to delete product", err)
		return
	}

	metrics.RecordWrite("product", "delete")
	h.log.WithField("product_id", id).Info("Product deleted")
	respond.Message(w, http.StatusOK, "Product deleted successfully")
}

func (h *CatalogHandler) readInput(w http.ResponseWriter, r *http.Request) (models.ProductInput, bool) {
	var req productRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return models.ProductInput{}, false
	}
	in, err := req.validate()
	if err != nil {
		metrics.RecordRejection("product", "validation")
		respond.Error(w, http.StatusBadRequest, err.Error())
		return models.ProductInput{}, false
	}
	return in, true
}

func (h *CatalogHandler) writeWriteError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		respond.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrUnknownCategory):
		metrics.RecordRejection("product", "unknown_category")
		respond.Error(w, http.StatusBadRequest, "Category not found")
	default:
		respond.Internal(w, r, h.log, message, err)
	}
}

// productRequest is the create/update body. Numbers may arrive as JSON
// numbers or numeric strings; form-driven clients send the latter.
type productRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       json.Number `json:"stock"`
	CategoryID  json.Number `json:"category_id"`
	Category    string      `json:"category"`
	Supplier    string      `json:"supplier"`
	ImageURL    string      `json:"image_url"`
}

var errRequiredFields = errors.New("name, price, category and stock are required")

const maxTextLength = 255

// maxPrice is the largest value a NUMERIC(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

func (req productRequest) validate() (models.ProductInput, error) {
	in := models.ProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Supplier:    strings.TrimSpace(req.Supplier),
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}

	if in.Name == "" || req.Price == "" || req.Stock == "" {
		return in, errRequiredFields
	}
	if utf8.RuneCountInString(in.Name) > maxTextLength {
		return in, errors.New("name must be at most 255 characters")
	}
	if utf8.RuneCountInString(in.Supplier) > maxTextLength {
		return in, errors.New("supplier must be at most 255 characters")
	}

	switch {
	case req.CategoryID != "":
		id, ok := parseID(req.CategoryID.String())
		if !ok {
			return in, errors.New("category_id must be a positive integer")
		}
		in.Category = models.CategoryByID(id)
	case strings.TrimSpace(req.Category) != "":
		in.Category = models.CategoryByName(req.Category)
	default:
		return in, errRequiredFields
	}

	price, err := decimal.NewFromString(req.Price.String())
	if err != nil || !price.IsPositive() {
		return in, errors.New("price must be a positive number")
	}
	if !price.Equal(price.Truncate(2)) {
		return in, errors.New("price must have at most 2 decimal places")
	}
	if price.GreaterThan(maxPrice) {
		return in, errors.New("price must be at most 99999999.99")
	}
	in.Price = price

	stock, ok := parseStock(req.Stock)
	if !ok {
		return in, errors.New("stock must be a non-negative integer")
	}
	in.Stock = stock

	return in, nil
}

// parseStock accepts integral values only; 5 and 5.0 pass, 5.5 does not.
func parseStock(n json.Number) (int, bool) {
	if v, err := n.Int64(); err == nil {
		return int(v), v >= 0 && v <= int64(^uint32(0)>>1)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return 0, false
	}
	if !d.LessThanOrEqual(decimal.NewFromInt(int64(^uint32(0) >> 1))) {
		return 0, false
	}
	return int(d.IntPart()), true
}

func parseFilters(r *http.Request) models.ProductFilters {
	q := r.URL.Query()
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(q.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}

	var filters models.ProductFilters
	filters.Name = get("name", "nombre")
	if raw := get("category", "categoria", "category_id"); raw != "" {
		filters.Category = models.ParseCategoryRef(raw)
	}
	if raw := get("price_min", "precio_min"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			filters.PriceMin = &v
		}
	}
	if raw := get("price_max", "precio_max"); raw != "" {
		if v, err := decimal.NewFromString(raw); err == nil {
			filters.PriceMax = &v
		}
	}
	return filters
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func toProduct(p *models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Category:    p.CategoryName,
		Supplier:    p.Supplier,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
