package categories

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/techsalle/inventory/app/metrics"
	"github.com/techsalle/inventory/app/respond"
	"github.com/techsalle/inventory/models"
)

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	repo CategoryProvider
	log  logrus.FieldLogger
}

func NewCategoryHandler(r CategoryProvider, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{repo: r, log: log}
}

// Routes mounts the category endpoints on r.
func (h *CategoryHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleGetAll)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		respond.Internal(w, r, h.log, "failed to fetch categories", err)
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i := range categories {
		response[i] = toResponse(&categories[i])
	}
	respond.JSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.repo.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			respond.Error(w, http.StatusNotFound, "Category not found")
			return
		}
		respond.Internal(w, r, h.log, "Failed to retrieve category", err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.writeWriteError(w, r, err, "Failed to create category")
		return
	}

	metrics.RecordWrite("category", "create")
	h.log.WithFields(logrus.Fields{"category_id": category.ID, "name": category.Name}).Info("Category created")
	respond.JSON(w, http.StatusCreated, toResponse(category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Category not found")
		return
	}
	input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	category := &models.Category{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := h.repo.UpdateCategory(r.Context(), category); err != nil {
		h.writeWriteError(w, r, err, "Failed to update category")
		return
	}

	metrics.RecordWrite("category", "update")
	h.log.WithFields(logrus.Fields{"category_id": category.ID, "name": category.Name}).Info("Category renamed")
	respond.JSON(w, http.StatusOK, toResponse(category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respond.Error(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		h.writeWriteError(w, r, err, "Failed to delete category")
		return
	}

	metrics.RecordWrite("category", "delete")
	h.log.WithField("category_id", id).Info("Category deleted")
	respond.Message(w, http.StatusOK, "Category deleted successfully")
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) readInput(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var input categoryRequest
	if err := respond.DecodeJSON(r, &input); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return input, false
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		metrics.RecordRejection("category", "validation")
		respond.Error(w, http.StatusBadRequest, "Category name is required")
		return input, false
	}
	if len([]rune(input.Name)) > 100 {
		metrics.RecordRejection("category", "validation")
		respond.Error(w, http.StatusBadRequest, "Category name must be at most 100 characters")
		return input, false
	}
	return input, true
}

func (h *CategoryHandler) writeWriteError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		respond.Error(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrCategoryNameTaken):
		metrics.RecordRejection("category", "duplicate_name")
		respond.Error(w, http.StatusBadRequest, "A category with that name already exists")
	case errors.Is(err, models.ErrCategoryInUse):
		metrics.RecordRejection("category", "in_use")
		respond.Error(w, http.StatusBadRequest, "Category cannot be deleted because it has associated products")
	default:
		respond.Internal(w, r, h.log, message, err)
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func toResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}
