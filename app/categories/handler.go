package categories

import (
	"context"
	"net/http"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/models"
)

type CategoryProvider interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListLetteringItemCategories(ctx context.Context) ([]models.LetteringItemCategory, error)
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to fetch categories")
		return
	}

	response := make([]api.Category, len(categories))
	for i, c := range categories {
		response[i] = api.NewCategory(c)
	}

	api.OKResponse(w, http.StatusOK, response)
}

// HandleGetLetteringItemCategories lists the lettering line kinds with their prices.
func (h *CategoryHandler) HandleGetLetteringItemCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListLetteringItemCategories(r.Context())
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to fetch lettering item categories")
		return
	}

	response := make([]api.LetteringItemCategory, len(items))
	for i, c := range items {
		response[i] = api.NewLetteringItemCategory(c)
	}

	api.OKResponse(w, http.StatusOK, response)
}
