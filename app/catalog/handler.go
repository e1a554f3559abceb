package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/models"
)

type Response struct {
	Total    int           `json:"total"`
	Products []api.Product `json:"products"`
}

type ProductProvider interface {
	ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uint) ([]models.Product, error)
	ListProductColors(ctx context.Context) ([]models.ProductColor, error)
	ListLogos(ctx context.Context) ([]models.Product, error)
	GetProductVariation(ctx context.Context, id uint) (*models.ProductVariation, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

const (
	defaultLimit = 100
	maxLimit     = 100
)

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := defaultLimit

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > maxLimit {
				limit = maxLimit
			} else {
				limit = l
			}
		}
	}

	res, total, err := h.repo.ListProducts(r.Context(), offset, limit)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, Response{
		Total:    int(total),
		Products: api.NewProducts(res),
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewProduct(*product))
}

func (h *CatalogHandler) HandleGetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Category not found")
		return
	}

	products, err := h.repo.ListProductsByCategory(r.Context(), id)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewProducts(products))
}

func (h *CatalogHandler) HandleGetLogos(w http.ResponseWriter, r *http.Request) {
	logos, err := h.repo.ListLogos(r.Context())
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get logos")
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewProducts(logos))
}

func (h *CatalogHandler) HandleGetColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.repo.ListProductColors(r.Context())
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get product colors")
		return
	}

	response := make([]api.ProductColor, len(colors))
	for i, c := range colors {
		response[i] = api.NewProductColor(c)
	}
	api.OKResponse(w, http.StatusOK, response)
}

func (h *CatalogHandler) HandleGetVariation(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Product variation not found")
		return
	}

	variation, err := h.repo.GetProductVariation(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewProductVariation(*variation))
}
