package handler

import (
	"net/http"

	"storefront-client/internal/service"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves products, categories and reviews
type CatalogHandler struct {
	catalogService *service.CatalogService
	reviewService  *service.ReviewService
}

func NewCatalogHandler(catalogService *service.CatalogService, reviewService *service.ReviewService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
	}
}

type ReviewRequest struct {
	Rating      int    `json:"rating"`
	Description string `json:"description"`
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalogService.Products(r.Context(), q.Get("category"), q.Get("subcategory"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogService.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	subcategories, err := h.catalogService.Subcategories(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subcategories)
}

func (h *CatalogHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *CatalogHandler) Rating(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviewService.Average(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *CatalogHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	review, err := h.reviewService.Submit(r.Context(), chi.URLParam(r, "id"), req.Rating, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
