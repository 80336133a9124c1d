package handler

import (
	"net/http"

	"storefront-client/internal/domain"
	"storefront-client/internal/service"

	"github.com/go-chi/chi/v5"
)

// CartHandler exposes the local cart. Lines are addressed by product id in
// the path and size in the query string.
type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
}

type AddToCartRequest struct {
	ProductID string `json:"id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartResponse(lines []domain.CartLine) CartResponse {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponse{Items: lines, Count: len(lines)}
}

func lineKey(r *http.Request) (string, string) {
	return chi.URLParam(r, "id"), r.URL.Query().Get("size")
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartResponse(h.cartService.Lines()))
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	lines, err := h.cartService.Add(r.Context(), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(lines))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, size := lineKey(r)
	lines, err := h.cartService.SetQuantity(id, size, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse(lines))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	id, size := lineKey(r)
	writeJSON(w, http.StatusOK, cartResponse(h.cartService.Increment(id, size)))
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	id, size := lineKey(r)
	writeJSON(w, http.StatusOK, cartResponse(h.cartService.Decrement(id, size)))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, size := lineKey(r)
	writeJSON(w, http.StatusOK, cartResponse(h.cartService.Remove(id, size)))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartResponse(h.cartService.Clear()))
}

// Save stores the cart on the server for later
func (h *CartHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.SaveForLater(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
