package handler

import (
	"net/http"

	"storefront-client/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, orderService *service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// Quote prices the current cart
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.checkoutService.Quote(r.Context()))
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkoutService.PlaceOrder(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
