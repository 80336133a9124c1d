package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// API groups the handlers served under /api/v1
type API struct {
	Auth     *AuthHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Catalog  *CatalogHandler

	// RequireLogin guards account routes; nil leaves the check to the services
	RequireLogin func(http.Handler) http.Handler
}

// Mount registers the API routes on r
func (a *API) Mount(r chi.Router) {
	r.Get("/session", a.Auth.Session)
	r.Post("/auth/register", a.Auth.Register)
	r.Post("/auth/login", a.Auth.Login)
	r.Post("/auth/logout", a.Auth.Logout)

	r.Get("/cart", a.Cart.List)
	r.Delete("/cart", a.Cart.Clear)
	r.Post("/cart/items", a.Cart.Add)
	r.Put("/cart/items/{id}", a.Cart.SetQuantity)
	r.Delete("/cart/items/{id}", a.Cart.Remove)
	r.Post("/cart/items/{id}/increment", a.Cart.Increment)
	r.Post("/cart/items/{id}/decrement", a.Cart.Decrement)

	r.Get("/checkout/quote", a.Checkout.Quote)

	r.Get("/products", a.Catalog.Products)
	r.Get("/products/{id}", a.Catalog.Product)
	r.Get("/products/{id}/reviews", a.Catalog.Reviews)
	r.Get("/products/{id}/rating", a.Catalog.Rating)
	r.Get("/categories", a.Catalog.Categories)
	r.Get("/subcategories", a.Catalog.Subcategories)

	r.Group(func(r chi.Router) {
		if a.RequireLogin != nil {
			r.Use(a.RequireLogin)
		}
		r.Get("/auth/profile", a.Auth.Profile)
		r.Put("/auth/profile", a.Auth.UpdateProfile)
		r.Post("/cart/save", a.Cart.Save)
		r.Post("/checkout", a.Checkout.PlaceOrder)
		r.Get("/orders", a.Checkout.Orders)
		r.Post("/products/{id}/reviews", a.Catalog.SubmitReview)
	})
}
