package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront-client/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeUser struct {
	hash    []byte
	profile domain.UserProfile
}

// FakeBackend is an in-process stand-in for the remote commerce API. It
// issues HS256 tokens signed with TestSigningKey and keeps bcrypt hashes of
// registered passwords.
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.RWMutex
	users         map[string]*fakeUser // by email
	carts         map[string][]domain.CartLine
	products      map[string]domain.Product
	categories    []domain.Category
	subcategories []domain.Subcategory
	orders        map[string][]domain.PlacedOrder
	reviews       map[string][]domain.Review
	failures      map[string]int         // path prefix -> status
	raw           map[string]rawResponse // exact path -> canned response
}

type rawResponse struct {
	status int
	body   string
}

// NewFakeBackend starts a fake backend that is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		users:    make(map[string]*fakeUser),
		carts:    make(map[string][]domain.CartLine),
		products: make(map[string]domain.Product),
		orders:   make(map[string][]domain.PlacedOrder),
		reviews:  make(map[string][]domain.Review),
		failures: make(map[string]int),
		raw:      make(map[string]rawResponse),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

func (b *FakeBackend) URL() string {
	return b.Server.URL
}

func (b *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.injectFailures)

	r.Post("/auth/register", b.register)
	r.Post("/auth/login", b.login)
	r.Get("/auth/profile", b.profile)
	r.Put("/auth/profile", b.updateProfile)

	r.Get("/cartState/cart/{userID}", b.fetchCart)
	r.Post("/cartState/cart/save", b.saveCart)

	r.Get("/fetchproducts/products", b.listProducts)
	r.Get("/fetchproducts/products/{id}", b.getProduct)
	r.Get("/category", b.listCategories)
	r.Get("/subcategories", b.listSubcategories)

	r.Get("/place-order/orders/{userID}", b.listOrders)
	r.Post("/place-order/orders/{userID}", b.placeOrder)

	r.Get("/product-reviews/reviews/average/{id}", b.averageRating)
	r.Get("/product-reviews/reviews/{id}", b.listReviews)
	r.Post("/product-reviews/reviews", b.submitReview)
	return r
}

// AddUser registers a user directly and returns its id
func (b *FakeBackend) AddUser(email, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	profile := NewTestProfile(email)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = &fakeUser{hash: hash, profile: *profile}
	return profile.ID
}

func (b *FakeBackend) AddProduct(products ...domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range products {
		b.products[p.ID] = p
	}
}

func (b *FakeBackend) SetCategories(categories []domain.Category, subcategories []domain.Subcategory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = categories
	b.subcategories = subcategories
}

func (b *FakeBackend) SetCart(userID string, lines []domain.CartLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.carts[userID] = domain.CloneLines(lines)
}

// Cart returns the server-held cart of userID
func (b *FakeBackend) Cart(userID string) []domain.CartLine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.CloneLines(b.carts[userID])
}

func (b *FakeBackend) Orders(userID string) []domain.PlacedOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.PlacedOrder(nil), b.orders[userID]...)
}

func (b *FakeBackend) Reviews(productID string) []domain.Review {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Review(nil), b.reviews[productID]...)
}

// Fail makes every request whose path starts with prefix answer status.
// A zero status removes the failure.
func (b *FakeBackend) Fail(prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, prefix)
		return
	}
	b.failures[prefix] = status
}

// Respond makes requests to exactly path answer status with body verbatim,
// for payloads the real handlers would never produce.
func (b *FakeBackend) Respond(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw[path] = rawResponse{status: status, body: body}
}

func (b *FakeBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		canned, hasCanned := b.raw[r.URL.Path]
		status := 0
		for prefix, s := range b.failures {
			if strings.HasPrefix(r.URL.Path, prefix) {
				status = s
				break
			}
		}
		b.mu.RUnlock()

		if hasCanned {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			_, _ = w.Write([]byte(canned.body))
			return
		}
		if status != 0 {
			writeBackendJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
		return
	}

	b.mu.RLock()
	_, exists := b.users[creds.Email]
	b.mu.RUnlock()
	if exists {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}

	b.AddUser(creds.Email, creds.Password)
	writeBackendJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	b.mu.RLock()
	user, ok := b.users[creds.Email]
	b.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(user.hash, []byte(creds.Password)) != nil {
		writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	tok := NewTestToken(WithTokenUserID(user.profile.ID), WithTokenEmail(creds.Email))
	writeBackendJSON(w, http.StatusOK, domain.LoginResponse{Token: tok})
}

// authenticate returns the user the bearer token belongs to
func (b *FakeBackend) authenticate(r *http.Request) (*fakeUser, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, errors.New("missing bearer token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return TestSigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	b.mu.RLock()
	defer b.mu.RUnlock()
	user, ok := b.users[email]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return user, nil
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	user, err := b.authenticate(r)
	if err != nil {
		writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"message": err.Error()})
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeBackendJSON(w, http.StatusOK, user.profile)
}

func (b *FakeBackend) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := b.authenticate(r)
	if err != nil {
		writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"message": err.Error()})
		return
	}
	var update domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	update.ID = user.profile.ID
	update.Email = user.profile.Email
	user.profile = update
	writeBackendJSON(w, http.StatusOK, user.profile)
}

func (b *FakeBackend) fetchCart(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	items, ok := b.carts[chi.URLParam(r, "userID")]
	b.mu.RUnlock()
	if !ok {
		writeBackendJSON(w, http.StatusOK, map[string]any{"items": nil})
		return
	}
	writeBackendJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (b *FakeBackend) saveCart(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	b.SetCart(req.UserID, req.Items)
	writeBackendJSON(w, http.StatusOK, map[string]string{"message": "Cart saved"})
}

func (b *FakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	products := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		products = append(products, p)
	}
	writeBackendJSON(w, http.StatusOK, products)
}

func (b *FakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	p, ok := b.products[chi.URLParam(r, "id")]
	b.mu.RUnlock()
	if !ok {
		writeBackendJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeBackendJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeBackendJSON(w, http.StatusOK, append([]domain.Category{}, b.categories...))
}

func (b *FakeBackend) listSubcategories(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	writeBackendJSON(w, http.StatusOK, append([]domain.Subcategory{}, b.subcategories...))
}

func (b *FakeBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	writeBackendJSON(w, http.StatusOK, append([]domain.PlacedOrder{}, b.Orders(chi.URLParam(r, "userID"))...))
}

func (b *FakeBackend) placeOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil || len(order.Items) == 0 {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid order"})
		return
	}

	userID := chi.URLParam(r, "userID")
	placed := domain.PlacedOrder{ID: nextID("order"), Items: order.Items, OrderDate: order.OrderDate, Total: order.Total}

	b.mu.Lock()
	b.orders[userID] = append(b.orders[userID], placed)
	b.mu.Unlock()
	writeBackendJSON(w, http.StatusCreated, placed)
}

func (b *FakeBackend) listReviews(w http.ResponseWriter, r *http.Request) {
	writeBackendJSON(w, http.StatusOK, map[string]any{"reviews": b.Reviews(chi.URLParam(r, "id"))})
}

func (b *FakeBackend) averageRating(w http.ResponseWriter, r *http.Request) {
	reviews := b.Reviews(chi.URLParam(r, "id"))
	var avg float64
	if len(reviews) > 0 {
		var sum int
		for _, rv := range reviews {
			sum += rv.Rating
		}
		avg = float64(sum) / float64(len(reviews))
	}
	writeBackendJSON(w, http.StatusOK, domain.ReviewSummary{AverageRating: avg})
}

func (b *FakeBackend) submitReview(w http.ResponseWriter, r *http.Request) {
	if _, err := b.authenticate(r); err != nil {
		writeBackendJSON(w, http.StatusUnauthorized, map[string]string{"message": err.Error()})
		return
	}
	var sub domain.ReviewSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.ProductID == "" {
		writeBackendJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid review"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	sub.Review.ID = nextID("review")
	b.reviews[sub.ProductID] = append(b.reviews[sub.ProductID], sub.Review)
	writeBackendJSON(w, http.StatusCreated, sub.Review)
}
