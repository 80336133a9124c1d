package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"storefront-client/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// TestSigningKey signs every token minted by fixtures and the fake backend
var TestSigningKey = []byte("storefront-test-signing-key")

// TokenOptions allows customizing token fixture creation
type TokenOptions struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
	NoExpiry  bool
}

// NewTestToken mints an HS256 token carrying an "id" claim. Tokens expire in
// one hour unless overridden.
func NewTestToken(opts ...func(*TokenOptions)) string {
	o := &TokenOptions{
		UserID:    nextID("user"),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	for _, opt := range opts {
		opt(o)
	}

	claims := jwt.MapClaims{
		"id":  o.UserID,
		"iat": time.Now().Unix(),
	}
	if o.Email != "" {
		claims["email"] = o.Email
	}
	if !o.NoExpiry {
		claims["exp"] = o.ExpiresAt.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TestSigningKey)
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to sign token: %v", err))
	}
	return signed
}

// Token option functions

// WithTokenUserID sets the "id" claim
func WithTokenUserID(id string) func(*TokenOptions) {
	return func(o *TokenOptions) {
		o.UserID = id
	}
}

// WithTokenEmail sets the email claim
func WithTokenEmail(email string) func(*TokenOptions) {
	return func(o *TokenOptions) {
		o.Email = email
	}
}

// WithExpiresAt sets the exp claim
func WithExpiresAt(t time.Time) func(*TokenOptions) {
	return func(o *TokenOptions) {
		o.ExpiresAt = t
	}
}

// WithExpired creates an already expired token
func WithExpired() func(*TokenOptions) {
	return func(o *TokenOptions) {
		o.ExpiresAt = time.Now().Add(-1 * time.Hour)
	}
}

// WithoutExpiry omits the exp claim
func WithoutExpiry() func(*TokenOptions) {
	return func(o *TokenOptions) {
		o.NoExpiry = true
	}
}

// ProductOptions allows customizing product fixture creation
type ProductOptions struct {
	ID          string
	Name        string
	Price       float64
	Sale        float64
	Stock       int
	Category    string
	Subcategory string
	Sizes       []string
}

// NewTestProduct creates a test product with sensible defaults
func NewTestProduct(opts ...func(*ProductOptions)) domain.Product {
	o := &ProductOptions{
		ID:       nextID("product"),
		Name:     fmt.Sprintf("Test Product %d", idCounter.Load()),
		Price:    100,
		Stock:    10,
		Category: "Clothing",
		Sizes:    []string{"S", "M", "L"},
	}

	for _, opt := range opts {
		opt(o)
	}

	return domain.Product{
		ID:          o.ID,
		Name:        o.Name,
		Price:       o.Price,
		Sale:        o.Sale,
		Stock:       o.Stock,
		Category:    o.Category,
		Subcategory: o.Subcategory,
		Sizes:       o.Sizes,
	}
}

// Product option functions

// WithProductID sets the product ID
func WithProductID(id string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.ID = id
	}
}

// WithProductName sets the product name
func WithProductName(name string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Name = name
	}
}

// WithPrice sets the list price
func WithPrice(price float64) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Price = price
	}
}

// WithSale sets the discount percentage
func WithSale(sale float64) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Sale = sale
	}
}

// WithStock sets the stock count
func WithStock(stock int) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Stock = stock
	}
}

// WithCategory sets category and subcategory
func WithCategory(category, subcategory string) func(*ProductOptions) {
	return func(o *ProductOptions) {
		o.Category = category
		o.Subcategory = subcategory
	}
}

// NewTestLine creates a cart line
func NewTestLine(productID, size string, quantity int) domain.CartLine {
	return domain.CartLine{ProductID: productID, Quantity: quantity, Size: size}
}

// NewTestProfile creates a filled-in profile for the given email
func NewTestProfile(email string) *domain.UserProfile {
	return &domain.UserProfile{
		ID:       nextID("user"),
		Email:    email,
		FullName: "Test User",
		Bio:      "Just testing",
		Address: domain.Address{
			City:    "Lisbon",
			Street:  "Rua Augusta 1",
			Country: "Portugal",
		},
		Contact: "+351000000000",
	}
}
