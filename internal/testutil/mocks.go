// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the storefront client.
package testutil

import (
	"context"
	"errors"
	"sync"

	"storefront-client/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockNotFound       = errors.New("mock: not found")
)

// MockKeyValueStore implements domain.KeyValueStore for testing
type MockKeyValueStore struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte) error
	DeleteFunc func(ctx context.Context, key string) error

	// In-memory storage for simple tests
	Data     map[string][]byte
	SetCalls int
}

// NewMockKeyValueStore creates a new MockKeyValueStore with initialized maps
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{
		Data: make(map[string][]byte),
	}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.Data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.SetCalls++
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Data == nil {
		m.Data = make(map[string][]byte)
	}
	m.Data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Data, key)
	return nil
}

// Value returns the stored value as a string, or "" when missing
func (m *MockKeyValueStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.Data[key]
	return string(value), ok
}

// MockCartRemote implements domain.CartRemote for testing
type MockCartRemote struct {
	mu sync.RWMutex

	FetchCartFunc func(ctx context.Context, userID string) ([]domain.CartLine, error)
	SaveCartFunc  func(ctx context.Context, userID string, items []domain.CartLine) error

	Carts map[string][]domain.CartLine
	Saves []SaveCartCall
}

// SaveCartCall records a SaveCart invocation
type SaveCartCall struct {
	UserID string
	Items  []domain.CartLine
}

func NewMockCartRemote() *MockCartRemote {
	return &MockCartRemote{
		Carts: make(map[string][]domain.CartLine),
	}
}

func (m *MockCartRemote) FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	if m.FetchCartFunc != nil {
		return m.FetchCartFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.CloneLines(m.Carts[userID]), nil
}

func (m *MockCartRemote) SaveCart(ctx context.Context, userID string, items []domain.CartLine) error {
	m.mu.Lock()
	m.Saves = append(m.Saves, SaveCartCall{UserID: userID, Items: domain.CloneLines(items)})
	m.mu.Unlock()

	if m.SaveCartFunc != nil {
		return m.SaveCartFunc(ctx, userID, items)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Carts == nil {
		m.Carts = make(map[string][]domain.CartLine)
	}
	m.Carts[userID] = domain.CloneLines(items)
	return nil
}

// GetSaves returns a copy of recorded SaveCart calls
func (m *MockCartRemote) GetSaves() []SaveCartCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SaveCartCall(nil), m.Saves...)
}

// MockProductCatalog implements domain.ProductCatalog for testing
type MockProductCatalog struct {
	mu sync.RWMutex

	ProductFunc func(ctx context.Context, id string) (*domain.Product, error)

	ProductsByID    map[string]domain.Product
	CategoryList    []domain.Category
	SubcategoryList []domain.Subcategory
	ProductCalls    map[string]int
}

func NewMockProductCatalog(products ...domain.Product) *MockProductCatalog {
	m := &MockProductCatalog{
		ProductsByID: make(map[string]domain.Product),
		ProductCalls: make(map[string]int),
	}
	for _, p := range products {
		m.ProductsByID[p.ID] = p
	}
	return m
}

func (m *MockProductCatalog) Product(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	if m.ProductCalls == nil {
		m.ProductCalls = make(map[string]int)
	}
	m.ProductCalls[id]++
	m.mu.Unlock()

	if m.ProductFunc != nil {
		return m.ProductFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.ProductsByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MockProductCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]domain.Product, 0, len(m.ProductsByID))
	for _, p := range m.ProductsByID {
		products = append(products, p)
	}
	return products, nil
}

func (m *MockProductCatalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return m.CategoryList, nil
}

func (m *MockProductCatalog) Subcategories(ctx context.Context) ([]domain.Subcategory, error) {
	return m.SubcategoryList, nil
}

// Calls returns how often Product was called for id
func (m *MockProductCatalog) Calls(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ProductCalls[id]
}

// MockOrderRemote implements domain.OrderRemote for testing
type MockOrderRemote struct {
	mu sync.RWMutex

	PlaceOrderFunc func(ctx context.Context, userID string, order *domain.Order) error
	OrdersFunc     func(ctx context.Context, userID string) ([]domain.PlacedOrder, error)

	Placed map[string][]domain.Order
}

func NewMockOrderRemote() *MockOrderRemote {
	return &MockOrderRemote{
		Placed: make(map[string][]domain.Order),
	}
}

func (m *MockOrderRemote) PlaceOrder(ctx context.Context, userID string, order *domain.Order) error {
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, userID, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Placed == nil {
		m.Placed = make(map[string][]domain.Order)
	}
	m.Placed[userID] = append(m.Placed[userID], *order)
	return nil
}

func (m *MockOrderRemote) Orders(ctx context.Context, userID string) ([]domain.PlacedOrder, error) {
	if m.OrdersFunc != nil {
		return m.OrdersFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]domain.PlacedOrder, 0, len(m.Placed[userID]))
	for _, o := range m.Placed[userID] {
		history = append(history, domain.PlacedOrder{Items: o.Items, OrderDate: o.OrderDate, Total: o.Total})
	}
	return history, nil
}

// GetPlaced returns the orders placed for userID
func (m *MockOrderRemote) GetPlaced(userID string) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Order(nil), m.Placed[userID]...)
}

// MockAuthRemote implements domain.AuthRemote for testing
type MockAuthRemote struct {
	LoginFunc         func(ctx context.Context, creds domain.Credentials) (string, error)
	RegisterFunc      func(ctx context.Context, creds domain.Credentials) error
	ProfileFunc       func(ctx context.Context, token string) (*domain.UserProfile, error)
	UpdateProfileFunc func(ctx context.Context, token string, profile *domain.UserProfile) error
}

func (m *MockAuthRemote) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return "", ErrMockNotImplemented
}

func (m *MockAuthRemote) Register(ctx context.Context, creds domain.Credentials) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, creds)
	}
	return nil
}

func (m *MockAuthRemote) Profile(ctx context.Context, token string) (*domain.UserProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthRemote) UpdateProfile(ctx context.Context, token string, profile *domain.UserProfile) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, token, profile)
	}
	return nil
}

// MockReviewRemote implements domain.ReviewRemote for testing
type MockReviewRemote struct {
	mu sync.RWMutex

	Submitted []domain.ReviewSubmission
	ByProduct map[string][]domain.Review
	Averages  map[string]float64
}

func NewMockReviewRemote() *MockReviewRemote {
	return &MockReviewRemote{
		ByProduct: make(map[string][]domain.Review),
		Averages:  make(map[string]float64),
	}
}

func (m *MockReviewRemote) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Review{}, m.ByProduct[productID]...), nil
}

func (m *MockReviewRemote) AverageRating(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.ReviewSummary{AverageRating: m.Averages[productID]}, nil
}

func (m *MockReviewRemote) SubmitReview(ctx context.Context, token string, submission *domain.ReviewSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Submitted = append(m.Submitted, *submission)
	m.ByProduct[submission.ProductID] = append(m.ByProduct[submission.ProductID], submission.Review)
	return nil
}

// MockEventPublisher implements domain.EventPublisher for testing
type MockEventPublisher struct {
	mu sync.Mutex

	PublishFunc func(ctx context.Context, event domain.Event) error
	Events      []domain.Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.Event) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

// Types returns the types of published events in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}

// Reset clears all recorded events
func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}
