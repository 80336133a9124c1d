package domain

import "context"

// AuthRemote is the remote authentication endpoint.
type AuthRemote interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Register(ctx context.Context, creds Credentials) error
	Profile(ctx context.Context, token string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, token string, profile *UserProfile) error
}

// CartRemote is the server-held cart for an authenticated identity.
type CartRemote interface {
	FetchCart(ctx context.Context, userID string) ([]CartLine, error)
	SaveCart(ctx context.Context, userID string, items []CartLine) error
}

// ProductCatalog reads products and their taxonomy.
type ProductCatalog interface {
	Product(ctx context.Context, id string) (*Product, error)
	Products(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
	Subcategories(ctx context.Context) ([]Subcategory, error)
}

// OrderRemote submits orders and lists order history.
type OrderRemote interface {
	PlaceOrder(ctx context.Context, userID string, order *Order) error
	Orders(ctx context.Context, userID string) ([]PlacedOrder, error)
}

// ReviewRemote reads and submits product reviews.
type ReviewRemote interface {
	Reviews(ctx context.Context, productID string) ([]Review, error)
	AverageRating(ctx context.Context, productID string) (*ReviewSummary, error)
	SubmitReview(ctx context.Context, token string, submission *ReviewSubmission) error
}
