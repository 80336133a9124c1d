package api

import "storefront-client/internal/domain"

var (
	_ domain.AuthRemote     = (*Client)(nil)
	_ domain.CartRemote     = (*Client)(nil)
	_ domain.ProductCatalog = (*Client)(nil)
	_ domain.OrderRemote    = (*Client)(nil)
	_ domain.ReviewRemote   = (*Client)(nil)
)
