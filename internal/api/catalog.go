package api

import (
	"context"
	"fmt"
	"net/url"

	"storefront-client/internal/domain"
)

// Product fetches one product. A body without a product (null, {}, or a
// record with no id) is a malformed response, never a zero-priced product.
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var product *domain.Product
	if err := c.getRequired(ctx, "products.get", "/fetchproducts/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	if product == nil || product.ID == "" {
		return nil, fmt.Errorf("%w: products.get: no product in response for %s", domain.ErrMalformedResponse, id)
	}
	return product, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := c.get(ctx, "products.list", "/fetchproducts/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := c.get(ctx, "categories.list", "/category", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) Subcategories(ctx context.Context) ([]domain.Subcategory, error) {
	subcategories := []domain.Subcategory{}
	if err := c.get(ctx, "subcategories.list", "/subcategories", &subcategories); err != nil {
		return nil, err
	}
	return subcategories, nil
}
