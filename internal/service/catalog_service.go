package service

import (
	"context"
	"fmt"

	"storefront-client/internal/domain"
)

// AllFilter matches every category or subcategory.
const AllFilter = "All"

type CatalogService struct {
	catalog  domain.ProductCatalog
	products ProductLoader
}

func NewCatalogService(catalog domain.ProductCatalog, products ProductLoader) *CatalogService {
	return &CatalogService{catalog: catalog, products: products}
}

// Products lists products matching both filters. An empty or "All" filter
// matches everything.
func (s *CatalogService) Products(ctx context.Context, category, subcategory string) ([]domain.Product, error) {
	all, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	filtered := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if matches(category, p.Category) && matches(subcategory, p.Subcategory) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Product(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// Subcategories lists the subcategories of category.
func (s *CatalogService) Subcategories(ctx context.Context, category string) ([]domain.Subcategory, error) {
	all, err := s.catalog.Subcategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subcategories: %w", err)
	}

	filtered := make([]domain.Subcategory, 0, len(all))
	for _, sc := range all {
		if matches(category, sc.Category) {
			filtered = append(filtered, sc)
		}
	}
	return filtered, nil
}

func matches(filter, value string) bool {
	return filter == "" || filter == AllFilter || filter == value
}
