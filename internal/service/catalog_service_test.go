package service

import (
	"context"
	"sort"
	"testing"

	"storefront-client/internal/domain"
	"storefront-client/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Products(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stock(
		testutil.NewTestProduct(testutil.WithProductID("shirt"), testutil.WithCategory("Clothing", "Shirts")),
		testutil.NewTestProduct(testutil.WithProductID("jeans"), testutil.WithCategory("Clothing", "Trousers")),
		testutil.NewTestProduct(testutil.WithProductID("ring"), testutil.WithCategory("Jewelry", "Rings")),
	)
	svc := NewCatalogService(f.catalog, f.loader)

	tests := []struct {
		name        string
		category    string
		subcategory string
		want        []string
	}{
		{name: "no_filter", want: []string{"jeans", "ring", "shirt"}},
		{name: "all_filter", category: AllFilter, subcategory: AllFilter, want: []string{"jeans", "ring", "shirt"}},
		{name: "category", category: "Clothing", want: []string{"jeans", "shirt"}},
		{name: "category_and_subcategory", category: "Clothing", subcategory: "Shirts", want: []string{"shirt"}},
		{name: "no_match", category: "Toys", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.Products(ctx, tt.category, tt.subcategory)

			require.NoError(t, err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			sort.Strings(ids)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCatalogService_Subcategories(t *testing.T) {
	f := newFixture(t)
	f.catalog.SubcategoryList = []domain.Subcategory{
		{ID: "1", Name: "Shirts", Category: "Clothing"},
		{ID: "2", Name: "Rings", Category: "Jewelry"},
	}
	svc := NewCatalogService(f.catalog, f.loader)

	subs, err := svc.Subcategories(context.Background(), "Jewelry")

	require.NoError(t, err)
	assert.Equal(t, []domain.Subcategory{{ID: "2", Name: "Rings", Category: "Jewelry"}}, subs)
}

func TestCatalogService_Product(t *testing.T) {
	f := newFixture(t)
	f.stock(testutil.NewTestProduct(testutil.WithProductID("P1")))
	svc := NewCatalogService(f.catalog, f.loader)

	p, err := svc.Product(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "P1", p.ID)

	_, err = svc.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
