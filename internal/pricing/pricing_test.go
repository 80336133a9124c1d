package pricing

import (
	"testing"

	"storefront-client/internal/domain"
	"storefront-client/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestDiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		sale  float64
		want  float64
	}{
		{"no_sale", 100, 0, 100},
		{"twenty_percent", 100, 20, 80},
		{"negative_sale_is_ignored", 100, -10, 100},
		{"sale_over_hundred_is_free", 100, 150, 0},
		{"fractional", 19.99, 15, 19.99 - 19.99*15/100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewTestProduct(testutil.WithPrice(tt.price), testutil.WithSale(tt.sale))
			assert.InDelta(t, tt.want, DiscountedUnitPrice(p), 1e-9)
		})
	}
}

func TestLineTotal(t *testing.T) {
	p := testutil.NewTestProduct(testutil.WithProductID("P1"), testutil.WithPrice(100), testutil.WithSale(20))
	products := domain.ProductMap{"P1": p}

	t.Run("discounted_price_times_quantity", func(t *testing.T) {
		total := LineTotal(testutil.NewTestLine("P1", "M", 3), products)
		assert.Equal(t, "240.00", FormatMoney(total))
	})

	t.Run("missing_product_contributes_zero", func(t *testing.T) {
		assert.Zero(t, LineTotal(testutil.NewTestLine("nope", "M", 3), products))
	})
}

func TestSubtotals(t *testing.T) {
	products := domain.ProductMap{
		"A": testutil.NewTestProduct(testutil.WithProductID("A"), testutil.WithPrice(0.1), testutil.WithSale(0)),
		"B": testutil.NewTestProduct(testutil.WithProductID("B"), testutil.WithPrice(50), testutil.WithSale(10)),
	}
	lines := []domain.CartLine{
		testutil.NewTestLine("A", "S", 3),
		testutil.NewTestLine("B", "M", 2),
		testutil.NewTestLine("missing", "L", 7),
	}

	t.Run("subtotal_skips_missing_products", func(t *testing.T) {
		assert.InDelta(t, 0.3+90, Subtotal(lines, products), 1e-9)
	})

	t.Run("subtotal_without_discount", func(t *testing.T) {
		assert.InDelta(t, 0.3+100, SubtotalWithoutDiscount(lines, products), 1e-9)
	})

	t.Run("savings", func(t *testing.T) {
		assert.Equal(t, "10.00", FormatMoney(Savings(lines, products)))
	})

	t.Run("empty_cart_is_zero", func(t *testing.T) {
		assert.Zero(t, Subtotal(nil, products))
	})
}

func TestRounding(t *testing.T) {
	t.Run("round_only_at_output", func(t *testing.T) {
		products := domain.ProductMap{
			"A": testutil.NewTestProduct(testutil.WithProductID("A"), testutil.WithPrice(0.125)),
		}
		lines := []domain.CartLine{testutil.NewTestLine("A", "S", 3)}

		// rounding the unit price first would give 0.39
		assert.Equal(t, "0.38", FormatMoney(Subtotal(lines, products)))
	})

	t.Run("format_money_pads_cents", func(t *testing.T) {
		assert.Equal(t, "5.00", FormatMoney(5))
		assert.Equal(t, "0.10", FormatMoney(0.1))
	})
}

func TestQuote(t *testing.T) {
	products := domain.ProductMap{
		"P1": testutil.NewTestProduct(testutil.WithProductID("P1"), testutil.WithPrice(100), testutil.WithSale(20)),
	}
	lines := []domain.CartLine{
		testutil.NewTestLine("P1", "M", 3),
		testutil.NewTestLine("gone", "M", 1),
	}

	s := Quote(lines, products)

	assert.Len(t, s.Lines, 1)
	assert.Equal(t, 80.0, s.Lines[0].UnitPrice)
	assert.Equal(t, 240.0, s.Lines[0].Total)
	assert.Equal(t, 240.0, s.Subtotal)
	assert.Equal(t, 300.0, s.SubtotalWithoutDiscount)
	assert.Equal(t, 60.0, s.Savings)
	assert.Equal(t, []string{"gone"}, s.Skipped)
}
