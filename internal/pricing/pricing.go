// Package pricing computes cart money values. All arithmetic is float64 at
// full precision; rounding to cents happens only in Round2 and FormatMoney.
package pricing

import (
	"math"
	"strconv"

	"storefront-client/internal/domain"
)

// DiscountedUnitPrice applies the product's sale percentage, clamped to
// [0, 100].
func DiscountedUnitPrice(p domain.Product) float64 {
	sale := math.Min(math.Max(p.Sale, 0), 100)
	if sale == 0 || math.IsNaN(p.Sale) {
		return p.Price
	}
	return p.Price - p.Price*sale/100
}

// LineTotal is zero when the product is not in products.
func LineTotal(line domain.CartLine, products domain.ProductMap) float64 {
	p, ok := products[line.ProductID]
	if !ok {
		return 0
	}
	return DiscountedUnitPrice(p) * float64(line.Quantity)
}

func Subtotal(lines []domain.CartLine, products domain.ProductMap) float64 {
	var total float64
	for _, l := range lines {
		total += LineTotal(l, products)
	}
	return total
}

func SubtotalWithoutDiscount(lines []domain.CartLine, products domain.ProductMap) float64 {
	var total float64
	for _, l := range lines {
		if p, ok := products[l.ProductID]; ok {
			total += p.Price * float64(l.Quantity)
		}
	}
	return total
}

func Savings(lines []domain.CartLine, products domain.ProductMap) float64 {
	return SubtotalWithoutDiscount(lines, products) - Subtotal(lines, products)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func FormatMoney(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// PricedLine is a cart line joined with its product.
type PricedLine struct {
	Line      domain.CartLine `json:"line"`
	Product   domain.Product  `json:"product"`
	UnitPrice float64         `json:"unit_price"`
	Total     float64         `json:"total"`
}

// Summary is a priced cart. Money fields are rounded for output.
type Summary struct {
	Lines                   []PricedLine `json:"lines"`
	Subtotal                float64      `json:"subtotal"`
	SubtotalWithoutDiscount float64      `json:"subtotal_without_discount"`
	Savings                 float64      `json:"savings"`
	Skipped                 []string     `json:"skipped,omitempty"`
}

// Quote prices lines. Lines whose product is missing are listed in Skipped.
func Quote(lines []domain.CartLine, products domain.ProductMap) Summary {
	s := Summary{Lines: make([]PricedLine, 0, len(lines))}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			s.Skipped = append(s.Skipped, l.ProductID)
			continue
		}
		unit := DiscountedUnitPrice(p)
		s.Lines = append(s.Lines, PricedLine{
			Line:      l,
			Product:   p,
			UnitPrice: Round2(unit),
			Total:     Round2(unit * float64(l.Quantity)),
		})
	}

	subtotal := Subtotal(lines, products)
	full := SubtotalWithoutDiscount(lines, products)
	s.Subtotal = Round2(subtotal)
	s.SubtotalWithoutDiscount = Round2(full)
	s.Savings = Round2(full - subtotal)
	return s
}
