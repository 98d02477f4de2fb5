package cart

import (
	"github.com/shopspring/decimal"

	"pos_terminal/internal/models"
)

var (
	TaxRate      = decimal.RequireFromString("0.06")
	DiscountRate = decimal.RequireFromString("0.10")
)

type PriceLookup interface {
	Lookup(itemID int64) (models.CatalogItem, bool)
}

// Totals is a preview. The committed figures come back from the remote API
// and may differ.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal

	// Unresolved lists lines left out of Subtotal because the catalog
	// snapshot has no such item.
	Unresolved []int64
}

// ComputeTotals prices lines against prices. Any non-empty couponCode earns
// the discount; the code itself is only checked by the remote API. Each
// figure is rounded to cents from unrounded inputs.
func ComputeTotals(lines []models.CartLine, prices PriceLookup, couponCode string) Totals {
	subtotal := decimal.Zero
	var unresolved []int64

	for _, line := range lines {
		item, ok := prices.Lookup(line.ItemID)
		if !ok {
			unresolved = append(unresolved, line.ItemID)
			continue
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(TaxRate)
	discount := decimal.Zero
	if couponCode != "" {
		discount = subtotal.Mul(DiscountRate)
	}
	total := subtotal.Add(tax).Sub(discount)

	return Totals{
		Subtotal:   subtotal.Round(2),
		Tax:        tax.Round(2),
		Discount:   discount.Round(2),
		Total:      total.Round(2),
		Unresolved: unresolved,
	}
}
