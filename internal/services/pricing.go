package services

import (
	"github.com/shopspring/decimal"

	"topup/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ResolveUnitPrice returns the effective per-unit price of a variation for a
// viewer. Resolution priority: reseller override for reseller viewers, member
// override for plain members, the product's active percent discount on the
// base price, then the base price. A tier override beats the discount even
// when the discount is active.
func ResolveUnitPrice(product models.Product, variation models.Variation, viewerRole string) decimal.Decimal {
	switch viewerRole {
	case models.RoleReseller:
		if variation.ResellerPrice != nil {
			return *variation.ResellerPrice
		}
	case models.RoleMember:
		if variation.MemberPrice != nil {
			return *variation.MemberPrice
		}
	}
	if product.DiscountActive && product.DiscountPercent.IsPositive() {
		factor := hundred.Sub(product.DiscountPercent).Div(hundred)
		return variation.BasePrice.Mul(factor)
	}
	return variation.BasePrice
}

// ExpandItems turns a quantity-N selection into N quantity-1 line items.
// Stored orders keep this expanded form for compatibility with historical
// rows; models.AggregateItems merges them back for display.
func ExpandItems(product models.Product, variation models.Variation, addOns []models.AddOn, unitPrice decimal.Decimal, quantity int) []models.OrderItem {
	items := make([]models.OrderItem, 0, quantity)
	for i := 0; i < quantity; i++ {
		items = append(items, models.OrderItem{
			ProductID:     product.ID,
			ProductName:   product.Name,
			VariationID:   variation.ID,
			VariationName: variation.Name,
			AddOns:        addOns,
			UnitPrice:     unitPrice,
			Quantity:      1,
		})
	}
	return items
}

// ComputeTotal sums the line totals of all items.
func ComputeTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
