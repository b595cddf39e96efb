package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"topup/internal/models"
	"topup/internal/services"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestResolveUnitPricePriority(t *testing.T) {
	product := models.Product{
		ID:              "prod-1",
		Name:            "Mobile Legends",
		DiscountPercent: dec(10),
		DiscountActive:  true,
	}
	variation := models.Variation{
		ID:            "var-1",
		Name:          "86 Diamonds",
		BasePrice:     dec(100),
		ResellerPrice: decPtr(80),
		MemberPrice:   decPtr(95),
	}

	// A reseller always gets the reseller override, discount or not.
	assert.True(t, services.ResolveUnitPrice(product, variation, models.RoleReseller).Equal(dec(80)))

	// A plain member gets the member override.
	assert.True(t, services.ResolveUnitPrice(product, variation, models.RoleMember).Equal(dec(95)))

	// An anonymous viewer gets the discounted base price.
	assert.True(t, services.ResolveUnitPrice(product, variation, "").Equal(dec(90)))

	// No discount: base price unmodified.
	product.DiscountActive = false
	assert.True(t, services.ResolveUnitPrice(product, variation, "").Equal(dec(100)))
}

func TestResolveUnitPriceFallsThroughMissingOverrides(t *testing.T) {
	product := models.Product{ID: "prod-1", DiscountPercent: dec(10), DiscountActive: true}
	variation := models.Variation{ID: "var-1", BasePrice: dec(100)}

	// No overrides set: every tier falls through to the discount chain.
	assert.True(t, services.ResolveUnitPrice(product, variation, models.RoleReseller).Equal(dec(90)))
	assert.True(t, services.ResolveUnitPrice(product, variation, models.RoleMember).Equal(dec(90)))
}

func TestExpandItemsSplitsQuantity(t *testing.T) {
	product := models.Product{ID: "prod-1", Name: "Mobile Legends"}
	variation := models.Variation{ID: "var-1", Name: "86 Diamonds"}

	items := services.ExpandItems(product, variation, nil, dec(100), 3)
	assert.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, 1, it.Quantity)
		assert.True(t, it.UnitPrice.Equal(dec(100)))
		assert.Equal(t, "var-1", it.VariationID)
	}
	assert.True(t, services.ComputeTotal(items).Equal(dec(300)))
}
