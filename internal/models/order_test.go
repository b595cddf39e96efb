package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"topup/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.StatusPending, models.StatusProcessing, true},
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusProcessing, models.StatusApproved, true},
		{models.StatusProcessing, models.StatusRejected, true},
		{models.StatusProcessing, models.StatusPending, false},
		{models.StatusApproved, models.StatusRejected, false},
		{models.StatusApproved, models.StatusPending, false},
		{models.StatusRejected, models.StatusApproved, false},
		{models.StatusRejected, models.StatusProcessing, false},
		{models.StatusPending, "shipped", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, models.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, models.IsTerminal(models.StatusApproved))
	assert.True(t, models.IsTerminal(models.StatusRejected))
	assert.False(t, models.IsTerminal(models.StatusPending))
	assert.False(t, models.IsTerminal(models.StatusProcessing))
}

func TestAggregateItems(t *testing.T) {
	price := decimal.NewFromInt(100)
	item := models.OrderItem{
		ProductID:   "prod-1",
		VariationID: "var-1",
		UnitPrice:   price,
		Quantity:    1,
	}
	other := item
	other.VariationID = "var-2"

	aggregated := models.AggregateItems([]models.OrderItem{item, item, other, item})
	assert.Len(t, aggregated, 2)
	assert.Equal(t, 3, aggregated[0].Quantity)
	assert.Equal(t, "var-1", aggregated[0].VariationID)
	assert.Equal(t, 1, aggregated[1].Quantity)
	assert.Equal(t, "var-2", aggregated[1].VariationID)
}

func TestAggregateItemsKeepsDifferentPricesApart(t *testing.T) {
	cheap := models.OrderItem{ProductID: "p", VariationID: "v", UnitPrice: decimal.NewFromInt(90), Quantity: 1}
	full := models.OrderItem{ProductID: "p", VariationID: "v", UnitPrice: decimal.NewFromInt(100), Quantity: 1}

	aggregated := models.AggregateItems([]models.OrderItem{cheap, full, cheap})
	assert.Len(t, aggregated, 2)
	assert.Equal(t, 2, aggregated[0].Quantity)
}

func TestCustomerInfoSingleAccountWireShape(t *testing.T) {
	info := models.CustomerInfo{
		Fields:        map[string]string{"Player ID": "12345", "Server": "Asia"},
		PaymentMethod: "GCash",
	}

	raw, err := json.Marshal(info)
	assert.NoError(t, err)

	var flat map[string]string
	assert.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "12345", flat["Player ID"])
	assert.Equal(t, "Asia", flat["Server"])
	assert.Equal(t, "GCash", flat["Payment Method"])
	assert.NotContains(t, flat, "Multiple Accounts")

	var back models.CustomerInfo
	assert.NoError(t, json.Unmarshal(raw, &back))
	assert.False(t, back.IsMultiAccount())
	assert.Equal(t, info.Fields, back.Fields)
	assert.Equal(t, "GCash", back.PaymentMethod)
}

func TestCustomerInfoMultiAccountWireShape(t *testing.T) {
	info := models.CustomerInfo{
		Accounts: []models.AccountInfo{
			{Game: "Mobile Legends", Package: "86 Diamonds", Fields: map[string]string{"Player ID": "111"}},
			{Game: "Mobile Legends", Package: "172 Diamonds", Fields: map[string]string{"Player ID": "222"}},
		},
		PaymentMethod: "Maya",
	}

	raw, err := json.Marshal(info)
	assert.NoError(t, err)

	var wire map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(raw, &wire))
	assert.Contains(t, wire, "Multiple Accounts")
	assert.Contains(t, wire, "Payment Method")

	var back models.CustomerInfo
	assert.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.IsMultiAccount())
	assert.Len(t, back.Accounts, 2)
	assert.Equal(t, "111", back.Accounts[0].Fields["Player ID"])
	assert.Equal(t, "172 Diamonds", back.Accounts[1].Package)
	assert.Equal(t, "Maya", back.PaymentMethod)
}

func TestOrderDisplayNumber(t *testing.T) {
	order := models.Order{ID: "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"}
	assert.Equal(t, "0a1b2c3d", order.DisplayNumber())

	order.InvoiceNumber = "INV-0042"
	assert.Equal(t, "INV-0042", order.DisplayNumber())
}

func TestOrderItemLineTotal(t *testing.T) {
	item := models.OrderItem{
		UnitPrice: decimal.NewFromInt(50),
		Quantity:  2,
		AddOns:    []models.AddOn{{ID: "a", Name: "Bonus", Price: decimal.NewFromInt(5)}},
	}
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(110)))
}
