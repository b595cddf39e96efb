package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. An order starts as pending and moves forward only;
// approved and rejected are terminal.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// IsTerminal reports whether a status accepts no further transitions.
func IsTerminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// Allowed: pending -> processing, pending/processing -> approved|rejected.
func CanTransition(from, to string) bool {
	if IsTerminal(from) || !IsValidStatus(to) {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusApproved || to == StatusRejected
	case StatusProcessing:
		return to == StatusApproved || to == StatusRejected
	}
	return false
}

// AddOn is an optional extra attached to a line item, priced per unit.
type AddOn struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem is a single line of an order. Prices are captured at order time.
// The placement flow always writes quantity-1 items, expanding a quantity-N
// purchase into N lines; AggregateItems merges them back for display.
type OrderItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	VariationID   string          `json:"variation_id"`
	VariationName string          `json:"variation_name"`
	AddOns        []AddOn         `json:"add_ons,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
}

// LineTotal returns unit price (including add-ons) times quantity.
func (it OrderItem) LineTotal() decimal.Decimal {
	unit := it.UnitPrice
	for _, a := range it.AddOns {
		unit = unit.Add(a.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// OrderItems is stored as a JSON column.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}
	return string(b), nil
}

func (items *OrderItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	}
	return fmt.Errorf("unsupported order items column type %T", src)
}

// AggregateItems merges quantity-1 lines that share the same product,
// variation, add-ons and unit price into one display line with a summed
// quantity. Stored orders keep the expanded form; only rendering aggregates.
func AggregateItems(items []OrderItem) []OrderItem {
	type key struct {
		product   string
		variation string
		addOns    string
		price     string
	}
	var out []OrderItem
	index := make(map[key]int)
	for _, it := range items {
		addOns, _ := json.Marshal(it.AddOns)
		k := key{it.ProductID, it.VariationID, string(addOns), it.UnitPrice.String()}
		if i, ok := index[k]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}
	return out
}

// AccountInfo is one identity-field group of a multi-account order.
type AccountInfo struct {
	Game    string            `json:"game"`
	Package string            `json:"package"`
	Fields  map[string]string `json:"fields"`
}

// CustomerInfo is the semi-structured customer block on an order. It is a
// tagged variant: a single-account order carries a flat field map, a
// multi-account order carries a "Multiple Accounts" list of account groups.
// The wire shape is decided here, once, instead of by key-sniffing consumers.
type CustomerInfo struct {
	Fields        map[string]string `json:"-"`
	Accounts      []AccountInfo     `json:"-"`
	PaymentMethod string            `json:"-"`
}

const (
	multiAccountsKey = "Multiple Accounts"
	paymentMethodKey = "Payment Method"
)

// IsMultiAccount reports whether the info carries account groups.
func (ci CustomerInfo) IsMultiAccount() bool { return len(ci.Accounts) > 0 }

func (ci CustomerInfo) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(ci.Fields)+2)
	if ci.IsMultiAccount() {
		m[multiAccountsKey] = ci.Accounts
	} else {
		for k, v := range ci.Fields {
			m[k] = v
		}
	}
	if ci.PaymentMethod != "" {
		m[paymentMethodKey] = ci.PaymentMethod
	}
	return json.Marshal(m)
}

func (ci *CustomerInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ci = CustomerInfo{}
	if pm, ok := raw[paymentMethodKey]; ok {
		if err := json.Unmarshal(pm, &ci.PaymentMethod); err != nil {
			return fmt.Errorf("invalid payment method label: %w", err)
		}
		delete(raw, paymentMethodKey)
	}
	if accounts, ok := raw[multiAccountsKey]; ok {
		return json.Unmarshal(accounts, &ci.Accounts)
	}
	ci.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("invalid customer field %q: %w", k, err)
		}
		ci.Fields[k] = s
	}
	return nil
}

func (ci CustomerInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(ci)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer info: %w", err)
	}
	return string(b), nil
}

func (ci *CustomerInfo) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ci = CustomerInfo{}
		return nil
	case []byte:
		return json.Unmarshal(v, ci)
	case string:
		return json.Unmarshal([]byte(v), ci)
	}
	return fmt.Errorf("unsupported customer info column type %T", src)
}

// Order is a customer top-up order.
type Order struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	InvoiceNumber    string          `json:"invoice_number,omitempty"`
	Status           string          `json:"status" gorm:"index"`
	Items            OrderItems      `json:"order_items" gorm:"type:text"`
	CustomerInfo     CustomerInfo    `json:"customer_info" gorm:"type:text"`
	PaymentMethodID  string          `json:"payment_method_id"`
	ReceiptURL       string          `json:"receipt_url"`
	TotalPrice       decimal.Decimal `json:"total_price" gorm:"type:numeric"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	RejectionMessage string          `json:"rejection_message,omitempty"`
	ApprovalMessage  string          `json:"approval_message,omitempty"`
	MemberID         string          `json:"member_id,omitempty" gorm:"index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DisplayNumber returns the invoice number, falling back to a truncated id.
func (o Order) DisplayNumber() string {
	if o.InvoiceNumber != "" {
		return o.InvoiceNumber
	}
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}
