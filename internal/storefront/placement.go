package storefront

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/pkg/upload"
)

// ReceiptState is the upload substate of the placement flow. Submission is
// enabled only in ReceiptUploaded.
type ReceiptState int

const (
	ReceiptNone ReceiptState = iota
	ReceiptUploading
	ReceiptUploaded
	ReceiptFailed
)

// ErrNotSubmittable is returned by Submit when the validity preconditions
// do not hold; Explain lists the concrete reasons.
var ErrNotSubmittable = errors.New("order is not ready to submit")

// accountDraft is one identity-field group under construction, with its
// selected package.
type accountDraft struct {
	game      string
	fields    map[string]string
	product   *models.Product
	variation *models.Variation
	addOns    []models.AddOn
	quantity  int
}

// PlacementFlow assembles one order: declared accounts, a payment method, an
// uploaded receipt, and the computed total. It prices each line independently
// through the viewer-tier chain and expands quantity-N selections into
// quantity-1 line items at creation time.
type PlacementFlow struct {
	orders   *OrderRepository
	products repositories.ProductRepository
	payments repositories.PaymentMethodRepository
	uploads  upload.Service
	tracker  *Tracker

	mu           sync.Mutex
	viewerRole   string
	memberID     string
	accounts     []accountDraft
	method       *models.PaymentMethod
	receiptState ReceiptState
	receiptURL   string
}

// NewPlacementFlow creates an empty flow. tracker may be nil for flows whose
// caller tracks the created order itself.
func NewPlacementFlow(orders *OrderRepository, products repositories.ProductRepository, payments repositories.PaymentMethodRepository, uploads upload.Service, tracker *Tracker) *PlacementFlow {
	return &PlacementFlow{
		orders:   orders,
		products: products,
		payments: payments,
		uploads:  uploads,
		tracker:  tracker,
	}
}

// SetViewer records the authenticated viewer, whose tier picks the override
// price. Anonymous flows leave both empty.
func (f *PlacementFlow) SetViewer(role, memberID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewerRole = role
	f.memberID = memberID
}

// AddAccount declares one identity-field group and returns its index.
// A single-account order has exactly one; each further call makes the order
// multi-account.
func (f *PlacementFlow) AddAccount(game string, fields map[string]string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fields == nil {
		fields = make(map[string]string)
	}
	f.accounts = append(f.accounts, accountDraft{game: game, fields: fields})
	return len(f.accounts) - 1
}

// AssignPackage selects a product variation (with optional add-ons) and a
// quantity for the given account. The price is resolved at submit time.
func (f *PlacementFlow) AssignPackage(accountIndex int, variationID string, quantity int, addOnIDs []string) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	variation, err := f.products.GetVariation(variationID)
	if err != nil {
		return err
	}
	product, err := f.products.GetByID(variation.ProductID)
	if err != nil {
		return err
	}
	var addOns []models.AddOn
	for _, id := range addOnIDs {
		found := false
		for _, a := range variation.AddOns {
			if a.ID == id {
				addOns = append(addOns, a)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("add-on %s not available on variation %s", id, variationID)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if accountIndex < 0 || accountIndex >= len(f.accounts) {
		return fmt.Errorf("no account at index %d", accountIndex)
	}
	acc := &f.accounts[accountIndex]
	acc.product = product
	acc.variation = variation
	acc.addOns = addOns
	acc.quantity = quantity
	return nil
}

// SelectPaymentMethod sets the payment method by id.
func (f *PlacementFlow) SelectPaymentMethod(id string) error {
	method, err := f.payments.GetByID(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

// UploadReceipt pushes the proof-of-payment through the upload service,
// tracking the uploading/uploaded/failed substates. A failure resets only
// the upload affordance; every other selection survives.
func (f *PlacementFlow) UploadReceipt(name string, r io.Reader) error {
	f.mu.Lock()
	f.receiptState = ReceiptUploading
	f.receiptURL = ""
	f.mu.Unlock()

	url, err := f.uploads.Store(name, r)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.receiptState = ReceiptFailed
		return fmt.Errorf("receipt upload failed: %w", err)
	}
	f.receiptState = ReceiptUploaded
	f.receiptURL = url
	return nil
}

// AttachReceipt marks an already-uploaded receipt URL as the proof of
// payment (the HTTP surface uploads first, then submits).
func (f *PlacementFlow) AttachReceipt(url string) error {
	if url == "" {
		return fmt.Errorf("receipt URL must not be empty")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptState = ReceiptUploaded
	f.receiptURL = url
	return nil
}

// ReceiptState returns the current upload substate.
func (f *PlacementFlow) ReceiptState() ReceiptState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receiptState
}

// CanSubmit reports whether every validity precondition holds.
func (f *PlacementFlow) CanSubmit() bool {
	return len(f.Explain()) == 0
}

// Explain lists the unmet submission preconditions, empty when submittable.
func (f *PlacementFlow) Explain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reasons []string
	if len(f.accounts) == 0 {
		reasons = append(reasons, "no account declared")
	}
	for i, acc := range f.accounts {
		if acc.variation == nil {
			reasons = append(reasons, fmt.Sprintf("account %d has no package selected", i+1))
			continue
		}
		for _, label := range acc.product.FieldLabels {
			if acc.fields[label] == "" {
				reasons = append(reasons, fmt.Sprintf("account %d is missing %q", i+1, label))
			}
		}
	}
	if f.method == nil {
		reasons = append(reasons, "no payment method selected")
	}
	switch f.receiptState {
	case ReceiptUploaded:
	case ReceiptUploading:
		reasons = append(reasons, "receipt is still uploading")
	case ReceiptFailed:
		reasons = append(reasons, "receipt upload failed")
	default:
		reasons = append(reasons, "no receipt uploaded")
	}
	return reasons
}

// Submit builds the order and creates it through the order repository. Each
// line item is priced independently, quantity-N selections are expanded into
// N quantity-1 items, and the total is the sum of the expanded lines. On
// success the created order id is remembered as the watched order.
func (f *PlacementFlow) Submit() (*models.Order, error) {
	if reasons := f.Explain(); len(reasons) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotSubmittable, reasons)
	}

	f.mu.Lock()
	var items []models.OrderItem
	for _, acc := range f.accounts {
		unit := services.ResolveUnitPrice(*acc.product, *acc.variation, f.viewerRole)
		items = append(items, services.ExpandItems(*acc.product, *acc.variation, acc.addOns, unit, acc.quantity)...)
	}

	info := models.CustomerInfo{PaymentMethod: f.method.DisplayName}
	if len(f.accounts) > 1 {
		for _, acc := range f.accounts {
			info.Accounts = append(info.Accounts, models.AccountInfo{
				Game:    acc.game,
				Package: acc.variation.Name,
				Fields:  acc.fields,
			})
		}
	} else {
		info.Fields = f.accounts[0].fields
	}

	order := &models.Order{
		Items:           items,
		CustomerInfo:    info,
		PaymentMethodID: f.method.ID,
		ReceiptURL:      f.receiptURL,
		TotalPrice:      services.ComputeTotal(items),
		MemberID:        f.memberID,
	}
	f.mu.Unlock()

	created, err := f.orders.Create(order)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	if f.tracker != nil {
		_ = f.tracker.Remember(created.ID)
	}
	return created, nil
}
