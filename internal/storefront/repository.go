// Package storefront is the client-side session layer of the top-up shop:
// the order page cache with poll/push reconciliation, the single-slot
// pending-order tracker, the status-dialog state machine and the order
// placement flow. It sits on the remote store contract and owns no UI.
package storefront

import (
	"context"
	"sync"
	"time"

	"topup/internal/models"
	"topup/internal/repositories"
)

// Defaults for the reconciliation timings: tens-of-seconds polling with a
// few seconds of dedupe guard.
const (
	DefaultPageSize     = 10
	DefaultPollInterval = 30 * time.Second
	DefaultGuardWindow  = 2 * time.Second
	DefaultPushSettle   = 500 * time.Millisecond
)

// TransitionService applies a validated status transition; the free-form
// field is the rejection reason or the approval message depending on the
// target status.
type TransitionService interface {
	Transition(id, newStatus, reasonOrMessage string) error
}

// RepositoryOptions tunes an OrderRepository. Zero values fall back to the
// defaults above.
type RepositoryOptions struct {
	PageSize     int
	PollInterval time.Duration
	GuardWindow  time.Duration
	PushSettle   time.Duration
	// OperatorView marks the repository as backing the operator order list:
	// writes refresh the current page, which an anonymous customer context
	// cannot (and must not) do.
	OperatorView bool
}

// OrderRepository is the single fetch path for order data. Three independent
// triggers (initial load, the poll timer, push notifications) all funnel into
// one page refresh, deduplicated by a guard window around the most recent
// fetch. On failure the cache keeps its last good data.
type OrderRepository struct {
	store       repositories.OrderStore
	transitions TransitionService
	opts        RepositoryOptions

	mu        sync.Mutex
	orders    []models.Order
	total     int64
	page      int
	lastFetch time.Time
	lastErr   string
}

// NewOrderRepository creates an OrderRepository over the given store.
func NewOrderRepository(store repositories.OrderStore, transitions TransitionService, opts RepositoryOptions) *OrderRepository {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.GuardWindow <= 0 {
		opts.GuardWindow = DefaultGuardWindow
	}
	if opts.PushSettle <= 0 {
		opts.PushSettle = DefaultPushSettle
	}
	return &OrderRepository{
		store:       store,
		transitions: transitions,
		opts:        opts,
		page:        1,
	}
}

// FetchPage replaces the cached page with a fresh newest-first read and
// records the page pointer the background refresh path will re-fetch. The
// caller clamps the page number to the valid range.
func (r *OrderRepository) FetchPage(page int) error {
	if page < 1 {
		page = 1
	}
	orders, total, err := r.store.SelectPage((page-1)*r.opts.PageSize, r.opts.PageSize)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFetch = time.Now()
	if err != nil {
		// Keep the last good page; the error is surfaced for explicit,
		// user-triggered fetches.
		r.lastErr = err.Error()
		return err
	}
	r.orders = orders
	r.total = total
	r.page = page
	r.lastErr = ""
	return nil
}

// FetchOne returns the full order record, including the receipt URL that the
// page read omits. Absent rows surface as repositories.ErrOrderNotFound.
func (r *OrderRepository) FetchOne(id string) (*models.Order, error) {
	return r.store.SelectOne(id)
}

// Create inserts a new order with the status forced to pending and returns
// the stored record with its server-assigned id and timestamps. In the
// operator context the current page is refreshed so the new order shows up.
func (r *OrderRepository) Create(order *models.Order) (*models.Order, error) {
	order.Status = models.StatusPending
	if err := r.store.Insert(order); err != nil {
		return nil, err
	}
	r.refreshIfOperator()
	return order, nil
}

// UpdateStatus applies a status transition (validated by the transition
// service) and refreshes the current page on success.
func (r *OrderRepository) UpdateStatus(id, newStatus, reasonOrMessage string) error {
	if err := r.transitions.Transition(id, newStatus, reasonOrMessage); err != nil {
		return err
	}
	r.refreshIfOperator()
	return nil
}

// Current returns the cached page, the table-wide total and the page number.
func (r *OrderRepository) Current() ([]models.Order, int64, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]models.Order, len(r.orders))
	copy(orders, r.orders)
	return orders, r.total, r.page
}

// TotalPages returns the page count for the current total.
func (r *OrderRepository) TotalPages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := int((r.total + int64(r.opts.PageSize) - 1) / int64(r.opts.PageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// LastError returns the message of the most recent explicit fetch failure,
// empty after a successful fetch. Background refreshes never set it.
func (r *OrderRepository) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Run drives the background reconciliation: a poll ticker for eventual
// correctness and the push channel for responsiveness. Both funnel into the
// guarded refresh, so a push landing right after a poll (or the reverse)
// costs one network fetch, not two. Push refreshes wait a short settle delay
// so the store's read-after-write has caught up. Run returns when ctx ends.
func (r *OrderRepository) Run(ctx context.Context, changes <-chan models.OrderChange) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.maybeRefresh()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.opts.PushSettle):
			}
			r.maybeRefresh()
		}
	}
}

// maybeRefresh re-fetches the current page unless a fetch already happened
// within the guard window. Errors are swallowed: background reconciliation
// keeps the last good state and the next trigger tries again.
func (r *OrderRepository) maybeRefresh() {
	r.mu.Lock()
	if time.Since(r.lastFetch) < r.opts.GuardWindow {
		r.mu.Unlock()
		return
	}
	page := r.page
	r.mu.Unlock()

	orders, total, err := r.store.SelectPage((page-1)*r.opts.PageSize, r.opts.PageSize)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFetch = time.Now()
	if err != nil {
		return
	}
	// A user may have paged on while the fetch was in flight; stale pages
	// must not clobber the newer view.
	if r.page != page {
		return
	}
	r.orders = orders
	r.total = total
}

func (r *OrderRepository) refreshIfOperator() {
	if !r.opts.OperatorView {
		return
	}
	r.mu.Lock()
	page := r.page
	r.mu.Unlock()
	_ = r.FetchPage(page)
}
