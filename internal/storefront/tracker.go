package storefront

import (
	"errors"

	"topup/internal/localstore"
	"topup/internal/models"
	"topup/internal/repositories"
)

// watchedOrderKey is the single durable slot for the order id this session
// is tracking. One slot, overwrite on write: placing a second order before
// the first resolves silently replaces the watch target.
const watchedOrderKey = "topup.watched_order"

// WatchAction tells the caller what to do with a resolved watch target.
type WatchAction int

const (
	// WatchNone: nothing to track.
	WatchNone WatchAction = iota
	// WatchOpen: track and auto-open the status dialog (order in progress).
	WatchOpen
	// WatchBanner: track with a dismissible banner but do not auto-open;
	// the customer taps to see the terminal-state detail.
	WatchBanner
)

// Resolution is the outcome of resolving the persisted watch slot on load.
type Resolution struct {
	Action  WatchAction
	OrderID string
	Order   *models.Order
}

// Tracker persists which single order the session is watching, so a customer
// who closes the tab mid-review finds their order again on return.
type Tracker struct {
	store localstore.Store
	repo  *OrderRepository
}

// NewTracker creates a Tracker over the local store and order repository.
func NewTracker(store localstore.Store, repo *OrderRepository) *Tracker {
	return &Tracker{store: store, repo: repo}
}

// Remember persists the watched order id, overwriting any previous one.
func (t *Tracker) Remember(orderID string) error {
	return t.store.Set(watchedOrderKey, orderID)
}

// Forget clears the watched order id. Called only from the dialog's
// terminal-acknowledgment close, never from incidental navigation.
func (t *Tracker) Forget() error {
	return t.store.Remove(watchedOrderKey)
}

// Watched returns the currently persisted order id, if any.
func (t *Tracker) Watched() (string, bool) {
	id, ok, err := t.store.Get(watchedOrderKey)
	if err != nil || id == "" {
		return "", false
	}
	return id, ok
}

// ResolveOnLoad reads the persisted watch slot and decides what the app
// should do on start. A vanished order clears the slot; an in-progress order
// auto-opens the dialog; a terminal order shows only the banner.
func (t *Tracker) ResolveOnLoad() (Resolution, error) {
	id, ok := t.Watched()
	if !ok {
		return Resolution{Action: WatchNone}, nil
	}
	order, err := t.repo.FetchOne(id)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			// The order is gone; a stale slot must not resurrect a banner.
			_ = t.store.Remove(watchedOrderKey)
			return Resolution{Action: WatchNone}, nil
		}
		return Resolution{}, err
	}
	if models.IsTerminal(order.Status) {
		return Resolution{Action: WatchBanner, OrderID: id, Order: order}, nil
	}
	return Resolution{Action: WatchOpen, OrderID: id, Order: order}, nil
}
