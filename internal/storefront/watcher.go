package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"topup/internal/models"
	"topup/internal/repositories"
)

// DefaultWatchInterval is the dialog's own poll cadence. It is tighter than
// the repository's page poll because a customer may be staring at it.
const DefaultWatchInterval = 3 * time.Second

// WatchState is the render state of the status dialog.
type WatchState int

const (
	// StateClosed: no watch target.
	StateClosed WatchState = iota
	// StateLoading: first fetch in flight.
	StateLoading
	// StateInProgress: pending or processing, rendered identically.
	StateInProgress
	// StateApproved and StateRejected are terminal.
	StateApproved
	StateRejected
	// StateNotFound: the order vanished between watch and fetch.
	StateNotFound
)

// Terminal reports whether the state accepts no further updates.
func (s WatchState) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// Snapshot is one render of the dialog: the state plus the last-known order.
type Snapshot struct {
	State WatchState
	Order *models.Order
}

// Watcher is the order-status dialog's state machine. While open it polls
// the repository at a short interval, updates only when the record actually
// changed, stops polling once a terminal status is observed, and keeps the
// last-known record renderable across reopens.
type Watcher struct {
	repo     *OrderRepository
	tracker  *Tracker
	interval time.Duration

	// OnChange, when set, is invoked with each snapshot that differs from
	// the previous render. Unchanged polls fire nothing (no flicker).
	OnChange func(Snapshot)

	mu      sync.Mutex
	open    bool
	orderID string
	state   WatchState
	last    *models.Order
	gen     int
	cancel  context.CancelFunc
}

// NewWatcher creates a Watcher. interval <= 0 uses DefaultWatchInterval.
func NewWatcher(repo *OrderRepository, tracker *Tracker, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{repo: repo, tracker: tracker, interval: interval}
}

// Open starts watching the given order: an immediate fetch (Loading until
// the first response), then polling. Reopening the same order after it
// reached a terminal state just re-renders the last-known record without
// any further network calls.
func (w *Watcher) Open(orderID string) {
	w.mu.Lock()
	w.stopLocked()
	w.open = true

	if w.orderID == orderID && w.last != nil && w.state.Terminal() {
		snap := Snapshot{State: w.state, Order: w.last}
		onChange := w.OnChange
		w.mu.Unlock()
		if onChange != nil {
			onChange(snap)
		}
		return
	}

	w.orderID = orderID
	w.state = StateLoading
	w.last = nil
	w.gen++
	gen := w.gen

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	go w.poll(ctx, gen, orderID)
}

// Dismiss hides the dialog without touching the tracker: the banner stays
// and the dialog can be reopened later.
func (w *Watcher) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
	w.stopLocked()
}

// Acknowledge is the terminal-close affordance: on a terminal state it
// forgets the watched order for good. On a non-terminal state it behaves
// like Dismiss.
func (w *Watcher) Acknowledge() {
	w.mu.Lock()
	terminal := w.state.Terminal()
	w.open = false
	w.stopLocked()
	w.mu.Unlock()

	if terminal {
		_ = w.tracker.Forget()
	}
}

// IsOpen reports whether the dialog is currently shown.
func (w *Watcher) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Snapshot returns the current render state and last-known record.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{State: w.state, Order: w.last}
}

func (w *Watcher) poll(ctx context.Context, gen int, orderID string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.fetchOnce(gen, orderID)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) fetchOnce(gen int, orderID string) {
	order, err := w.repo.FetchOne(orderID)

	w.mu.Lock()
	// A slow response must not touch state the dialog has moved past.
	if gen != w.gen || w.orderID != orderID {
		w.mu.Unlock()
		return
	}
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) && !w.state.Terminal() {
			w.state = StateNotFound
			w.last = nil
			w.stopLocked()
			snap := Snapshot{State: StateNotFound}
			onChange := w.OnChange
			w.mu.Unlock()
			if onChange != nil {
				onChange(snap)
			}
			return
		}
		// Transient failure: keep last-known-good, retry next tick.
		w.mu.Unlock()
		return
	}

	// A terminal render never regresses to an in-progress one for the same
	// watch instance, whatever a late read claims.
	if w.state.Terminal() && !models.IsTerminal(order.Status) {
		w.mu.Unlock()
		return
	}
	if w.last != nil && w.last.Status == order.Status && w.last.UpdatedAt.Equal(order.UpdatedAt) {
		// Nothing changed; retain the previous render.
		w.mu.Unlock()
		return
	}

	w.last = order
	w.state = stateForStatus(order.Status)
	if w.state.Terminal() {
		// No further network calls for this dialog instance.
		w.stopLocked()
	}
	snap := Snapshot{State: w.state, Order: w.last}
	onChange := w.OnChange
	w.mu.Unlock()
	if onChange != nil {
		onChange(snap)
	}
}

func (w *Watcher) stopLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
}

func stateForStatus(status string) WatchState {
	switch status {
	case models.StatusApproved:
		return StateApproved
	case models.StatusRejected:
		return StateRejected
	default:
		return StateInProgress
	}
}
