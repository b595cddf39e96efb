package storefront

import (
	"encoding/json"
	"fmt"

	"topup/internal/localstore"
)

// viewStateKey holds the persisted UI view-state, separate from the watched
// order slot.
const viewStateKey = "topup.view_state"

// AppState is the explicit view-state value object: what used to be ambient
// reads scattered across screens is now loaded once, passed around, and
// saved back through one serialization boundary.
type AppState struct {
	SelectedCategory string `json:"selected_category,omitempty"`
	SearchQuery      string `json:"search_query,omitempty"`
}

// LoadAppState reads the persisted view-state; an absent or corrupt entry
// yields the zero state rather than an error, since view-state is cosmetic.
func LoadAppState(store localstore.Store) AppState {
	raw, ok, err := store.Get(viewStateKey)
	if err != nil || !ok {
		return AppState{}
	}
	var state AppState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return AppState{}
	}
	return state
}

// Save persists the view-state.
func (s AppState) Save(store localstore.Store) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal view state: %w", err)
	}
	return store.Set(viewStateKey, string(raw))
}
