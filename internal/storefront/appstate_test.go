package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"topup/internal/localstore"
)

func TestAppStateRoundTrip(t *testing.T) {
	local := localstore.NewMemoryStore()
	state := AppState{SelectedCategory: "moba", SearchQuery: "diamonds"}
	assert.NoError(t, state.Save(local))

	assert.Equal(t, state, LoadAppState(local))
}

func TestAppStateAbsentYieldsZeroState(t *testing.T) {
	local := localstore.NewMemoryStore()
	assert.Equal(t, AppState{}, LoadAppState(local))
}

func TestAppStateCorruptEntryYieldsZeroState(t *testing.T) {
	local := localstore.NewMemoryStore()
	assert.NoError(t, local.Set(viewStateKey, "{not json"))
	assert.Equal(t, AppState{}, LoadAppState(local))
}

func TestAppStateDoesNotTouchWatchedOrderSlot(t *testing.T) {
	local := localstore.NewMemoryStore()
	assert.NoError(t, local.Set(watchedOrderKey, "order-1"))

	assert.NoError(t, AppState{SearchQuery: "ml"}.Save(local))

	val, ok, err := local.Get(watchedOrderKey)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "order-1", val)
}
