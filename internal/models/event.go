package models

import "time"

// Change-feed event kinds for the orders table.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// OrderChange is a table-wide change notification. The feed guarantees only
// that "something changed"; consumers re-fetch rather than trusting a payload.
type OrderChange struct {
	Kind    string    `json:"kind"`
	OrderID string    `json:"order_id,omitempty"`
	At      time.Time `json:"at"`
}
