package models

import "time"

// EquippedEntry records that exactly one copy of an item is worn by a
// character. At most one entry exists per (character, item) pair.
type EquippedEntry struct {
	ID          int       `json:"id"`
	CharacterID int       `json:"character_id"`
	ItemID      int       `json:"item_id"`
	EquippedAt  time.Time `json:"equipped_at"`
}

// EquippedItem is an equipped row joined with the item name, as served by
// the public equipped listing endpoint.
type EquippedItem struct {
	ItemID   int    `json:"item_id"`
	ItemName string `json:"item_name"`
}
