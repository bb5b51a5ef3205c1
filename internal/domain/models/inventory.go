package models

// InventoryEntry is the unequipped stock of one item held by one character.
// A row only exists while quantity >= 1.
type InventoryEntry struct {
	ID          int `json:"id"`
	CharacterID int `json:"character_id"`
	ItemID      int `json:"item_id"`
	Quantity    int `json:"quantity"`
}

// InventoryItem is an inventory row joined with its catalog item, as served
// by the inventory listing endpoint.
type InventoryItem struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}
