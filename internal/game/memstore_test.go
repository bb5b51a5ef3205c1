package game

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

// memStore is an in-memory Store for engine tests. InTx runs fn against a
// deep copy of the state and only swaps it in on success, mirroring the
// commit/rollback behavior of the real ledger.
type memStore struct {
	state *memState
}

type memState struct {
	characters  map[int]*models.Character
	items       map[int]*models.Item
	inventories map[int]*models.InventoryEntry
	equipped    map[int]*models.EquippedEntry
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		characters:  make(map[int]*models.Character),
		items:       make(map[int]*models.Item),
		inventories: make(map[int]*models.InventoryEntry),
		equipped:    make(map[int]*models.EquippedEntry),
		nextID:      1,
	}}
}

func (st *memState) clone() *memState {
	c := &memState{
		characters:  make(map[int]*models.Character, len(st.characters)),
		items:       make(map[int]*models.Item, len(st.items)),
		inventories: make(map[int]*models.InventoryEntry, len(st.inventories)),
		equipped:    make(map[int]*models.EquippedEntry, len(st.equipped)),
		nextID:      st.nextID,
	}
	for id, ch := range st.characters {
		cp := *ch
		c.characters[id] = &cp
	}
	for id, item := range st.items {
		cp := *item
		c.items[id] = &cp
	}
	for id, entry := range st.inventories {
		cp := *entry
		c.inventories[id] = &cp
	}
	for id, entry := range st.equipped {
		cp := *entry
		c.equipped[id] = &cp
	}
	return c
}

func (st *memState) allocID() int {
	id := st.nextID
	st.nextID++
	return id
}

func (m *memStore) InTx(_ context.Context, fn func(Ledger) error) error {
	next := m.state.clone()
	if err := fn(&memLedger{state: next}); err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *memStore) CharacterByID(_ context.Context, characterID int) (*models.Character, error) {
	if ch, ok := m.state.characters[characterID]; ok {
		cp := *ch
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) InventoryByCharacter(_ context.Context, characterID int) ([]models.InventoryItem, error) {
	var result []models.InventoryItem
	for _, entry := range m.state.inventories {
		if entry.CharacterID != characterID {
			continue
		}
		result = append(result, models.InventoryItem{
			Item:     *m.state.items[entry.ItemID],
			Quantity: entry.Quantity,
		})
	}
	return result, nil
}

func (m *memStore) EquippedByCharacter(_ context.Context, characterID int) ([]models.EquippedItem, error) {
	var result []models.EquippedItem
	for _, entry := range m.state.equipped {
		if entry.CharacterID != characterID {
			continue
		}
		result = append(result, models.EquippedItem{
			ItemID:   entry.ItemID,
			ItemName: m.state.items[entry.ItemID].Name,
		})
	}
	return result, nil
}

// ---- seeding helpers ----

func (m *memStore) seedCharacter(userID int, name string, money int) *models.Character {
	ch := &models.Character{
		ID:     m.state.allocID(),
		UserID: userID,
		Name:   name,
		Money:  money,
		Status: "active",
	}
	m.state.characters[ch.ID] = ch
	return ch
}

func (m *memStore) seedItem(name string, price, attack, defense, health int) *models.Item {
	item := &models.Item{
		ID:    m.state.allocID(),
		Name:  name,
		Price: price,
		Stats: models.ItemStats{Attack: &attack, Defense: &defense, Health: &health},
	}
	m.state.items[item.ID] = item
	return item
}

func (m *memStore) seedBrokenItem(name string, price int) *models.Item {
	item := &models.Item{ID: m.state.allocID(), Name: name, Price: price}
	m.state.items[item.ID] = item
	return item
}

func (m *memStore) seedInventory(characterID, itemID, qty int) {
	entry := &models.InventoryEntry{
		ID:          m.state.allocID(),
		CharacterID: characterID,
		ItemID:      itemID,
		Quantity:    qty,
	}
	m.state.inventories[entry.ID] = entry
}

func (m *memStore) inventoryQty(characterID, itemID int) int {
	for _, entry := range m.state.inventories {
		if entry.CharacterID == characterID && entry.ItemID == itemID {
			return entry.Quantity
		}
	}
	return 0
}

func (m *memStore) inventoryRowExists(characterID, itemID int) bool {
	for _, entry := range m.state.inventories {
		if entry.CharacterID == characterID && entry.ItemID == itemID {
			return true
		}
	}
	return false
}

func (m *memStore) isEquipped(characterID, itemID int) bool {
	for _, entry := range m.state.equipped {
		if entry.CharacterID == characterID && entry.ItemID == itemID {
			return true
		}
	}
	return false
}

// ---- transactional ledger over the cloned state ----

type memLedger struct {
	state *memState
}

func (l *memLedger) CharacterForUpdate(_ context.Context, characterID int) (*models.Character, error) {
	if ch, ok := l.state.characters[characterID]; ok {
		cp := *ch
		return &cp, nil
	}
	return nil, nil
}

func (l *memLedger) CharacterByName(_ context.Context, name string) (*models.Character, error) {
	for _, ch := range l.state.characters {
		if ch.Name == name {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *memLedger) CreateCharacter(_ context.Context, c *models.Character) (int, error) {
	cp := *c
	cp.ID = l.state.allocID()
	l.state.characters[cp.ID] = &cp
	return cp.ID, nil
}

func (l *memLedger) DeleteCharacter(_ context.Context, characterID int) error {
	delete(l.state.characters, characterID)
	for id, entry := range l.state.inventories {
		if entry.CharacterID == characterID {
			delete(l.state.inventories, id)
		}
	}
	for id, entry := range l.state.equipped {
		if entry.CharacterID == characterID {
			delete(l.state.equipped, id)
		}
	}
	return nil
}

func (l *memLedger) AddCharacterMoney(_ context.Context, characterID, delta int) error {
	l.state.characters[characterID].Money += delta
	return nil
}

func (l *memLedger) SetCharacterStats(_ context.Context, characterID int, s models.Stats) error {
	l.state.characters[characterID].SetStats(s)
	return nil
}

func (l *memLedger) Item(_ context.Context, itemID int) (*models.Item, error) {
	if item, ok := l.state.items[itemID]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, nil
}

func (l *memLedger) InventoryEntry(_ context.Context, characterID, itemID int) (*models.InventoryEntry, error) {
	for _, entry := range l.state.inventories {
		if entry.CharacterID == characterID && entry.ItemID == itemID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *memLedger) InsertInventoryEntry(_ context.Context, characterID, itemID, quantity int) error {
	entry := &models.InventoryEntry{
		ID:          l.state.allocID(),
		CharacterID: characterID,
		ItemID:      itemID,
		Quantity:    quantity,
	}
	l.state.inventories[entry.ID] = entry
	return nil
}

func (l *memLedger) SetInventoryQuantity(_ context.Context, entryID, quantity int) error {
	l.state.inventories[entryID].Quantity = quantity
	return nil
}

func (l *memLedger) DeleteInventoryEntry(_ context.Context, entryID int) error {
	delete(l.state.inventories, entryID)
	return nil
}

func (l *memLedger) EquippedEntry(_ context.Context, characterID, itemID int) (*models.EquippedEntry, error) {
	for _, entry := range l.state.equipped {
		if entry.CharacterID == characterID && entry.ItemID == itemID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *memLedger) InsertEquippedEntry(_ context.Context, characterID, itemID int, at time.Time) error {
	entry := &models.EquippedEntry{
		ID:          l.state.allocID(),
		CharacterID: characterID,
		ItemID:      itemID,
		EquippedAt:  at,
	}
	l.state.equipped[entry.ID] = entry
	return nil
}

func (l *memLedger) DeleteEquippedEntry(_ context.Context, entryID int) error {
	delete(l.state.equipped, entryID)
	return nil
}
