// Package game holds the transactional core of the item simulator: the
// inventory manager, the equipment engine and the shop engine. Every
// mutating operation runs inside exactly one ledger transaction; a returned
// error aborts the whole transaction.
package game

import (
	"context"
	"time"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

// Store is the ledger the engines run against. InTx begins a transaction,
// hands the transactional view to fn, rolls back when fn errors and commits
// otherwise. Read methods outside InTx are plain snapshot reads.
type Store interface {
	InTx(ctx context.Context, fn func(Ledger) error) error

	CharacterByID(ctx context.Context, characterID int) (*models.Character, error)
	InventoryByCharacter(ctx context.Context, characterID int) ([]models.InventoryItem, error)
	EquippedByCharacter(ctx context.Context, characterID int) ([]models.EquippedItem, error)
}

// Ledger is the row-level interface available inside a transaction. Lookup
// methods return (nil, nil) when the row does not exist; the engines decide
// which taxonomy error that maps to.
type Ledger interface {
	// CharacterForUpdate locks the character row for the remainder of the
	// transaction. The character row is the serialization boundary for all
	// concurrent writers.
	CharacterForUpdate(ctx context.Context, characterID int) (*models.Character, error)
	CharacterByName(ctx context.Context, name string) (*models.Character, error)
	CreateCharacter(ctx context.Context, c *models.Character) (int, error)
	DeleteCharacter(ctx context.Context, characterID int) error
	AddCharacterMoney(ctx context.Context, characterID, delta int) error
	SetCharacterStats(ctx context.Context, characterID int, s models.Stats) error

	Item(ctx context.Context, itemID int) (*models.Item, error)

	InventoryEntry(ctx context.Context, characterID, itemID int) (*models.InventoryEntry, error)
	InsertInventoryEntry(ctx context.Context, characterID, itemID, quantity int) error
	SetInventoryQuantity(ctx context.Context, entryID, quantity int) error
	DeleteInventoryEntry(ctx context.Context, entryID int) error

	EquippedEntry(ctx context.Context, characterID, itemID int) (*models.EquippedEntry, error)
	InsertEquippedEntry(ctx context.Context, characterID, itemID int, at time.Time) error
	DeleteEquippedEntry(ctx context.Context, entryID int) error
}

// StatChange is the before/after stat snapshot returned by equip and
// unequip so callers can show what the operation did.
type StatChange struct {
	Before models.Stats `json:"before"`
	After  models.Stats `json:"after"`
}
