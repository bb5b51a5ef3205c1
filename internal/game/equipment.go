package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

// Equipment moves items between a character's inventory and its equipped
// set, keeping derived stats equal to base plus the sum of equipped deltas.
type Equipment struct {
	store  Store
	logger *slog.Logger
}

func NewEquipment(store Store, logger *slog.Logger) *Equipment {
	return &Equipment{store: store, logger: logger}
}

// EquipResult is returned by Equip and Unequip: the character after the
// operation, the item involved and the stat change applied.
type EquipResult struct {
	Character *models.Character `json:"character"`
	Item      *models.Item      `json:"item"`
	Stats     StatChange        `json:"stats"`
}

// Equip moves one copy of an item from inventory stock onto the character.
// The whole operation is one transaction: stat increments, the equipped row
// and the inventory decrement either all land or none do.
func (e *Equipment) Equip(ctx context.Context, accountID, characterID, itemID int) (*EquipResult, error) {
	const op = "game.Equipment.Equip"

	var res EquipResult
	err := e.store.InTx(ctx, func(led Ledger) error {
		ch, err := ownedCharacter(ctx, led, accountID, characterID)
		if err != nil {
			return err
		}

		entry, err := led.InventoryEntry(ctx, characterID, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if entry == nil || entry.Quantity < 1 {
			return apperr.NotFound("item is not in the character's inventory")
		}

		equipped, err := led.EquippedEntry(ctx, characterID, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if equipped != nil {
			return apperr.Conflict("item is already equipped")
		}

		item, err := led.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if item == nil {
			return apperr.NotFound("item not found")
		}
		if !item.Stats.Valid() {
			return apperr.InvalidItemStats("item has malformed stat fields")
		}

		before := ch.Stats()
		after := before.Add(item.Stats.Deltas())
		if err := led.SetCharacterStats(ctx, characterID, after); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := led.InsertEquippedEntry(ctx, characterID, itemID, time.Now().UTC()); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := RemoveStock(ctx, led, characterID, itemID, 1); err != nil {
			return err
		}

		ch.SetStats(after)
		res = EquipResult{Character: ch, Item: item, Stats: StatChange{Before: before, After: after}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("item equipped",
		slog.Int("character_id", characterID),
		slog.Int("item_id", itemID),
	)
	return &res, nil
}

// Unequip is the symmetric inverse of Equip. Stat decrements are floored at
// zero; the freed copy goes back into inventory stock.
func (e *Equipment) Unequip(ctx context.Context, accountID, characterID, itemID int) (*EquipResult, error) {
	const op = "game.Equipment.Unequip"

	var res EquipResult
	err := e.store.InTx(ctx, func(led Ledger) error {
		ch, err := ownedCharacter(ctx, led, accountID, characterID)
		if err != nil {
			return err
		}

		equipped, err := led.EquippedEntry(ctx, characterID, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if equipped == nil {
			return apperr.NotFound("item is not equipped")
		}

		item, err := led.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if item == nil {
			return apperr.NotFound("item not found")
		}

		before := ch.Stats()
		after := before.SubFloor(item.Stats.Deltas())
		if err := led.SetCharacterStats(ctx, characterID, after); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := led.DeleteEquippedEntry(ctx, equipped.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := AddStock(ctx, led, characterID, itemID, 1); err != nil {
			return err
		}

		ch.SetStats(after)
		res = EquipResult{Character: ch, Item: item, Stats: StatChange{Before: before, After: after}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("item unequipped",
		slog.Int("character_id", characterID),
		slog.Int("item_id", itemID),
	)
	return &res, nil
}

// ListEquipped returns the equipped rows of a character joined with item
// names. Equipped lists are publicly viewable, so no ownership check.
func (e *Equipment) ListEquipped(ctx context.Context, characterID int) ([]models.EquippedItem, error) {
	const op = "game.Equipment.ListEquipped"

	ch, err := e.store.CharacterByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ch == nil {
		return nil, apperr.NotFound("character not found")
	}

	items, err := e.store.EquippedByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// ownedCharacter locks the character row and verifies the caller owns it.
func ownedCharacter(ctx context.Context, led Ledger, accountID, characterID int) (*models.Character, error) {
	ch, err := led.CharacterForUpdate(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("game.ownedCharacter: %w", err)
	}
	if ch == nil {
		return nil, apperr.NotFound("character not found")
	}
	if ch.UserID != accountID {
		return nil, apperr.Forbidden("character does not belong to the caller")
	}
	return ch, nil
}
