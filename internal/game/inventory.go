package game

import (
	"context"
	"fmt"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
)

// AddStock merges qty copies of an item into a character's unequipped
// stock, creating the row when none exists. Callers must already hold the
// character lock.
func AddStock(ctx context.Context, led Ledger, characterID, itemID, qty int) error {
	const op = "game.AddStock"

	if qty <= 0 {
		return apperr.InvalidArgument("quantity must be positive")
	}

	entry, err := led.InventoryEntry(ctx, characterID, itemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil {
		if err := led.InsertInventoryEntry(ctx, characterID, itemID, qty); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	if err := led.SetInventoryQuantity(ctx, entry.ID, entry.Quantity+qty); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveStock takes qty copies out of a character's unequipped stock. The
// row is deleted when its quantity reaches zero; no zero-quantity rows
// persist. Fails with InsufficientStock when the row is absent or short.
func RemoveStock(ctx context.Context, led Ledger, characterID, itemID, qty int) error {
	const op = "game.RemoveStock"

	if qty <= 0 {
		return apperr.InvalidArgument("quantity must be positive")
	}

	entry, err := led.InventoryEntry(ctx, characterID, itemID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil || entry.Quantity < qty {
		return apperr.InsufficientStock("not enough of the item in the inventory")
	}
	if entry.Quantity == qty {
		if err := led.DeleteInventoryEntry(ctx, entry.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	if err := led.SetInventoryQuantity(ctx, entry.ID, entry.Quantity-qty); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
