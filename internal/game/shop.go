package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

// Sale price is a fixed markdown of the catalog price: price * 8 / 10.
// Integer arithmetic keeps money amounts exact; the markdown is not
// configurable.
const (
	sellNumerator   = 8
	sellDenominator = 10
)

// Shop moves currency and inventory stock together: buying debits money and
// credits stock, selling does the reverse at 80% of the catalog price.
type Shop struct {
	store  Store
	logger *slog.Logger
}

func NewShop(store Store, logger *slog.Logger) *Shop {
	return &Shop{store: store, logger: logger}
}

// TradeResult is the post-trade snapshot: the character and the inventory
// row for the traded item (nil when the row was emptied by the trade).
type TradeResult struct {
	Character *models.Character      `json:"character"`
	Inventory *models.InventoryEntry `json:"inventory"`
}

// Buy purchases quantity copies of an item, merging them into inventory
// stock and debiting price*quantity, all in one transaction.
func (s *Shop) Buy(ctx context.Context, accountID, characterID, itemID, quantity int) (*TradeResult, error) {
	const op = "game.Shop.Buy"

	if quantity <= 0 {
		return nil, apperr.InvalidArgument("quantity must be positive")
	}

	var res TradeResult
	err := s.store.InTx(ctx, func(led Ledger) error {
		ch, err := ownedCharacter(ctx, led, accountID, characterID)
		if err != nil {
			return err
		}

		item, err := led.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if item == nil {
			return apperr.NotFound("item not found")
		}

		cost := item.Price * quantity
		if ch.Money < cost {
			return apperr.InsufficientFunds("not enough money for the purchase")
		}

		if err := AddStock(ctx, led, characterID, itemID, quantity); err != nil {
			return err
		}
		if err := led.AddCharacterMoney(ctx, characterID, -cost); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		entry, err := led.InventoryEntry(ctx, characterID, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		ch.Money -= cost
		res = TradeResult{Character: ch, Inventory: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item bought",
		slog.Int("character_id", characterID),
		slog.Int("item_id", itemID),
		slog.Int("quantity", quantity),
	)
	return &res, nil
}

// Sell removes quantity copies from inventory stock and credits 80% of the
// catalog price per copy.
func (s *Shop) Sell(ctx context.Context, accountID, characterID, itemID, quantity int) (*TradeResult, error) {
	const op = "game.Shop.Sell"

	if quantity <= 0 {
		return nil, apperr.InvalidArgument("quantity must be positive")
	}

	var res TradeResult
	err := s.store.InTx(ctx, func(led Ledger) error {
		ch, err := ownedCharacter(ctx, led, accountID, characterID)
		if err != nil {
			return err
		}

		item, err := led.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if item == nil {
			return apperr.NotFound("item not found")
		}

		if err := RemoveStock(ctx, led, characterID, itemID, quantity); err != nil {
			return err
		}

		proceeds := item.Price * quantity * sellNumerator / sellDenominator
		if err := led.AddCharacterMoney(ctx, characterID, proceeds); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		entry, err := led.InventoryEntry(ctx, characterID, itemID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		ch.Money += proceeds
		res = TradeResult{Character: ch, Inventory: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item sold",
		slog.Int("character_id", characterID),
		slog.Int("item_id", itemID),
		slog.Int("quantity", quantity),
	)
	return &res, nil
}
