package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

// Every money top-up grants the same fixed amount.
const moneyGrant = 100

// Characters owns character lifecycle and the money top-up, each as one
// ledger transaction.
type Characters struct {
	store  Store
	logger *slog.Logger
}

func NewCharacters(store Store, logger *slog.Logger) *Characters {
	return &Characters{store: store, logger: logger}
}

// Create makes a character for the account with starting money and zero
// derived stats. Name uniqueness is checked inside the transaction so two
// concurrent creates cannot both win.
func (c *Characters) Create(ctx context.Context, accountID int, name string) (*models.Character, error) {
	const op = "game.Characters.Create"

	ch := &models.Character{
		UserID: accountID,
		Name:   name,
		Money:  models.StartingMoney,
		Status: "active",
	}

	err := c.store.InTx(ctx, func(led Ledger) error {
		existing, err := led.CharacterByName(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if existing != nil {
			return apperr.Conflict("character name already taken")
		}

		id, err := led.CreateCharacter(ctx, ch)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		ch.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("character created",
		slog.Int("character_id", ch.ID),
		slog.String("name", name),
	)
	return ch, nil
}

// Delete removes a character owned by the account, cascading its inventory
// and equipped rows.
func (c *Characters) Delete(ctx context.Context, accountID, characterID int) error {
	const op = "game.Characters.Delete"

	err := c.store.InTx(ctx, func(led Ledger) error {
		if _, err := ownedCharacter(ctx, led, accountID, characterID); err != nil {
			return err
		}
		if err := led.DeleteCharacter(ctx, characterID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("character deleted", slog.Int("character_id", characterID))
	return nil
}

// Get returns a character snapshot plus whether the caller owns it. The API
// layer picks the owner or public response shape from the flag.
func (c *Characters) Get(ctx context.Context, accountID, characterID int) (*models.Character, bool, error) {
	const op = "game.Characters.Get"

	ch, err := c.store.CharacterByID(ctx, characterID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if ch == nil {
		return nil, false, apperr.NotFound("character not found")
	}
	return ch, ch.UserID == accountID, nil
}

// MoneyGrant credits the fixed top-up amount and reports the balance before
// and after.
func (c *Characters) MoneyGrant(ctx context.Context, accountID, characterID int) (before, after int, err error) {
	err = c.store.InTx(ctx, func(led Ledger) error {
		ch, err := ownedCharacter(ctx, led, accountID, characterID)
		if err != nil {
			return err
		}
		before = ch.Money
		after = before + moneyGrant
		if err := led.AddCharacterMoney(ctx, characterID, moneyGrant); err != nil {
			return fmt.Errorf("game.Characters.MoneyGrant: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	c.logger.Info("money granted",
		slog.Int("character_id", characterID),
		slog.Int("amount", moneyGrant),
	)
	return before, after, nil
}

// Inventory lists a character's unequipped stock joined with catalog items.
// Inventories are private: only the owner may read them.
func (c *Characters) Inventory(ctx context.Context, accountID, characterID int) ([]models.InventoryItem, error) {
	const op = "game.Characters.Inventory"

	ch, err := c.store.CharacterByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ch == nil {
		return nil, apperr.NotFound("character not found")
	}
	if ch.UserID != accountID {
		return nil, apperr.Forbidden("inventory is only visible to the owner")
	}

	items, err := c.store.InventoryByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
