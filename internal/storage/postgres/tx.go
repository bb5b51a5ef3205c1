package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
	"github.com/hyeonwoo-dev/item-simulator/internal/game"
)

// InTx runs fn inside one database transaction. Any error from fn rolls the
// whole transaction back, so no partial stat or currency mutation can
// survive a validation failure.
func (s *Storage) InTx(ctx context.Context, fn func(game.Ledger) error) error {
	const op = "storage.postgres.InTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(&ledger{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ledger is the transactional view handed to the game engines. Lookups
// return (nil, nil) for absent rows.
type ledger struct {
	tx *sql.Tx
}

// CharacterForUpdate locks the character row until the transaction ends.
// Concurrent writers on the same character queue up behind this lock.
func (l *ledger) CharacterForUpdate(ctx context.Context, characterID int) (*models.Character, error) {
	const op = "storage.postgres.ledger.CharacterForUpdate"

	ch, err := scanCharacter(l.tx.QueryRowContext(ctx,
		characterQuery+` WHERE id = $1 FOR UPDATE`, characterID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func (l *ledger) CharacterByName(ctx context.Context, name string) (*models.Character, error) {
	const op = "storage.postgres.ledger.CharacterByName"

	ch, err := scanCharacter(l.tx.QueryRowContext(ctx,
		characterQuery+` WHERE name = $1`, name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func (l *ledger) CreateCharacter(ctx context.Context, c *models.Character) (int, error) {
	const op = "storage.postgres.ledger.CreateCharacter"

	var id int
	err := l.tx.QueryRowContext(ctx,
		`INSERT INTO characters (user_id, name, money, attack, defense, health, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		c.UserID, c.Name, c.Money, c.Attack, c.Defense, c.Health, c.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (l *ledger) DeleteCharacter(ctx context.Context, characterID int) error {
	const op = "storage.postgres.ledger.DeleteCharacter"

	// Inventory and equipped rows cascade via foreign keys.
	if _, err := l.tx.ExecContext(ctx, `DELETE FROM characters WHERE id = $1`, characterID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) AddCharacterMoney(ctx context.Context, characterID, delta int) error {
	const op = "storage.postgres.ledger.AddCharacterMoney"

	_, err := l.tx.ExecContext(ctx,
		`UPDATE characters SET money = money + $1 WHERE id = $2`, delta, characterID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) SetCharacterStats(ctx context.Context, characterID int, st models.Stats) error {
	const op = "storage.postgres.ledger.SetCharacterStats"

	_, err := l.tx.ExecContext(ctx,
		`UPDATE characters SET attack = $1, defense = $2, health = $3 WHERE id = $4`,
		st.Attack, st.Defense, st.Health, characterID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) Item(ctx context.Context, itemID int) (*models.Item, error) {
	const op = "storage.postgres.ledger.Item"

	var (
		item  models.Item
		stats []byte
	)
	err := l.tx.QueryRowContext(ctx,
		`SELECT id, name, price, rarity, stats, type, description, created_at
		 FROM items WHERE id = $1`,
		itemID,
	).Scan(&item.ID, &item.Name, &item.Price, &item.Rarity, &stats,
		&item.Type, &item.Description, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(stats, &item.Stats); err != nil {
		return nil, fmt.Errorf("%s: malformed stats document for item %d: %w", op, item.ID, err)
	}
	return &item, nil
}

func (l *ledger) InventoryEntry(ctx context.Context, characterID, itemID int) (*models.InventoryEntry, error) {
	const op = "storage.postgres.ledger.InventoryEntry"

	var entry models.InventoryEntry
	err := l.tx.QueryRowContext(ctx,
		`SELECT id, character_id, item_id, quantity
		 FROM inventories WHERE character_id = $1 AND item_id = $2`,
		characterID, itemID,
	).Scan(&entry.ID, &entry.CharacterID, &entry.ItemID, &entry.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

func (l *ledger) InsertInventoryEntry(ctx context.Context, characterID, itemID, quantity int) error {
	const op = "storage.postgres.ledger.InsertInventoryEntry"

	_, err := l.tx.ExecContext(ctx,
		`INSERT INTO inventories (character_id, item_id, quantity) VALUES ($1, $2, $3)`,
		characterID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) SetInventoryQuantity(ctx context.Context, entryID, quantity int) error {
	const op = "storage.postgres.ledger.SetInventoryQuantity"

	_, err := l.tx.ExecContext(ctx,
		`UPDATE inventories SET quantity = $1 WHERE id = $2`, quantity, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) DeleteInventoryEntry(ctx context.Context, entryID int) error {
	const op = "storage.postgres.ledger.DeleteInventoryEntry"

	_, err := l.tx.ExecContext(ctx, `DELETE FROM inventories WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) EquippedEntry(ctx context.Context, characterID, itemID int) (*models.EquippedEntry, error) {
	const op = "storage.postgres.ledger.EquippedEntry"

	var entry models.EquippedEntry
	err := l.tx.QueryRowContext(ctx,
		`SELECT id, character_id, item_id, equipped_at
		 FROM equipped_items WHERE character_id = $1 AND item_id = $2`,
		characterID, itemID,
	).Scan(&entry.ID, &entry.CharacterID, &entry.ItemID, &entry.EquippedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

func (l *ledger) InsertEquippedEntry(ctx context.Context, characterID, itemID int, at time.Time) error {
	const op = "storage.postgres.ledger.InsertEquippedEntry"

	_, err := l.tx.ExecContext(ctx,
		`INSERT INTO equipped_items (character_id, item_id, equipped_at) VALUES ($1, $2, $3)`,
		characterID, itemID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *ledger) DeleteEquippedEntry(ctx context.Context, entryID int) error {
	const op = "storage.postgres.ledger.DeleteEquippedEntry"

	_, err := l.tx.ExecContext(ctx, `DELETE FROM equipped_items WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
