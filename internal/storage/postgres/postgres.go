// Package postgres is the ledger store: every entity lives in Postgres and
// all core operations run as single transactions against it.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lib/pq"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(dbURL string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return &Storage{db: db, logger: logger}, nil
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

// 23505 is the Postgres code for breaking a unique index.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ---- users ----

var ErrDuplicateEmail = errors.New("email already registered")

func (s *Storage) SaveUser(ctx context.Context, email, username string, passHash []byte) (*models.User, error) {
	const op = "storage.postgres.SaveUser"

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, username, status)
		 VALUES ($1, $2, $3, 'active')
		 RETURNING id, email, password_hash, username, status, created_at`,
		email, passHash, username,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.Status, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, username, status, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.Status, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) UserByID(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, username, status, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.Status, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// ---- item catalog ----

var ErrDuplicateItemName = errors.New("item name already taken")

func (s *Storage) CreateItem(ctx context.Context, item *models.Item) (int, error) {
	const op = "storage.postgres.CreateItem"

	stats, err := json.Marshal(item.Stats)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO items (name, price, rarity, stats, type, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		item.Name, item.Price, item.Rarity, stats, item.Type, item.Description,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateItemName
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateItem edits the mutable fields of a catalog entry. Price is
// immutable once set and is never touched here.
func (s *Storage) UpdateItem(ctx context.Context, item *models.Item) error {
	const op = "storage.postgres.UpdateItem"

	stats, err := json.Marshal(item.Stats)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = $1, rarity = $2, stats = $3, type = $4, description = $5
		 WHERE id = $6`,
		item.Name, item.Rarity, stats, item.Type, item.Description, item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateItemName
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (s *Storage) ItemByID(ctx context.Context, id int) (*models.Item, error) {
	const op = "storage.postgres.ItemByID"

	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT id, name, price, rarity, stats, type, description, created_at
		 FROM items WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s *Storage) ListItems(ctx context.Context) ([]models.Item, error) {
	const op = "storage.postgres.ListItems"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, rarity, stats, type, description, created_at
		 FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// LoadItemCache preloads the whole catalog into the in-memory cache keyed
// by item id. The cache serves the read-only catalog endpoints; writers
// refresh it after every create or update.
func (s *Storage) LoadItemCache(ctx context.Context, cache *sync.Map) error {
	items, err := s.ListItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		cache.Store(item.ID, item)
	}
	s.logger.Info("item catalog cache loaded", slog.Int("items", len(items)))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item  models.Item
		stats []byte
	)
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Rarity, &stats,
		&item.Type, &item.Description, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stats, &item.Stats); err != nil {
		return nil, fmt.Errorf("malformed stats document for item %d: %w", item.ID, err)
	}
	return &item, nil
}

// ---- snapshot reads used by the game engines ----

func (s *Storage) CharacterByID(ctx context.Context, characterID int) (*models.Character, error) {
	const op = "storage.postgres.CharacterByID"

	ch, err := scanCharacter(s.db.QueryRowContext(ctx, characterQuery+` WHERE id = $1`, characterID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func (s *Storage) InventoryByCharacter(ctx context.Context, characterID int) ([]models.InventoryItem, error) {
	const op = "storage.postgres.InventoryByCharacter"

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.name, i.price, i.rarity, i.stats, i.type, i.description, i.created_at,
		        inv.quantity
		 FROM inventories inv
		 JOIN items i ON i.id = inv.item_id
		 WHERE inv.character_id = $1
		 ORDER BY i.id`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.InventoryItem
	for rows.Next() {
		var (
			entry models.InventoryItem
			stats []byte
		)
		err := rows.Scan(&entry.Item.ID, &entry.Item.Name, &entry.Item.Price, &entry.Item.Rarity,
			&stats, &entry.Item.Type, &entry.Item.Description, &entry.Item.CreatedAt, &entry.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(stats, &entry.Item.Stats); err != nil {
			return nil, fmt.Errorf("%s: malformed stats document for item %d: %w", op, entry.Item.ID, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) EquippedByCharacter(ctx context.Context, characterID int) ([]models.EquippedItem, error) {
	const op = "storage.postgres.EquippedByCharacter"

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.item_id, i.name
		 FROM equipped_items e
		 JOIN items i ON i.id = e.item_id
		 WHERE e.character_id = $1
		 ORDER BY e.equipped_at`,
		characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.EquippedItem
	for rows.Next() {
		var entry models.EquippedItem
		if err := rows.Scan(&entry.ItemID, &entry.ItemName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

const characterQuery = `SELECT id, user_id, name, money, attack, defense, health, status, created_at
	 FROM characters`

func scanCharacter(row rowScanner) (*models.Character, error) {
	var ch models.Character
	err := row.Scan(&ch.ID, &ch.UserID, &ch.Name, &ch.Money, &ch.Attack, &ch.Defense,
		&ch.Health, &ch.Status, &ch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
