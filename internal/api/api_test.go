package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyeonwoo-dev/item-simulator/internal/config"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
	"github.com/hyeonwoo-dev/item-simulator/internal/game"
	"github.com/hyeonwoo-dev/item-simulator/internal/lib/jwt"
	"github.com/hyeonwoo-dev/item-simulator/internal/storage/postgres"
)

// fakeStorage implements the account and catalog side of the ledger store.
type fakeStorage struct {
	usersByEmail map[string]*models.User
	usersByID    map[int]*models.User
	items        map[int]*models.Item
	nextID       int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[int]*models.User),
		items:        make(map[int]*models.Item),
		nextID:       1,
	}
}

func (fs *fakeStorage) SaveUser(_ context.Context, email, username string, passHash []byte) (*models.User, error) {
	if _, ok := fs.usersByEmail[email]; ok {
		return nil, postgres.ErrDuplicateEmail
	}
	user := &models.User{
		ID:           fs.nextID,
		Email:        email,
		PasswordHash: string(passHash),
		Username:     username,
		Status:       "active",
	}
	fs.nextID++
	fs.usersByEmail[email] = user
	fs.usersByID[user.ID] = user
	return user, nil
}

func (fs *fakeStorage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	return fs.usersByEmail[email], nil
}

func (fs *fakeStorage) UserByID(_ context.Context, id int) (*models.User, error) {
	return fs.usersByID[id], nil
}

func (fs *fakeStorage) CreateItem(_ context.Context, item *models.Item) (int, error) {
	for _, existing := range fs.items {
		if existing.Name == item.Name {
			return 0, postgres.ErrDuplicateItemName
		}
	}
	id := fs.nextID
	fs.nextID++
	cp := *item
	cp.ID = id
	fs.items[id] = &cp
	return id, nil
}

func (fs *fakeStorage) UpdateItem(_ context.Context, item *models.Item) error {
	cp := *item
	fs.items[item.ID] = &cp
	return nil
}

func (fs *fakeStorage) ItemByID(_ context.Context, id int) (*models.Item, error) {
	return fs.items[id], nil
}

func (fs *fakeStorage) ListItems(_ context.Context) ([]models.Item, error) {
	var items []models.Item
	for _, item := range fs.items {
		items = append(items, *item)
	}
	return items, nil
}

// fakeGameStore is a one-character, one-item game.Store. It doubles as its
// own Ledger; InTx snapshots the fields and restores them when fn errors,
// matching rollback semantics.
type fakeGameStore struct {
	character *models.Character
	item      *models.Item
	invQty    int
	equipped  bool
}

func (f *fakeGameStore) InTx(_ context.Context, fn func(game.Ledger) error) error {
	saved := *f
	var savedChar models.Character
	if f.character != nil {
		savedChar = *f.character
	}
	if err := fn(f); err != nil {
		*f = saved
		if saved.character != nil {
			*f.character = savedChar
		}
		return err
	}
	return nil
}

func (f *fakeGameStore) CharacterByID(_ context.Context, characterID int) (*models.Character, error) {
	if f.character != nil && f.character.ID == characterID {
		cp := *f.character
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeGameStore) InventoryByCharacter(_ context.Context, _ int) ([]models.InventoryItem, error) {
	if f.invQty == 0 {
		return nil, nil
	}
	return []models.InventoryItem{{Item: *f.item, Quantity: f.invQty}}, nil
}

func (f *fakeGameStore) EquippedByCharacter(_ context.Context, _ int) ([]models.EquippedItem, error) {
	if !f.equipped {
		return nil, nil
	}
	return []models.EquippedItem{{ItemID: f.item.ID, ItemName: f.item.Name}}, nil
}

func (f *fakeGameStore) CharacterForUpdate(ctx context.Context, characterID int) (*models.Character, error) {
	if f.character != nil && f.character.ID == characterID {
		return f.character, nil
	}
	return nil, nil
}

func (f *fakeGameStore) CharacterByName(_ context.Context, name string) (*models.Character, error) {
	if f.character != nil && f.character.Name == name {
		return f.character, nil
	}
	return nil, nil
}

func (f *fakeGameStore) CreateCharacter(_ context.Context, c *models.Character) (int, error) {
	cp := *c
	cp.ID = 1
	f.character = &cp
	return 1, nil
}

func (f *fakeGameStore) DeleteCharacter(_ context.Context, _ int) error {
	f.character = nil
	return nil
}

func (f *fakeGameStore) AddCharacterMoney(_ context.Context, _, delta int) error {
	f.character.Money += delta
	return nil
}

func (f *fakeGameStore) SetCharacterStats(_ context.Context, _ int, s models.Stats) error {
	f.character.SetStats(s)
	return nil
}

func (f *fakeGameStore) Item(_ context.Context, itemID int) (*models.Item, error) {
	if f.item != nil && f.item.ID == itemID {
		cp := *f.item
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeGameStore) InventoryEntry(_ context.Context, characterID, itemID int) (*models.InventoryEntry, error) {
	if f.invQty == 0 || f.item == nil || f.item.ID != itemID {
		return nil, nil
	}
	return &models.InventoryEntry{ID: 1, CharacterID: characterID, ItemID: itemID, Quantity: f.invQty}, nil
}

func (f *fakeGameStore) InsertInventoryEntry(_ context.Context, _, _, quantity int) error {
	f.invQty = quantity
	return nil
}

func (f *fakeGameStore) SetInventoryQuantity(_ context.Context, _, quantity int) error {
	f.invQty = quantity
	return nil
}

func (f *fakeGameStore) DeleteInventoryEntry(_ context.Context, _ int) error {
	f.invQty = 0
	return nil
}

func (f *fakeGameStore) EquippedEntry(_ context.Context, characterID, itemID int) (*models.EquippedEntry, error) {
	if !f.equipped || f.item == nil || f.item.ID != itemID {
		return nil, nil
	}
	return &models.EquippedEntry{ID: 1, CharacterID: characterID, ItemID: itemID}, nil
}

func (f *fakeGameStore) InsertEquippedEntry(_ context.Context, _, _ int, _ time.Time) error {
	f.equipped = true
	return nil
}

func (f *fakeGameStore) DeleteEquippedEntry(_ context.Context, _ int) error {
	f.equipped = false
	return nil
}

// ---- helpers ----

const testSecret = "test-secret"

func newTestServer(storage Storage, store game.Store) *APIServer {
	cfg := &config.Config{
		ApiHost: "localhost",
		ApiPort: 8080,
		Jwt:     config.Jwt{Secret: testSecret, TokenTTL: 24 * time.Hour},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, &sync.Map{}, storage,
		game.NewCharacters(store, logger),
		game.NewShop(store, logger),
		game.NewEquipment(store, logger),
	)
}

func bearerToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := jwt.NewToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(handler http.HandlerFunc, method, target string, vars map[string]string, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ---- tests ----

func TestSignUpAndSignIn(t *testing.T) {
	storage := newFakeStorage()
	srv := newTestServer(storage, &fakeGameStore{})

	rr := doJSON(srv.signUpHandler(), "POST", "/api/sign-up", nil, "", map[string]string{
		"email": "hero@example.com", "password": "hunter22", "username": "hero",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(srv.signUpHandler(), "POST", "/api/sign-up", nil, "", map[string]string{
		"email": "hero@example.com", "password": "hunter22", "username": "hero2",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doJSON(srv.signInHandler(), "POST", "/api/sign-in", nil, "", map[string]string{
		"email": "hero@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp signInResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	claims, err := jwt.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	uid, err := jwt.AccountID(claims)
	require.NoError(t, err)
	assert.Equal(t, 1, uid)

	rr = doJSON(srv.signInHandler(), "POST", "/api/sign-in", nil, "", map[string]string{
		"email": "hero@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(srv.signInHandler(), "POST", "/api/sign-in", nil, "", map[string]string{
		"email": "nobody@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSignUpValidation(t *testing.T) {
	srv := newTestServer(newFakeStorage(), &fakeGameStore{})

	rr := doJSON(srv.signUpHandler(), "POST", "/api/sign-up", nil, "", map[string]string{
		"email": "not-an-email", "password": "hunter22", "username": "hero",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(srv.signUpHandler(), "POST", "/api/sign-up", nil, "", map[string]string{
		"email": "ok@example.com", "password": "shrt", "username": "hero",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthenticateMiddleware(t *testing.T) {
	storage := newFakeStorage()
	srv := newTestServer(storage, &fakeGameStore{})

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user, err := storage.SaveUser(context.Background(), "auth@example.com", "auth", hash)
	require.NoError(t, err)

	var gotAccount int
	next := func(w http.ResponseWriter, r *http.Request) {
		gotAccount = accountID(r)
		w.WriteHeader(http.StatusOK)
	}

	rr := doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, bearerToken(t, user), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, user.ID, gotAccount)

	// Missing credential.
	rr = doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Malformed credential.
	rr = doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, "Basic abc", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Invalid credential (wrong signing key).
	badToken, err := jwt.NewToken(user, "other-secret", time.Hour)
	require.NoError(t, err)
	rr = doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, "Bearer "+badToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Expired credential.
	expired, err := jwt.NewToken(user, testSecret, -time.Hour)
	require.NoError(t, err)
	rr = doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, "Bearer "+expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "expired")

	// Unknown account behind a valid token.
	ghost := &models.User{ID: 999, Email: "ghost@example.com"}
	rr = doJSON(srv.authenticate(next), "GET", "/api/inventory/1", nil, bearerToken(t, ghost), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetCharacterViews(t *testing.T) {
	storage := newFakeStorage()
	owner, err := storage.SaveUser(context.Background(), "owner@example.com", "owner", []byte("x"))
	require.NoError(t, err)
	other, err := storage.SaveUser(context.Background(), "other@example.com", "other", []byte("x"))
	require.NoError(t, err)

	store := &fakeGameStore{
		character: &models.Character{ID: 1, UserID: owner.ID, Name: "paladin", Money: 4242, Attack: 3},
	}
	srv := newTestServer(storage, store)
	vars := map[string]string{"characterId": "1"}

	rr := doJSON(srv.authenticate(srv.getCharacterHandler()), "GET", "/api/characters/1", vars, bearerToken(t, owner), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "4242")

	rr = doJSON(srv.authenticate(srv.getCharacterHandler()), "GET", "/api/characters/1", vars, bearerToken(t, other), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "money")
}

func TestEquipEndpoint(t *testing.T) {
	storage := newFakeStorage()
	user, err := storage.SaveUser(context.Background(), "eq@example.com", "eq", []byte("x"))
	require.NoError(t, err)

	atk, def, hp := 5, 0, 2
	store := &fakeGameStore{
		character: &models.Character{ID: 1, UserID: user.ID, Name: "fighter", Money: 100},
		item:      &models.Item{ID: 7, Name: "axe", Price: 50, Stats: models.ItemStats{Attack: &atk, Defense: &def, Health: &hp}},
		invQty:    2,
	}
	srv := newTestServer(storage, store)
	vars := map[string]string{"characterId": "1"}
	body := map[string]int{"itemId": 7}

	rr := doJSON(srv.authenticate(srv.equipHandler()), "POST", "/api/equip/1", vars, bearerToken(t, user), body)
	require.Equal(t, http.StatusOK, rr.Code)

	var res game.EquipResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, 5, res.Stats.After.Attack)
	assert.True(t, store.equipped)
	assert.Equal(t, 1, store.invQty)

	// Equipping again without unequip conflicts.
	rr = doJSON(srv.authenticate(srv.equipHandler()), "POST", "/api/equip/1", vars, bearerToken(t, user), body)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBuyEndpointInsufficientFunds(t *testing.T) {
	storage := newFakeStorage()
	user, err := storage.SaveUser(context.Background(), "poor@example.com", "poor", []byte("x"))
	require.NoError(t, err)

	store := &fakeGameStore{
		character: &models.Character{ID: 1, UserID: user.ID, Name: "pauper", Money: 10},
		item:      &models.Item{ID: 3, Name: "crown", Price: 99999},
	}
	srv := newTestServer(storage, store)
	vars := map[string]string{"characterId": "1"}

	rr := doJSON(srv.authenticate(srv.buyHandler()), "POST", "/api/shop/buy/1", vars, bearerToken(t, user),
		map[string]int{"itemId": 3, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 10, store.character.Money)
}

func TestItemEndpoints(t *testing.T) {
	storage := newFakeStorage()
	srv := newTestServer(storage, &fakeGameStore{})

	atk, def, hp := 2, 1, 0
	rr := doJSON(srv.createItemHandler(), "POST", "/api/items", nil, "", map[string]any{
		"name": "buckler", "price": 120, "rarity": "common",
		"stats": models.ItemStats{Attack: &atk, Defense: &def, Health: &hp},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created models.Item
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	require.NotZero(t, created.ID)

	// Duplicate name conflicts.
	rr = doJSON(srv.createItemHandler(), "POST", "/api/items", nil, "", map[string]any{
		"name": "buckler", "price": 50,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Detail is served from the catalog cache.
	vars := map[string]string{"itemId": "1"}
	rr = doJSON(srv.getItemHandler(), "GET", "/api/items/1", vars, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail itemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&detail))
	assert.Equal(t, "buckler", detail.Name)
	assert.Equal(t, 120, detail.Price)

	// Price edits are rejected outright.
	newPrice := 999
	rr = doJSON(srv.updateItemHandler(), "PATCH", "/api/items/1", vars, "", updateItemRequest{Price: &newPrice})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Other fields remain editable.
	newDesc := "a small round shield"
	rr = doJSON(srv.updateItemHandler(), "PATCH", "/api/items/1", vars, "", updateItemRequest{Description: &newDesc})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(srv.listItemsHandler(), "GET", "/api/items", nil, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []models.Item
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "a small round shield", items[0].Description)
	assert.Equal(t, 120, items[0].Price)
}
