package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/hyeonwoo-dev/item-simulator/internal/config"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
	"github.com/hyeonwoo-dev/item-simulator/internal/game"
)

// Storage is the non-transactional slice of the ledger store the API layer
// uses directly: accounts and the item catalog. Everything transactional
// goes through the game engines.
type Storage interface {
	SaveUser(ctx context.Context, email, username string, passHash []byte) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int) (*models.User, error)

	CreateItem(ctx context.Context, item *models.Item) (int, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ItemByID(ctx context.Context, id int) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
}

type APIServer struct {
	config     *config.Config
	logger     *slog.Logger
	catalog    *sync.Map
	server     *http.Server
	storage    Storage
	characters *game.Characters
	shop       *game.Shop
	equipment  *game.Equipment
	validate   *validator.Validate
	jwtSecret  string
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	catalog *sync.Map,
	storage Storage,
	characters *game.Characters,
	shop *game.Shop,
	equipment *game.Equipment,
) *APIServer {
	return &APIServer{
		config:  cfg,
		logger:  logger,
		catalog: catalog,
		server: &http.Server{
			Addr: cfg.ApiHost + ":" + strconv.Itoa(cfg.ApiPort),
		},
		storage:    storage,
		characters: characters,
		shop:       shop,
		equipment:  equipment,
		validate:   validator.New(),
		jwtSecret:  cfg.Jwt.Secret,
	}
}

func (s *APIServer) Start() error {
	s.logger.Info("Starting server", slog.String("port", strconv.Itoa(s.config.ApiPort)))

	s.configureRouter()

	return s.server.ListenAndServe()
}

func (s *APIServer) MustStart() {
	err := s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("Failed to start server: " + err.Error())
	}
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("Server successfully stopped")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) configureRouter() {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sign-up", s.signUpHandler()).Methods("POST")
	api.HandleFunc("/sign-in", s.signInHandler()).Methods("POST")

	api.HandleFunc("/items", s.createItemHandler()).Methods("POST")
	api.HandleFunc("/items", s.listItemsHandler()).Methods("GET")
	api.HandleFunc("/items/{itemId}", s.getItemHandler()).Methods("GET")
	api.HandleFunc("/items/{itemId}", s.updateItemHandler()).Methods("PATCH")

	api.HandleFunc("/characters", s.authenticate(s.createCharacterHandler())).Methods("POST")
	api.HandleFunc("/characters/money/{characterId}", s.authenticate(s.moneyGrantHandler())).Methods("PATCH")
	api.HandleFunc("/characters/{characterId}", s.authenticate(s.getCharacterHandler())).Methods("GET")
	api.HandleFunc("/characters/{characterId}", s.authenticate(s.deleteCharacterHandler())).Methods("DELETE")

	api.HandleFunc("/shop/buy/{characterId}", s.authenticate(s.buyHandler())).Methods("POST")
	api.HandleFunc("/shop/sell/{characterId}", s.authenticate(s.sellHandler())).Methods("PATCH")

	api.HandleFunc("/inventory/{characterId}", s.authenticate(s.inventoryHandler())).Methods("GET")

	api.HandleFunc("/equip/{characterId}", s.authenticate(s.equipHandler())).Methods("POST")
	api.HandleFunc("/unequip/{characterId}", s.authenticate(s.unequipHandler())).Methods("POST")
	api.HandleFunc("/equipped/{characterId}", s.equippedHandler()).Methods("GET")

	s.server.Handler = router
}

// pathID parses a numeric path variable like characterId or itemId.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
