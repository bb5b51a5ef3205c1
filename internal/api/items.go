package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
	"github.com/hyeonwoo-dev/item-simulator/internal/storage/postgres"
)

type createItemRequest struct {
	Name        string           `json:"name" validate:"required"`
	Price       int              `json:"price" validate:"required,gt=0"`
	Rarity      string           `json:"rarity"`
	Stats       models.ItemStats `json:"stats"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
}

func (s *APIServer) createItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		item := &models.Item{
			Name:        req.Name,
			Price:       req.Price,
			Rarity:      req.Rarity,
			Stats:       req.Stats,
			Type:        req.Type,
			Description: req.Description,
		}

		id, err := s.storage.CreateItem(r.Context(), item)
		if err != nil {
			if errors.Is(err, postgres.ErrDuplicateItemName) {
				s.writeError(w, apperr.Conflict("item name already taken"))
				return
			}
			s.writeError(w, err)
			return
		}
		item.ID = id
		s.catalog.Store(id, *item)

		s.writeJSON(w, http.StatusCreated, item)
	}
}

// updateItemRequest uses pointers so an absent field is left untouched. A
// price field in the body is rejected outright: prices are immutable.
type updateItemRequest struct {
	Name        *string           `json:"name"`
	Price       *int              `json:"price"`
	Rarity      *string           `json:"rarity"`
	Stats       *models.ItemStats `json:"stats"`
	Type        *string           `json:"type"`
	Description *string           `json:"description"`
}

func (s *APIServer) updateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, "itemId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		var req updateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if req.Price != nil {
			s.writeError(w, apperr.InvalidArgument("item price cannot be changed"))
			return
		}

		item, err := s.storage.ItemByID(r.Context(), itemID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if item == nil {
			s.writeError(w, apperr.NotFound("item not found"))
			return
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Rarity != nil {
			item.Rarity = *req.Rarity
		}
		if req.Stats != nil {
			item.Stats = *req.Stats
		}
		if req.Type != nil {
			item.Type = *req.Type
		}
		if req.Description != nil {
			item.Description = *req.Description
		}

		if err := s.storage.UpdateItem(r.Context(), item); err != nil {
			switch {
			case errors.Is(err, postgres.ErrDuplicateItemName):
				s.writeError(w, apperr.Conflict("item name already taken"))
			case errors.Is(err, sql.ErrNoRows):
				s.writeError(w, apperr.NotFound("item not found"))
			default:
				s.writeError(w, err)
			}
			return
		}
		s.catalog.Store(item.ID, *item)

		s.writeJSON(w, http.StatusOK, item)
	}
}

func (s *APIServer) listItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := make([]models.Item, 0)
		s.catalog.Range(func(_, v any) bool {
			if item, ok := v.(models.Item); ok {
				items = append(items, item)
			}
			return true
		})
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

		s.writeJSON(w, http.StatusOK, items)
	}
}

// itemDetail is the public catalog shape: stat deltas and rarity stay
// hidden until the item is owned.
type itemDetail struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

func (s *APIServer) getItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, "itemId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		if cached, ok := s.catalog.Load(itemID); ok {
			if item, ok := cached.(models.Item); ok {
				s.writeJSON(w, http.StatusOK, itemDetail{
					ID: item.ID, Name: item.Name, Description: item.Description, Price: item.Price,
				})
				return
			}
		}

		item, err := s.storage.ItemByID(r.Context(), itemID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if item == nil {
			s.writeError(w, apperr.NotFound("item not found"))
			return
		}
		s.catalog.Store(item.ID, *item)

		s.writeJSON(w, http.StatusOK, itemDetail{
			ID: item.ID, Name: item.Name, Description: item.Description, Price: item.Price,
		})
	}
}
