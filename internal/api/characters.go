package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
)

type createCharacterRequest struct {
	Name string `json:"name" validate:"required,min=2,max=30"`
}

func (s *APIServer) createCharacterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCharacterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		ch, err := s.characters.Create(r.Context(), accountID(r), req.Name)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, ch)
	}
}

func (s *APIServer) deleteCharacterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		if err := s.characters.Delete(r.Context(), accountID(r), characterID); err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{"message": "character deleted"})
	}
}

// ownerCharacterView includes money; publicCharacterView does not. The
// shape is picked by an explicit ownership check, never by dropping fields
// dynamically.
type ownerCharacterView struct {
	Name    string `json:"name"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Health  int    `json:"health"`
	Money   int    `json:"money"`
}

type publicCharacterView struct {
	Name    string `json:"name"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Health  int    `json:"health"`
}

func (s *APIServer) getCharacterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		ch, isOwner, err := s.characters.Get(r.Context(), accountID(r), characterID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if isOwner {
			s.writeJSON(w, http.StatusOK, ownerCharacterView{
				Name: ch.Name, Attack: ch.Attack, Defense: ch.Defense, Health: ch.Health, Money: ch.Money,
			})
			return
		}
		s.writeJSON(w, http.StatusOK, publicCharacterView{
			Name: ch.Name, Attack: ch.Attack, Defense: ch.Defense, Health: ch.Health,
		})
	}
}

type moneyGrantResponse struct {
	Message string `json:"message"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
}

func (s *APIServer) moneyGrantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		before, after, err := s.characters.MoneyGrant(r.Context(), accountID(r), characterID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, moneyGrantResponse{
			Message: fmt.Sprintf("balance went from %d to %d", before, after),
			Before:  before,
			After:   after,
		})
	}
}

func (s *APIServer) inventoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		items, err := s.characters.Inventory(r.Context(), accountID(r), characterID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, items)
	}
}
