package api

import (
	"encoding/json"
	"net/http"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
)

type equipRequest struct {
	ItemID int `json:"itemId" validate:"required,gt=0"`
}

func (s *APIServer) equipHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		var req equipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		res, err := s.equipment.Equip(r.Context(), accountID(r), characterID, req.ItemID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, res)
	}
}

func (s *APIServer) unequipHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		var req equipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		res, err := s.equipment.Unequip(r.Context(), accountID(r), characterID, req.ItemID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, res)
	}
}

// equippedHandler is public: anyone can look at what a character wears.
func (s *APIServer) equippedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		items, err := s.equipment.ListEquipped(r.Context(), characterID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, items)
	}
}
