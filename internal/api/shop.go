package api

import (
	"encoding/json"
	"net/http"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
)

type tradeRequest struct {
	ItemID   int `json:"itemId" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (s *APIServer) buyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		var req tradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		res, err := s.shop.Buy(r.Context(), accountID(r), characterID, req.ItemID, req.Quantity)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, res)
	}
}

func (s *APIServer) sellHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := pathID(r, "characterId")
		if err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		var req tradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		res, err := s.shop.Sell(r.Context(), accountID(r), characterID, req.ItemID, req.Quantity)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, res)
	}
}
