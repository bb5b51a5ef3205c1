package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/lib/jwt"
	"github.com/hyeonwoo-dev/item-simulator/internal/storage/postgres"
)

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=2"`
}

type signUpResponse struct {
	Message string `json:"message"`
}

func (s *APIServer) signUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if _, err := s.storage.SaveUser(r.Context(), req.Email, req.Username, passHash); err != nil {
			if errors.Is(err, postgres.ErrDuplicateEmail) {
				s.writeError(w, apperr.Conflict("email already registered"))
				return
			}
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, signUpResponse{Message: "account created"})
	}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signInResponse struct {
	Token string `json:"token"`
}

func (s *APIServer) signInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperr.InvalidArgument("invalid request body"))
			return
		}
		if err := s.validate.Struct(req); err != nil {
			s.writeError(w, apperr.InvalidArgument(err.Error()))
			return
		}

		user, err := s.storage.UserByEmail(r.Context(), req.Email)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if user == nil {
			s.writeError(w, apperr.Unauthorized("unknown email"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			s.writeError(w, apperr.Unauthorized("wrong password"))
			return
		}

		token, err := jwt.NewToken(user, s.jwtSecret, s.config.Jwt.TokenTTL)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, signInResponse{Token: token})
	}
}
