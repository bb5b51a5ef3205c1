package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v4"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/apperr"
	"github.com/hyeonwoo-dev/item-simulator/internal/lib/jwt"
)

type ctxKey int

const accountIDKey ctxKey = iota

// accountID returns the authenticated account id placed in the request
// context by the authenticate middleware.
func accountID(r *http.Request) int {
	id, _ := r.Context().Value(accountIDKey).(int)
	return id
}

// authenticate is the identity gate. Every failure is a 401 with a message
// naming which part of the credential was wrong: missing, malformed,
// expired, invalid, or pointing at an account that no longer exists.
func (s *APIServer) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			s.writeError(w, apperr.Unauthorized("missing access token"))
			return
		}

		parts := strings.Split(tokenHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, apperr.Unauthorized("malformed authorization header"))
			return
		}

		claims, err := jwt.ParseToken(parts[1], s.jwtSecret)
		if err != nil {
			if errors.Is(err, jwtlib.ErrTokenExpired) {
				s.writeError(w, apperr.Unauthorized("access token expired, sign in again"))
				return
			}
			s.writeError(w, apperr.Unauthorized("invalid access token"))
			return
		}

		uid, err := jwt.AccountID(claims)
		if err != nil {
			s.writeError(w, apperr.Unauthorized("invalid access token"))
			return
		}

		user, err := s.storage.UserByID(r.Context(), uid)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if user == nil {
			s.writeError(w, apperr.Unauthorized("token account no longer exists"))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), accountIDKey, user.ID)))
	}
}
