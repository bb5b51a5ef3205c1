// Package jwt issues and verifies the HS256 bearer tokens that back the
// identity gate.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hyeonwoo-dev/item-simulator/internal/domain/models"
)

func NewToken(user *models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID
	claims["email"] = user.Email
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature and expiry. Expiry errors keep their
// jwt.ErrTokenExpired identity so callers can distinguish them.
func ParseToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// AccountID pulls the account id out of verified claims. JSON numbers
// arrive as float64.
func AccountID(claims jwt.MapClaims) (int, error) {
	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, fmt.Errorf("token is missing the uid claim")
	}
	return int(uid), nil
}
