package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the admin session lifetime, matching the console's expectation.
const TokenTTL = 24 * time.Hour

// CreateToken issues the admin bearer token for a successful login.
func CreateToken(secret, username, level string) (string, error) {
	claims := jwt.MapClaims{
		"usr": username,
		"lvl": level,
		"exp": time.Now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
