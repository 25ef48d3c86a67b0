package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const (
	AccessTokenLifetime  = time.Hour
	RefreshTokenLifetime = 24 * time.Hour

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

func makeToken(userID, tokenType string, lifetime time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(lifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(viper.GetString("jwt.secret")))
}

// MakeTokenPair mints an access and a refresh token for the given user
func MakeTokenPair(userID string) (access string, refresh string, err error) {
	access, err = makeToken(userID, TokenTypeAccess, AccessTokenLifetime)
	if err != nil {
		return "", "", err
	}

	refresh, err = makeToken(userID, TokenTypeRefresh, RefreshTokenLifetime)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// MakeAccessToken mints a fresh access token, used by the refresh endpoint
func MakeAccessToken(userID string) (string, error) {
	return makeToken(userID, TokenTypeAccess, AccessTokenLifetime)
}

// ParseToken validates raw and returns the user ID and token type it
// carries. Expired tokens yield ErrTokenExpired, everything else that's
// wrong with the token yields ErrTokenInvalid.
func ParseToken(raw string) (userID, tokenType string, err error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("jwt.secret")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrTokenExpired
		}

		return "", "", ErrTokenInvalid
	}

	if !token.Valid {
		return "", "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrTokenInvalid
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", ErrTokenInvalid
	}

	tokenType, ok = claims["token_type"].(string)
	if !ok {
		return "", "", ErrTokenInvalid
	}

	return userID, tokenType, nil
}
