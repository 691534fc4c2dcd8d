package auth

import (
	"errors"
	"fmt"
	"time"

	"file-lifecycle-manager/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("token invalid")

func secret() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateAccessToken signs an HS256 token carrying the user id and the
// user's current token version.
func GenerateAccessToken(userID uint64, tokenVersion uint64) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       userID,
		"token_version": tokenVersion,
		"exp":           time.Now().Add(accessTokenTTL).Unix(),
		"iat":           time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	if !jwtToken.Valid {
		return nil, ErrInvalidToken
	}

	return jwtToken, nil
}

// GetDataFromToken extracts user id and token version from a verified token.
func GetDataFromToken(token *jwt.Token) (uint64, uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, ErrInvalidToken
	}

	// numbers decode as float64
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, 0, ErrInvalidToken
	}
	tokenVersion, ok := claims["token_version"].(float64)
	if !ok {
		return 0, 0, ErrInvalidToken
	}

	return uint64(userID), uint64(tokenVersion), nil
}
