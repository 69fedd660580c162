// internal/utils/jwt.go
package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtIssuer = "bens-fisicos"
	// refreshAudience marks refresh tokens. Access tokens carry no audience.
	refreshAudience = "refresh"
)

type JWTClaims struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Papeis   []string `json:"papeis"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func registeredClaims(userID uint, ttlHours int, audience ...string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Audience:  audience,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    jwtIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

// GenerateJWT signs an access token. The roles are informative only; every
// request reloads them from the user record.
func GenerateJWT(userID uint, username string, papeis []string, ttlHours int) (string, error) {
	claims := JWTClaims{
		UserID:           userID,
		Username:         username,
		Papeis:           papeis,
		RegisteredClaims: registeredClaims(userID, ttlHours),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return jwtSecret, nil
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.Issuer == jwtIssuer &&
		len(claims.Audience) == 0 && claims.UserID != 0 {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func GenerateRefreshToken(userID uint, ttlHours int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, registeredClaims(userID, ttlHours, refreshAudience))
	return token.SignedString(jwtSecret)
}

func ValidateRefreshToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, keyFunc)
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Issuer != jwtIssuer || !claims.VerifyAudience(refreshAudience, true) {
		return 0, errors.New("invalid refresh token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("invalid refresh token subject")
	}
	return uint(id), nil
}
