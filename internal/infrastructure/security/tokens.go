package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims structure
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Premium bool   `json:"premium,omitempty"`
	jwt.RegisteredClaims
}

// ErrNoExpiry is returned when a token carries no exp claim
var ErrNoExpiry = errors.New("token has no expiry")

// DecodeUnverified reads the claims of a token WITHOUT checking its
// signature. The result is only a hint for the UI (is the session still
// worth showing as signed in); the server is the authorization boundary.
func DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of a token without verifying it
func ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := DecodeUnverified(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// IssueToken signs claims with HS256. Used by the stub backend.
func IssueToken(signingKey []byte, userID, email string, premium bool, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		UserID:  userID,
		Email:   email,
		Premium: premium,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "pantry",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry of a token at now. Used by the
// stub backend to authorize requests.
func ParseToken(signingKey []byte, tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
