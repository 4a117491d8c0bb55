package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token carries no expiry")

// TokenExpiry reads the exp claim of the bearer token without verifying its
// signature. The client never holds the signing key, so this is informational.
func (s Session) TokenExpiry() (time.Time, error) {
	if s.Token == "" {
		return time.Time{}, ErrNoExpiry
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
