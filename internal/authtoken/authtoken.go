// Package authtoken reads the expiry of an access token on the client. The
// signature is not checked; only the API can do that.
package authtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

// ExpiresAt returns the exp claim. ok is false when the token has no exp.
func ExpiresAt(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false, errors.Join(ErrNotJWT, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// Expired reports whether token carries an exp claim in the past, allowing
// for leeway. Opaque tokens and tokens without exp are never expired here.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	exp, ok, err := ExpiresAt(token)
	if err != nil || !ok {
		return false
	}
	return !now.Before(exp.Add(leeway))
}
