package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// FromBearer synthesizes a token from an access token presented directly by
// a caller. When the access token is a JWT its exp claim is used as the
// expiry; the signature is not checked here, only the provider can vouch for
// the token. Opaque tokens get now + lifetime.
func FromBearer(accessToken string, lifetime time.Duration) *Token {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil
	}
	t := &Token{AccessToken: accessToken}
	if exp, ok := jwtExpiry(accessToken); ok {
		t.Expires = At(exp)
	}
	return t.Normalize(lifetime)
}

func jwtExpiry(raw string) (time.Time, bool) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
