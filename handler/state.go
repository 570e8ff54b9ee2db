package handler

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
)

// DefaultRedirectURL is used whenever a redirect target is missing or unreadable.
const DefaultRedirectURL = "/"

// RedirectState travels through the provider inside the state parameter.
// The encoding is reversible and unsigned; it carries a destination, not trust.
type RedirectState struct {
	RedirectURL string `json:"redirectUrl"`
}

// EncodeState packs the post-login destination into an opaque state value.
func EncodeState(redirectURL string) string {
	b, _ := json.Marshal(RedirectState{RedirectURL: redirectURL})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeState recovers the destination from a state value produced by
// EncodeState. Padded and standard-alphabet base64 are accepted as well.
func DecodeState(state string) (string, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "empty")
	}
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding, base64.StdEncoding, base64.RawStdEncoding} {
		if raw, err = enc.DecodeString(state); err == nil {
			break
		}
	}
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "base64")
	}
	var s RedirectState
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "json")
	}
	if s.RedirectURL == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "no redirectUrl")
	}
	return s.RedirectURL, nil
}

// RedirectFromState is DecodeState with the fallback applied.
func RedirectFromState(state string) string {
	u, err := DecodeState(state)
	if err != nil {
		return DefaultRedirectURL
	}
	return u
}
