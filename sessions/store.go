package sessions

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/internal/utils"
)

// Store loads and saves sessions for a request/response pair.
//
// Load never fails to produce a session: a missing, tampered or expired
// cookie yields a fresh empty session, with the decode error returned
// alongside for logging.
type Store interface {
	Load(r *http.Request) (*Session, error)
	Save(w http.ResponseWriter, r *http.Request, s *Session) error
}

// CookieStore keeps the whole session inside one encrypted cookie.
type CookieStore struct {
	name     string
	duration time.Duration
	codec    *Codec
	path     string
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a store for the named cookie sealed with secret.
func NewCookieStore(name, secret string, duration time.Duration) (*CookieStore, error) {
	codec, err := NewCodec(name, secret)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &CookieStore{
		name:     name,
		duration: duration,
		codec:    codec,
		path:     "/",
	}, nil
}

// Name returns the cookie name.
func (s *CookieStore) Name() string {
	return s.name
}

func (s *CookieStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return New(s.duration), nil
	}
	sess, err := s.codec.Decode(cookie.Value, time.Now())
	if err != nil {
		return New(s.duration), err
	}
	if sess.duration <= 0 {
		sess.duration = s.duration
	}
	return sess, nil
}

func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return apperrors.ErrNoSession
	}
	cookie := &http.Cookie{
		Name:     s.name,
		Path:     s.path,
		HttpOnly: true,
		Secure:   utils.Scheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Expired() {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
		return nil
	}
	value, err := s.codec.Encode(sess, time.Now())
	if err != nil {
		return errors.Wrap(err, "encode session cookie")
	}
	cookie.Value = value
	cookie.MaxAge = int(sess.Duration() / time.Second)
	http.SetCookie(w, cookie)
	return nil
}
