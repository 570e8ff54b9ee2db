package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-session/token"
)

// DefaultDuration is how long a session cookie lives when no duration is configured.
const DefaultDuration = 24 * time.Hour

// Session is the server-side view of the encrypted session cookie.
// It is owned by a single request; the durable copy is the cookie itself, so
// two concurrent requests for the same browser race with last-write-wins.
type Session struct {
	ID        string         `json:"id"`              // Correlates log lines for one browser session
	Token     *token.Token   `json:"token,omitempty"` // Absent until the first successful authentication
	User      map[string]any `json:"user,omitempty"`  // Profile fetched once per session and cached
	CreatedAt time.Time      `json:"createdAt"`       // When the session was first issued

	duration time.Duration
	dirty    bool
	fresh    bool
}

// New creates an empty session that lives for duration.
func New(duration time.Duration) *Session {
	if duration < 0 {
		duration = 0
	}
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		duration:  duration,
		fresh:     true,
	}
}

// SetToken stores t on the session. A nil t clears the token only.
func (s *Session) SetToken(t *token.Token) {
	s.Token = t.Clone()
	s.dirty = true
}

// SetUser caches the user profile on the session.
func (s *Session) SetUser(user map[string]any) {
	s.User = user
	s.dirty = true
}

// HasUser reports whether a profile has already been cached.
func (s *Session) HasUser() bool {
	return s.User != nil
}

// AccessToken returns the stored access token or "".
func (s *Session) AccessToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

// Reset clears the token and the cached user.
func (s *Session) Reset() {
	s.Token = nil
	s.User = nil
	s.dirty = true
}

// SetDuration changes the cookie lifetime. Zero makes the cookie expire
// immediately when the session is saved.
func (s *Session) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.duration = d
	s.dirty = true
}

// Duration is the lifetime the cookie will be written with.
func (s *Session) Duration() time.Duration {
	return s.duration
}

// Expired reports whether the session is marked to be dropped on save.
func (s *Session) Expired() bool {
	return s.duration <= 0
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

// IsNew reports whether the session was created during this request rather
// than decoded from a cookie.
func (s *Session) IsNew() bool {
	return s.fresh
}

type sessionKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
