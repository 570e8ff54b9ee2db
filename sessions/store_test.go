package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
	"github.com/jrsteele09/go-oauth-session/sessions"
	"github.com/jrsteele09/go-oauth-session/token"
	"github.com/stretchr/testify/require"
)

const (
	testCookie = "testSession"
	testSecret = "sekret"
)

func newStore(t *testing.T) *sessions.CookieStore {
	t.Helper()
	store, err := sessions.NewCookieStore(testCookie, testSecret, time.Hour)
	require.NoError(t, err)
	return store
}

// saveAndReplay writes sess through store and returns a request carrying the
// resulting cookie.
func saveAndReplay(t *testing.T, store sessions.Store, sess *sessions.Session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestCookieStore_Load(t *testing.T) {
	store := newStore(t)

	t.Run("no cookie gives a fresh session", func(t *testing.T) {
		sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.True(t, sess.IsNew())
		require.NotEmpty(t, sess.ID)
		require.Nil(t, sess.Token)
		require.Equal(t, time.Hour, sess.Duration())
	})

	t.Run("round trips token and user", func(t *testing.T) {
		sess := sessions.New(time.Hour)
		sess.SetToken(token.New("accessToken", "refreshToken", token.In(time.Hour)))
		sess.SetUser(map[string]any{"name": "Frodo Baggins"})

		req, cookie := saveAndReplay(t, store, sess)
		require.True(t, cookie.HttpOnly)
		require.Equal(t, 3600, cookie.MaxAge)

		loaded, err := store.Load(req)
		require.NoError(t, err)
		require.False(t, loaded.IsNew())
		require.Equal(t, sess.ID, loaded.ID)
		require.Equal(t, "accessToken", loaded.Token.AccessToken)
		require.Equal(t, "refreshToken", loaded.Token.RefreshToken)
		require.Equal(t, sess.Token.Expires.Time().Unix(), loaded.Token.Expires.Time().Unix())
		require.Equal(t, "Frodo Baggins", loaded.User["name"])
	})

	t.Run("tampered cookie is replaced", func(t *testing.T) {
		sess := sessions.New(time.Hour)
		sess.SetToken(token.New("accessToken", "", token.Expiry{}))
		_, cookie := saveAndReplay(t, store, sess)

		b := []byte(cookie.Value)
		b[len(b)/2] ^= 'A' ^ 'B'
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: string(b)})

		loaded, err := store.Load(req)
		require.Error(t, err)
		require.NotNil(t, loaded)
		require.True(t, loaded.IsNew())
		require.Nil(t, loaded.Token)
	})

	t.Run("cookie sealed with another secret is rejected", func(t *testing.T) {
		other, err := sessions.NewCookieStore(testCookie, "another-secret", time.Hour)
		require.NoError(t, err)

		sess := sessions.New(time.Hour)
		sess.SetToken(token.New("accessToken", "", token.Expiry{}))
		req, _ := saveAndReplay(t, other, sess)

		loaded, err := store.Load(req)
		require.True(t, apperrors.Is(err, apperrors.ErrCookieDecode))
		require.Nil(t, loaded.Token)
	})

	t.Run("garbage value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "not-a-session"})

		loaded, err := store.Load(req)
		require.True(t, apperrors.Is(err, apperrors.ErrCookieDecode))
		require.True(t, loaded.IsNew())
	})
}

func TestCookieStore_Save(t *testing.T) {
	store := newStore(t)

	t.Run("zero duration expires the cookie", func(t *testing.T) {
		sess := sessions.New(time.Hour)
		sess.Reset()
		sess.SetDuration(0)

		rec := httptest.NewRecorder()
		require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, testCookie, cookies[0].Name)
		require.Empty(t, cookies[0].Value)
		require.Less(t, cookies[0].MaxAge, 0)
	})

	t.Run("secure flag follows the forwarded scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")

		rec := httptest.NewRecorder()
		require.NoError(t, store.Save(rec, req, sessions.New(time.Hour)))
		require.True(t, rec.Result().Cookies()[0].Secure)
	})

	t.Run("nil session", func(t *testing.T) {
		err := store.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		require.ErrorIs(t, err, apperrors.ErrNoSession)
	})
}

func TestSession_Reset(t *testing.T) {
	sess := sessions.New(time.Hour)
	sess.SetToken(token.New("accessToken", "refreshToken", token.Expiry{}))
	sess.SetUser(map[string]any{"email": "frodo@bag.end"})

	sess.Reset()

	require.Nil(t, sess.Token)
	require.Nil(t, sess.User)
	require.False(t, sess.HasUser())
	require.True(t, sess.Dirty())
}

func TestNewCookieStore_RequiresSecret(t *testing.T) {
	_, err := sessions.NewCookieStore(testCookie, "", time.Hour)
	require.Error(t, err)
}
