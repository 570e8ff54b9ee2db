package sessions

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	apperrors "github.com/jrsteele09/go-oauth-session/internal/errors"
)

const hkdfInfo = "go-oauth-session cookie v1"

// Codec seals session payloads with XChaCha20-Poly1305. The key is derived
// from the configured secret and the cookie name is bound as additional
// data, so a value cannot be replayed under a different cookie.
type Codec struct {
	name string
	aead cipher.AEAD
}

type envelope struct {
	Session   *Session `json:"s"`
	ExpiresAt int64    `json:"e"`
	Duration  int64    `json:"d"`
}

// NewCodec derives an encryption key from secret for the named cookie.
func NewCodec(name, secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if name == "" {
		return nil, errors.New("session cookie name is required")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, errors.Wrap(err, "derive session key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "create session cipher")
	}
	return &Codec{name: name, aead: aead}, nil
}

// Encode seals s, stamping it with an absolute expiry of now + its duration.
func (c *Codec) Encode(s *Session, now time.Time) (string, error) {
	plaintext, err := json.Marshal(envelope{
		Session:   s,
		ExpiresAt: now.Add(s.Duration()).Unix(),
		Duration:  int64(s.Duration() / time.Second),
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal session")
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, []byte(c.name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens a cookie value. Tampered, foreign and expired values are all
// reported as apperrors.ErrCookieDecode or apperrors.ErrSessionExpired.
func (c *Codec) Decode(value string, now time.Time) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCookieDecode, "base64")
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, apperrors.Wrapf(apperrors.ErrCookieDecode, "short value")
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, []byte(c.name))
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCookieDecode, "open")
	}
	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil || env.Session == nil {
		return nil, apperrors.Wrapf(apperrors.ErrCookieDecode, "payload")
	}
	if now.Unix() >= env.ExpiresAt {
		return nil, apperrors.ErrSessionExpired
	}
	s := env.Session
	s.duration = time.Duration(env.Duration) * time.Second
	return s, nil
}
