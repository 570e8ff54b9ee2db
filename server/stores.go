package server

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth-session/handler"
	"github.com/jrsteele09/go-oauth-session/sessions"
)

// maxStores bounds the cache when settings vary per request.
const maxStores = 64

type storeKey struct {
	name     string
	secret   string
	duration time.Duration
}

// storeCache keeps one cookie store per distinct cookie configuration so the
// key derivation is not repeated on every request.
type storeCache struct {
	mu     sync.Mutex
	stores map[storeKey]*sessions.CookieStore
}

func newStoreCache() *storeCache {
	return &storeCache{stores: make(map[storeKey]*sessions.CookieStore)}
}

func (c *storeCache) get(opts handler.Options) (sessions.Store, error) {
	key := storeKey{name: opts.SessionName, secret: opts.SecretKey, duration: opts.Duration}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stores[key]; ok {
		return s, nil
	}
	s, err := sessions.NewCookieStore(key.name, key.secret, key.duration)
	if err != nil {
		return nil, err
	}
	if len(c.stores) >= maxStores {
		clear(c.stores)
	}
	c.stores[key] = s
	return s, nil
}
