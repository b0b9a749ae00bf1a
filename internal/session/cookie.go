package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieStorage adapts a single request/response pair to the Storage
// interface, so the gateway keeps each browser's session in its own cookie
// jar rather than in server memory. Gin URL-encodes cookie values, which
// makes the JSON-encoded profile record cookie-safe.
type CookieStorage struct {
	c        *gin.Context
	domain   string
	secure   bool
	maxAge   int
	overlay  map[string]string
	deleted  map[string]bool
}

// NewCookieStorage wraps the request's cookies. maxAge is the cookie
// lifetime in seconds for values written during this request.
func NewCookieStorage(c *gin.Context, domain string, secure bool, maxAge int) *CookieStorage {
	return &CookieStorage{
		c:       c,
		domain:  domain,
		secure:  secure,
		maxAge:  maxAge,
		overlay: make(map[string]string),
		deleted: make(map[string]bool),
	}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	// Reads observe writes made earlier in the same request.
	if s.deleted[key] {
		return "", false
	}
	if v, ok := s.overlay[key]; ok {
		return v, true
	}
	v, err := s.c.Cookie(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *CookieStorage) Set(key, value string) error {
	delete(s.deleted, key)
	s.overlay[key] = value
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, s.maxAge, "/", s.domain, s.secure, true)
	return nil
}

func (s *CookieStorage) Delete(key string) error {
	delete(s.overlay, key)
	s.deleted[key] = true
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, "", -1, "/", s.domain, s.secure, true)
	return nil
}
