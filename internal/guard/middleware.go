package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/internal/session"
	"github.com/worldofdc/portal-gateway/pkg/logger"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
	"go.uber.org/zap"
)

const storeKey = "session.store"

// Hydrate builds the request's session store from its cookie jar and makes
// it available to downstream guards and handlers. Must run before any
// Require middleware on the same route.
func Hydrate(cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := cfg.CookieTTLHours * 3600
	return func(c *gin.Context) {
		storage := session.NewCookieStorage(c, cfg.CookieDomain, cfg.CookieSecure, maxAge)
		store := session.NewStore(storage, nil)
		store.Load()
		c.Set(storeKey, store)
		c.Next()
	}
}

// StoreFrom returns the request's hydrated session store. Handlers behind
// Hydrate can rely on it being present.
func StoreFrom(c *gin.Context) *session.Store {
	v, ok := c.Get(storeKey)
	if !ok {
		// A route registered without Hydrate. Treat as logged out rather
		// than panicking mid-request.
		logger.Error("session store missing from request context",
			zap.String("path", c.FullPath()))
		store := session.NewStore(session.NewMemoryStorage(), nil)
		store.Load()
		return store
	}
	return v.(*session.Store)
}

// Require turns a Guard into gin middleware. Turned-away requests get a
// See Other redirect so browsers land on the right page; the decision is
// also exposed in a header for non-navigating callers.
func Require(g Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := StoreFrom(c)
		decision := g.Evaluate(store)
		switch decision.Outcome {
		case Allow:
			metrics.GuardDecisionTotal.WithLabelValues("allow").Inc()
			c.Next()
		case Pending:
			// Session state unresolved; ask the client to retry rather
			// than guessing a redirect.
			metrics.GuardDecisionTotal.WithLabelValues("pending").Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatus(http.StatusServiceUnavailable)
		default:
			metrics.GuardDecisionTotal.WithLabelValues("redirect").Inc()
			c.Header("X-Guard-Redirect", decision.Location)
			c.Redirect(http.StatusSeeOther, decision.Location)
			c.Abort()
		}
	}
}
