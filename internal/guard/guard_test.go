package guard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/internal/guard"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/session"
)

func storeWith(t *testing.T, user *models.User) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), nil)
	store.Load()
	if user != nil {
		require.NoError(t, store.SetAuth("token-"+user.ID, *user))
	}
	return store
}

func TestEvaluateRedirectsAnonymousToLanding(t *testing.T) {
	g := guard.New(models.OfficerRoles().List()...)
	d := g.Evaluate(storeWith(t, nil))
	assert.Equal(t, guard.Redirect, d.Outcome)
	assert.Equal(t, "/", d.Location)
}

func TestEvaluateSendsWrongRoleToOwnLanding(t *testing.T) {
	citizen := &models.User{ID: "c1", Role: models.RoleCitizen}
	g := guard.New(models.OfficerRoles().List()...)

	d := g.Evaluate(storeWith(t, citizen))
	assert.Equal(t, guard.Redirect, d.Outcome)
	assert.Equal(t, "/citizen", d.Location, "misrouted citizens land on their own page, not an error")
}

func TestEvaluateAllowsMatchingRole(t *testing.T) {
	officer := &models.User{ID: "o1", Role: models.RoleTehsildar}
	g := guard.New(models.OfficerRoles().List()...)
	assert.Equal(t, guard.Allow, g.Evaluate(storeWith(t, officer)).Outcome)
}

func TestEvaluateAuthOnlyGuardAdmitsAnyRole(t *testing.T) {
	g := guard.New()
	assert.Equal(t, guard.Allow, g.Evaluate(storeWith(t, &models.User{ID: "c1", Role: models.RoleCitizen})).Outcome)
	assert.Equal(t, guard.Redirect, g.Evaluate(storeWith(t, nil)).Outcome)
}

func TestEvaluatePendingWhileLoading(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage(), nil)
	// Load deliberately not called.
	d := guard.New().Evaluate(store)
	assert.Equal(t, guard.Pending, d.Outcome, "no redirect may happen before the session resolves")
}

func sessionCookies(t *testing.T, req *http.Request, user models.User) {
	t.Helper()
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.KeyToken, Value: "tok-" + user.ID})
	req.AddCookie(&http.Cookie{Name: session.KeyUser, Value: url.QueryEscape(string(raw))})
}

func newGuardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(guard.Hydrate(config.SessionConfig{CookieTTLHours: 1}))

	officer := r.Group("/api/dashboard", guard.Require(guard.New(models.OfficerRoles().List()...)))
	officer.GET("/home", func(c *gin.Context) { c.Status(http.StatusOK) })
	officer.GET("/approvals",
		guard.Require(guard.New(models.AdminRoles().List()...)),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	citizen := r.Group("/api/citizen", guard.Require(guard.New(models.RoleCitizen)))
	citizen.GET("/home", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMiddlewareCitizenTurnedAwayFromDashboard(t *testing.T) {
	r := newGuardedRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/home", nil)
	sessionCookies(t, req, models.User{ID: "c1", Role: models.RoleCitizen})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/citizen", w.Header().Get("Location"))
}

func TestMiddlewareNestedAdminGuardWins(t *testing.T) {
	r := newGuardedRouter()

	// A plain officer clears the dashboard guard but not the admin one.
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/approvals", nil)
	sessionCookies(t, req, models.User{ID: "o1", Role: models.RoleOfficer})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	// A district commissioner clears both.
	req = httptest.NewRequest(http.MethodGet, "/api/dashboard/approvals", nil)
	sessionCookies(t, req, models.User{ID: "dc1", Role: models.RoleDistrictCommissioner})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareAnonymousRedirectsToRoot(t *testing.T) {
	r := newGuardedRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/citizen/home", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestMiddlewareOfficerAllowedThrough(t *testing.T) {
	r := newGuardedRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/home", nil)
	sessionCookies(t, req, models.User{ID: "o1", Role: models.RoleHealthOfficer})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
