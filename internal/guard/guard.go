// Package guard decides whether a session may enter a protected route and
// where to send it otherwise. Decisions nest: a dashboard-wide officer
// guard composes with a stricter admin guard on individual routes, and the
// innermost guard wins for anyone who clears the outer ones.
package guard

import (
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/session"
)

// Outcome of a guard evaluation.
type Outcome int

const (
	// Pending means the session state is still loading; render nothing and
	// re-evaluate, never redirect on a guess.
	Pending Outcome = iota
	// Allow admits the request.
	Allow
	// Redirect turns the request away toward Decision.Location.
	Redirect
)

// Decision is the result of evaluating a guard against a session.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard protects a route subtree. A nil Required set means any
// authenticated session is admitted.
type Guard struct {
	Required models.RoleSet
}

// New builds a guard admitting only the given roles. With no roles it
// requires authentication only.
func New(roles ...models.Role) Guard {
	if len(roles) == 0 {
		return Guard{}
	}
	return Guard{Required: models.NewRoleSet(roles...)}
}

// Evaluate inspects the session and returns the admission decision.
// An unauthenticated visitor goes to the public landing page; an
// authenticated user with the wrong role goes to their own default
// landing, never an error page.
func (g Guard) Evaluate(store *session.Store) Decision {
	if store.IsLoading() {
		return Decision{Outcome: Pending}
	}
	if !store.IsAuthenticated() {
		return Decision{Outcome: Redirect, Location: "/"}
	}
	role := store.Role()
	if g.Required != nil && !g.Required.Has(role) {
		return Decision{Outcome: Redirect, Location: role.DefaultLanding()}
	}
	return Decision{Outcome: Allow}
}
