package otp

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry tracks in-progress challenges keyed by mobile number so a
// verify request can find the challenge its send request created.
// Entries expire after the challenge TTL; an expired entry means the
// citizen must request a fresh code.
type Registry struct {
	client     CitizenAPI
	challenges *cache.Cache
	ttl        time.Duration
}

// NewRegistry builds a registry whose challenges live for ttl.
func NewRegistry(client CitizenAPI, ttl time.Duration) *Registry {
	return &Registry{
		client:     client,
		challenges: cache.New(ttl, 2*ttl),
		ttl:        ttl,
	}
}

// Begin creates a challenge for mode. It is not registered until the
// initial send succeeds; call Register after a successful Send.
func (r *Registry) Begin(mode Mode) *Challenge {
	return NewChallenge(mode, r.client)
}

// Register makes a sent challenge findable by its mobile number.
// Re-registering replaces any earlier challenge for the same number.
func (r *Registry) Register(ch *Challenge) {
	mobile := ch.Mobile()
	if mobile == "" {
		return
	}
	r.challenges.Set(mobile, ch, r.ttl)
}

// Lookup returns the live challenge for a mobile number, if any.
func (r *Registry) Lookup(mobile string) (*Challenge, bool) {
	v, ok := r.challenges.Get(mobile)
	if !ok {
		return nil, false
	}
	ch, ok := v.(*Challenge)
	return ch, ok
}

// Complete discards a finished challenge.
func (r *Registry) Complete(mobile string) {
	r.challenges.Delete(mobile)
}
