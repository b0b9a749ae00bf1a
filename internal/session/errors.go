package session

import "errors"

// ErrNoAuthClient is returned by Login on a store built without an
// upstream auth client.
var ErrNoAuthClient = errors.New("session store has no auth client")
