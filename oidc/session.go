package oidc

import (
	"fmt"
)

// Session attribute names written by BindSession.  The binder is the only
// component that touches the session's shape.
const (
	SessionAttrAuthenticated = "authenticated"
	SessionAttrUser          = "user"
	SessionAttrIdToken       = "id_token"
	SessionAttrAccessToken   = "access_token"
)

// Session is the minimal handle the session binder needs from one
// server-side session.
type Session interface {
	// ID is the session's identifier
	ID() string

	// Get reads a session attribute, reporting whether it was present
	Get(name string) (interface{}, bool)

	// Set writes a session attribute
	Set(name string, value interface{})

	// Invalidate destroys the session's state entirely.  It must be safe to
	// call more than once.
	Invalidate()
}

// SessionStore is the request-scoped surface of the host environment's
// session machinery.  Implementations must be concurrently safe: concurrent
// callbacks for the same session are not serialized here, and one of them
// simply wins.
type SessionStore interface {
	// Active returns the request's current session, or nil when none exists
	Active() Session

	// Renew invalidates any current session and returns a fresh session with
	// a new id
	Renew() Session
}

// BindSession attaches the result of a successful login to a fresh session.
// Any pre-existing session is invalidated first and a new session id is
// issued before state is written, so an attacker-fixated session id never
// survives a privilege change.
func BindSession(store SessionStore, authCtx *AuthContext) error {
	const op = "oidc.BindSession"
	if store == nil {
		return fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	if authCtx == nil || authCtx.User == nil {
		return fmt.Errorf("%s: auth context is missing a user: %w", op, ErrNilParameter)
	}
	s := store.Renew()
	if s == nil {
		return fmt.Errorf("%s: session store returned no session: %w", op, ErrNilParameter)
	}
	s.Set(SessionAttrAuthenticated, true)
	s.Set(SessionAttrUser, authCtx.User)
	s.Set(SessionAttrIdToken, authCtx.IdToken)
	s.Set(SessionAttrAccessToken, authCtx.AccessToken)
	return nil
}

// IsSessionActive reports whether an authenticated session exists.  It is a
// pure query: it never mutates session state, whether a session is present or
// not.
func IsSessionActive(store SessionStore) bool {
	if store == nil {
		return false
	}
	s := store.Active()
	if s == nil {
		return false
	}
	v, ok := s.Get(SessionAttrAuthenticated)
	if !ok {
		return false
	}
	authenticated, ok := v.(bool)
	return ok && authenticated
}

// ClearSession invalidates the current session if one exists.  It is
// idempotent and best-effort: clearing never fails, even when no session
// exists.
func ClearSession(store SessionStore) {
	if store == nil {
		return
	}
	if s := store.Active(); s != nil {
		s.Invalidate()
	}
}
