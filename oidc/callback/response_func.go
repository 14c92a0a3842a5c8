package callback

import (
	"net/http"

	"oidcagent/oidc"
)

// SuccessResponseFunc is used by callbacks to create a http response when the
// callback is successful.
//
// The state parameter contains the state returned as part of a successful
// authorization response.  The oidc.AuthContext is the result of the
// completed login: the authenticated user, the verified claims and the
// tokens.  The function should use the http.ResponseWriter to send back
// whatever content (headers, html, JSON, etc) it wishes to the client that
// originated the oidc flow.
type SuccessResponseFunc func(state string, authCtx *oidc.AuthContext, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by callbacks to create a http response when the
// callback fails.
//
// The state parameter contains the state returned as part of the
// authorization response, when there was one.  The error e is classified:
// errors.As gives access to an *oidc.AuthorizationError or *oidc.TokenError,
// and errors.Is matches the package's sentinel errors.  The function should
// use the http.ResponseWriter to send back whatever content it wishes to the
// client that originated the oidc flow.
type ErrorResponseFunc func(state string, e error, w http.ResponseWriter, req *http.Request)

// SessionStoreFunc supplies the oidc.SessionStore scoped to the inbound
// request.  Session stores are typically per user agent (cookie-backed), so
// the handlers look one up per request instead of holding one.
//
// Implementations must be concurrently safe, since they will be called from
// concurrent http.Handlers.
type SessionStoreFunc func(w http.ResponseWriter, req *http.Request) oidc.SessionStore

// StateFunc produces the opaque state parameter carried through a redirect.
// Generating state, persisting it and verifying it on the way back is the
// host application's policy.
type StateFunc func(w http.ResponseWriter, req *http.Request) (string, error)
