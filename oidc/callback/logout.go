package callback

import (
	"fmt"
	"net/http"

	"oidcagent/oidc"
)

// Logout creates a handler that ends the login: it clears the request's
// session and redirects the user agent to the provider's logout endpoint.
// The raw id_token held by the active session (if any) is passed along as the
// id_token_hint, so the provider can end its own session too.  Logging out
// without an active session still succeeds.
//
// The optional StateFunc produces the state parameter for the logout
// redirect; when nil, no state is sent.  The ErrorResponseFunc is used to
// create a response when building the logout redirect fails.
func Logout(p *oidc.Provider, storeFn SessionStoreFunc, stateFn StateFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.Logout"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, oidc.ErrNilParameter)
	}
	if storeFn == nil {
		return nil, fmt.Errorf("%s: session store func is nil: %w", op, oidc.ErrNilParameter)
	}
	if eFn == nil {
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, oidc.ErrNilParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		store := storeFn(w, req)

		var authCtx *oidc.AuthContext
		if s := store.Active(); s != nil {
			if v, ok := s.Get(oidc.SessionAttrIdToken); ok {
				if idToken, ok := v.(oidc.IdToken); ok {
					authCtx = &oidc.AuthContext{IdToken: idToken}
				}
			}
		}

		var state string
		if stateFn != nil {
			var err error
			state, err = stateFn(w, req)
			if err != nil {
				eFn("", err, w, req)
				return
			}
		}

		u, err := p.Logout(authCtx, store, state)
		if err != nil {
			eFn(state, err, w, req)
			return
		}
		http.Redirect(w, req, u, http.StatusFound)
	}, nil
}
