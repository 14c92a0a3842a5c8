package callback

import (
	"fmt"
	"net/http"

	"oidcagent/oidc"
)

// Login creates a handler that starts a login by redirecting the user agent
// to the provider's authorization endpoint.
//
// The optional StateFunc produces the state parameter for the redirect (and
// typically persists it for verification on the way back).  When stateFn is
// nil each login gets a freshly generated opaque state value.
func Login(p *oidc.Provider, stateFn StateFunc) (http.HandlerFunc, error) {
	const op = "callback.Login"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, oidc.ErrNilParameter)
	}
	if stateFn == nil {
		stateFn = func(w http.ResponseWriter, req *http.Request) (string, error) {
			return oidc.NewID(oidc.WithPrefix("st"))
		}
	}
	return func(w http.ResponseWriter, req *http.Request) {
		state, err := stateFn(w, req)
		if err != nil {
			http.Error(w, "unable to generate state for login redirect", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, req, p.AuthURL(state), http.StatusFound)
	}, nil
}
