package callback

import (
	"fmt"
	"net/http"

	"oidcagent/oidc"
)

// AuthCode creates an oidc authorization code callback handler.  The handler
// classifies the inbound request and, for an authorization success, completes
// the login against the provider (code exchange, id_token verification,
// session binding) before responding.
//
// The SessionStoreFunc supplies the request's session store.  The
// SuccessResponseFunc is used to create a response when the callback is
// successful.  The ErrorResponseFunc is used to create a response when the
// callback fails; by then the session has already been cleared.
func AuthCode(p *oidc.Provider, storeFn SessionStoreFunc, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.AuthCode"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, oidc.ErrNilParameter)
	}
	if storeFn == nil {
		return nil, fmt.Errorf("%s: session store func is nil: %w", op, oidc.ErrNilParameter)
	}
	if sFn == nil {
		return nil, fmt.Errorf("%s: success response func is nil: %w", op, oidc.ErrNilParameter)
	}
	if eFn == nil {
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, oidc.ErrNilParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found
		reqState := req.FormValue("state")

		store := storeFn(w, req)
		authCtx, err := p.HandleCallback(req.Context(), req, store)
		if err != nil {
			eFn(reqState, err, w, req)
			return
		}
		sFn(reqState, authCtx, w, req)
	}, nil
}
