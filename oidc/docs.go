/*
oidc is a package for the relying party side of the OpenID Connect
authorization code flow: it builds the authorization redirect that starts a
login, classifies and handles the provider's callback, exchanges the
authorization code for tokens, verifies the id_token, binds the resulting
identity to a server-side session, and builds the front-channel logout
redirect.

Primary types provided by the package

* Config: the validated, immutable description of one relying party
registration (issuer, provider endpoints, client id/secret, scopes, callback
URL).  Validation happens exactly once, at construction.

* Provider: the stateless orchestrator tying the flow together.  It provides
AuthURL, HandleCallback (classify, exchange, verify, bind - strictly in that
order), Exchange, VerifyIDToken, LogoutURL and Logout.

* AuthorizationResponse: the sealed classification of an inbound callback
(*AuthorizationSuccess, *AuthorizationError, *NotAuthorizationResponse).

* Token / Tk: an oidc id_token plus the oauth2 access_token and optional
refresh_token returned by the code exchange.

* User and AuthContext: the authenticated identity (subject plus non-reserved
claims) and the aggregate result of one successful login.

* SessionStore / Session: the minimal surface required of the host's session
machinery.  BindSession, IsSessionActive and ClearSession are the only code
that touches the session's shape; binding renews the session id to defend
against session fixation.

The oidc/callback package

The callback package provides http.HandlerFuncs for the three redirects of
the flow: starting a login, handling the authorization code callback, and
logging out.
*/
package oidc
