package oidc

// AuthContext is the aggregate result of one successful login attempt.  It is
// created per callback, populated as the flow succeeds, and discarded if the
// flow fails before completion.  The creating request owns it exclusively
// until it's handed to BindSession, which copies its fields into the session;
// after that the session is the sole long-lived owner.
type AuthContext struct {
	// User is the authenticated end user
	User *User

	// AccessToken is the opaque bearer credential returned by the exchange
	AccessToken AccessToken

	// RefreshToken may be empty if the provider omitted it
	RefreshToken RefreshToken

	// IdToken is the raw identity token in its compact serialized form
	IdToken IdToken

	// IDTokenClaims is the verified claim set of IdToken
	IDTokenClaims map[string]interface{}
}
