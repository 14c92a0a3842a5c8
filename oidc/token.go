package oidc

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Token interface represents the bundle returned by an authorization code
// exchange: an oidc id_token, as well as an oauth2 access_token and
// refresh_token (including the access_token's expiry)
type Token interface {
	// RefreshToken returns the Token's refresh_token, which is empty if the
	// provider omitted it
	RefreshToken() RefreshToken

	// AccessToken returns the Token's access_token
	AccessToken() AccessToken

	// IDToken returns the Token's id_token
	IDToken() IdToken

	// Expiry returns the expiration of the access_token, which is zero if
	// the provider didn't report one
	Expiry() time.Time

	// IsExpired returns true if the token has expired
	IsExpired() bool

	// Valid will ensure that the access_token is not empty or expired
	Valid() bool
}

// DefaultTokenExpirySkew defines a default time skew when checking a Token's
// expiration.
const DefaultTokenExpirySkew = 10 * time.Second

// Tk satisfies the Token interface and represents the bundle returned by a
// successful authorization code exchange.  The id_token is required: the
// flow's sole purpose is identity assertion, so a bundle without one is never
// constructed.
type Tk struct {
	idToken    IdToken
	underlying *oauth2.Token

	// nowFunc is an optional time func used for expiration checks, which can
	// be overridden for tests
	nowFunc func() time.Time
}

// ensure that Tk implements the Token interface
var _ Token = (*Tk)(nil)

// NewToken creates a new Token (*Tk).  The id_token and the underlying
// oauth2.Token are both required.
//
// Supported options: WithTokenNow
func NewToken(idToken IdToken, t *oauth2.Token, opt ...Option) (*Tk, error) {
	const op = "oidc.NewToken"
	if idToken == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if t == nil {
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	}
	opts := getTokenOpts(opt...)
	return &Tk{
		idToken:    idToken,
		underlying: t,
		nowFunc:    opts.withNowFunc,
	}, nil
}

// RefreshToken implements the Token.RefreshToken() interface function and may
// be empty if the provider omitted a refresh_token
func (t *Tk) RefreshToken() RefreshToken { return RefreshToken(t.underlying.RefreshToken) }

// AccessToken implements the Token.AccessToken() interface function
func (t *Tk) AccessToken() AccessToken { return AccessToken(t.underlying.AccessToken) }

// IDToken implements the Token.IDToken() interface function
func (t *Tk) IDToken() IdToken { return t.idToken }

// Expiry implements the Token.Expiry() interface function and may be zero if
// the provider didn't report an access_token expiration
func (t *Tk) Expiry() time.Time { return t.underlying.Expiry }

// IsExpired returns true if the token has expired.  Tokens without an expiry
// are not considered expired.
func (t *Tk) IsExpired() bool {
	if t.underlying.Expiry.IsZero() {
		return false
	}
	return t.underlying.Expiry.Round(0).Before(t.now().Add(DefaultTokenExpirySkew))
}

// Valid will ensure that the access_token is not empty or expired.
func (t *Tk) Valid() bool {
	if t == nil || t.underlying == nil {
		return false
	}
	if t.underlying.AccessToken == "" {
		return false
	}
	return !t.IsExpired()
}

func (t *Tk) now() time.Time {
	if t.nowFunc != nil {
		return t.nowFunc()
	}
	return time.Now()
}

// tokenOptions is the set of available options for Token functions
type tokenOptions struct {
	withNowFunc func() time.Time
}

// tokenDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func tokenDefaults() tokenOptions {
	return tokenOptions{}
}

// getTokenOpts gets the token defaults and applies the opt overrides passed in
func getTokenOpts(opt ...Option) tokenOptions {
	opts := tokenDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithTokenNow provides an optional func for determining the current time
// when checking a Token's expiration
func WithTokenNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*tokenOptions); ok {
			o.withNowFunc = now
		}
	}
}
