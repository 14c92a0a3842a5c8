package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"

	"oidcagent/oidc/internal/strutils"
	sdkhttp "oidcagent/sdk/http"
)

type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Alg represents asymmetric signing algorithms
type Alg string

const (
	// JOSE asymmetric signing algorithm values as defined by RFC 7518.
	// See: https://tools.ietf.org/html/rfc7518#section-3.1
	RS256 Alg = "RS256" // RSASSA-PKCS-v1.5 using SHA-256
	RS384 Alg = "RS384" // RSASSA-PKCS-v1.5 using SHA-384
	RS512 Alg = "RS512" // RSASSA-PKCS-v1.5 using SHA-512
	ES256 Alg = "ES256" // ECDSA using P-256 and SHA-256
	ES384 Alg = "ES384" // ECDSA using P-384 and SHA-384
	ES512 Alg = "ES512" // ECDSA using P-521 and SHA-512
	PS256 Alg = "PS256" // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 Alg = "PS384" // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 Alg = "PS512" // RSASSA-PSS using SHA512 and MGF1-SHA512
	EdDSA Alg = "EdDSA"
)

var supportedAlgorithms = map[Alg]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
	EdDSA: true,
}

// DefaultExchangeTimeout bounds the authorization code exchange, which is the
// flow's only outbound network call.
const DefaultExchangeTimeout = 30 * time.Second

// DefaultReservedClaims returns the default set of oidc metadata claim names
// that are excluded from a User's attributes.  The reserved set is a contract
// with the id_token's issuer, so it can be overridden with
// WithReservedClaims.
func DefaultReservedClaims() []string {
	return []string{
		"iss", "sub", "aud", "exp", "nbf", "iat", "jti",
		"azp", "nonce", "at_hash", "c_hash", "acr", "amr", "auth_time",
	}
}

// Endpoints are the provider endpoints used by the authorization code flow.
// They are explicit: no discovery request is ever made to the issuer.
type Endpoints struct {
	// Authorization is where the user agent is redirected to start a login
	Authorization string

	// Token is the back-channel endpoint where authorization codes are
	// exchanged for tokens
	Token string

	// Logout is the optional front-channel logout endpoint
	Logout string

	// JWKS is where the provider publishes its id_token signing keys
	JWKS string
}

// Config represents the configuration for one relying party registration
// using the typical 3-legged OIDC authorization code flow.
type Config struct {
	// ClientID is the relying party id registered with the provider
	ClientID string

	// ClientSecret is the relying party secret.  It is redacted when
	// printed or marshaled, and is never logged.
	ClientSecret ClientSecret

	// Scopes is the full set of scopes requested of the provider.  It must
	// contain the "openid" scope.
	Scopes []string

	// Issuer is a case-sensitive URL string using the https (or http)
	// scheme, used when verifying an id_token's "iss" claim.
	Issuer string

	// Endpoints are the provider's flow endpoints
	Endpoints Endpoints

	// CallbackURL is the url the provider redirects the user agent back to
	// after login
	CallbackURL string

	// PostLogoutRedirectURL is the optional url the provider redirects to
	// after a front-channel logout.  When unset, the CallbackURL is used at
	// logout time.
	PostLogoutRedirectURL string

	// SupportedSigningAlgs is the list of signing algorithms accepted for
	// the provider's id_tokens.  Defaults to RS256, the one algorithm the
	// oidc spec mandates.
	SupportedSigningAlgs []Alg

	// Audiences is an optional list of additional case-sensitive strings
	// accepted when verifying an id_token's "aud" claim
	Audiences []string

	// ProviderCA is an optional CA cert to use when sending requests to the
	// provider
	ProviderCA string

	// ReservedClaims is the set of oidc metadata claim names excluded from a
	// User's attributes.  Defaults to DefaultReservedClaims().
	ReservedClaims []string

	// ExchangeTimeout bounds the authorization code exchange.  Defaults to
	// DefaultExchangeTimeout.
	ExchangeTimeout time.Duration

	// NowFunc is a time func that returns the current time and can be
	// overridden for tests
	NowFunc func() time.Time `json:"-"`
}

// NewConfig composes a new relying party config and validates it.  Validation
// happens exactly once, here: a Config that fails validation is never handed
// to a Provider, and per-request code never re-checks it.
//
// Supported options: WithScopes, WithSupportedSigningAlgs, WithAudiences,
// WithProviderCA, WithPostLogoutRedirectURL, WithReservedClaims,
// WithExchangeTimeout, WithNow
func NewConfig(issuer string, clientID string, clientSecret ClientSecret, endpoints Endpoints, callbackURL string, opt ...Option) (*Config, error) {
	const op = "oidc.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		Issuer:                issuer,
		ClientID:              clientID,
		ClientSecret:          clientSecret,
		Endpoints:             endpoints,
		CallbackURL:           callbackURL,
		Scopes:                opts.withScopes,
		SupportedSigningAlgs:  opts.withSupportedSigningAlgs,
		Audiences:             opts.withAudiences,
		ProviderCA:            opts.withProviderCA,
		PostLogoutRedirectURL: opts.withPostLogoutRedirectURL,
		ReservedClaims:        opts.withReservedClaims,
		ExchangeTimeout:       opts.withExchangeTimeout,
		NowFunc:               opts.withNowFunc,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid relying party config: %w", op, err)
	}
	return c, nil
}

// Validate the relying party configuration.  All checks are run and every
// failure is reported (each failure matches its own sentinel via errors.Is).
// It verifies the issuer is well formed, but it doesn't verify the issuer is
// reachable via an http request.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: relying party config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if len(c.Scopes) == 0 || !strutils.StrListContains(c.Scopes, oidc.ScopeOpenID) {
		result = multierror.Append(result, fmt.Errorf("%s: scopes must contain %q: %w", op, oidc.ScopeOpenID, ErrInvalidScope))
	}
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client id is empty: %w", op, ErrMissingClientID))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter))
	}
	if c.CallbackURL == "" {
		result = multierror.Append(result, fmt.Errorf("%s: callback URL is empty: %w", op, ErrMissingCallbackURL))
	}
	for _, a := range c.SupportedSigningAlgs {
		if !supportedAlgorithms[a] {
			result = multierror.Append(result, fmt.Errorf("%s: unsupported signing algorithm %s: %w", op, a, ErrInvalidParameter))
		}
	}
	switch u, err := url.Parse(c.Issuer); {
	case c.Issuer == "":
		result = multierror.Append(result, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter))
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("%s: issuer %s is invalid: %w", op, c.Issuer, ErrInvalidIssuer))
	case !strutils.StrListContains([]string{"https", "http"}, u.Scheme):
		result = multierror.Append(result, fmt.Errorf("%s: issuer %s scheme is not http or https: %w", op, c.Issuer, ErrInvalidIssuer))
	}
	for name, endpoint := range map[string]string{
		"authorization": c.Endpoints.Authorization,
		"token":         c.Endpoints.Token,
		"jwks":          c.Endpoints.JWKS,
	} {
		if endpoint == "" {
			result = multierror.Append(result, fmt.Errorf("%s: %s endpoint is empty: %w", op, name, ErrInvalidParameter))
			continue
		}
		if _, err := url.Parse(endpoint); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %s endpoint %s is invalid: %w", op, name, endpoint, ErrInvalidParameter))
		}
	}
	return result.ErrorOrNil()
}

// Now returns the current time using the configured NowFunc, so flows (and
// tests) share one clock.
func (c *Config) Now() time.Time {
	if c.NowFunc != nil {
		return c.NowFunc()
	}
	return time.Now()
}

// HttpClient is a helper function that creates a new http client for the
// provider configured
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkhttp.NewClient(c.ProviderCA)
	if err != nil {
		if errors.Is(err, sdkhttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// HttpClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the github.com/coreos/go-oidc and golang.org/x/oauth2 packages, so the
// returned context works for those packages as well.
func HttpClientContext(ctx context.Context, client *http.Client) context.Context {
	// simple to implement as a wrapper for the coreos package
	return oidc.ClientContext(ctx, client)
}

// configOptions is the set of available options
type configOptions struct {
	withScopes                []string
	withSupportedSigningAlgs  []Alg
	withAudiences             []string
	withProviderCA            string
	withPostLogoutRedirectURL string
	withReservedClaims        []string
	withExchangeTimeout       time.Duration
	withNowFunc               func() time.Time
}

// configDefaults is a handy way to get the defaults at runtime and during unit
// tests.
func configDefaults() configOptions {
	return configOptions{
		withScopes:               []string{oidc.ScopeOpenID},
		withSupportedSigningAlgs: []Alg{RS256},
		withReservedClaims:       DefaultReservedClaims(),
		withExchangeTimeout:      DefaultExchangeTimeout,
	}
}

// getConfigOpts gets the config defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithScopes provides the full list of scopes to request of the provider,
// replacing the default of just "openid".  The list must still contain
// "openid" to pass validation.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = strutils.RemoveDuplicatesStable(scopes, false)
		}
	}
}

// WithSupportedSigningAlgs provides the list of signing algorithms accepted
// for the provider's id_tokens, replacing the default of just RS256
func WithSupportedSigningAlgs(algs ...Alg) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withSupportedSigningAlgs = algs
		}
	}
}

// WithAudiences provides an optional list of additional audiences accepted
// when verifying an id_token's "aud" claim
func WithAudiences(auds ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAudiences = auds
		}
	}
}

// WithProviderCA provides an optional CA cert for the provider's config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithPostLogoutRedirectURL provides an optional url the provider redirects
// to after a front-channel logout
func WithPostLogoutRedirectURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withPostLogoutRedirectURL = u
		}
	}
}

// WithReservedClaims overrides the default set of oidc metadata claim names
// excluded from a User's attributes
func WithReservedClaims(claims ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withReservedClaims = claims
		}
	}
}

// WithExchangeTimeout overrides the default timeout bounding the
// authorization code exchange
func WithExchangeTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withExchangeTimeout = d
		}
	}
}

// WithNow provides an optional func for determining the current time
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withNowFunc = now
		}
	}
}
