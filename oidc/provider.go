package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"oidcagent/oidc/internal/strutils"
)

// Provider orchestrates the relying party side of the 3-legged OIDC
// authorization code flow: building the authorization redirect, handling the
// callback (classify, exchange, verify, bind) and building the logout
// redirect.  The Provider itself is stateless and reentrant; all mutable
// per-login state lives in the caller's session store.
type Provider struct {
	config *Config
	client *http.Client
	keySet oidc.KeySet
	logger hclog.Logger

	mu sync.Mutex

	// backgroundCtx is the context used for background activities like
	// fetching and caching the provider's JWKs key set
	backgroundCtx context.Context

	// backgroundCtxCancel is used to release any background activities
	backgroundCtxCancel context.CancelFunc
}

// NewProvider creates and initializes a Provider.  The config is validated
// here, exactly once: no Provider instance exists without a valid Config, and
// per-request operations never re-validate it.  No request is made to the
// provider's issuer.
//
// See Provider.Done() which must be called to release provider resources.
//
// Supported options: WithLogger
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "oidc.NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: relying party config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: relying party config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	client, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Provider{
		config:              c,
		client:              client,
		logger:              opts.withLogger,
		backgroundCtx:       ctx,
		backgroundCtxCancel: cancel,
	}
	// the key set fetches (and caches) the provider's signing keys on first
	// use, using the provider's background context
	p.keySet = oidc.NewRemoteKeySet(HttpClientContext(p.backgroundCtx, client), c.Endpoints.JWKS)

	return p, nil
}

// Done with the provider's background resources and must be called for every
// Provider created
func (p *Provider) Done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backgroundCtxCancel != nil {
		p.backgroundCtxCancel()
		p.backgroundCtxCancel = nil
	}
}

// Config returns the provider's validated, read-only configuration, which is
// safely shared across concurrent invocations.
func (p *Provider) Config() *Config { return p.config }

// AuthURL generates the URL that starts a login by redirecting the user
// agent to the provider's authorization endpoint.  It encodes response type
// "code", the client id, the requested scopes, the callback URL and, when
// state is non-empty, an opaque state parameter used to correlate the
// callback.  Generating and later verifying the state value is the caller's
// policy; this only encodes what it is given.  No network call is made.
func (p *Provider) AuthURL(state string) string {
	oauth2Config := p.oauth2Config()
	return oauth2Config.AuthCodeURL(state)
}

// Exchange will request tokens from the provider's token endpoint, using the
// authorizationCode received in an earlier successful authorization
// response.  The back-channel request uses grant type "authorization_code",
// the callback URL, and HTTP Basic client authentication.  The call blocks
// until a response or transport failure, bounded by the config's
// ExchangeTimeout.
//
// There is exactly one attempt: authorization codes are single-use by
// protocol design, so a retry would either replay a consumed code or
// duplicate side effects at the provider.  A provider rejection surfaces as
// a *TokenError; network and parse failures wrap ErrTransportFailure and are
// never converted into a *TokenError.
//
// On success, the Token returned includes the id_token and access_token, and
// may include a refresh_token.  A response without an id_token is a hard
// failure (ErrMissingIdToken).  The id_token is not yet verified: see
// Provider.VerifyIDToken.
func (p *Provider) Exchange(ctx context.Context, authorizationCode string) (*Tk, error) {
	const op = "Provider.Exchange"
	if authorizationCode == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	ctx, cancel := context.WithTimeout(ctx, p.config.ExchangeTimeout)
	defer cancel()
	oidcCtx := HttpClientContext(ctx, p.client)

	oauth2Token, err := p.oauth2Config().Exchange(oidcCtx, authorizationCode)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			return nil, fmt.Errorf("%s: %w", op, &TokenError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
			})
		}
		return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w: %w", op, ErrTransportFailure, err)
	}

	idToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, fmt.Errorf("%s: id_token is missing from auth code exchange: %w", op, ErrMissingIdToken)
	}
	t, err := NewToken(IdToken(idToken), oauth2Token, WithTokenNow(p.config.NowFunc))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create new token: %w", op, err)
	}
	return t, nil
}

// VerifyIDToken verifies the inbound id_token: its signature against the
// keys published at the config's JWKS endpoint, the issuer, the audience
// (the relying party's client id, plus any additional configured audiences)
// and the expiry.  On success it returns the verified claim set.
//
// See: https://openid.net/specs/openid-connect-core-1_0.html#IDTokenValidation
func (p *Provider) VerifyIDToken(ctx context.Context, t IdToken) (map[string]interface{}, error) {
	const op = "Provider.VerifyIDToken"
	if t == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	algs := make([]string, 0, len(p.config.SupportedSigningAlgs))
	for _, a := range p.config.SupportedSigningAlgs {
		algs = append(algs, string(a))
	}
	verifier := oidc.NewVerifier(p.config.Issuer, p.keySet, &oidc.Config{
		ClientID:             p.config.ClientID,
		SupportedSigningAlgs: algs,
		Now:                  p.config.NowFunc,
	})
	oidcIDToken, err := verifier.Verify(HttpClientContext(ctx, p.client), string(t))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrIdTokenVerificationFailed, err)
	}

	if len(p.config.Audiences) > 0 {
		found := false
		for _, audience := range p.config.Audiences {
			if strutils.StrListContains(oidcIDToken.Audience, audience) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: invalid id_token audiences: %w", op, ErrInvalidAudience)
		}
	}

	var claims map[string]interface{}
	if err := oidcIDToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to unmarshal id_token claims: %w", op, ErrTokenParseFailed)
	}
	return claims, nil
}

// HandleCallback handles the provider's redirect back to the callback URL.
// It classifies the inbound request and, on an authorization success, runs
// strictly in order: code exchange, id_token verification, user identity
// extraction, session binding.  The session is never touched before a
// successful token-and-claims result, so a slow or failed exchange can't
// leave a session half-invalidated.
//
// On any failure at any step the session is cleared first and then a
// classified error is returned: callers can distinguish a provider
// authorization error (ErrAuthorizationFailed, carried by an
// *AuthorizationError), a malformed callback (ErrNotAuthorizationResponse),
// a rejected exchange (*TokenError), a transport failure
// (ErrTransportFailure), a missing id_token (ErrMissingIdToken), a
// verification failure (ErrIdTokenVerificationFailed) and a missing subject
// (ErrMissingSubject) with errors.Is/errors.As.  A half-authenticated
// session is never visible to subsequent requests.
func (p *Provider) HandleCallback(ctx context.Context, req *http.Request, store SessionStore) (*AuthContext, error) {
	const op = "Provider.HandleCallback"
	if req == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	switch resp := ClassifyResponse(req).(type) {
	case *AuthorizationError:
		p.logger.Error("authorization response returned an error; clearing the session",
			"error", resp.ErrorCode, "description", resp.Description)
		ClearSession(store)
		return nil, fmt.Errorf("%s: %w", op, resp)

	case *NotAuthorizationResponse:
		p.logger.Error("inbound request is not an authorization response; clearing the session")
		ClearSession(store)
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthorizationResponse)

	case *AuthorizationSuccess:
		authCtx, err := p.authenticate(ctx, resp.Code)
		if err != nil {
			p.logger.Error("authentication failed; clearing the session", "err", err)
			ClearSession(store)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := BindSession(store, authCtx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.logger.Info("authentication successful", "sub", authCtx.User.Subject)
		return authCtx, nil
	}
	// ClassifyResponse is total over its three variants
	return nil, fmt.Errorf("%s: %w", op, ErrNotAuthorizationResponse)
}

// authenticate turns an authorization code into a fully verified
// AuthContext.  No session is touched here.
func (p *Provider) authenticate(ctx context.Context, authorizationCode string) (*AuthContext, error) {
	t, err := p.Exchange(ctx, authorizationCode)
	if err != nil {
		return nil, err
	}
	claims, err := p.VerifyIDToken(ctx, t.IDToken())
	if err != nil {
		return nil, err
	}
	user, err := UserFromClaims(claims, p.config.ReservedClaims)
	if err != nil {
		return nil, err
	}
	return &AuthContext{
		User:          user,
		AccessToken:   t.AccessToken(),
		RefreshToken:  t.RefreshToken(),
		IdToken:       t.IDToken(),
		IDTokenClaims: claims,
	}, nil
}

// LogoutURL generates the URL that ends the provider-side session via a
// front-channel logout redirect.  It encodes the logout endpoint, the raw
// id_token as id_token_hint, the post logout redirect URL (falling back to
// the callback URL when none is configured) and an optional state
// parameter.  No network call is made and no session is touched: see
// Provider.Logout.
func (p *Provider) LogoutURL(authCtx *AuthContext, state string) (string, error) {
	const op = "Provider.LogoutURL"
	if p.config.Endpoints.Logout == "" {
		return "", fmt.Errorf("%s: logout endpoint is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(p.config.Endpoints.Logout)
	if err != nil {
		return "", fmt.Errorf("%s: logout endpoint is invalid: %w", op, ErrInvalidParameter)
	}
	redirect := p.config.PostLogoutRedirectURL
	if redirect == "" {
		redirect = p.config.CallbackURL
	}
	q := u.Query()
	if authCtx != nil && authCtx.IdToken != "" {
		q.Set("id_token_hint", string(authCtx.IdToken))
	}
	q.Set("post_logout_redirect_uri", redirect)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Logout builds the front-channel logout redirect URL and clears the current
// session.  It is idempotent: a second call, or a call when no session
// exists, still succeeds and produces the same shape of logout URL.
func (p *Provider) Logout(authCtx *AuthContext, store SessionStore, state string) (string, error) {
	const op = "Provider.Logout"
	u, err := p.LogoutURL(authCtx, state)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	ClearSession(store)
	p.logger.Info("cleared session for logout")
	return u, nil
}

// oauth2Config composes the oauth2 client config for the relying party.  The
// token endpoint always uses HTTP Basic client authentication
// (client_secret_basic).
func (p *Provider) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: string(p.config.ClientSecret),
		RedirectURL:  p.config.CallbackURL,
		Scopes:       p.config.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.config.Endpoints.Authorization,
			TokenURL:  p.config.Endpoints.Token,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// providerOptions is the set of available options
type providerOptions struct {
	withLogger hclog.Logger
}

// providerDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func providerDefaults() providerOptions {
	return providerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

// getProviderOpts gets the provider defaults and applies the opt overrides
// passed in.
func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional hclog.Logger the provider emits structured
// flow events to.  Secrets (client secret, tokens) are redacted types and are
// never logged.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			if l != nil {
				o.withLogger = l
			}
		}
	}
}
