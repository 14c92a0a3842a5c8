package oidc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrNilParameter              = errors.New("nil parameter")
	ErrInvalidCACert             = errors.New("invalid CA certificate")
	ErrInvalidIssuer             = errors.New("invalid issuer")
	ErrInvalidScope              = errors.New("invalid scope")
	ErrMissingClientID           = errors.New("client id is missing")
	ErrMissingCallbackURL        = errors.New("callback URL is missing")
	ErrIDGeneratorFailed         = errors.New("id generation failed")
	ErrNotAuthorizationResponse  = errors.New("not an authorization response")
	ErrAuthorizationFailed       = errors.New("authorization failed")
	ErrTokenExchangeFailed       = errors.New("token exchange failed")
	ErrTransportFailure          = errors.New("token endpoint transport failure")
	ErrMissingIdToken            = errors.New("id_token is missing")
	ErrIdTokenVerificationFailed = errors.New("id_token verification failed")
	ErrTokenParseFailed          = errors.New("unable to parse token")
	ErrMissingSubject            = errors.New("subject claim is missing")
	ErrInvalidAudience           = errors.New("invalid audience")
)

// TokenError represents an error response from the provider's token endpoint
// (the provider rejected the authorization code exchange).  It is never used
// for transport failures, which wrap ErrTransportFailure instead.
// See: https://www.rfc-editor.org/rfc/rfc6749#section-5.2
type TokenError struct {
	// Code is the oauth2 error code (for example "invalid_grant")
	Code string

	// Description is the optional human readable error_description
	Description string
}

// Error satisfies the error interface
func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token endpoint returned %q: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("token endpoint returned %q", e.Code)
}

// Unwrap allows callers to match the error with
// errors.Is(err, ErrTokenExchangeFailed)
func (e *TokenError) Unwrap() error { return ErrTokenExchangeFailed }
