package oidc

import (
	"fmt"
	"net/http"
)

// AuthorizationResponse is the classification of an inbound callback request
// against the oauth2 authorization response grammar.  It is a sealed set of
// exactly three variants: *AuthorizationSuccess, *AuthorizationError and
// *NotAuthorizationResponse, so callers can switch exhaustively instead of
// probing parameters themselves.
// See: https://www.rfc-editor.org/rfc/rfc6749#section-4.1.2
type AuthorizationResponse interface {
	authorizationResponse()
}

// AuthorizationSuccess is an authorization response carrying a well formed
// authorization code.
type AuthorizationSuccess struct {
	// Code is the authorization code to be exchanged for tokens
	Code string

	// State is the opaque state parameter echoed back by the provider, which
	// may be empty
	State string
}

func (*AuthorizationSuccess) authorizationResponse() {}

// AuthorizationError is an authorization response where the provider
// signaled an error.  It satisfies the error interface and unwraps to
// ErrAuthorizationFailed.
type AuthorizationError struct {
	// ErrorCode is the oauth2 error code (for example "access_denied")
	ErrorCode string

	// Description is the optional human readable error_description
	Description string

	// URI is the optional error_uri with additional error information
	URI string

	// State is the opaque state parameter echoed back by the provider, which
	// may be empty
	State string
}

func (*AuthorizationError) authorizationResponse() {}

// Error satisfies the error interface
func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization endpoint returned %q: %s", e.ErrorCode, e.Description)
	}
	return fmt.Sprintf("authorization endpoint returned %q", e.ErrorCode)
}

// Unwrap allows callers to match the error with
// errors.Is(err, ErrAuthorizationFailed)
func (e *AuthorizationError) Unwrap() error { return ErrAuthorizationFailed }

// NotAuthorizationResponse covers inbound requests that match neither the
// success nor the error grammar: no code and no error parameter, or
// parameters that can't be parsed at all.  The flow treats it like a failure,
// but it is reported (and logged) distinctly from a provider error.
type NotAuthorizationResponse struct {
	// State is the opaque state parameter, when one could be read
	State string
}

func (*NotAuthorizationResponse) authorizationResponse() {}

// ClassifyResponse inspects an inbound callback request and returns exactly
// one of the three AuthorizationResponse variants.  Parameters are read from
// the query string or the body, and a provider error takes precedence when
// both an error and a code are present.
func ClassifyResponse(req *http.Request) AuthorizationResponse {
	if req == nil {
		return &NotAuthorizationResponse{}
	}
	if err := req.ParseForm(); err != nil {
		return &NotAuthorizationResponse{}
	}
	state := req.Form.Get("state")
	if errorCode := req.Form.Get("error"); errorCode != "" {
		return &AuthorizationError{
			ErrorCode:   errorCode,
			Description: req.Form.Get("error_description"),
			URI:         req.Form.Get("error_uri"),
			State:       state,
		}
	}
	if code := req.Form.Get("code"); code != "" {
		return &AuthorizationSuccess{
			Code:  code,
			State: state,
		}
	}
	return &NotAuthorizationResponse{State: state}
}
