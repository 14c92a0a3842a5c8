package oidc

import (
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v3/jwt"
)

// IdToken is an oidc id_token in its compact serialized form
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token
func (t IdToken) String() string {
	return RedactedIdToken
}

// MarshalJSON will redact the token
func (t IdToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIdToken)
}

// Claims retrieves the IdToken claims.  It's a syntactic parse only: see
// Provider.VerifyIDToken for signature, issuer, audience and expiry
// verification.
func (t IdToken) Claims(claims interface{}) error {
	const op = "IdToken.Claims"
	if len(t) == 0 {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	return UnmarshalClaims(string(t), claims)
}

// UnmarshalClaims parses a compact serialized jwt (header.payload.signature)
// and unmarshals its payload into claims without verifying the signature.
func UnmarshalClaims(rawToken string, claims interface{}) error {
	const op = "oidc.UnmarshalClaims"
	parsed, err := jwt.ParseSigned(rawToken)
	if err != nil {
		return fmt.Errorf("%s: unable to parse jwt: %w", op, ErrTokenParseFailed)
	}
	if err := parsed.UnsafeClaimsWithoutVerification(claims); err != nil {
		return fmt.Errorf("%s: unable to unmarshal jwt claims: %w", op, ErrTokenParseFailed)
	}
	return nil
}
