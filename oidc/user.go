package oidc

import (
	"fmt"

	"oidcagent/oidc/internal/strutils"
)

// User represents the authenticated end user asserted by a verified
// id_token.
type User struct {
	// Subject is the id_token's "sub" claim: the stable, unique identifier
	// the provider assigned to the end user.  It is never empty.
	Subject string `json:"sub"`

	// Attributes contains every id_token claim that is not in the reserved
	// oidc metadata claim set (see DefaultReservedClaims)
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// UserFromClaims builds a User from an id_token claim set.  The subject claim
// is mandatory: its absence (or emptiness) is a hard failure, not a default.
// Claim names in reserved are excluded from the User's attributes.
func UserFromClaims(claims map[string]interface{}, reserved []string) (*User, error) {
	const op = "oidc.UserFromClaims"
	if claims == nil {
		return nil, fmt.Errorf("%s: claims are nil: %w", op, ErrNilParameter)
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%s: id_token has no subject claim: %w", op, ErrMissingSubject)
	}
	attributes := map[string]interface{}{}
	for name, value := range claims {
		if strutils.StrListContains(reserved, name) {
			continue
		}
		attributes[name] = value
	}
	return &User{
		Subject:    sub,
		Attributes: attributes,
	}, nil
}
