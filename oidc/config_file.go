package oidc

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config's construction inputs for YAML decoding.
type fileConfig struct {
	Issuer                string   `yaml:"issuer"`
	AuthorizationEndpoint string   `yaml:"authorization_endpoint"`
	TokenEndpoint         string   `yaml:"token_endpoint"`
	LogoutEndpoint        string   `yaml:"logout_endpoint"`
	JWKSEndpoint          string   `yaml:"jwks_endpoint"`
	ClientID              string   `yaml:"client_id"`
	ClientSecret          string   `yaml:"client_secret"`
	CallbackURL           string   `yaml:"callback_url"`
	PostLogoutRedirectURL string   `yaml:"post_logout_redirect_url"`
	Scopes                []string `yaml:"scopes"`
	SupportedSigningAlgs  []string `yaml:"supported_signing_algs"`
	Audiences             []string `yaml:"audiences"`
	ProviderCA            string   `yaml:"provider_ca"`
	ReservedClaims        []string `yaml:"reserved_claims"`
	ExchangeTimeout       string   `yaml:"exchange_timeout"`
}

// LoadConfig reads a relying party configuration from a YAML file.  Unknown
// fields are rejected.  The result goes through NewConfig, so validation
// still happens exactly once, at construction.
func LoadConfig(path string) (*Config, error) {
	const op = "oidc.LoadConfig"
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read config file: %w", op, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("%s: unable to decode config file %s: %w", op, path, err)
	}

	var opt []Option
	if len(fc.Scopes) > 0 {
		opt = append(opt, WithScopes(fc.Scopes...))
	}
	if len(fc.SupportedSigningAlgs) > 0 {
		algs := make([]Alg, 0, len(fc.SupportedSigningAlgs))
		for _, a := range fc.SupportedSigningAlgs {
			algs = append(algs, Alg(a))
		}
		opt = append(opt, WithSupportedSigningAlgs(algs...))
	}
	if len(fc.Audiences) > 0 {
		opt = append(opt, WithAudiences(fc.Audiences...))
	}
	if fc.ProviderCA != "" {
		opt = append(opt, WithProviderCA(fc.ProviderCA))
	}
	if fc.PostLogoutRedirectURL != "" {
		opt = append(opt, WithPostLogoutRedirectURL(fc.PostLogoutRedirectURL))
	}
	if len(fc.ReservedClaims) > 0 {
		opt = append(opt, WithReservedClaims(fc.ReservedClaims...))
	}
	if fc.ExchangeTimeout != "" {
		d, err := time.ParseDuration(fc.ExchangeTimeout)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid exchange_timeout %q: %w", op, fc.ExchangeTimeout, ErrInvalidParameter)
		}
		opt = append(opt, WithExchangeTimeout(d))
	}

	endpoints := Endpoints{
		Authorization: fc.AuthorizationEndpoint,
		Token:         fc.TokenEndpoint,
		Logout:        fc.LogoutEndpoint,
		JWKS:          fc.JWKSEndpoint,
	}
	c, err := NewConfig(fc.Issuer, fc.ClientID, ClientSecret(fc.ClientSecret), endpoints, fc.CallbackURL, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
