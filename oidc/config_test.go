package oidc

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoints() Endpoints {
	return Endpoints{
		Authorization: "https://your-issuer.com/authorize",
		Token:         "https://your-issuer.com/token",
		Logout:        "https://your-issuer.com/logout",
		JWKS:          "https://your-issuer.com/jwks",
	}
}

func TestClientSecret_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		const want = RedactedClientSecret
		secret := ClientSecret("bob's phone number")
		assert.Equalf(want, secret.String(), "ClientSecret.String() = %v, want %v", secret.String(), want)
	})
}

func TestClientSecret_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`"%s"`, RedactedClientSecret)
		secret := ClientSecret("bob's phone number")
		got, err := secret.MarshalJSON()
		require.NoError(err)
		assert.Equalf([]byte(want), got, "ClientSecret.MarshalJSON() = %s, want %s", got, want)
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCaPem := TestGenerateCA(t, []string{"localhost"})
	testNow := func() time.Time {
		return time.Now().Add(-1 * time.Minute)
	}

	type args struct {
		issuer       string
		clientID     string
		clientSecret ClientSecret
		endpoints    Endpoints
		callbackURL  string
		opt          []Option
	}
	tests := []struct {
		name      string
		args      args
		want      *Config
		wantErr   bool
		wantIsErr error
	}{
		{
			name: "valid-with-all-valid-opts",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
				opt: []Option{
					WithScopes("openid", "email", "profile"),
					WithSupportedSigningAlgs(RS256, ES256),
					WithAudiences("YOUR_AUD1", "YOUR_AUD2"),
					WithProviderCA(testCaPem),
					WithPostLogoutRedirectURL("https://your-app.com/loggedout"),
					WithReservedClaims("iss", "sub", "aud"),
					WithExchangeTimeout(5 * time.Second),
					WithNow(testNow),
				},
			},
			want: &Config{
				Issuer:                "https://your-issuer.com/",
				ClientID:              "YOUR_CLIENT_ID",
				ClientSecret:          "YOUR_CLIENT_SECRET",
				Endpoints:             testEndpoints(),
				CallbackURL:           "https://your-app.com/callback",
				Scopes:                []string{"openid", "email", "profile"},
				SupportedSigningAlgs:  []Alg{RS256, ES256},
				Audiences:             []string{"YOUR_AUD1", "YOUR_AUD2"},
				ProviderCA:            testCaPem,
				PostLogoutRedirectURL: "https://your-app.com/loggedout",
				ReservedClaims:        []string{"iss", "sub", "aud"},
				ExchangeTimeout:       5 * time.Second,
				NowFunc:               testNow,
			},
		},
		{
			name: "valid-with-defaults",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
			},
			want: &Config{
				Issuer:          "https://your-issuer.com/",
				ClientID:        "YOUR_CLIENT_ID",
				ClientSecret:    "YOUR_CLIENT_SECRET",
				Endpoints:            testEndpoints(),
				CallbackURL:          "https://your-app.com/callback",
				Scopes:               []string{"openid"},
				SupportedSigningAlgs: []Alg{RS256},
				ReservedClaims:       DefaultReservedClaims(),
				ExchangeTimeout:      DefaultExchangeTimeout,
			},
		},
		{
			name: "scopes-without-openid",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
				opt:          []Option{WithScopes("email", "profile")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidScope,
		},
		{
			name: "unsupported-signing-alg",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
				opt:          []Option{WithSupportedSigningAlgs("HS256")},
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "empty-client-id",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
			},
			wantErr:   true,
			wantIsErr: ErrMissingClientID,
		},
		{
			name: "empty-client-secret",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "empty-callback-url",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "",
			},
			wantErr:   true,
			wantIsErr: ErrMissingCallbackURL,
		},
		{
			name: "empty-issuer",
			args: args{
				issuer:       "",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "issuer-bad-scheme",
			args: args{
				issuer:       "ldap://your-issuer.com",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints:    testEndpoints(),
				callbackURL:  "https://your-app.com/callback",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidIssuer,
		},
		{
			name: "missing-token-endpoint",
			args: args{
				issuer:       "https://your-issuer.com/",
				clientID:     "YOUR_CLIENT_ID",
				clientSecret: "YOUR_CLIENT_SECRET",
				endpoints: Endpoints{
					Authorization: "https://your-issuer.com/authorize",
					JWKS:          "https://your-issuer.com/jwks",
				},
				callbackURL: "https://your-app.com/callback",
			},
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.args.issuer, tt.args.clientID, tt.args.clientSecret, tt.args.endpoints, tt.args.callbackURL, tt.args.opt...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			if tt.want.NowFunc != nil {
				assert.WithinDuration(tt.want.NowFunc(), got.NowFunc(), 1*time.Second)
				tt.want.NowFunc = nil
				got.NowFunc = nil
			}
			assert.Equal(tt.want, got)
		})
	}
	t.Run("reports-every-failure", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := NewConfig("", "", "", Endpoints{}, "", WithScopes("email"))
		require.Error(err)
		for _, want := range []error{
			ErrInvalidScope,
			ErrMissingClientID,
			ErrMissingCallbackURL,
			ErrInvalidParameter,
		} {
			assert.Truef(errors.Is(err, want), "wanted \"%s\" within \"%s\"", want, err)
		}
	})
	t.Run("duplicate-scopes-are-removed", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewConfig(
			"https://your-issuer.com/", "YOUR_CLIENT_ID", "YOUR_CLIENT_SECRET",
			testEndpoints(), "https://your-app.com/callback",
			WithScopes("openid", "email", "openid", "email"),
		)
		require.NoError(err)
		assert.Equal([]string{"openid", "email"}, c.Scopes)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	t.Run("nil-config", func(t *testing.T) {
		assert := assert.New(t)
		var c *Config
		err := c.Validate()
		assert.Truef(errors.Is(err, ErrNilParameter), "wanted \"%s\" but got \"%s\"", ErrNilParameter, err)
	})
}

func TestConfig_Now(t *testing.T) {
	t.Parallel()
	t.Run("default-now", func(t *testing.T) {
		assert := assert.New(t)
		c := &Config{}
		assert.WithinDuration(time.Now(), c.Now(), 1*time.Second)
	})
	t.Run("override-now", func(t *testing.T) {
		assert := assert.New(t)
		anHourAgo := time.Now().Add(-1 * time.Hour)
		c := &Config{NowFunc: func() time.Time { return anHourAgo }}
		assert.Equal(anHourAgo, c.Now())
	})
}

func TestConfig_HttpClient(t *testing.T) {
	t.Parallel()
	testCaPem := TestGenerateCA(t, []string{"localhost"})
	t.Run("valid-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := &Config{ProviderCA: testCaPem}
		client, err := c.HttpClient()
		require.NoError(err)
		assert.NotNil(client)
	})
	t.Run("invalid-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := &Config{ProviderCA: "not a pem cert"}
		_, err := c.HttpClient()
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidCACert), "wanted \"%s\" but got \"%s\"", ErrInvalidCACert, err)
	})
}
