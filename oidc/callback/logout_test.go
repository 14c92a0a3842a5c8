package callback

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oidcagent/oidc"
)

func TestLogout(t *testing.T) {
	t.Parallel()
	eFnFail := func(t *testing.T) ErrorResponseFunc {
		return func(state string, e error, w http.ResponseWriter, req *http.Request) {
			t.Errorf("unexpected logout error: %s", e)
		}
	}

	t.Run("redirects-and-clears-the-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp, p := testProvider(t)
		store := oidc.NewTestSessionStore(t)

		// establish an authenticated session the same way the callback does
		authCodeReq := httptest.NewRequest("GET", "/callback?code=test-auth-code", nil)
		authCtx, err := p.HandleCallback(authCodeReq.Context(), authCodeReq, store)
		require.NoError(err)
		require.True(oidc.IsSessionActive(store))

		h, err := Logout(p, testStoreFn(store), nil, eFnFail(t))
		require.NoError(err)

		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest("GET", "/logout", nil))
		require.Equal(http.StatusFound, rr.Code)

		u, err := url.Parse(rr.Header().Get("Location"))
		require.NoError(err)
		assert.Equal(tp.Addr()+"/logout", u.Scheme+"://"+u.Host+u.Path)

		q := u.Query()
		assert.Equal(string(authCtx.IdToken), q.Get("id_token_hint"))
		assert.Equal("https://example.com/callback", q.Get("post_logout_redirect_uri"))
		assert.False(oidc.IsSessionActive(store))
		assert.Nil(store.Active())
	})
	t.Run("no-active-session", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, p := testProvider(t)
		store := oidc.NewTestSessionStore(t)

		h, err := Logout(p, testStoreFn(store), nil, eFnFail(t))
		require.NoError(err)

		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest("GET", "/logout", nil))
		require.Equal(http.StatusFound, rr.Code)

		u, err := url.Parse(rr.Header().Get("Location"))
		require.NoError(err)
		assert.False(u.Query().Has("id_token_hint"))
	})
	t.Run("with-state", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, p := testProvider(t)
		store := oidc.NewTestSessionStore(t)

		stateFn := func(w http.ResponseWriter, req *http.Request) (string, error) {
			return "st_logout", nil
		}
		h, err := Logout(p, testStoreFn(store), stateFn, eFnFail(t))
		require.NoError(err)

		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest("GET", "/logout", nil))
		require.Equal(http.StatusFound, rr.Code)

		u, err := url.Parse(rr.Header().Get("Location"))
		require.NoError(err)
		assert.Equal("st_logout", u.Query().Get("state"))
	})
	t.Run("missing-logout-endpoint", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		tp := oidc.StartTestProvider(t)
		tp.SetClientCreds("test-client-id", "test-client-secret")
		endpoints := tp.Endpoints()
		endpoints.Logout = ""
		c, err := oidc.NewConfig(tp.Addr(), "test-client-id", "test-client-secret", endpoints, "https://example.com/callback",
			oidc.WithProviderCA(tp.CACert()), oidc.WithSupportedSigningAlgs(oidc.ES256))
		require.NoError(err)
		p, err := oidc.NewProvider(c)
		require.NoError(err)
		t.Cleanup(p.Done)

		var gotErr error
		eFn := func(state string, e error, w http.ResponseWriter, req *http.Request) {
			gotErr = e
			w.WriteHeader(http.StatusInternalServerError)
		}
		h, err := Logout(p, testStoreFn(oidc.NewTestSessionStore(t)), nil, eFn)
		require.NoError(err)

		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest("GET", "/logout", nil))
		require.Equal(http.StatusInternalServerError, rr.Code)
		assert.Truef(errors.Is(gotErr, oidc.ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", oidc.ErrInvalidParameter, gotErr)
	})
	t.Run("missing-args", func(t *testing.T) {
		assert := assert.New(t)
		_, p := testProvider(t)
		eFn := func(string, error, http.ResponseWriter, *http.Request) {}
		storeFn := testStoreFn(oidc.NewTestSessionStore(t))

		_, err := Logout(nil, storeFn, nil, eFn)
		assert.Truef(errors.Is(err, oidc.ErrNilParameter), "wanted \"%s\" but got \"%s\"", oidc.ErrNilParameter, err)
		_, err = Logout(p, nil, nil, eFn)
		assert.Truef(errors.Is(err, oidc.ErrNilParameter), "wanted \"%s\" but got \"%s\"", oidc.ErrNilParameter, err)
		_, err = Logout(p, storeFn, nil, nil)
		assert.Truef(errors.Is(err, oidc.ErrNilParameter), "wanted \"%s\" but got \"%s\"", oidc.ErrNilParameter, err)
	})
}
