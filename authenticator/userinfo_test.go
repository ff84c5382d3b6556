package authenticator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(userInfoURL string) *OIDCProvider {
	provider, _ := NewOIDCProvider(Config{
		AuthURL:      "https://idp.example.com/authorize",
		TokenURL:     "https://idp.example.com/token",
		UserInfoURL:  userInfoURL,
		ClientID:     "client",
		ClientSecret: "secret",
	})
	return provider
}

func TestFetchProfileGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub": "123", "email": "user@acme.io"}`))
	}))
	defer srv.Close()

	provider := newTestProvider(srv.URL)

	profile, err := provider.FetchProfile(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "123", profile.String("sub"))
	assert.Equal(t, "user@acme.io", profile.String("email"))
}

func TestFetchProfilePostAllowList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"sub": "123"}`))
	}))
	defer srv.Close()

	// Endpoints in the compatibility table are called with POST
	postUserInfoEndpoints[srv.URL] = true
	defer delete(postUserInfoEndpoints, srv.URL)

	provider := newTestProvider(srv.URL)

	profile, err := provider.FetchProfile(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "123", profile.String("sub"))
}

func TestFetchProfileNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := newTestProvider(srv.URL)

	_, err := provider.FetchProfile(context.Background(), "expired-token")
	require.Error(t, err)

	var fetchErr *UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URL)
}

func TestFetchProfileTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	provider := newTestProvider(srv.URL)

	_, err := provider.FetchProfile(context.Background(), "access-token")

	var fetchErr *UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Error(t, fetchErr.Unwrap())
}
