package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenExchangeAcquire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "sub-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		fmt.Fprint(w, "opaque-sts-token")
	}))
	defer srv.Close()

	before := time.Now()
	p := tokenExchangeProvider{client: srv.Client()}
	cred, err := p.Acquire(context.Background(), Options{
		APIKey:           "sub-key",
		ExchangeEndpoint: srv.URL,
		Scope:            "s",
	})
	require.NoError(t, err)
	require.Equal(t, KindBearerToken, cred.Kind)
	require.Equal(t, "opaque-sts-token", cred.Value)

	// Opaque tokens get the fixed lifetime.
	require.WithinDuration(t, before.Add(exchangedTokenLifetime), cred.ExpiresAt, 5*time.Second)
}

func TestTokenExchangeUsesJWTExpiry(t *testing.T) {
	exp := time.Now().Add(9 * time.Minute).Truncate(time.Second)
	jwt := testJWT(t, exp)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, jwt)
	}))
	defer srv.Close()

	p := tokenExchangeProvider{client: srv.Client()}
	cred, err := p.Acquire(context.Background(), Options{APIKey: "k", ExchangeEndpoint: srv.URL})
	require.NoError(t, err)
	require.True(t, cred.ExpiresAt.Equal(exp))
}

func TestTokenExchangeRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := tokenExchangeProvider{client: srv.Client()}
	_, err := p.Acquire(context.Background(), Options{APIKey: "bad", ExchangeEndpoint: srv.URL})

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, CredentialsRejected, authErr.Kind)
}

func TestTokenExchangeRequiresKeyAndEndpoint(t *testing.T) {
	p := tokenExchangeProvider{client: http.DefaultClient}

	_, err := p.Acquire(context.Background(), Options{ExchangeEndpoint: "http://x"})
	require.Error(t, err)

	_, err = p.Acquire(context.Background(), Options{APIKey: "k"})
	require.Error(t, err)
}
