package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// tokenServer fakes the AAD client-credentials token endpoint.
func tokenServer(t *testing.T, calls *atomic.Int64, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func spSpec(loginEndpoint string) Spec {
	return Spec{
		Method: MethodServicePrincipal,
		Options: Options{
			LoginEndpoint: loginEndpoint,
			Scope:         "https://cognitiveservices.azure.com/.default",
			TenantID:      "tenant",
			ClientID:      "client",
			ClientSecret:  "secret",
		},
	}
}

func TestResolveCachesNetworkBackedCredential(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, http.StatusOK,
		`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`)

	m := NewManager(NewCache(), srv.Client(), nil)
	spec := spSpec(srv.URL)

	first, err := m.Resolve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "tok-1", first.Value)
	require.Equal(t, KindBearerToken, first.Kind)

	second, err := m.Resolve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// The second resolution must be served from the cache.
	require.EqualValues(t, 1, calls.Load())
}

func TestResolveReacquiresAfterExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, http.StatusOK,
		`{"access_token":"tok-fresh","token_type":"Bearer","expires_in":3600}`)

	cache := NewCache()
	m := NewManager(cache, srv.Client(), nil)
	spec := spSpec(srv.URL)

	// Seed an entry that expires almost immediately.
	cache.Set(MethodServicePrincipal, spec.Options.Scope, Credential{
		Kind:      KindBearerToken,
		Value:     "tok-stale",
		ExpiresAt: time.Now().Add(20 * time.Millisecond),
	})
	time.Sleep(40 * time.Millisecond)

	cred, err := m.Resolve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, "tok-fresh", cred.Value)
	require.EqualValues(t, 1, calls.Load())
}

func TestResolveFallbackRecoversPrimaryFailure(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, http.StatusUnauthorized,
		`{"error":"invalid_client","error_description":"bad secret"}`)

	m := NewManager(NewCache(), srv.Client(), nil)
	spec := spSpec(srv.URL)
	spec.Fallback = MethodAPIKey
	spec.Options.APIKey = "sk-fallback"

	cred, err := m.Resolve(context.Background(), spec)
	require.NoError(t, err)
	require.Equal(t, KindAPIKeyHeader, cred.Kind)
	require.Equal(t, "sk-fallback", cred.Value)
}

func TestResolveFallbackCompositeError(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, http.StatusUnauthorized, `{"error":"invalid_client"}`)

	m := NewManager(NewCache(), srv.Client(), nil)
	spec := spSpec(srv.URL)
	spec.Fallback = MethodAPIKey // no APIKey configured, so this fails too

	_, err := m.Resolve(context.Background(), spec)
	require.Error(t, err)

	var fe *FallbackError
	require.ErrorAs(t, err, &fe)
	require.Error(t, fe.PrimaryErr)
	require.Error(t, fe.FallbackErr)

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, MethodServicePrincipal, authErr.Method)
	require.Equal(t, CredentialsRejected, authErr.Kind)
}

func TestResolveRejectsUnexpandedBoth(t *testing.T) {
	m := NewManager(NewCache(), nil, nil)
	_, err := m.Resolve(context.Background(), Spec{Method: MethodBoth})
	require.Error(t, err)
}
