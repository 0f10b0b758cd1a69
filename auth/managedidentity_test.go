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

func TestManagedIdentityAcquire(t *testing.T) {
	expiresOn := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "true", r.Header.Get("Metadata"))
		require.Equal(t, imdsAPIVersion, r.URL.Query().Get("api-version"))
		require.Equal(t, "https://cognitiveservices.azure.com", r.URL.Query().Get("resource"))
		require.Empty(t, r.URL.Query().Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"mi-token","expires_on":"%d"}`, expiresOn)
	}))
	defer srv.Close()

	p := managedIdentityProvider{client: srv.Client()}
	cred, err := p.Acquire(context.Background(), Options{
		IMDSEndpoint: srv.URL,
		Scope:        "https://cognitiveservices.azure.com/.default",
	})
	require.NoError(t, err)
	require.Equal(t, "mi-token", cred.Value)
	require.Equal(t, time.Unix(expiresOn, 0), cred.ExpiresAt)
}

func TestManagedIdentityUserAssignedPassesClientID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "my-identity", r.URL.Query().Get("client_id"))
		fmt.Fprint(w, `{"access_token":"mi-token","expires_in":3600}`)
	}))
	defer srv.Close()

	p := managedIdentityProvider{client: srv.Client()}
	_, err := p.Acquire(context.Background(), Options{
		IMDSEndpoint: srv.URL,
		ClientID:     "my-identity",
		Scope:        "https://cognitiveservices.azure.com/.default",
	})
	require.NoError(t, err)
}

func TestManagedIdentityUnreachableIsEnvironmentUnsupported(t *testing.T) {
	p := managedIdentityProvider{client: &http.Client{Timeout: 50 * time.Millisecond}}
	_, err := p.Acquire(context.Background(), Options{
		// Reserved TEST-NET-1 address; nothing answers here.
		IMDSEndpoint: "http://192.0.2.1",
		Scope:        "https://cognitiveservices.azure.com/.default",
	})

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, EnvironmentUnsupported, authErr.Kind)
}

func TestManagedIdentityRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := managedIdentityProvider{client: srv.Client()}
	_, err := p.Acquire(context.Background(), Options{IMDSEndpoint: srv.URL})

	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, CredentialsRejected, authErr.Kind)
}
