package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testJWT assembles an unsigned JWT carrying only an exp claim.
func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := enc(map[string]string{"alg": "none", "typ": "JWT"})
	payload := enc(map[string]int64{"exp": exp.Unix()})
	return header + "." + payload + "."
}

func TestManualTokenAcceptsJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testJWT(t, exp)

	cred, err := manualTokenProvider{}.Acquire(context.Background(),
		Options{Token: token, Scope: "s"})
	require.NoError(t, err)
	require.Equal(t, KindBearerToken, cred.Kind)
	require.Equal(t, token, cred.Value)
	require.True(t, cred.ExpiresAt.Equal(exp))
}

func TestManualTokenRejectsTooShort(t *testing.T) {
	for _, token := range []string{"", "   ", "short"} {
		_, err := manualTokenProvider{}.Acquire(context.Background(), Options{Token: token})
		authErr, ok := AsAuthError(err)
		require.True(t, ok, "token %q", token)
		require.Equal(t, CredentialsRejected, authErr.Kind)
	}
}

func TestManualTokenWithoutClaimsNeverExpires(t *testing.T) {
	opaque := strings.Repeat("x", 40)
	cred, err := manualTokenProvider{}.Acquire(context.Background(), Options{Token: opaque})
	require.NoError(t, err)
	require.True(t, cred.ExpiresAt.IsZero())
}

func TestAPIKeyProvider(t *testing.T) {
	cred, err := apiKeyProvider{}.Acquire(context.Background(), Options{APIKey: "sk-123"})
	require.NoError(t, err)
	require.Equal(t, KindAPIKeyHeader, cred.Kind)
	require.Equal(t, "sk-123", cred.Value)
	require.True(t, cred.ExpiresAt.IsZero())

	_, err = apiKeyProvider{}.Acquire(context.Background(), Options{})
	authErr, ok := AsAuthError(err)
	require.True(t, ok)
	require.Equal(t, CredentialsRejected, authErr.Kind)
}

func TestJWTExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, ok := jwtExpiry(testJWT(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp), fmt.Sprintf("got %v want %v", got, exp))

	_, ok = jwtExpiry("not-a-jwt")
	require.False(t, ok)
}
