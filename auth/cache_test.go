package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()

	cred := Credential{Kind: KindBearerToken, Value: "tok", Scope: "scope-a"}
	c.Set(MethodServicePrincipal, "scope-a", cred)

	got, hit := c.Get(MethodServicePrincipal, "scope-a")
	require.True(t, hit)
	require.Equal(t, cred, got)

	// Different scope is a different entry.
	_, hit = c.Get(MethodServicePrincipal, "scope-b")
	require.False(t, hit)

	// Different method is a different entry.
	_, hit = c.Get(MethodManagedIdentity, "scope-a")
	require.False(t, hit)
}

func TestCacheNeverReturnsExpired(t *testing.T) {
	c := NewCache()

	c.Set(MethodServicePrincipal, "s", Credential{
		Kind:      KindBearerToken,
		Value:     "short-lived",
		ExpiresAt: time.Now().Add(30 * time.Millisecond),
	})

	_, hit := c.Get(MethodServicePrincipal, "s")
	require.True(t, hit)

	time.Sleep(50 * time.Millisecond)
	_, hit = c.Get(MethodServicePrincipal, "s")
	require.False(t, hit)
}

func TestCacheRejectsAlreadyExpired(t *testing.T) {
	c := NewCache()

	c.Set(MethodServicePrincipal, "s", Credential{
		Kind:      KindBearerToken,
		Value:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	_, hit := c.Get(MethodServicePrincipal, "s")
	require.False(t, hit)
}
