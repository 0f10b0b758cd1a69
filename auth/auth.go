// Package auth resolves one of several mutually exclusive authentication
// strategies into a usable credential. Each strategy is a stateless provider;
// the Manager layers caching and the two-method fallback policy on top.
package auth

import (
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

// Method identifies a credential acquisition strategy.
type Method string

const (
	MethodAPIKey           Method = "api_key"
	MethodToken            Method = "token"
	MethodServicePrincipal Method = "service_principal"
	MethodDeviceCode       Method = "device_code"
	MethodManagedIdentity  Method = "managed_identity"
	MethodTokenExchange    Method = "token_exchange"
	// MethodBoth tries a primary method and falls back to a second one.
	MethodBoth Method = "both"
)

// ParseMethod normalizes a configuration string into a Method.
func ParseMethod(raw string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(raw))) {
	case MethodAPIKey:
		return MethodAPIKey, nil
	case MethodToken:
		return MethodToken, nil
	case MethodServicePrincipal:
		return MethodServicePrincipal, nil
	case MethodDeviceCode:
		return MethodDeviceCode, nil
	case MethodManagedIdentity:
		return MethodManagedIdentity, nil
	case MethodTokenExchange:
		return MethodTokenExchange, nil
	case MethodBoth:
		return MethodBoth, nil
	default:
		return "", errors.Errorf("unknown auth method %q", raw)
	}
}

// networkBacked reports whether resolving the method requires a network call,
// which is what makes it worth caching.
func (m Method) networkBacked() bool {
	switch m {
	case MethodServicePrincipal, MethodDeviceCode, MethodManagedIdentity, MethodTokenExchange:
		return true
	default:
		return false
	}
}

// CredentialKind distinguishes how a credential is attached to a request.
type CredentialKind string

const (
	// KindAPIKeyHeader is sent in a service-specific subscription key header.
	KindAPIKeyHeader CredentialKind = "api_key_header"
	// KindBearerToken is sent as an Authorization: Bearer header.
	KindBearerToken CredentialKind = "bearer_token"
)

// Credential is a resolved, usable authentication artifact.
type Credential struct {
	Kind  CredentialKind
	Value string
	// ExpiresAt is zero for API keys, which never expire from the probe's
	// perspective.
	ExpiresAt time.Time
	// Scope is the audience/resource identifier, used as a cache key component.
	Scope string
}

// Valid reports whether the credential may be attached to an outgoing request.
// An expired bearer token is never valid.
func (c Credential) Valid(now time.Time) bool {
	if c.Value == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt)
}
