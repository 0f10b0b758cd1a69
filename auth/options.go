package auth

import "strings"

// Options carries the resolved configuration a provider needs. Endpoints are
// plain URLs so tests can point providers at local servers.
type Options struct {
	// LoginEndpoint is the AAD authority base, e.g. https://login.microsoftonline.com.
	LoginEndpoint string
	// Scope is the token audience, e.g. https://cognitiveservices.azure.com/.default.
	Scope string

	TenantID     string
	ClientID     string
	ClientSecret string

	// APIKey is the subscription key for api_key and token_exchange.
	APIKey string
	// Token is a manually supplied bearer token.
	Token string

	// ExchangeEndpoint is the STS issueToken URL for token_exchange.
	ExchangeEndpoint string
	// IMDSEndpoint is the instance metadata base; defaults to the well-known
	// link-local address when empty.
	IMDSEndpoint string
}

// tokenURL builds the v2.0 token endpoint for the tenant.
func (o Options) tokenURL() string {
	return strings.TrimSuffix(o.LoginEndpoint, "/") + "/" + o.TenantID + "/oauth2/v2.0/token"
}

// deviceCodeURL builds the v2.0 device authorization endpoint for the tenant.
func (o Options) deviceCodeURL() string {
	return strings.TrimSuffix(o.LoginEndpoint, "/") + "/" + o.TenantID + "/oauth2/v2.0/devicecode"
}

// resource strips the OAuth2 ".default" suffix; IMDS expects the bare resource URI.
func (o Options) resource() string {
	return strings.TrimSuffix(o.Scope, "/.default")
}
