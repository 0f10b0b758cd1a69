package auth

import (
	"context"

	"github.com/Laisky/errors/v2"
)

// apiKeyProvider wraps a static subscription key. No network call, no expiry.
type apiKeyProvider struct{}

func (apiKeyProvider) Method() Method { return MethodAPIKey }

func (apiKeyProvider) Acquire(_ context.Context, opts Options) (Credential, error) {
	if opts.APIKey == "" {
		return Credential{}, newError(CredentialsRejected, MethodAPIKey,
			errors.New("no API key configured"))
	}
	return Credential{
		Kind:  KindAPIKeyHeader,
		Value: opts.APIKey,
		Scope: opts.Scope,
	}, nil
}
