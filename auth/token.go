package auth

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
)

// Bearer tokens shorter than this are certainly malformed; real AAD JWTs run
// to hundreds of characters.
const minManualTokenLength = 20

// manualTokenProvider wraps a pre-obtained bearer token. When the token parses
// as a JWT its exp claim becomes the credential expiry, so a stale token is
// caught before it ever hits the wire.
type manualTokenProvider struct{}

func (manualTokenProvider) Method() Method { return MethodToken }

func (manualTokenProvider) Acquire(_ context.Context, opts Options) (Credential, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return Credential{}, newError(CredentialsRejected, MethodToken,
			errors.New("token cannot be empty"))
	}
	if len(token) < minManualTokenLength {
		return Credential{}, newError(CredentialsRejected, MethodToken,
			errors.New("token appears to be too short"))
	}

	cred := Credential{
		Kind:  KindBearerToken,
		Value: token,
		Scope: opts.Scope,
	}
	if exp, ok := jwtExpiry(token); ok {
		cred.ExpiresAt = exp
	}
	return cred, nil
}
