package auth

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/ai-probe/common/logger"
)

// exchangedTokenLifetime is the historical lifetime of an STS-issued token
// when the exp claim cannot be read from the returned JWT.
const exchangedTokenLifetime = 10 * time.Minute

// tokenExchangeProvider trades a long-lived subscription key for a short-lived
// bearer token at the service's STS endpoint. The short lifetime makes the
// cache check cheap but worthwhile.
type tokenExchangeProvider struct {
	client *http.Client
}

func (tokenExchangeProvider) Method() Method { return MethodTokenExchange }

func (p tokenExchangeProvider) Acquire(ctx context.Context, opts Options) (Credential, error) {
	if opts.APIKey == "" {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.New("token exchange requires an API key"))
	}
	if opts.ExchangeEndpoint == "" {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.New("no exchange endpoint configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.ExchangeEndpoint, nil)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.Wrap(err, "build exchange request"))
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", opts.APIKey)
	req.Header.Set("Content-Length", "0")

	logger.Logger.Debug("exchanging API key for short-lived token",
		zap.String("endpoint", opts.ExchangeEndpoint),
		zap.String("api_key", logger.MaskSecret(opts.APIKey)),
	)

	resp, err := p.client.Do(req)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.Wrap(err, "exchange endpoint unreachable"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.Errorf("exchange endpoint returned %d: %s", resp.StatusCode, drainBody(resp)))
	}

	// The STS answers with the raw JWT as the response body.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.Wrap(err, "read exchange response"))
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return Credential{}, newError(CredentialsRejected, MethodTokenExchange,
			errors.New("exchange endpoint returned an empty token"))
	}

	cred := Credential{
		Kind:  KindBearerToken,
		Value: token,
		Scope: opts.Scope,
	}
	if exp, ok := jwtExpiry(token); ok {
		cred.ExpiresAt = exp
	} else {
		cred.ExpiresAt = time.Now().Add(exchangedTokenLifetime)
	}
	return cred, nil
}
