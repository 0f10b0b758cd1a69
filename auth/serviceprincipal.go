package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/ai-probe/common/logger"
)

// servicePrincipalProvider performs the OAuth2 client-credentials exchange
// against the tenant's token endpoint.
type servicePrincipalProvider struct {
	client *http.Client
}

func (servicePrincipalProvider) Method() Method { return MethodServicePrincipal }

func (p servicePrincipalProvider) Acquire(ctx context.Context, opts Options) (Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", opts.ClientID)
	form.Set("client_secret", opts.ClientSecret)
	form.Set("scope", opts.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.tokenURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodServicePrincipal,
			errors.Wrap(err, "build token request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logger.Logger.Debug("requesting client-credentials token",
		zap.String("tenant", opts.TenantID),
		zap.String("client_id", opts.ClientID),
		zap.String("scope", opts.Scope),
	)

	resp, err := p.client.Do(req)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodServicePrincipal,
			errors.Wrap(err, "token endpoint unreachable"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Credential{}, newError(CredentialsRejected, MethodServicePrincipal,
			errors.Errorf("token endpoint returned %d: %s", resp.StatusCode, drainBody(resp)))
	}

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodServicePrincipal, err)
	}
	if tr.AccessToken == "" {
		return Credential{}, newError(CredentialsRejected, MethodServicePrincipal,
			errors.Errorf("token response missing access_token: %s %s", tr.Error, tr.ErrorDescription))
	}

	return bearerFromToken(tr, opts.Scope, time.Now()), nil
}
