package auth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/songquanpeng/ai-probe/common/logger"
)

// defaultIMDSEndpoint is the link-local instance metadata service available
// only inside Azure compute.
const defaultIMDSEndpoint = "http://169.254.169.254"

const imdsAPIVersion = "2018-02-01"

// managedIdentityProvider queries the platform metadata endpoint for a token
// scoped to the target resource. A missing metadata endpoint means the probe
// is not running on managed compute at all, which is a different failure from
// the platform rejecting the identity.
type managedIdentityProvider struct {
	client *http.Client
}

func (managedIdentityProvider) Method() Method { return MethodManagedIdentity }

func (p managedIdentityProvider) Acquire(ctx context.Context, opts Options) (Credential, error) {
	base := opts.IMDSEndpoint
	if base == "" {
		base = defaultIMDSEndpoint
	}

	query := url.Values{}
	query.Set("api-version", imdsAPIVersion)
	query.Set("resource", opts.resource())
	if opts.ClientID != "" {
		// User-assigned identity; system-assigned needs no client_id.
		query.Set("client_id", opts.ClientID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		base+"/metadata/identity/oauth2/token?"+query.Encode(), nil)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodManagedIdentity,
			errors.Wrap(err, "build IMDS request"))
	}
	req.Header.Set("Metadata", "true")

	logger.Logger.Debug("querying instance metadata for managed identity token",
		zap.String("resource", opts.resource()),
		zap.Bool("user_assigned", opts.ClientID != ""),
	)

	resp, err := p.client.Do(req)
	if err != nil {
		// Unreachable metadata endpoint: not on managed compute. Non-retryable.
		return Credential{}, newError(EnvironmentUnsupported, MethodManagedIdentity,
			errors.Wrap(err, "instance metadata endpoint unreachable"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Credential{}, newError(CredentialsRejected, MethodManagedIdentity,
			errors.Errorf("identity rejected with status %d: %s", resp.StatusCode, drainBody(resp)))
	}

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return Credential{}, newError(CredentialsRejected, MethodManagedIdentity, err)
	}
	if tr.AccessToken == "" {
		return Credential{}, newError(CredentialsRejected, MethodManagedIdentity,
			errors.New("IMDS response missing access_token"))
	}

	cred := Credential{
		Kind:  KindBearerToken,
		Value: tr.AccessToken,
		Scope: opts.Scope,
	}
	switch {
	case tr.ExpiresOn != "":
		// IMDS reports expires_on as unix seconds in a string.
		if unix, convErr := strconv.ParseInt(tr.ExpiresOn, 10, 64); convErr == nil {
			cred.ExpiresAt = time.Unix(unix, 0)
		}
	case tr.ExpiresIn > 0:
		cred.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return cred, nil
}
