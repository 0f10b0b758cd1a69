package auth

import (
	"context"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	cfg "github.com/songquanpeng/ai-probe/common/config"
	"github.com/songquanpeng/ai-probe/common/logger"
)

// Spec is one resolution request: a method, an optional fallback (the "both"
// policy), and the provider inputs.
type Spec struct {
	Method   Method
	Fallback Method
	Options  Options
}

// Manager selects the configured provider, consults the cache before any
// network-backed resolution, and implements the two-method fallback policy.
type Manager struct {
	cache     *Cache
	providers map[Method]Provider
}

// NewManager wires the providers around a shared HTTP client. The prompt
// writer receives device-code sign-in instructions; pass nil to suppress them.
func NewManager(cache *Cache, client *http.Client, prompt io.Writer) *Manager {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &Manager{
		cache: cache,
		providers: map[Method]Provider{
			MethodAPIKey:           apiKeyProvider{},
			MethodToken:            manualTokenProvider{},
			MethodServicePrincipal: servicePrincipalProvider{client: client},
			MethodDeviceCode:       deviceCodeProvider{client: client, prompt: prompt},
			MethodManagedIdentity:  managedIdentityProvider{client: client},
			MethodTokenExchange:    tokenExchangeProvider{client: client},
		},
	}
}

// Resolve produces a usable credential for the spec. With a fallback method
// configured, any classified failure of the primary triggers one attempt on
// the fallback; when both fail the composite error preserves both reasons.
func (m *Manager) Resolve(ctx context.Context, spec Spec) (Credential, error) {
	primary := spec.Method
	if primary == MethodBoth {
		return Credential{}, errors.New("method \"both\" must be expanded into primary and fallback before resolution")
	}

	cred, primaryErr := m.resolveOne(ctx, primary, spec.Options)
	if primaryErr == nil {
		return cred, nil
	}
	if spec.Fallback == "" {
		return Credential{}, primaryErr
	}

	logger.Logger.Warn("primary auth method failed, trying fallback",
		zap.String("primary", string(primary)),
		zap.String("fallback", string(spec.Fallback)),
		zap.Error(primaryErr),
	)

	cred, fallbackErr := m.resolveOne(ctx, spec.Fallback, spec.Options)
	if fallbackErr == nil {
		return cred, nil
	}
	return Credential{}, &FallbackError{PrimaryErr: primaryErr, FallbackErr: fallbackErr}
}

// resolveOne runs a single method with cache discipline: read before any
// network call, write after a successful one. Static methods bypass the cache
// entirely; they are free to construct.
func (m *Manager) resolveOne(ctx context.Context, method Method, opts Options) (Credential, error) {
	provider, ok := m.providers[method]
	if !ok {
		return Credential{}, errors.Errorf("no provider for auth method %q", method)
	}

	if method.networkBacked() {
		if cred, hit := m.cache.Get(method, opts.Scope); hit {
			logger.Logger.Debug("credential cache hit",
				zap.String("method", string(method)),
				zap.String("scope", opts.Scope),
			)
			return cred, nil
		}
	}

	cred, err := provider.Acquire(ctx, opts)
	if err != nil {
		return Credential{}, err
	}

	if method.networkBacked() {
		m.cache.Set(method, opts.Scope, cred)
	}

	logger.Logger.Info("credential resolved",
		zap.String("method", string(method)),
		zap.String("kind", string(cred.Kind)),
		zap.String("value", logger.MaskSecret(cred.Value)),
		zap.Time("expires_at", cred.ExpiresAt),
	)
	return cred, nil
}
