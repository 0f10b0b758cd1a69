package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/golang-jwt/jwt"
)

// Provider acquires a credential for one authentication method. Providers are
// stateless: everything they need arrives via Options.
type Provider interface {
	Method() Method
	Acquire(ctx context.Context, opts Options) (Credential, error)
}

// tokenResponse is the common AAD token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	// ExpiresOn is the IMDS variant: unix seconds as a string.
	ExpiresOn        string `json:"expires_on"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeJSON(body io.Reader, target any) error {
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(target); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

func decodeTokenResponse(body io.Reader) (tokenResponse, error) {
	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&tr); err != nil {
		return tr, errors.Wrap(err, "decode token response")
	}
	return tr, nil
}

// bearerFromToken wraps an access token into a Credential, deriving expiry
// from expires_in when present.
func bearerFromToken(tr tokenResponse, scope string, now time.Time) Credential {
	cred := Credential{
		Kind:  KindBearerToken,
		Value: tr.AccessToken,
		Scope: scope,
	}
	if tr.ExpiresIn > 0 {
		cred.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return cred
}

// jwtExpiry extracts the exp claim from a JWT without verifying the signature.
// The probe only needs the lifetime, not trust in the token.
func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok || exp <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// drainBody reads a bounded error body for diagnostics.
func drainBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return string(body)
}
