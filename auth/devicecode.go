package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	cfg "github.com/songquanpeng/ai-probe/common/config"
	"github.com/songquanpeng/ai-probe/common/logger"
)

// azureCLIClientID is Azure CLI's well-known public client, used when the
// operator does not configure a client id of their own.
const azureCLIClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"

// deviceCodeProvider drives the interactive OAuth2 device-code flow: obtain a
// user code, display it, then poll the token endpoint until the user finishes,
// the code expires, or the user declines. This is the one genuinely
// long-running acquisition; every wait is cancellable through ctx.
type deviceCodeProvider struct {
	client *http.Client
	// prompt receives the human-facing sign-in instructions.
	prompt io.Writer
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
	Message         string `json:"message"`
}

// flowState models the polling loop explicitly so the enclosing timeout can
// interrupt between steps.
type flowState int

const (
	statePolling flowState = iota
	stateCompleted
	stateExpired
	stateDenied
)

func (deviceCodeProvider) Method() Method { return MethodDeviceCode }

func (p deviceCodeProvider) Acquire(ctx context.Context, opts Options) (Credential, error) {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = azureCLIClientID
	}

	details, err := p.initiate(ctx, opts, clientID)
	if err != nil {
		return Credential{}, err
	}

	p.displayInstructions(details)

	flowDeadline := time.Duration(details.ExpiresIn) * time.Second
	if flowDeadline <= 0 || flowDeadline > cfg.DeviceCodeTimeout {
		flowDeadline = cfg.DeviceCodeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, flowDeadline)
	defer cancel()

	return p.pollForToken(ctx, opts, clientID, details)
}

func (p deviceCodeProvider) initiate(ctx context.Context, opts Options, clientID string) (deviceCodeResponse, error) {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("scope", opts.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.deviceCodeURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return deviceCodeResponse{}, newError(CredentialsRejected, MethodDeviceCode,
			errors.Wrap(err, "build device code request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return deviceCodeResponse{}, newError(CredentialsRejected, MethodDeviceCode,
			errors.Wrap(err, "device code endpoint unreachable"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return deviceCodeResponse{}, newError(CredentialsRejected, MethodDeviceCode,
			errors.Errorf("device code endpoint returned %d: %s", resp.StatusCode, drainBody(resp)))
	}

	var details deviceCodeResponse
	if err := decodeJSON(resp.Body, &details); err != nil {
		return deviceCodeResponse{}, newError(CredentialsRejected, MethodDeviceCode, err)
	}
	if details.DeviceCode == "" || details.UserCode == "" {
		return deviceCodeResponse{}, newError(CredentialsRejected, MethodDeviceCode,
			errors.New("device code response incomplete"))
	}
	return details, nil
}

func (p deviceCodeProvider) displayInstructions(details deviceCodeResponse) {
	w := p.prompt
	if w == nil {
		return
	}
	divider := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintln(w, "  Azure Authentication Required")
	fmt.Fprintf(w, "%s\n\n", divider)
	fmt.Fprintf(w, "  Please visit:    %s\n\n", details.VerificationURI)
	fmt.Fprintf(w, "  And enter code:  %s\n\n", details.UserCode)
	fmt.Fprintf(w, "%s\n\nWaiting for authentication...\n\n", divider)
}

// pollWait converts the server's polling interval to a wait. A response that
// omits the interval must not turn into a hot loop; the protocol default is 5s.
func pollWait(interval int64) time.Duration {
	if interval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(interval) * time.Second
}

func (p deviceCodeProvider) pollForToken(ctx context.Context, opts Options, clientID string, details deviceCodeResponse) (Credential, error) {
	interval := pollWait(details.Interval)

	state := statePolling
	for state == statePolling {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Credential{}, newError(FlowExpired, MethodDeviceCode,
				errors.Wrap(ctx.Err(), "authentication timed out"))
		case <-timer.C:
		}

		cred, next, err := p.checkToken(ctx, opts, clientID, details.DeviceCode)
		switch next {
		case stateCompleted:
			logger.Logger.Info("device code authentication succeeded",
				zap.String("token", logger.MaskSecret(cred.Value)))
			return cred, nil
		case stateExpired:
			return Credential{}, newError(FlowExpired, MethodDeviceCode,
				errors.New("device code expired before the user completed sign-in"))
		case stateDenied:
			return Credential{}, newError(FlowDenied, MethodDeviceCode,
				errors.New("user declined authorization"))
		case statePolling:
			if err != nil {
				return Credential{}, err
			}
		}
	}

	// Unreachable; the loop exits through one of the terminal states above.
	return Credential{}, newError(FlowExpired, MethodDeviceCode, errors.New("polling aborted"))
}

// checkToken performs one poll. It returns the next state; a non-nil error with
// statePolling means the poll itself failed in a non-retryable way.
func (p deviceCodeProvider) checkToken(ctx context.Context, opts Options, clientID, deviceCode string) (Credential, flowState, error) {
	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
	form.Set("client_id", clientID)
	form.Set("device_code", deviceCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.tokenURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, statePolling, newError(CredentialsRejected, MethodDeviceCode,
			errors.Wrap(err, "build poll request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return Credential{}, statePolling, newError(CredentialsRejected, MethodDeviceCode,
			errors.Wrap(err, "token endpoint unreachable during poll"))
	}
	defer resp.Body.Close()

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		return Credential{}, statePolling, newError(CredentialsRejected, MethodDeviceCode, err)
	}

	switch tr.Error {
	case "":
		if tr.AccessToken == "" {
			return Credential{}, statePolling, newError(CredentialsRejected, MethodDeviceCode,
				errors.New("token response missing access_token"))
		}
		return bearerFromToken(tr, opts.Scope, time.Now()), stateCompleted, nil
	case "authorization_pending":
		return Credential{}, statePolling, nil
	case "slow_down":
		// Server asked for slower polling; one extra interval before the next try.
		timer := time.NewTimer(5 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		return Credential{}, statePolling, nil
	case "expired_token":
		return Credential{}, stateExpired, nil
	case "access_denied":
		return Credential{}, stateDenied, nil
	default:
		return Credential{}, statePolling, newError(CredentialsRejected, MethodDeviceCode,
			errors.Errorf("token endpoint error %q: %s", tr.Error, tr.ErrorDescription))
	}
}
