// Package service holds the per-service scenario leaves: the concrete request
// and response shapes for each AI service. The engine never learns these
// schemas; it only interprets the Outcome a scenario hands back.
package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/songquanpeng/ai-probe/auth"
	"github.com/songquanpeng/ai-probe/cloud"
	cfg "github.com/songquanpeng/ai-probe/common/config"
)

// Target is everything a scenario needs to hit one service: the resolved
// endpoint, credential, and optional input artifact. Built once per service by
// the runner and not shared across services.
type Target struct {
	Service string
	Cloud   cloud.Cloud
	Region  string
	// Endpoint overrides the canonical host when set.
	Endpoint string
	// Deployment is the Azure OpenAI deployment name.
	Deployment string

	Credential auth.Credential
	InputPath  string
	Input      []byte

	Client *http.Client
}

// Outcome is a scenario's body-derived classification of one exchange.
type Outcome struct {
	HTTPStatus int
	OK         bool
	Message    string
}

// Scenario is one named test operation against one service.
type Scenario interface {
	Name() string
	RequiresInput() bool
}

// ImmediateScenario issues one request and classifies the response.
type ImmediateScenario interface {
	Scenario
	Perform(ctx context.Context, target *Target) (Outcome, error)
}

// AsyncScenario submits a job and then polls a status resource. Submit returns
// an opaque job reference for Poll; done=true ends the polling loop.
type AsyncScenario interface {
	Scenario
	Submit(ctx context.Context, target *Target) (job string, out Outcome, err error)
	Poll(ctx context.Context, target *Target, job string) (done bool, out Outcome, err error)
}

// applyCredential attaches the credential the way the service expects it.
// Bearer tokens always travel in Authorization; subscription keys use the
// service-specific header.
func applyCredential(req *http.Request, target *Target) {
	c := target.Credential
	switch c.Kind {
	case auth.KindBearerToken:
		req.Header.Set("Authorization", "Bearer "+c.Value)
	case auth.KindAPIKeyHeader:
		switch target.Service {
		case ServiceOpenAI:
			req.Header.Set("api-key", c.Value)
		default:
			req.Header.Set("Ocp-Apim-Subscription-Key", c.Value)
		}
	}
}

// send issues one request with the shared client and reads a bounded body.
// Transport failures propagate so the executor can classify them.
func send(ctx context.Context, target *Target, method, url, contentType string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	applyCredential(req, target)

	resp, err := target.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(cfg.MaxResponseBodySize)))
	if readErr != nil {
		return resp.StatusCode, data, errors.Wrap(readErr, "read response")
	}
	return resp.StatusCode, data, nil
}

// snippet trims a response body for inclusion in a result message.
func snippet(body []byte) string {
	const maxLen = 256
	cleaned := strings.TrimSpace(string(body))
	if len(cleaned) <= maxLen {
		return cleaned
	}
	return cleaned[:maxLen] + "…"
}

// classify converts a raw status and body into an Outcome. 2xx is success;
// anything else carries the status and a body snippet for diagnosis.
func classify(status int, body []byte) Outcome {
	if status >= 200 && status < 300 {
		return Outcome{HTTPStatus: status, OK: true}
	}
	return Outcome{HTTPStatus: status, OK: false, Message: snippet(body)}
}
