package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const openaiAPIVersion = "2024-06-01"

// openaiBase returns the resolved Azure OpenAI endpoint. There is no canonical
// regional host for OpenAI resources, so configuration must supply one.
func openaiBase(target *Target) string {
	return strings.TrimSuffix(target.Endpoint, "/")
}

// modelsList verifies the account can enumerate deployed models.
type modelsList struct{}

func (modelsList) Name() string        { return "models_list" }
func (modelsList) RequiresInput() bool { return false }

func (modelsList) Perform(ctx context.Context, target *Target) (Outcome, error) {
	url := fmt.Sprintf("%s/openai/models?api-version=%s", openaiBase(target), openaiAPIVersion)
	status, body, err := send(ctx, target, http.MethodGet, url, "", nil)
	if err != nil {
		return Outcome{}, err
	}
	return classify(status, body), nil
}

// chatCompletion sends a minimal single-turn completion to the configured
// deployment.
type chatCompletion struct{}

func (chatCompletion) Name() string        { return "chat_completion" }
func (chatCompletion) RequiresInput() bool { return false }

func (chatCompletion) Perform(ctx context.Context, target *Target) (Outcome, error) {
	payload, err := json.Marshal(map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "Say hello in one sentence."},
		},
		"max_tokens": 16,
	})
	if err != nil {
		return Outcome{}, err
	}

	deployment := target.Deployment
	if deployment == "" {
		deployment = "gpt-4o-mini"
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		openaiBase(target), deployment, openaiAPIVersion)

	status, body, err := send(ctx, target, http.MethodPost, url, "application/json", payload)
	if err != nil {
		return Outcome{}, err
	}

	out := classify(status, body)
	if !out.OK {
		return out, nil
	}

	// A 2xx with no choices means the deployment answered but returned junk.
	var parsed struct {
		Choices []json.RawMessage `json:"choices"`
	}
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil || len(parsed.Choices) == 0 {
		out.OK = false
		out.Message = "response missing choices: " + snippet(body)
	}
	return out, nil
}
