package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/songquanpeng/ai-probe/auth"
	cfg "github.com/songquanpeng/ai-probe/common/config"
)

// translate performs a single short translation. The Translator endpoint is
// region-less, but key auth additionally requires the region header.
type translate struct{}

func (translate) Name() string        { return "translate" }
func (translate) RequiresInput() bool { return false }

func (translate) Perform(ctx context.Context, target *Target) (Outcome, error) {
	base := target.Endpoint
	if base == "" {
		base = target.Cloud.TranslatorHost()
	}
	url := strings.TrimSuffix(base, "/") + "/translate?api-version=3.0&to=fr"

	payload, err := json.Marshal([]map[string]string{{"Text": "hello"}})
	if err != nil {
		return Outcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyCredential(req, target)
	if target.Credential.Kind == auth.KindAPIKeyHeader && target.Region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", target.Region)
	}

	resp, err := target.Client.Do(req)
	if err != nil {
		return Outcome{}, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(cfg.MaxResponseBodySize)))
	if readErr != nil {
		return Outcome{}, readErr
	}

	out := classify(resp.StatusCode, body)
	if !out.OK {
		return out, nil
	}

	var parsed []struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil || len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		out.OK = false
		out.Message = "response missing translations: " + snippet(body)
	}
	return out, nil
}
