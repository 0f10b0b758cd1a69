package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// speechTTSBase resolves the synthesis host (voices list, text-to-speech).
func speechTTSBase(target *Target) string {
	if target.Endpoint != "" {
		return strings.TrimSuffix(target.Endpoint, "/")
	}
	return target.Cloud.SpeechTTSHost(target.Region)
}

// speechAPIBase resolves the management host (batch transcription).
func speechAPIBase(target *Target) string {
	if target.Endpoint != "" {
		return strings.TrimSuffix(target.Endpoint, "/")
	}
	return target.Cloud.SpeechAPIHost(target.Region)
}

// voicesList fetches the synthesis voice catalogue; the cheapest request the
// Speech service answers, which makes it the canonical connectivity check.
type voicesList struct{}

func (voicesList) Name() string        { return "voices_list" }
func (voicesList) RequiresInput() bool { return false }

func (voicesList) Perform(ctx context.Context, target *Target) (Outcome, error) {
	url := speechTTSBase(target) + "/cognitiveservices/voices/list"
	status, body, err := send(ctx, target, http.MethodGet, url, "", nil)
	if err != nil {
		return Outcome{}, err
	}
	return classify(status, body), nil
}

// textToSpeech synthesizes one short utterance via SSML.
type textToSpeech struct{}

func (textToSpeech) Name() string        { return "text_to_speech" }
func (textToSpeech) RequiresInput() bool { return false }

func (textToSpeech) Perform(ctx context.Context, target *Target) (Outcome, error) {
	ssml := `<speak version='1.0' xml:lang='en-US'>` +
		`<voice xml:lang='en-US' name='en-US-JennyNeural'>connectivity check</voice></speak>`

	url := speechTTSBase(target) + "/cognitiveservices/v1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(ssml))
	if err != nil {
		return Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-16khz-32kbitrate-mono-mp3")
	applyCredential(req, target)

	resp, err := target.Client.Do(req)
	if err != nil {
		return Outcome{}, err
	}
	defer resp.Body.Close()

	// Audio body is discarded; only reachability and status matter here.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Outcome{HTTPStatus: resp.StatusCode, OK: true}, nil
	}
	return Outcome{HTTPStatus: resp.StatusCode, OK: false, Message: resp.Status}, nil
}

// batchTranscription is the submit-then-poll scenario: it uploads an inline
// audio artifact, then polls the transcription resource until a terminal
// state. Requires a configured input file.
type batchTranscription struct{}

func (batchTranscription) Name() string        { return "batch_transcription" }
func (batchTranscription) RequiresInput() bool { return true }

type transcriptionStatus struct {
	Self   string `json:"self"`
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (batchTranscription) Submit(ctx context.Context, target *Target) (string, Outcome, error) {
	payload, err := json.Marshal(map[string]any{
		"displayName": "ai-probe connectivity check",
		"locale":      "en-US",
		"properties": map[string]any{
			"punctuationMode": "DictatedAndAutomatic",
		},
		"content": base64.StdEncoding.EncodeToString(target.Input),
	})
	if err != nil {
		return "", Outcome{}, err
	}

	url := speechAPIBase(target) + "/speechtotext/v3.1/transcriptions"
	status, body, err := send(ctx, target, http.MethodPost, url, "application/json", payload)
	if err != nil {
		return "", Outcome{}, err
	}

	out := classify(status, body)
	if !out.OK {
		return "", out, nil
	}

	var created transcriptionStatus
	if jsonErr := json.Unmarshal(body, &created); jsonErr != nil || created.Self == "" {
		out.OK = false
		out.Message = "transcription response missing self link: " + snippet(body)
		return "", out, nil
	}
	return created.Self, out, nil
}

func (batchTranscription) Poll(ctx context.Context, target *Target, job string) (bool, Outcome, error) {
	status, body, err := send(ctx, target, http.MethodGet, job, "", nil)
	if err != nil {
		return false, Outcome{}, err
	}

	out := classify(status, body)
	if !out.OK {
		return true, out, nil
	}

	var st transcriptionStatus
	if jsonErr := json.Unmarshal(body, &st); jsonErr != nil {
		out.OK = false
		out.Message = "malformed transcription status: " + snippet(body)
		return true, out, nil
	}

	switch st.Status {
	case "Succeeded":
		return true, out, nil
	case "Failed":
		out.OK = false
		out.Message = fmt.Sprintf("transcription failed: %s", st.Error.Message)
		return true, out, nil
	default:
		// NotStarted / Running: keep polling.
		out.Message = st.Status
		return false, out, nil
	}
}
