// Package cloud maps the sovereign-cloud selector to the well-known Azure
// endpoint shapes. Everything else derives hosts from here so the Global and
// China environments stay in one place.
package cloud

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
)

type Cloud string

const (
	Global Cloud = "global"
	China  Cloud = "china"
)

// Parse normalizes a configuration string; empty defaults to Global.
func Parse(raw string) (Cloud, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(Global):
		return Global, nil
	case string(China):
		return China, nil
	default:
		return "", errors.Errorf("unknown cloud %q (expected global or china)", raw)
	}
}

// LoginEndpoint is the AAD authority for the cloud.
func (c Cloud) LoginEndpoint() string {
	if c == China {
		return "https://login.chinacloudapi.cn"
	}
	return "https://login.microsoftonline.com"
}

// CognitiveScope is the token audience for Cognitive Services.
func (c Cloud) CognitiveScope() string {
	if c == China {
		return "https://cognitiveservices.azure.cn/.default"
	}
	return "https://cognitiveservices.azure.com/.default"
}

// speechSuffix is the host suffix for Speech service endpoints.
func (c Cloud) speechSuffix() string {
	if c == China {
		return "azure.cn"
	}
	return "microsoft.com"
}

// SpeechTTSHost serves the voices list and text-to-speech synthesis.
func (c Cloud) SpeechTTSHost(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.%s", region, c.speechSuffix())
}

// SpeechAPIHost serves batch transcription and the STS token endpoint.
func (c Cloud) SpeechAPIHost(region string) string {
	return fmt.Sprintf("https://%s.api.cognitive.%s", region, c.speechSuffix())
}

// STSEndpoint is the issueToken URL used by the token_exchange auth method.
func (c Cloud) STSEndpoint(region string) string {
	return c.SpeechAPIHost(region) + "/sts/v1.0/issueToken"
}

// TranslatorHost is the region-less Translator endpoint.
func (c Cloud) TranslatorHost() string {
	if c == China {
		return "https://api.translator.azure.cn"
	}
	return "https://api.cognitive.microsofttranslator.com"
}
