package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Global, c)

	c, err = Parse(" China ")
	require.NoError(t, err)
	assert.Equal(t, China, c)

	_, err = Parse("mars")
	require.Error(t, err)
}

func TestGlobalEndpoints(t *testing.T) {
	assert.Equal(t, "https://login.microsoftonline.com", Global.LoginEndpoint())
	assert.Equal(t, "https://cognitiveservices.azure.com/.default", Global.CognitiveScope())
	assert.Equal(t, "https://eastus.tts.speech.microsoft.com", Global.SpeechTTSHost("eastus"))
	assert.Equal(t, "https://eastus.api.cognitive.microsoft.com/sts/v1.0/issueToken", Global.STSEndpoint("eastus"))
	assert.Equal(t, "https://api.cognitive.microsofttranslator.com", Global.TranslatorHost())
}

func TestChinaEndpoints(t *testing.T) {
	assert.Equal(t, "https://login.chinacloudapi.cn", China.LoginEndpoint())
	assert.Equal(t, "https://cognitiveservices.azure.cn/.default", China.CognitiveScope())
	assert.Equal(t, "https://chinaeast2.tts.speech.azure.cn", China.SpeechTTSHost("chinaeast2"))
	assert.Equal(t, "https://api.translator.azure.cn", China.TranslatorHost())
}
