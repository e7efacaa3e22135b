package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "RESOLVER", "RAPIDAPI_KEY", "OPENAI_API_KEY", "FETCH_TIMEOUT", "SOURCE_DOMAIN", "RAPIDAPI_HOST", "RAPIDAPI_BASE_URL"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, ResolverRapidAPI, c.Resolver)
	assert.Empty(t, c.RapidAPIKey)
	assert.Empty(t, c.OpenAIKey)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Equal(t, "instagram.com", c.SourceDomain)
	assert.Equal(t, "https://"+c.RapidAPIHost, c.RapidAPIBaseURL)
	assert.Equal(t, "libmp3lame", c.AudioCodec)
	assert.Equal(t, "128k", c.AudioBitrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RESOLVER", "YtDlp")
	t.Setenv("RAPIDAPI_KEY", "rk")
	t.Setenv("FETCH_TIMEOUT", "45")
	t.Setenv("PIPELINE_TIMEOUT", "2m")
	t.Setenv("BATCH_CONCURRENCY", "-3")

	c := Load()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, ResolverYtDlp, c.Resolver)
	assert.Equal(t, "rk", c.RapidAPIKey)
	assert.Equal(t, 45*time.Second, c.FetchTimeout)
	assert.Equal(t, 2*time.Minute, c.PipelineTimeout)
	assert.Equal(t, 2, c.BatchConcurrency)
}

func TestKeyStatus(t *testing.T) {
	assert.Equal(t, "SET", KeyStatus("x"))
	assert.Equal(t, "NOT SET", KeyStatus(""))
}
