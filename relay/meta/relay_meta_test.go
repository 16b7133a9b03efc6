package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

func TestFromModelConfigFillsDefaults(t *testing.T) {
	m := FromModelConfig(&model.ModelConfig{
		Id:        7,
		Vendor:    "claude",
		ModelName: "claude-sonnet-4-20250514",
		ApiKey:    "sk-ant-test",
	}, "auto", false)

	assert.Equal(t, 7, m.ModelId)
	assert.Equal(t, vendor.SpecAnthropic, m.Spec)
	assert.Equal(t, "https://api.anthropic.com", m.BaseURL)
	assert.Equal(t, "/v1/messages", m.APIPath)
	assert.Equal(t, "auto", m.RequestedModel)
}

func TestFromModelConfigRespectsOverrides(t *testing.T) {
	m := FromModelConfig(&model.ModelConfig{
		Vendor:    "claude",
		ModelName: "claude-3-5-haiku-20241022",
		ApiBase:   "https://proxy.example.com",
		ApiPath:   "/custom/messages",
		ApiSpec:   "openai",
	}, "", true)

	assert.Equal(t, "https://proxy.example.com", m.BaseURL)
	assert.Equal(t, "/custom/messages", m.APIPath)
	// a recognized api_spec overrides the vendor's native one
	assert.Equal(t, vendor.SpecOpenAI, m.Spec)
	assert.True(t, m.IsStream)
}

func TestFromModelConfigUnknownVendor(t *testing.T) {
	m := FromModelConfig(&model.ModelConfig{
		Vendor:    "in-house",
		ModelName: "local-llm",
		ApiBase:   "http://10.0.0.5:8000",
	}, "", false)

	assert.Equal(t, vendor.SpecCustom, m.Spec)
	assert.Equal(t, "/v1/chat/completions", m.APIPath)
}

func TestAuthHeader(t *testing.T) {
	tests := []struct {
		name      string
		vendorTag string
		key       string
		header    string
		value     string
	}{
		{"openai bearer", "openai", "sk-1", "Authorization", "Bearer sk-1"},
		{"claude raw key", "claude", "sk-ant-1", "x-api-key", "sk-ant-1"},
		{"gemini raw key", "gemini", "AIza-1", "x-goog-api-key", "AIza-1"},
		{"unknown vendor defaults to bearer", "in-house", "k", "Authorization", "Bearer k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromModelConfig(&model.ModelConfig{
				Vendor:    tt.vendorTag,
				ModelName: "m",
				ApiKey:    tt.key,
			}, "", false)
			header, value := m.AuthHeader()
			require.Equal(t, tt.header, header)
			require.Equal(t, tt.value, value)
		})
	}
}
