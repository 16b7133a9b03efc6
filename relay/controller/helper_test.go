package controller

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpstreamURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://api.openai.com", "/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/", "/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"https://proxy.example.com/v1", "/v1/chat/completions", "https://proxy.example.com/v1/chat/completions"},
		{"https://proxy.example.com/v1/", "/v1/chat/completions", "https://proxy.example.com/v1/chat/completions"},
		{"https://proxy.example.com/v1", "/v1", "https://proxy.example.com/v1"},
		{"https://api.deepseek.com", "/chat/completions", "https://api.deepseek.com/chat/completions"},
		{"http://localhost:11434", "api/chat", "http://localhost:11434/api/chat"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildUpstreamURL(tt.base, tt.path), "base=%q path=%q", tt.base, tt.path)
	}
}

func TestBuildUpstreamURLCollapseOnce(t *testing.T) {
	// /v1 appears exactly once whenever both sides carry it
	url := BuildUpstreamURL("https://x.example.com/v1", "/v1/chat/completions")
	assert.Equal(t, 1, strings.Count(url, "/v1/"))
	assert.NotContains(t, url, "/v1/v1")
}

func TestMergeParamsOnlyFillsAbsentKeys(t *testing.T) {
	body := []byte(`{"model":"m","temperature":0.9}`)
	merged := mergeParams(body, map[string]any{
		"temperature": 0.1,
		"top_p":       0.5,
	})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(merged, &decoded))
	assert.Equal(t, 0.9, decoded["temperature"])
	assert.Equal(t, 0.5, decoded["top_p"])
}

func TestMergeParamsNoParams(t *testing.T) {
	body := []byte(`{"model":"m"}`)
	assert.Equal(t, body, mergeParams(body, nil))
}

func TestMergeParamsInvalidBodyUntouched(t *testing.T) {
	body := []byte(`[1,2,3]`)
	assert.Equal(t, body, mergeParams(body, map[string]any{"a": 1}))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt([]byte("  short \n"), 512))
	long := strings.Repeat("x", 600)
	got := excerpt([]byte(long), 512)
	assert.Len(t, got, 515)
	assert.True(t, strings.HasSuffix(got, "..."))
}
