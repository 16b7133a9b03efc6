package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/model"
)

func TestProbeReachableMapping(t *testing.T) {
	tests := []struct {
		status    int
		err       error
		reachable bool
	}{
		{200, nil, true},
		{429, nil, true},
		{400, nil, false},
		{401, nil, false},
		{404, nil, false},
		{428, nil, false},
		{430, nil, false},
		{499, nil, false},
		{500, nil, true},
		{502, nil, true},
		{503, nil, true},
		{301, nil, true},
		{0, errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.reachable, probeReachable(tt.status, tt.err),
			"status=%d err=%v", tt.status, tt.err)
	}
}

func TestProbeModelConfigPersistsResult(t *testing.T) {
	setupDispatchTest(t)

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	mc := seedModel(t, "openai", "gpt-4o", 1, server.URL)
	reachable, err := ProbeModelConfig(context.Background(), mc)
	require.NoError(t, err)
	assert.False(t, reachable)

	// the probe body is the adapter's minimal test request
	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Equal(t, float64(10), gotBody["max_tokens"])

	reloaded, err := model.GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectStatusUnreachable, reloaded.ConnectStatus)
}

func TestProbeModelConfigRateLimitedIsReachable(t *testing.T) {
	setupDispatchTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	mc := seedModel(t, "openai", "gpt-4o", 1, server.URL)
	require.NoError(t, model.UpdateConnectStatus(mc.Id, model.ConnectStatusUnreachable))
	mc.ConnectStatus = model.ConnectStatusUnreachable

	reachable, err := ProbeModelConfig(context.Background(), mc)
	require.NoError(t, err)
	assert.True(t, reachable)

	reloaded, err := model.GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectStatusReachable, reloaded.ConnectStatus)
}

func TestProbeModelByIdMissingRecord(t *testing.T) {
	setupDispatchTest(t)
	_, err := ProbeModelById(context.Background(), 12345)
	require.Error(t, err)
}
