package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chyrain/LLMGateway/common/client"
	"github.com/Chyrain/LLMGateway/model"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

func setupDispatchTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	client.Init()
	require.NoError(t, model.SetupTestDatabase())
}

func seedModel(t *testing.T, vendorTag string, modelName string, priority int, apiBase string) *model.ModelConfig {
	t.Helper()
	mc := &model.ModelConfig{
		Vendor:    vendorTag,
		ModelName: modelName,
		ApiBase:   apiBase,
		ApiKey:    "sk-test",
		Priority:  priority,
	}
	require.NoError(t, mc.Insert())
	return mc
}

func newDispatchContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func okUpstream(t *testing.T, content string, totalTokens int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-upstream",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "m",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": totalTokens - 1, "completion_tokens": 1, "total_tokens": totalTokens},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func failingUpstream(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"upstream unhappy"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOrderCandidatesAutoMode(t *testing.T) {
	candidates := []*model.ModelConfig{
		{Id: 1, ModelName: "a"},
		{Id: 2, ModelName: "b"},
	}
	for _, requested := range []string{"", "auto", "Auto", "AUTO"} {
		ordered := orderCandidates(candidates, requested)
		require.Len(t, ordered, 2)
		assert.Equal(t, 1, ordered[0].Id, "requested=%q", requested)
	}
}

func TestOrderCandidatesPartition(t *testing.T) {
	candidates := []*model.ModelConfig{
		{Id: 1, ModelName: "a"},
		{Id: 2, ModelName: "b"},
		{Id: 3, ModelName: "a"},
	}
	ordered := orderCandidates(candidates, "b")
	require.Len(t, ordered, 3)
	assert.Equal(t, 2, ordered[0].Id)
	assert.Equal(t, 1, ordered[1].Id)
	assert.Equal(t, 3, ordered[2].Id)
}

func TestDispatchNoCandidates(t *testing.T) {
	setupDispatchTest(t)

	c, _ := newDispatchContext(t, `{"model":"auto","messages":[{"role":"user","content":"hi"}]}`)
	relayErr := Dispatch(c)
	require.NotNil(t, relayErr)
	assert.Equal(t, http.StatusServiceUnavailable, relayErr.StatusCode)
	assert.Equal(t, ErrCodeNoAvailableModel, relayErr.Error.Code)
}

func TestDispatchRejectsEmptyMessages(t *testing.T) {
	setupDispatchTest(t)

	c, _ := newDispatchContext(t, `{"model":"auto","messages":[]}`)
	relayErr := Dispatch(c)
	require.NotNil(t, relayErr)
	assert.Equal(t, http.StatusBadRequest, relayErr.StatusCode)
	assert.Equal(t, ErrCodeValidationError, relayErr.Error.Code)
}

func TestDispatchAutoFailover(t *testing.T) {
	setupDispatchTest(t)

	bad := failingUpstream(t, http.StatusInternalServerError)
	good := okUpstream(t, "ok", 9)
	m1 := seedModel(t, "openai", "gpt-4o", 1, bad.URL)
	m2 := seedModel(t, "deepseek", "deepseek-chat", 50, good.URL)

	c, w := newDispatchContext(t, `{"model":"auto","messages":[{"role":"user","content":"hi"}]}`)
	relayErr := Dispatch(c)
	require.Nil(t, relayErr)
	require.Equal(t, http.StatusOK, w.Code)

	var response relaymodel.TextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Choices, 1)
	assert.Equal(t, "ok", response.Choices[0].Message.Content)

	// one failure row for the first candidate, one success row for the second
	logs, err := model.ListLogs(0, 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.LogTypeDispatch, logs[0].LogType)
	assert.Equal(t, m2.Id, logs[0].ModelId)
	assert.Equal(t, model.LogStatusSuccess, logs[0].Status)
	assert.Equal(t, model.LogTypeError, logs[1].LogType)
	assert.Equal(t, m1.Id, logs[1].ModelId)
	assert.Equal(t, model.LogStatusFailure, logs[1].Status)

	// the success fed the quota tracker
	stats, err := model.GetQuotaStats(m2.Id)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(9), stats[0].UsedQuota)
}

func TestDispatchPrefersRequestedModel(t *testing.T) {
	setupDispatchTest(t)

	alpha := okUpstream(t, "from-alpha", 0)
	beta := okUpstream(t, "from-beta", 0)
	seedModel(t, "openai", "alpha", 1, alpha.URL)
	seedModel(t, "deepseek", "beta", 50, beta.URL)

	c, w := newDispatchContext(t, `{"model":"beta","messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))

	var response relaymodel.TextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "from-beta", response.Choices[0].Message.Content)
}

func TestDispatchUnknownModelFallsBackToPriority(t *testing.T) {
	setupDispatchTest(t)

	alpha := okUpstream(t, "from-alpha", 0)
	seedModel(t, "openai", "alpha", 1, alpha.URL)

	c, w := newDispatchContext(t, `{"model":"gamma","messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))

	var response relaymodel.TextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "from-alpha", response.Choices[0].Message.Content)
}

func TestDispatchRejectsEmptyContent(t *testing.T) {
	setupDispatchTest(t)

	empty := okUpstream(t, "   ", 0)
	seedModel(t, "openai", "gpt-4o", 1, empty.URL)

	c, _ := newDispatchContext(t, `{"model":"auto","messages":[{"role":"user","content":"hi"}]}`)
	relayErr := Dispatch(c)
	require.NotNil(t, relayErr)
	assert.Equal(t, http.StatusInternalServerError, relayErr.StatusCode)
	assert.Equal(t, ErrCodeAllUpstreamsFailed, relayErr.Error.Code)
	assert.Contains(t, relayErr.Error.Message, ErrCodeEmptyResponse)
}

func TestDispatchAllUpstreamsFailedCarriesLastDetail(t *testing.T) {
	setupDispatchTest(t)

	bad1 := failingUpstream(t, http.StatusBadGateway)
	bad2 := failingUpstream(t, http.StatusTooManyRequests)
	seedModel(t, "openai", "gpt-4o", 1, bad1.URL)
	seedModel(t, "deepseek", "deepseek-chat", 2, bad2.URL)

	c, _ := newDispatchContext(t, `{"model":"auto","messages":[{"role":"user","content":"hi"}]}`)
	relayErr := Dispatch(c)
	require.NotNil(t, relayErr)
	assert.Equal(t, ErrCodeAllUpstreamsFailed, relayErr.Error.Code)
	assert.Contains(t, relayErr.Error.Message, "429")
}

func TestDispatchStreamRelay(t *testing.T) {
	setupDispatchTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte(`data: {"id":"chatcmpl-s","created":1700000000,"model":"m","choices":[{"index":0,"delta":{"content":"hi"}}]}` + "\n\n"))
		flusher.Flush()
		_, _ = w.Write([]byte("event: ping\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
		flusher.Flush()
	}))
	t.Cleanup(server.Close)
	seedModel(t, "custom", "local-llm", 1, server.URL)

	c, w := newDispatchContext(t, `{"model":"auto","stream":true,"messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `"object":"chat.completion.chunk"`)
	assert.Contains(t, body, `"content":"hi"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
	assert.NotContains(t, body, "event: ping")

	for _, frame := range strings.SplitAfter(body, "\n\n") {
		if frame == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(frame, "data: "), "unexpected frame %q", frame)
	}
}

func TestDispatchStreamOpenFailoverOnTransportError(t *testing.T) {
	setupDispatchTest(t)

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"ok"}}]}` + "\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	t.Cleanup(good.Close)

	seedModel(t, "custom", "first", 1, dead.URL)
	seedModel(t, "custom", "second", 2, good.URL)

	c, w := newDispatchContext(t, `{"model":"auto","stream":true,"messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))
	assert.Contains(t, w.Body.String(), `"content":"ok"`)
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
}

func TestDispatchStreamOpenNon200EndsInBand(t *testing.T) {
	setupDispatchTest(t)

	bad := failingUpstream(t, http.StatusUnauthorized)
	seedModel(t, "custom", "only", 1, bad.URL)

	c, w := newDispatchContext(t, `{"model":"auto","stream":true,"messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))
	assert.Equal(t, `data: {"error":"request failed"}`+"\n\n", w.Body.String())
}

func TestDispatchSyntheticStreamForNonStreamingVendor(t *testing.T) {
	setupDispatchTest(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "from-gemini"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 2, "candidatesTokenCount": 1, "totalTokenCount": 3}
		}`))
	}))
	t.Cleanup(server.Close)
	seedModel(t, "gemini", "gemini-2.0-flash", 1, server.URL)

	c, w := newDispatchContext(t, `{"model":"auto","stream":true,"messages":[{"role":"user","content":"hi"}]}`)
	require.Nil(t, Dispatch(c))

	body := w.Body.String()
	assert.Contains(t, body, `"content":"from-gemini"`)
	assert.Contains(t, body, "chat.completion.chunk")
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}
