package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestConvertRequestExtractsSystem(t *testing.T) {
	a := &Adaptor{}
	converted, err := a.ConvertRequest(&relaymodel.GeneralOpenAIRequest{
		Model: "claude-sonnet-4-20250514",
		Messages: []relaymodel.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
		MaxTokens: 256,
		Stop:      "END",
	})
	require.NoError(t, err)

	req, ok := converted.(*Request)
	require.True(t, ok)
	assert.Equal(t, "be terse", req.System)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, 256, req.MaxTokens)
	assert.Equal(t, []string{"END"}, req.StopSequences)
}

func TestConvertRequestDefaultsMaxTokens(t *testing.T) {
	a := &Adaptor{}
	converted, err := a.ConvertRequest(&relaymodel.GeneralOpenAIRequest{
		Model:    "claude-sonnet-4-20250514",
		Messages: []relaymodel.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTokens, converted.(*Request).MaxTokens)
}

func TestParseResponse(t *testing.T) {
	a := &Adaptor{}
	body := []byte(`{
		"id": "msg_123",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [{"type":"text","text":"Hello "},{"type":"text","text":"there"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 7}
	}`)

	response, err := a.ParseResponse(body, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.Equal(t, "msg_123", response.Id)
	assert.Equal(t, "chat.completion", response.Object)
	require.Len(t, response.Choices, 1)
	assert.Equal(t, "Hello there", response.Choices[0].Message.Content)
	assert.Equal(t, "end_turn", response.Choices[0].FinishReason)
	assert.Equal(t, 12, response.Usage.PromptTokens)
	assert.Equal(t, 7, response.Usage.CompletionTokens)
	assert.Equal(t, 19, response.Usage.TotalTokens)
}

func TestBuildTestRequest(t *testing.T) {
	a := &Adaptor{}
	req, ok := a.BuildTestRequest("claude-sonnet-4-20250514").(*Request)
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
	assert.Equal(t, 10, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "Hi", req.Messages[0].Content)
}
