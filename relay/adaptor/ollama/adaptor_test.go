package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

func TestConvertRequest(t *testing.T) {
	a := &Adaptor{}
	converted, err := a.ConvertRequest(&relaymodel.GeneralOpenAIRequest{
		Model:     "llama3.1",
		Messages:  []relaymodel.Message{{Role: "user", Content: "hi"}},
		MaxTokens: 32,
		Stream:    true,
	})
	require.NoError(t, err)

	req, ok := converted.(*Request)
	require.True(t, ok)
	assert.Equal(t, "llama3.1", req.Model)
	assert.True(t, req.Stream)
	require.NotNil(t, req.Options)
	assert.Equal(t, 32, req.Options.NumPredict)
}

func TestConvertRequestFoldsSystemIntoUserMessage(t *testing.T) {
	a := &Adaptor{}
	converted, err := a.ConvertRequest(&relaymodel.GeneralOpenAIRequest{
		Model: "llama3.1",
		Messages: []relaymodel.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	})
	require.NoError(t, err)

	req := converted.(*Request)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, relaymodel.Message{Role: "user", Content: "System: be terse"}, req.Messages[0])
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "assistant", req.Messages[2].Role)
}

func TestConvertRequestOmitsEmptyOptions(t *testing.T) {
	a := &Adaptor{}
	converted, err := a.ConvertRequest(&relaymodel.GeneralOpenAIRequest{
		Model:    "llama3.1",
		Messages: []relaymodel.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Nil(t, converted.(*Request).Options)
}

func TestParseResponse(t *testing.T) {
	a := &Adaptor{}
	body := []byte(`{
		"model": "llama3.1",
		"created_at": "2024-01-01T00:00:00Z",
		"message": {"role": "assistant", "content": "ok"},
		"done": true,
		"done_reason": "stop",
		"prompt_eval_count": 8,
		"eval_count": 3
	}`)

	response, err := a.ParseResponse(body, "llama3.1")
	require.NoError(t, err)
	require.Len(t, response.Choices, 1)
	assert.Equal(t, "ok", response.Choices[0].Message.Content)
	assert.Equal(t, "stop", response.Choices[0].FinishReason)
	assert.Equal(t, 8, response.Usage.PromptTokens)
	assert.Equal(t, 3, response.Usage.CompletionTokens)
	assert.Equal(t, 11, response.Usage.TotalTokens)
}
