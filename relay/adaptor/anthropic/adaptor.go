package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

// DefaultMaxTokens is applied when the caller omits max_tokens; the Messages
// API rejects requests without it.
const DefaultMaxTokens = 4096

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "claude"
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	system, rest := request.SystemPrompt()
	messages := make([]Message, 0, len(rest))
	for _, m := range rest {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}

	maxTokens := request.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Request{
		Model:         request.Model,
		System:        system,
		Messages:      messages,
		MaxTokens:     maxTokens,
		Temperature:   request.Temperature,
		TopP:          request.TopP,
		TopK:          request.TopK,
		StopSequences: request.StopSequences(),
		Stream:        request.Stream,
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal claude response")
	}

	var content strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	id := response.Id
	if id == "" {
		id = helper.ChatCompletionID()
	}
	model := response.Model
	if model == "" {
		model = modelName
	}

	return &relaymodel.TextResponse{
		Id:      id,
		Object:  "chat.completion",
		Created: helper.GetTimestamp(),
		Model:   model,
		Choices: []relaymodel.TextResponseChoice{{
			Index:        0,
			Message:      relaymodel.Message{Role: "assistant", Content: content.String()},
			FinishReason: response.StopReason,
		}},
		Usage: relaymodel.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
			TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
		},
	}, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

// BuildTestRequest keeps max_tokens at the top level; the Messages API
// requires it even for probes.
func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &Request{
		Model:     modelName,
		MaxTokens: 10,
		Messages:  []Message{{Role: "user", Content: "Hi"}},
	}
}
