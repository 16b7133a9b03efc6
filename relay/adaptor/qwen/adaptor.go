package qwen

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "qwen"
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}
	return &Request{
		Model: request.Model,
		Input: Input{Messages: request.Messages},
		Parameters: Parameters{
			ResultFormat:      "message",
			MaxOutputTokens:   request.MaxTokens,
			Temperature:       request.Temperature,
			TopP:              request.TopP,
			Stop:              request.StopSequences(),
			IncrementalOutput: request.Stream,
		},
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal qwen response")
	}
	if len(response.Output.Choices) == 0 {
		return nil, errors.New("qwen response has no choices")
	}

	choice := response.Output.Choices[0]
	id := response.RequestId
	if id == "" {
		id = helper.ChatCompletionID()
	}

	return &relaymodel.TextResponse{
		Id:      id,
		Object:  "chat.completion",
		Created: helper.GetTimestamp(),
		Model:   modelName,
		Choices: []relaymodel.TextResponseChoice{{
			Index:        0,
			Message:      relaymodel.Message{Role: "assistant", Content: choice.Message.Content},
			FinishReason: choice.FinishReason,
		}},
		Usage: relaymodel.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
	}, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &Request{
		Model: modelName,
		Input: Input{Messages: []relaymodel.Message{{Role: "user", Content: "Hi"}}},
		Parameters: Parameters{
			ResultFormat:    "message",
			MaxOutputTokens: 10,
		},
	}
}
