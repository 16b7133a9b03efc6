package ollama

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/client"
	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "ollama"
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	// roles collapse to {user, assistant}; system prompts ride in a leading
	// user message since older models ignore a system role
	system, rest := request.SystemPrompt()
	messages := make([]relaymodel.Message, 0, len(rest)+1)
	if system != "" {
		messages = append(messages, relaymodel.Message{Role: "user", Content: "System: " + system})
	}
	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, relaymodel.Message{Role: role, Content: m.Content})
	}

	converted := &Request{
		Model:    request.Model,
		Messages: messages,
		Stream:   request.Stream,
	}
	if request.MaxTokens > 0 || request.Temperature != nil ||
		request.TopP != nil || request.TopK > 0 || request.Stop != nil {
		converted.Options = &Options{
			NumPredict:  request.MaxTokens,
			Temperature: request.Temperature,
			TopP:        request.TopP,
			TopK:        request.TopK,
			Stop:        request.StopSequences(),
		}
	}
	return converted, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal ollama response")
	}

	finishReason := response.DoneReason
	if finishReason == "" && response.Done {
		finishReason = "stop"
	}
	model := response.Model
	if model == "" {
		model = modelName
	}

	return &relaymodel.TextResponse{
		Id:      helper.ChatCompletionID(),
		Object:  "chat.completion",
		Created: helper.GetTimestamp(),
		Model:   model,
		Choices: []relaymodel.TextResponseChoice{{
			Index:        0,
			Message:      relaymodel.Message{Role: "assistant", Content: response.Message.Content},
			FinishReason: finishReason,
		}},
		Usage: relaymodel.Usage{
			PromptTokens:     response.PromptEvalCount,
			CompletionTokens: response.EvalCount,
			TotalTokens:      response.PromptEvalCount + response.EvalCount,
		},
	}, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &Request{
		Model:    modelName,
		Messages: []relaymodel.Message{{Role: "user", Content: "Hi"}},
		Stream:   false,
		Options:  &Options{NumPredict: 10},
	}
}

type tagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Details struct {
			ParameterSize string `json:"parameter_size"`
			Family        string `json:"family"`
		} `json:"details"`
	} `json:"models"`
}

// FetchModels lists locally pulled models via GET /api/tags. No credential
// is needed; the key is ignored.
func (a *Adaptor) FetchModels(ctx context.Context, baseURL string, apiKey string) ([]adaptor.VendorModel, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/api/tags"

	status, body, err := client.GetJSON(ctx, client.HTTPClient, url, nil, 30*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "fetch model list")
	}
	if status != 200 {
		return nil, errors.Errorf("fetch model list: status %d: %s", status, string(body))
	}

	var parsed tagsResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal model list")
	}

	var models []adaptor.VendorModel
	for _, m := range parsed.Models {
		description := m.Details.Family
		if m.Details.ParameterSize != "" {
			description += " " + m.Details.ParameterSize
		}
		models = append(models, adaptor.VendorModel{
			Id:          m.Name,
			Name:        m.Name,
			Description: strings.TrimSpace(description),
		})
	}
	return models, nil
}
