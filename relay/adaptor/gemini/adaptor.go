package gemini

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
	return "gemini"
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	system, rest := request.SystemPrompt()
	contents := make([]Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: m.Content}},
		})
	}

	converted := &Request{Contents: contents}
	if system != "" {
		converted.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	if request.Temperature != nil || request.MaxTokens > 0 ||
		request.TopP != nil || request.TopK > 0 || request.Stop != nil {
		converted.GenerationConfig = &GenerationConfig{
			Temperature:     request.Temperature,
			MaxOutputTokens: request.MaxTokens,
			TopP:            request.TopP,
			TopK:            request.TopK,
			StopSequences:   request.StopSequences(),
		}
	}
	return converted, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal gemini response")
	}
	if len(response.Candidates) == 0 {
		return nil, errors.New("gemini response has no candidates")
	}

	candidate := response.Candidates[0]
	var content strings.Builder
	for _, part := range candidate.Content.Parts {
		content.WriteString(part.Text)
	}

	return &relaymodel.TextResponse{
		Id:      helper.ChatCompletionID(),
		Object:  "chat.completion",
		Created: helper.GetTimestamp(),
		Model:   modelName,
		Choices: []relaymodel.TextResponseChoice{{
			Index:        0,
			Message:      relaymodel.Message{Role: "assistant", Content: content.String()},
			FinishReason: strings.ToLower(candidate.FinishReason),
		}},
		Usage: relaymodel.Usage{
			PromptTokens:     response.UsageMetadata.PromptTokenCount,
			CompletionTokens: response.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      response.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &Request{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "Hi"}}}},
		GenerationConfig: &GenerationConfig{
			MaxOutputTokens: 10,
		},
	}
}

type modelListResponse struct {
	Models []struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
	} `json:"models"`
}

// FetchModels lists generative models via GET /v1beta/models, keeping only
// the gemini family. The key rides in the query string rather than a header.
func (a *Adaptor) FetchModels(ctx context.Context, baseURL string, apiKey string) ([]adaptor.VendorModel, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/v1beta/models?key=" + apiKey

	status, body, err := client.GetJSON(ctx, client.HTTPClient, url, nil, 30*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "fetch model list")
	}
	if status != 200 {
		return nil, errors.Errorf("fetch model list: status %d: %s", status, string(body))
	}

	var parsed modelListResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal model list")
	}

	var models []adaptor.VendorModel
	for _, m := range parsed.Models {
		id := strings.TrimPrefix(m.Name, "models/")
		if !strings.Contains(strings.ToLower(id), "gemini") {
			continue
		}
		models = append(models, adaptor.VendorModel{
			Id:          id,
			Name:        m.DisplayName,
			Description: m.Description,
		})
	}
	return models, nil
}
