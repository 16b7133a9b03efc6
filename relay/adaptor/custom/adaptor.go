package custom

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

// Adaptor handles self-hosted or unlisted endpoints that speak the OpenAI
// chat protocol. Bodies pass through untouched in both directions.
type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "custom"
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}
	return request, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response relaymodel.TextResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal response")
	}
	if response.Id == "" {
		response.Id = helper.ChatCompletionID()
	}
	response.Object = "chat.completion"
	if response.Created == 0 {
		response.Created = helper.GetTimestamp()
	}
	if response.Model == "" {
		response.Model = modelName
	}
	return &response, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &relaymodel.GeneralOpenAIRequest{
		Model:     modelName,
		Messages:  []relaymodel.Message{{Role: "user", Content: "Hi"}},
		MaxTokens: 10,
	}
}

type modelListResponse struct {
	Data []struct {
		Id string `json:"id"`
	} `json:"data"`
}

// FetchModels tries the OpenAI-style /v1/models listing. Unlike the hosted
// vendors the result is not filtered; a self-hosted box may serve anything.
func (a *Adaptor) FetchModels(ctx context.Context, baseURL string, apiKey string) ([]adaptor.VendorModel, error) {
	url := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(url, "/v1") {
		url += "/v1"
	}
	url += "/models"

	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	status, body, err := client.GetJSON(ctx, client.HTTPClient, url, headers, 30*time.Second)
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
	for _, m := range parsed.Data {
		models = append(models, adaptor.VendorModel{Id: m.Id, Name: m.Id})
	}
	return models, nil
}
