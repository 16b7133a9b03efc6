package spark

import (
	"encoding/json"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "spark"
}

// domainFor maps a public model name to the Spark domain string. Unknown
// names pass through unchanged so new domains work without a code change.
func domainFor(modelName string) string {
	switch strings.ToLower(modelName) {
	case "spark-lite":
		return "lite"
	case "spark-pro":
		return "generalv3"
	case "spark-max":
		return "generalv3.5"
	case "spark-4.0-ultra", "spark-ultra":
		return "4.0Ultra"
	default:
		return modelName
	}
}

func (a *Adaptor) ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error) {
	if request == nil {
		return nil, errors.New("request is nil")
	}

	system, rest := request.SystemPrompt()
	messages := make([]relaymodel.Message, 0, len(rest)+1)
	if system != "" {
		messages = append(messages, relaymodel.Message{Role: "system", Content: system})
	}
	messages = append(messages, rest...)

	return &Request{
		Header: Header{Uid: helper.GenRequestID()},
		Parameter: Parameter{Chat: Chat{
			Domain:      domainFor(request.Model),
			Temperature: request.Temperature,
			MaxTokens:   request.MaxTokens,
			TopK:        request.TopK,
		}},
		Payload: Payload{Message: RequestMessage{Text: messages}},
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal spark response")
	}
	if response.Header.Code != 0 {
		return nil, errors.Errorf("spark error %d: %s", response.Header.Code, response.Header.Message)
	}
	if len(response.Payload.Choices.Text) == 0 {
		return nil, errors.New("spark response has no text")
	}

	var content strings.Builder
	for _, segment := range response.Payload.Choices.Text {
		content.WriteString(segment.Content)
	}

	id := response.Header.Sid
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
			Message:      relaymodel.Message{Role: "assistant", Content: content.String()},
			FinishReason: "stop",
		}},
		Usage: relaymodel.Usage{
			PromptTokens:     response.Payload.Usage.Text.PromptTokens,
			CompletionTokens: response.Payload.Usage.Text.CompletionTokens,
			TotalTokens:      response.Payload.Usage.Text.TotalTokens,
		},
	}, nil
}

func (a *Adaptor) RewriteStreamChunk(line string) (string, bool) {
	return adaptor.RewriteSSELine(line)
}

func (a *Adaptor) BuildTestRequest(modelName string) any {
	return &Request{
		Header: Header{Uid: helper.GenRequestID()},
		Parameter: Parameter{Chat: Chat{
			Domain:    domainFor(modelName),
			MaxTokens: 10,
		}},
		Payload: Payload{Message: RequestMessage{
			Text: []relaymodel.Message{{Role: "user", Content: "Hi"}},
		}},
	}
}
