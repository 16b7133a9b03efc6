package qwen

import relaymodel "github.com/Chyrain/LLMGateway/relay/model"

type Input struct {
	Messages []relaymodel.Message `json:"messages"`
}

type Parameters struct {
	ResultFormat      string   `json:"result_format"`
	MaxOutputTokens   int      `json:"max_output_tokens,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	Stop              []string `json:"stop,omitempty"`
	IncrementalOutput bool     `json:"incremental_output,omitempty"`
}

// Request is the DashScope text-generation body.
// https://help.aliyun.com/zh/model-studio/developer-reference/use-qwen-by-calling-api
type Request struct {
	Model      string     `json:"model"`
	Input      Input      `json:"input"`
	Parameters Parameters `json:"parameters"`
}

type Choice struct {
	Message      relaymodel.Message `json:"message"`
	FinishReason string             `json:"finish_reason"`
}

type Output struct {
	Choices []Choice `json:"choices"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Response struct {
	RequestId string `json:"request_id"`
	Output    Output `json:"output"`
	Usage     Usage  `json:"usage"`
}
