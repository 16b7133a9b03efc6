package ollama

import relaymodel "github.com/Chyrain/LLMGateway/relay/model"

type Options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Request is the /api/chat body.
// https://github.com/ollama/ollama/blob/main/docs/api.md
type Request struct {
	Model    string               `json:"model"`
	Messages []relaymodel.Message `json:"messages"`
	Stream   bool                 `json:"stream"`
	Options  *Options             `json:"options,omitempty"`
}

type Response struct {
	Model           string             `json:"model"`
	CreatedAt       string             `json:"created_at"`
	Message         relaymodel.Message `json:"message"`
	Done            bool               `json:"done"`
	DoneReason      string             `json:"done_reason"`
	PromptEvalCount int                `json:"prompt_eval_count"`
	EvalCount       int                `json:"eval_count"`
}
