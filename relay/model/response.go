package model

// TextResponseChoice is one completion choice in the standardized response.
type TextResponseChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// TextResponse is the standardized (OpenAI-shaped) chat-completion response
// the gateway returns for unary requests.
type TextResponse struct {
	Id      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []TextResponseChoice `json:"choices"`
	Usage   Usage                `json:"usage"`
}

// ChatCompletionsStreamResponse is the OpenAI SSE chunk shape the gateway
// re-emits on streaming responses.
type ChatCompletionsStreamResponse struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices any    `json:"choices"`
}
