package spark

import relaymodel "github.com/Chyrain/LLMGateway/relay/model"

type Header struct {
	AppId string `json:"app_id,omitempty"`
	Uid   string `json:"uid,omitempty"`
}

type Chat struct {
	Domain      string   `json:"domain"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
}

type Parameter struct {
	Chat Chat `json:"chat"`
}

type RequestMessage struct {
	Text []relaymodel.Message `json:"text"`
}

type Payload struct {
	Message RequestMessage `json:"message"`
}

// Request is the Spark chat body. Everything rides in a three-level envelope
// of header, parameter and payload.
type Request struct {
	Header    Header    `json:"header"`
	Parameter Parameter `json:"parameter"`
	Payload   Payload   `json:"payload"`
}

type ResponseHeader struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Sid     string `json:"sid"`
}

type ResponseChoices struct {
	Status int                  `json:"status"`
	Seq    int                  `json:"seq"`
	Text   []relaymodel.Message `json:"text"`
}

type ResponseUsageText struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ResponseUsage struct {
	Text ResponseUsageText `json:"text"`
}

type ResponsePayload struct {
	Choices ResponseChoices `json:"choices"`
	Usage   ResponseUsage   `json:"usage"`
}

type Response struct {
	Header  ResponseHeader  `json:"header"`
	Payload ResponsePayload `json:"payload"`
}
