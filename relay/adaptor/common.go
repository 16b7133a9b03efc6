package adaptor

import (
	"encoding/json"
	"strings"

	"github.com/Chyrain/LLMGateway/common/helper"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

const (
	DataPrefix = "data:"
	Done       = "[DONE]"
	DoneFrame  = "data: " + Done + "\n\n"
)

// RewriteSSELine implements the shared stream-chunk discipline: [DONE] is
// re-emitted as the terminator, JSON payloads are rewrapped to the OpenAI
// chunk shape, and everything else (non-data lines, malformed JSON) is
// dropped without killing the stream.
func RewriteSSELine(line string) (string, bool) {
	if !strings.HasPrefix(line, DataPrefix) {
		return "", false
	}
	data := strings.TrimSpace(line[len(DataPrefix):])
	if data == Done {
		return DoneFrame, true
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return "", false
	}

	chunk := relaymodel.ChatCompletionsStreamResponse{
		Id:      helper.ChatCompletionID(),
		Object:  "chat.completion.chunk",
		Created: helper.GetTimestamp(),
		Model:   "unknown",
		Choices: []any{},
	}
	if id, ok := payload["id"].(string); ok && id != "" {
		chunk.Id = id
	}
	if created, ok := payload["created"].(float64); ok && created != 0 {
		chunk.Created = int64(created)
	}
	if m, ok := payload["model"].(string); ok && m != "" {
		chunk.Model = m
	}
	if choices, ok := payload["choices"]; ok {
		chunk.Choices = choices
	}

	out, err := json.Marshal(chunk)
	if err != nil {
		return "", false
	}
	return "data: " + string(out) + "\n\n", true
}
