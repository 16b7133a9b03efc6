package helper

import (
	"fmt"

	"github.com/Chyrain/LLMGateway/common/random"
)

const RequestIdKey = "X-Gateway-Request-Id"

func GenRequestID() string {
	return random.GetUUID()
}

func MessageWithRequestId(message string, id string) string {
	return fmt.Sprintf("%s (request id: %s)", message, id)
}

// ChatCompletionID generates an OpenAI-style completion id for responses
// whose upstream did not supply one.
func ChatCompletionID() string {
	return "chatcmpl-" + random.GetUUID()
}
