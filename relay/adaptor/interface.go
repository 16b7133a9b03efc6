package adaptor

import (
	"context"

	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

// VendorModel is one entry from upstream model discovery.
type VendorModel struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Adaptor translates between the standardized OpenAI envelope and one
// vendor wire format. Implementations are stateless and built once at
// startup; any number of requests may use one concurrently.
type Adaptor interface {
	// ConvertRequest builds the vendor wire body. request.Model is already
	// the upstream model name.
	ConvertRequest(request *relaymodel.GeneralOpenAIRequest) (any, error)
	// ParseResponse maps a 200 upstream body to the standardized response.
	ParseResponse(body []byte, modelName string) (*relaymodel.TextResponse, error)
	// RewriteStreamChunk maps one upstream SSE line to an outbound frame.
	// ok=false drops the line.
	RewriteStreamChunk(line string) (frame string, ok bool)
	// BuildTestRequest returns the minimal connectivity-probe body.
	BuildTestRequest(modelName string) any
	GetChannelName() string
}

// ModelLister is the optional discovery capability: listing the models a
// credential can see.
type ModelLister interface {
	FetchModels(ctx context.Context, baseURL string, apiKey string) ([]VendorModel, error)
}
