package meta

import (
	"time"

	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

// Meta carries everything one dispatch attempt needs about its upstream:
// resolved URL parts, credentials, translation spec, and the caller's
// original model selection for logging.
type Meta struct {
	ModelId   int
	Vendor    string
	Spec      string
	ModelName string
	BaseURL   string
	APIPath   string
	APIKey    string
	// Params are the record's free-form defaults merged into the outgoing body.
	Params map[string]any
	Entry  vendor.Entry

	IsStream bool
	// RequestedModel is the model name from the raw user request
	RequestedModel string
	StartTime      time.Time
}

// FromModelConfig resolves a record against the vendor registry, filling URL
// and auth defaults the record leaves blank.
func FromModelConfig(mc *model.ModelConfig, requestedModel string, isStream bool) *Meta {
	entry, _ := vendor.GetEntry(mc.Vendor)

	baseURL := mc.ApiBase
	if baseURL == "" {
		baseURL = entry.DefaultBaseURL
	}
	apiPath := mc.ApiPath
	if apiPath == "" {
		apiPath = entry.DefaultPath
	}
	if apiPath == "" {
		apiPath = "/v1/chat/completions"
	}

	return &Meta{
		ModelId:        mc.Id,
		Vendor:         mc.Vendor,
		Spec:           vendor.ResolveSpec(mc.ApiSpec, mc.Vendor),
		ModelName:      mc.ModelName,
		BaseURL:        baseURL,
		APIPath:        apiPath,
		APIKey:         mc.ApiKey,
		Params:         mc.GetParams(),
		Entry:          entry,
		IsStream:       isStream,
		RequestedModel: requestedModel,
		StartTime:      time.Now(),
	}
}

// AuthHeader returns the header name/value pair for this upstream. A vendor
// without a registry entry authenticates like OpenAI.
func (m *Meta) AuthHeader() (string, string) {
	header := m.Entry.AuthHeader
	if header == "" {
		header = "Authorization"
	}
	if header == "Authorization" {
		format := m.Entry.AuthFormat
		if format == "" {
			format = "Bearer"
		}
		return header, format + " " + m.APIKey
	}
	return header, m.APIKey
}
