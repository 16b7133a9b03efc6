package controller

import (
	"encoding/json"
	"strings"

	"github.com/Chyrain/LLMGateway/relay/meta"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

// BuildUpstreamURL joins api_base and api_path. The base's trailing slash is
// stripped, and when the base already ends in /v1 and the path starts with
// /v1 the duplication collapses so /v1 appears exactly once.
func BuildUpstreamURL(apiBase string, apiPath string) string {
	base := strings.TrimRight(apiBase, "/")
	if apiPath != "" && !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	if strings.HasSuffix(base, "/v1") && (apiPath == "/v1" || strings.HasPrefix(apiPath, "/v1/")) {
		apiPath = strings.TrimPrefix(apiPath, "/v1")
	}
	return base + apiPath
}

// buildHeaders assembles the per-attempt header set: content negotiation,
// vendor auth, and spec-specific extras.
func buildHeaders(m *meta.Meta) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if m.APIKey != "" {
		name, value := m.AuthHeader()
		headers[name] = value
	}
	switch m.Spec {
	case vendor.SpecAnthropic:
		headers["anthropic-version"] = "2023-06-01"
	case vendor.SpecQwen:
		if m.IsStream {
			headers["X-DashScope-SSE"] = "enable"
		}
	}
	if m.IsStream {
		headers["Accept"] = "text/event-stream"
	}
	return headers
}

// mergeParams overlays the record's default parameters onto the marshaled
// body, touching only top-level keys the request left unset. Any decode
// problem returns the body unchanged.
func mergeParams(body []byte, params map[string]any) []byte {
	if len(params) == 0 {
		return body
	}
	decoded := make(map[string]any)
	if err := json.Unmarshal(body, &decoded); err != nil {
		return body
	}
	changed := false
	for k, v := range params {
		if _, exists := decoded[k]; !exists {
			decoded[k] = v
			changed = true
		}
	}
	if !changed {
		return body
	}
	merged, err := json.Marshal(decoded)
	if err != nil {
		return body
	}
	return merged
}

func excerpt(body []byte, limit int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
