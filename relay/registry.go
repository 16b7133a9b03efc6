package relay

import (
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/relay/adaptor/anthropic"
	"github.com/Chyrain/LLMGateway/relay/adaptor/custom"
	"github.com/Chyrain/LLMGateway/relay/adaptor/gemini"
	"github.com/Chyrain/LLMGateway/relay/adaptor/ollama"
	"github.com/Chyrain/LLMGateway/relay/adaptor/openai"
	"github.com/Chyrain/LLMGateway/relay/adaptor/qwen"
	"github.com/Chyrain/LLMGateway/relay/adaptor/spark"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

var (
	openaiAdaptor    = &openai.Adaptor{}
	anthropicAdaptor = &anthropic.Adaptor{}
	geminiAdaptor    = &gemini.Adaptor{}
	qwenAdaptor      = &qwen.Adaptor{}
	sparkAdaptor     = &spark.Adaptor{}
	ollamaAdaptor    = &ollama.Adaptor{}
	customAdaptor    = &custom.Adaptor{}
)

// GetAdaptor returns the protocol adaptor for an API spec. Unrecognized
// specs fall back to the passthrough custom adaptor.
func GetAdaptor(spec string) adaptor.Adaptor {
	switch spec {
	case vendor.SpecOpenAI:
		return openaiAdaptor
	case vendor.SpecAnthropic:
		return anthropicAdaptor
	case vendor.SpecGemini:
		return geminiAdaptor
	case vendor.SpecQwen:
		return qwenAdaptor
	case vendor.SpecSpark:
		return sparkAdaptor
	case vendor.SpecOllama:
		return ollamaAdaptor
	default:
		return customAdaptor
	}
}

// GetModelLister returns the discovery implementation for a spec, or nil
// when the vendor exposes no listing endpoint.
func GetModelLister(spec string) adaptor.ModelLister {
	switch spec {
	case vendor.SpecOpenAI:
		return openaiAdaptor
	case vendor.SpecGemini:
		return geminiAdaptor
	case vendor.SpecOllama:
		return ollamaAdaptor
	case vendor.SpecCustom:
		return customAdaptor
	default:
		return nil
	}
}
