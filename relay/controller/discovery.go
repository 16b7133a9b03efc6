package controller

import (
	"context"

	"github.com/Laisky/zap"

	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/relay"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

// DiscoveryResult is the outcome of asking a vendor which models the given
// credential can see.
type DiscoveryResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Models  []adaptor.VendorModel `json:"models"`
}

// ListAvailableModels queries the vendor's listing endpoint when one
// exists, falling back to the registry's static builtin list.
func ListAvailableModels(ctx context.Context, vendorTag string, apiBase string, apiKey string) *DiscoveryResult {
	entry, known := vendor.GetEntry(vendorTag)
	if apiBase == "" {
		apiBase = entry.DefaultBaseURL
	}

	spec := vendor.ResolveSpec("", vendorTag)
	if lister := relay.GetModelLister(spec); lister != nil && apiBase != "" {
		models, err := lister.FetchModels(ctx, apiBase, apiKey)
		if err == nil {
			return &DiscoveryResult{Success: true, Models: models}
		}
		logger.Logger.Warn("model discovery fell back to builtin list",
			zap.String("vendor", vendorTag), zap.Error(err))
		if fallback := staticModels(entry); len(fallback) > 0 {
			return &DiscoveryResult{
				Success: true,
				Message: "live listing failed, returning builtin models: " + err.Error(),
				Models:  fallback,
			}
		}
		return &DiscoveryResult{Success: false, Message: err.Error(), Models: []adaptor.VendorModel{}}
	}

	if !known {
		return &DiscoveryResult{Success: false, Message: "unknown vendor: " + vendorTag, Models: []adaptor.VendorModel{}}
	}
	return &DiscoveryResult{Success: true, Models: staticModels(entry)}
}

func staticModels(entry vendor.Entry) []adaptor.VendorModel {
	models := make([]adaptor.VendorModel, 0, len(entry.Models))
	for _, name := range entry.Models {
		models = append(models, adaptor.VendorModel{Id: name, Name: name})
	}
	return models
}
