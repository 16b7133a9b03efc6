package controller

import (
	"net/http"
	"strconv"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/model"
	relaycontroller "github.com/Chyrain/LLMGateway/relay/controller"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

// OpenAIModel is one entry of the public /v1/models listing.
type OpenAIModel struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ListOpenAIModels serves GET /v1/models: every enabled record plus a
// synthetic "auto" entry when at least one exists.
func ListOpenAIModels(c *gin.Context) {
	ms, err := model.GetEnabledModels()
	if err != nil {
		gmw.GetLogger(c).Error("failed to list models", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"message": "failed to list models",
				"type":    "llm_gateway_error",
			},
		})
		return
	}

	data := make([]OpenAIModel, 0, len(ms)+1)
	if len(ms) > 0 {
		data = append(data, OpenAIModel{
			Id:      "auto",
			Object:  "model",
			Created: helper.GetTimestamp(),
			OwnedBy: "llm-gateway",
		})
	}
	for _, m := range ms {
		data = append(data, OpenAIModel{
			Id:      m.ModelName,
			Object:  "model",
			Created: m.CreateTime,
			OwnedBy: m.Vendor,
		})
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "data": data})
}

func ListModelConfigs(c *gin.Context) {
	var statusFilter *int
	if raw := c.Query("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, "invalid status filter")
			return
		}
		statusFilter = &status
	}
	ms, err := model.ListModels(c.Query("vendor"), statusFilter)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, ms)
}

func GetModelConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, "invalid model id")
		return
	}
	mc, err := model.GetModelById(id)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, mc)
}

// CreateModelConfig inserts a record, filling url defaults from the vendor
// registry when left blank.
func CreateModelConfig(c *gin.Context) {
	mc := &model.ModelConfig{}
	if err := c.ShouldBindJSON(mc); err != nil {
		respondError(c, "invalid request body: "+err.Error())
		return
	}
	if mc.Vendor == "" || mc.ModelName == "" {
		respondError(c, "vendor and model_name are required")
		return
	}

	if entry, ok := vendor.GetEntry(mc.Vendor); ok {
		if mc.ApiBase == "" {
			mc.ApiBase = entry.DefaultBaseURL
		}
		if mc.ApiPath == "" {
			mc.ApiPath = entry.DefaultPath
		}
	}

	if err := mc.Insert(); err != nil {
		respondError(c, err.Error())
		return
	}
	model.RecordLog(model.LogTypeManage, mc.Id, map[string]any{
		"event":  "model_created",
		"vendor": mc.Vendor,
		"model":  mc.ModelName,
	}, model.LogStatusSuccess)
	respondOK(c, mc)
}

func UpdateModelConfig(c *gin.Context) {
	mc := &model.ModelConfig{}
	if err := c.ShouldBindJSON(mc); err != nil {
		respondError(c, "invalid request body: "+err.Error())
		return
	}
	if mc.Id == 0 {
		respondError(c, "id is required")
		return
	}
	if err := mc.Update(); err != nil {
		respondError(c, err.Error())
		return
	}
	model.RecordLog(model.LogTypeManage, mc.Id, map[string]any{
		"event":  "model_updated",
		"vendor": mc.Vendor,
		"model":  mc.ModelName,
	}, model.LogStatusSuccess)
	respondOK(c, mc)
}

func DeleteModelConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, "invalid model id")
		return
	}
	mc, err := model.GetModelById(id)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	if err = mc.Delete(); err != nil {
		respondError(c, err.Error())
		return
	}
	model.RecordLog(model.LogTypeManage, id, map[string]any{
		"event":  "model_deleted",
		"vendor": mc.Vendor,
		"model":  mc.ModelName,
	}, model.LogStatusSuccess)
	respondOK(c, nil)
}

func setModelStatus(c *gin.Context, status int) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, "invalid model id")
		return
	}
	if err = model.UpdateModelStatus(id, status); err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, nil)
}

func EnableModelConfig(c *gin.Context) {
	setModelStatus(c, model.ModelStatusEnabled)
}

func DisableModelConfig(c *gin.Context) {
	setModelStatus(c, model.ModelStatusDisabled)
}

// ProbeModelConfig triggers a connectivity probe and reports the result.
func ProbeModelConfig(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, "invalid model id")
		return
	}
	reachable, err := relaycontroller.ProbeModelById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, gin.H{"reachable": reachable})
}

// vendorTemplate is what the admin UI needs to prefill a new record.
type vendorTemplate struct {
	Vendor        string   `json:"vendor"`
	ApiBase       string   `json:"api_base"`
	ApiPath       string   `json:"api_path"`
	ApiSpec       string   `json:"api_spec"`
	StreamSupport bool     `json:"stream_support"`
	Models        []string `json:"models"`
}

// ListVendors serves the registry as creation templates.
func ListVendors(c *gin.Context) {
	tags := vendor.KnownVendors()
	templates := make([]vendorTemplate, 0, len(tags))
	for _, tag := range tags {
		entry, _ := vendor.GetEntry(tag)
		templates = append(templates, vendorTemplate{
			Vendor:        tag,
			ApiBase:       entry.DefaultBaseURL,
			ApiPath:       entry.DefaultPath,
			ApiSpec:       entry.Spec,
			StreamSupport: entry.StreamSupport,
			Models:        entry.Models,
		})
	}
	respondOK(c, templates)
}

type discoverRequest struct {
	Vendor  string `json:"vendor"`
	ApiBase string `json:"api_base"`
	ApiKey  string `json:"api_key"`
}

// DiscoverVendorModels serves POST /api/vendor/models: which models a
// credential can actually see.
func DiscoverVendorModels(c *gin.Context) {
	req := &discoverRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, "invalid request body: "+err.Error())
		return
	}
	if req.Vendor == "" {
		respondError(c, "vendor is required")
		return
	}
	result := relaycontroller.ListAvailableModels(c.Request.Context(), req.Vendor, req.ApiBase, req.ApiKey)
	respondOK(c, result)
}
