package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/model"
)

// ListQuotaStats serves GET /api/quota/, optionally filtered by model_id.
func ListQuotaStats(c *gin.Context) {
	modelId := 0
	if raw := c.Query("model_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, "invalid model_id filter")
			return
		}
		modelId = parsed
	}
	stats, err := model.GetQuotaStats(modelId)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, stats)
}

type quotaSyncRequest struct {
	ModelId    int   `json:"model_id"`
	TotalQuota int64 `json:"total_quota"`
}

// SyncQuota serves POST /api/quota/sync: sets a model's total quota and
// recomputes the derived columns.
func SyncQuota(c *gin.Context) {
	req := &quotaSyncRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, "invalid request body: "+err.Error())
		return
	}
	if req.ModelId == 0 {
		respondError(c, "model_id is required")
		return
	}
	if err := model.SyncQuota(req.ModelId, req.TotalQuota, model.QuotaSyncTypeManual); err != nil {
		respondError(c, err.Error())
		return
	}
	model.RecordLog(model.LogTypeManage, req.ModelId, map[string]any{
		"event":       "quota_synced",
		"total_quota": req.TotalQuota,
	}, model.LogStatusSuccess)
	respondOK(c, nil)
}
