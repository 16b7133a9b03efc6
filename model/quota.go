package model

import (
	"math"
	"strconv"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/monitor"
)

const (
	QuotaSyncTypeManual = "manual"
	QuotaSyncTypeAuto   = "auto"
)

// QuotaStat tracks per-model token consumption. One row per ModelConfig,
// keyed by model_id.
type QuotaStat struct {
	Id           int     `json:"id"`
	ModelId      int     `json:"model_id" gorm:"uniqueIndex"`
	TotalQuota   int64   `json:"total_quota" gorm:"bigint;default:0"`
	UsedQuota    int64   `json:"used_quota" gorm:"bigint;default:0"`
	RemainQuota  int64   `json:"remain_quota" gorm:"bigint;default:0"`
	UsedRatio    float64 `json:"used_ratio" gorm:"default:0"`
	SyncType     string  `json:"sync_type" gorm:"type:varchar(16);default:'manual'"`
	LastSyncTime int64   `json:"last_sync_time" gorm:"bigint;default:0"`
	UpdateTime   int64   `json:"update_time" gorm:"bigint"`
}

func (QuotaStat) TableName() string {
	return "quota_stat"
}

func initQuotaStat(modelId int) error {
	stat := &QuotaStat{
		ModelId:    modelId,
		SyncType:   QuotaSyncTypeManual,
		UpdateTime: helper.GetTimestamp(),
	}
	if err := DB.Create(stat).Error; err != nil {
		return errors.Wrapf(err, "init quota stat for model %d", modelId)
	}
	return nil
}

func GetQuotaStats(modelId int) ([]*QuotaStat, error) {
	var stats []*QuotaStat
	tx := DB.Order("model_id asc")
	if modelId != 0 {
		tx = tx.Where("model_id = ?", modelId)
	}
	if err := tx.Find(&stats).Error; err != nil {
		return nil, errors.Wrap(err, "get quota stats")
	}
	return stats, nil
}

// quotaStatusFor derives the 3-valued health label from a used ratio.
func quotaStatusFor(usedRatio float64) int {
	switch {
	case usedRatio >= 100:
		return QuotaStatusExhausted
	case usedRatio >= config.QuotaAlertThreshold:
		return QuotaStatusNearExhaust
	default:
		return QuotaStatusSufficient
	}
}

func roundRatio(used int64, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(used)/float64(total)*100*100) / 100
}

// AddUsedQuota records totalTokens consumed by a successful unary response.
// The increment, derived columns, and the quota_status transition happen in
// one transaction; concurrent successes for the same model must not lose
// writes, so the row is updated in place with a SQL expression.
func AddUsedQuota(modelId int, totalTokens int) error {
	if totalTokens <= 0 {
		return nil
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&QuotaStat{}).Where("model_id = ?", modelId).
			Updates(map[string]any{
				"used_quota":  gorm.Expr("used_quota + ?", totalTokens),
				"update_time": helper.GetTimestamp(),
			}).Error
		if err != nil {
			return errors.Wrapf(err, "increment used quota for model %d", modelId)
		}

		var stat QuotaStat
		if err = tx.Where("model_id = ?", modelId).First(&stat).Error; err != nil {
			return errors.Wrapf(err, "reload quota stat for model %d", modelId)
		}

		remain := stat.TotalQuota - stat.UsedQuota
		if remain < 0 {
			remain = 0
		}
		ratio := roundRatio(stat.UsedQuota, stat.TotalQuota)
		err = tx.Model(&QuotaStat{}).Where("model_id = ?", modelId).
			Updates(map[string]any{"remain_quota": remain, "used_ratio": ratio}).Error
		if err != nil {
			return errors.Wrapf(err, "recompute quota for model %d", modelId)
		}
		monitor.QuotaUsedRatio.WithLabelValues(strconv.Itoa(modelId)).Set(ratio)

		// only meaningful when a total is configured
		if stat.TotalQuota > 0 {
			err = tx.Model(&ModelConfig{}).Where("id = ?", modelId).
				Update("quota_status", quotaStatusFor(ratio)).Error
			if err != nil {
				return errors.Wrapf(err, "update quota status for model %d", modelId)
			}
		}
		return nil
	})
}

// SyncQuota manually sets the total quota and recomputes the derived columns.
func SyncQuota(modelId int, totalQuota int64, syncType string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var stat QuotaStat
		if err := tx.Where("model_id = ?", modelId).First(&stat).Error; err != nil {
			return errors.Wrapf(err, "get quota stat for model %d", modelId)
		}

		stat.TotalQuota = totalQuota
		stat.RemainQuota = totalQuota - stat.UsedQuota
		if stat.RemainQuota < 0 {
			stat.RemainQuota = 0
		}
		stat.UsedRatio = roundRatio(stat.UsedQuota, totalQuota)
		monitor.QuotaUsedRatio.WithLabelValues(strconv.Itoa(modelId)).Set(stat.UsedRatio)
		stat.SyncType = syncType
		stat.LastSyncTime = helper.GetTimestamp()
		stat.UpdateTime = stat.LastSyncTime
		if err := tx.Save(&stat).Error; err != nil {
			return errors.Wrapf(err, "save quota stat for model %d", modelId)
		}

		if totalQuota > 0 {
			err := tx.Model(&ModelConfig{}).Where("id = ?", modelId).
				Update("quota_status", quotaStatusFor(stat.UsedRatio)).Error
			if err != nil {
				return errors.Wrapf(err, "update quota status for model %d", modelId)
			}
		}
		return nil
	})
}
