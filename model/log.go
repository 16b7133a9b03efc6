package model

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/common/logger"
)

const (
	LogTypeDispatch = 1
	LogTypeManage   = 2
	LogTypeError    = 3
	LogTypeSystem   = 4

	LogStatusFailure = 0
	LogStatusSuccess = 1
)

// OperationLog is the audit trail: one row per dispatch attempt plus
// management events. Content is a JSON blob.
type OperationLog struct {
	Id         int    `json:"id"`
	LogType    int    `json:"log_type" gorm:"index"`
	ModelId    int    `json:"model_id" gorm:"index"`
	LogContent string `json:"log_content" gorm:"type:text"`
	Status     int    `json:"status" gorm:"default:1"`
	CreateTime int64  `json:"create_time" gorm:"bigint;index"`
}

func (OperationLog) TableName() string {
	return "operation_log"
}

// RecordLog persists a log row. Failures are logged and swallowed: the audit
// trail must never fail a request.
func RecordLog(logType int, modelId int, content map[string]any, status int) {
	payload, err := json.Marshal(content)
	if err != nil {
		logger.Logger.Error("failed to marshal log content", zap.Error(err))
		payload = []byte("{}")
	}
	row := &OperationLog{
		LogType:    logType,
		ModelId:    modelId,
		LogContent: string(payload),
		Status:     status,
		CreateTime: helper.GetTimestamp(),
	}
	if err := DB.Create(row).Error; err != nil {
		logger.Logger.Error("failed to record operation log",
			zap.Error(err),
			zap.Int("log_type", logType),
			zap.Int("model_id", modelId))
	}
}

// ListLogs returns rows newest-first. logType 0 means no type filter.
func ListLogs(logType int, startIdx int, num int) ([]*OperationLog, error) {
	var logs []*OperationLog
	tx := DB.Order("id desc")
	if logType != 0 {
		tx = tx.Where("log_type = ?", logType)
	}
	if num > 0 {
		tx = tx.Limit(num).Offset(startIdx)
	}
	if err := tx.Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "list operation logs")
	}
	return logs, nil
}
