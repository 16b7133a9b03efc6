package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/common/logger"
)

const (
	ModelStatusDisabled = 0
	ModelStatusEnabled  = 1

	ConnectStatusUnreachable = 0
	ConnectStatusReachable   = 1

	QuotaStatusExhausted   = 0
	QuotaStatusNearExhaust = 1
	QuotaStatusSufficient  = 2
)

// ModelConfig is one configured upstream model. (vendor, model_name) is
// unique; priority orders dispatch (lower wins).
type ModelConfig struct {
	Id            int    `json:"id"`
	Vendor        string `json:"vendor" gorm:"type:varchar(64);uniqueIndex:idx_vendor_model,priority:1"`
	ModelName     string `json:"model_name" gorm:"type:varchar(255);uniqueIndex:idx_vendor_model,priority:2"`
	ApiBase       string `json:"api_base" gorm:"type:varchar(512)"`
	ApiPath       string `json:"api_path" gorm:"type:varchar(255)"`
	ApiSpec       string `json:"api_spec" gorm:"type:varchar(32);default:''"`
	ApiKey        string `json:"api_key" gorm:"type:text"`
	Params        string `json:"params" gorm:"type:text"`
	Priority      int    `json:"priority" gorm:"default:100;index"`
	Status        int    `json:"status" gorm:"default:1"`
	ConnectStatus int    `json:"connect_status" gorm:"default:1"`
	QuotaStatus   int    `json:"quota_status" gorm:"default:2"`
	CreateTime    int64  `json:"create_time" gorm:"bigint"`
	UpdateTime    int64  `json:"update_time" gorm:"bigint"`
}

func (ModelConfig) TableName() string {
	return "model_config"
}

// GetParams decodes the free-form default parameters merged into outgoing
// requests. Invalid JSON yields an empty map rather than an error: a bad
// params blob must not take the model out of rotation.
func (m *ModelConfig) GetParams() map[string]any {
	if m.Params == "" {
		return nil
	}
	params := make(map[string]any)
	if err := json.Unmarshal([]byte(m.Params), &params); err != nil {
		logger.Logger.Warn("invalid params on model config, ignoring",
			zap.Int("model_id", m.Id), zap.Error(err))
		return nil
	}
	return params
}

func GetModelById(id int) (*ModelConfig, error) {
	if id == 0 {
		return nil, errors.New("id is empty")
	}
	var m ModelConfig
	if err := DB.First(&m, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "get model by id %d", id)
	}
	return &m, nil
}

func GetModelByVendorAndName(vendorTag string, modelName string) (*ModelConfig, error) {
	var m ModelConfig
	err := DB.First(&m, "vendor = ? AND model_name = ?", vendorTag, modelName).Error
	if err != nil {
		return nil, errors.Wrap(err, "get model by vendor and name")
	}
	return &m, nil
}

// ListModels returns records filtered by vendor and/or status, ordered by
// priority. Nil status means no status filter.
func ListModels(vendorTag string, status *int) ([]*ModelConfig, error) {
	var ms []*ModelConfig
	tx := DB.Order("priority asc, id asc")
	if vendorTag != "" {
		tx = tx.Where("vendor = ?", vendorTag)
	}
	if status != nil {
		tx = tx.Where("status = ?", *status)
	}
	if err := tx.Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	return ms, nil
}

// GetEnabledModels lists every enabled record regardless of connectivity,
// for the public /v1/models listing.
func GetEnabledModels() ([]*ModelConfig, error) {
	var ms []*ModelConfig
	err := DB.Where("status = ?", ModelStatusEnabled).
		Order("priority asc, id asc").Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "get enabled models")
	}
	return ms, nil
}

func (m *ModelConfig) Insert() error {
	m.CreateTime = helper.GetTimestamp()
	m.UpdateTime = m.CreateTime
	if err := DB.Create(m).Error; err != nil {
		return errors.Wrap(err, "insert model config")
	}
	// every record gets a quota row, keyed by id in both directions
	if err := initQuotaStat(m.Id); err != nil {
		return err
	}
	InvalidateCandidateCache()
	return nil
}

func (m *ModelConfig) Update() error {
	m.UpdateTime = helper.GetTimestamp()
	if err := DB.Model(m).Updates(m).Error; err != nil {
		return errors.Wrap(err, "update model config")
	}
	InvalidateCandidateCache()
	return nil
}

func (m *ModelConfig) Delete() error {
	if m.Id == 0 {
		return errors.New("id is empty")
	}
	if err := DB.Delete(m).Error; err != nil {
		return errors.Wrap(err, "delete model config")
	}
	if err := DB.Where("model_id = ?", m.Id).Delete(&QuotaStat{}).Error; err != nil {
		return errors.Wrap(err, "delete quota stat")
	}
	InvalidateCandidateCache()
	return nil
}

func UpdateModelStatus(id int, status int) error {
	err := DB.Model(&ModelConfig{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "update_time": helper.GetTimestamp()}).Error
	if err != nil {
		return errors.Wrapf(err, "update model %d status", id)
	}
	InvalidateCandidateCache()
	return nil
}

// UpdateConnectStatus persists a probe result.
func UpdateConnectStatus(id int, connectStatus int) error {
	err := DB.Model(&ModelConfig{}).Where("id = ?", id).
		Updates(map[string]any{"connect_status": connectStatus, "update_time": helper.GetTimestamp()}).Error
	if err != nil {
		return errors.Wrapf(err, "update model %d connect status", id)
	}
	InvalidateCandidateCache()
	return nil
}

// ListCandidates is the dispatch query: enabled and reachable records in
// strict priority order, ties broken by id.
func ListCandidates() ([]*ModelConfig, error) {
	var ms []*ModelConfig
	err := DB.Where("status = ? AND connect_status = ?", ModelStatusEnabled, ConnectStatusReachable).
		Order("priority asc, id asc").Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "list dispatch candidates")
	}
	return ms, nil
}

const candidateCacheKey = "gateway:candidates"

// CacheListCandidates serves ListCandidates through redis when enabled,
// bounded by CANDIDATE_CACHE_SECONDS. Cache failures fall back to the DB.
func CacheListCandidates(ctx context.Context) ([]*ModelConfig, error) {
	if !common.IsRedisEnabled() {
		return ListCandidates()
	}

	if cached, err := common.RedisGet(ctx, candidateCacheKey); err == nil {
		var ms []*ModelConfig
		if err = json.Unmarshal([]byte(cached), &ms); err == nil {
			return ms, nil
		}
		logger.Logger.Warn("invalid candidate cache payload, falling back to database", zap.Error(err))
	}

	ms, err := ListCandidates()
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(ms); err == nil {
		ttl := time.Second * time.Duration(config.CandidateCacheSeconds)
		if err = common.RedisSet(ctx, candidateCacheKey, string(payload), ttl); err != nil {
			logger.Logger.Warn("failed to cache candidate list", zap.Error(err))
		}
	}
	return ms, nil
}

// InvalidateCandidateCache drops the cached candidate list after any write
// that can change dispatch eligibility or ordering.
func InvalidateCandidateCache() {
	if !common.IsRedisEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := common.RedisDel(ctx, candidateCacheKey); err != nil {
		logger.Logger.Warn("failed to invalidate candidate cache", zap.Error(err))
	}
}
