package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Chyrain/LLMGateway/common/client"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/monitor"
	"github.com/Chyrain/LLMGateway/relay"
	"github.com/Chyrain/LLMGateway/relay/meta"
	"github.com/Chyrain/LLMGateway/relay/vendor"
)

// probeReachable interprets a probe outcome. 429 proves the endpoint is
// live even though the credential is throttled; 5xx and transport errors
// are treated optimistically so a transient upstream outage does not
// quarantine a valid record.
func probeReachable(status int, err error) bool {
	if err != nil {
		return true
	}
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return status == http.StatusTooManyRequests
	}
	return true
}

// ProbeModelConfig sends a minimal test request to the record's upstream and
// persists the resulting connect_status.
func ProbeModelConfig(ctx context.Context, mc *model.ModelConfig) (bool, error) {
	m := meta.FromModelConfig(mc, "", false)

	probeModel := mc.ModelName
	if probeModel == "" {
		if m.Spec == vendor.SpecAnthropic {
			probeModel = config.ProbeModelClaude
		} else {
			probeModel = config.ProbeModel
		}
	}

	a := relay.GetAdaptor(m.Spec)
	body, err := json.Marshal(a.BuildTestRequest(probeModel))
	if err != nil {
		return false, errors.Wrap(err, "marshal test request")
	}

	url := BuildUpstreamURL(m.BaseURL, m.APIPath)
	start := time.Now()
	status, _, reqErr := client.PostJSON(ctx, client.ProbeHTTPClient, url, buildHeaders(m), body, config.ProbeTimeout)
	reachable := probeReachable(status, reqErr)

	logger.Logger.Info("probed upstream",
		zap.Int("model_id", mc.Id),
		zap.String("vendor", mc.Vendor),
		zap.String("model", mc.ModelName),
		zap.Int("status", status),
		zap.Bool("reachable", reachable),
		zap.Duration("elapsed", time.Since(start)))
	monitor.RecordProbe(mc.Vendor, reachable)

	connectStatus := model.ConnectStatusUnreachable
	if reachable {
		connectStatus = model.ConnectStatusReachable
	}
	if mc.ConnectStatus != connectStatus {
		model.RecordLog(model.LogTypeSystem, mc.Id, map[string]any{
			"event":     "connect_status_change",
			"vendor":    mc.Vendor,
			"model":     mc.ModelName,
			"reachable": reachable,
			"status":    status,
		}, model.LogStatusSuccess)
	}
	if err = model.UpdateConnectStatus(mc.Id, connectStatus); err != nil {
		return reachable, err
	}
	return reachable, nil
}

// ProbeModelById resolves the record then probes it.
func ProbeModelById(ctx context.Context, id int) (bool, error) {
	mc, err := model.GetModelById(id)
	if err != nil {
		return false, err
	}
	return ProbeModelConfig(ctx, mc)
}

// StartPeriodicProbe launches a background loop probing every enabled
// record each PROBE_FREQUENCY seconds. A zero frequency disables it.
func StartPeriodicProbe(ctx context.Context) {
	if config.ProbeFrequency <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(time.Duration(config.ProbeFrequency) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeAllEnabled(ctx)
			}
		}
	}()
	logger.Logger.Info("periodic probing enabled",
		zap.Int("frequency_seconds", config.ProbeFrequency))
}

func probeAllEnabled(ctx context.Context) {
	status := model.ModelStatusEnabled
	ms, err := model.ListModels("", &status)
	if err != nil {
		logger.Logger.Error("failed to list models for probing", zap.Error(err))
		return
	}
	for _, mc := range ms {
		if ctx.Err() != nil {
			return
		}
		if _, err = ProbeModelConfig(ctx, mc); err != nil {
			logger.Logger.Warn("probe failed",
				zap.Int("model_id", mc.Id), zap.Error(err))
		}
	}
}
