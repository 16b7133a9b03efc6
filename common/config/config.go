package config

import (
	"strings"
	"time"

	"github.com/Chyrain/LLMGateway/common/env"
)

var (
	// GatewayPort is the listening port. PORT (PaaS convention) overrides GATEWAY_PORT.
	GatewayPort = func() int {
		if v := strings.TrimSpace(env.String("PORT", "")); v != "" {
			return env.Int("PORT", 8080)
		}
		return env.Int("GATEWAY_PORT", 8080)
	}()

	// GatewayAPIKey is the credential callers must present as "Bearer <key>" on /v1.
	// Empty means any non-empty bearer token is accepted (single-operator deployments).
	GatewayAPIKey = strings.TrimSpace(env.String("GATEWAY_API_KEY", ""))

	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)
	// DebugSQLEnabled toggles per-query SQL logging when DEBUG_SQL=true.
	DebugSQLEnabled = env.Bool("DEBUG_SQL", false)

	// SQLDSN selects the backing store: postgres:// prefix for PostgreSQL,
	// any other non-empty value for MySQL, empty for SQLite.
	SQLDSN = strings.TrimSpace(env.String("SQL_DSN", ""))
	// SQLitePath is the SQLite database file used when SQL_DSN is unset.
	SQLitePath = env.String("SQLITE_PATH", "llm-gateway.db")
	// SQLiteBusyTimeout is passed to the SQLite driver in milliseconds.
	SQLiteBusyTimeout = env.Int("SQLITE_BUSY_TIMEOUT", 3000)

	SQLMaxIdleConns       = env.Int("SQL_MAX_IDLE_CONNS", 100)
	SQLMaxOpenConns       = env.Int("SQL_MAX_OPEN_CONNS", 1000)
	SQLMaxLifetimeSeconds = env.Int("SQL_MAX_LIFETIME", 60)

	// RedisConnString enables the candidate-list cache when set.
	RedisConnString = strings.TrimSpace(env.String("REDIS_CONN_STRING", ""))
	RedisPassword   = env.String("REDIS_PASSWORD", "")
	RedisMasterName = strings.TrimSpace(env.String("REDIS_MASTER_NAME", ""))
	// CandidateCacheSeconds bounds how stale the cached dispatch candidate list may be.
	CandidateCacheSeconds = env.Int("CANDIDATE_CACHE_SECONDS", 10)

	// RelayTimeout bounds a single unary upstream call.
	RelayTimeout = time.Second * time.Duration(env.Int("RELAY_TIMEOUT", 120))
	// StreamTimeout bounds a single streaming upstream call.
	StreamTimeout = time.Second * time.Duration(env.Int("STREAM_TIMEOUT", 300))
	// ProbeTimeout bounds a connectivity probe.
	ProbeTimeout = time.Second * time.Duration(env.Int("PROBE_TIMEOUT", 10))

	// QuotaAlertThreshold is the used_ratio percentage at which a model is
	// flagged near-exhaust.
	QuotaAlertThreshold = env.Float64("QUOTA_ALERT_THRESHOLD", 80)

	// ProbeFrequency triggers automatic connectivity probes of all enabled
	// models when greater than zero (seconds between rounds).
	ProbeFrequency = env.Int("PROBE_FREQUENCY", 0)

	// ProbeModel is the model name sent in probe requests for non-Claude vendors.
	ProbeModel = env.String("PROBE_MODEL", "gpt-3.5-turbo")
	// ProbeModelClaude is the model name sent in Claude probe requests.
	// The Anthropic API rejects requests without a real model id, so this
	// tracks a released snapshot and can be overridden as ids rotate.
	ProbeModelClaude = env.String("PROBE_MODEL_CLAUDE", "claude-sonnet-4-20250514")

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)
)
