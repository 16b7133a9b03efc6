package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuotaModel(t *testing.T, totalQuota int64) *ModelConfig {
	t.Helper()
	mc := &ModelConfig{Vendor: "openai", ModelName: "gpt-4o", ApiKey: "sk-test"}
	require.NoError(t, mc.Insert())
	if totalQuota > 0 {
		require.NoError(t, SyncQuota(mc.Id, totalQuota, QuotaSyncTypeManual))
	}
	return mc
}

func getStat(t *testing.T, modelId int) *QuotaStat {
	t.Helper()
	stats, err := GetQuotaStats(modelId)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	return stats[0]
}

func TestAddUsedQuotaRecomputesDerivedColumns(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 100)

	require.NoError(t, AddUsedQuota(mc.Id, 50))
	stat := getStat(t, mc.Id)
	assert.Equal(t, int64(50), stat.UsedQuota)
	assert.Equal(t, int64(50), stat.RemainQuota)
	assert.Equal(t, 50.0, stat.UsedRatio)

	reloaded, err := GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatusSufficient, reloaded.QuotaStatus)
}

func TestAddUsedQuotaNearExhaustTransition(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 100)

	require.NoError(t, AddUsedQuota(mc.Id, 85))
	reloaded, err := GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatusNearExhaust, reloaded.QuotaStatus)
}

func TestAddUsedQuotaExhaustedClampsRemain(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 100)

	require.NoError(t, AddUsedQuota(mc.Id, 105))
	stat := getStat(t, mc.Id)
	assert.Equal(t, int64(105), stat.UsedQuota)
	assert.Equal(t, int64(0), stat.RemainQuota)
	assert.Equal(t, 105.0, stat.UsedRatio)

	reloaded, err := GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatusExhausted, reloaded.QuotaStatus)
}

func TestAddUsedQuotaWithoutTotalKeepsStatus(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 0)

	require.NoError(t, AddUsedQuota(mc.Id, 1000))
	stat := getStat(t, mc.Id)
	assert.Equal(t, int64(1000), stat.UsedQuota)
	assert.Equal(t, 0.0, stat.UsedRatio)

	reloaded, err := GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatusSufficient, reloaded.QuotaStatus)
}

func TestAddUsedQuotaIgnoresNonPositive(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 100)

	require.NoError(t, AddUsedQuota(mc.Id, 0))
	require.NoError(t, AddUsedQuota(mc.Id, -5))
	assert.Equal(t, int64(0), getStat(t, mc.Id).UsedQuota)
}

func TestSyncQuotaRecomputes(t *testing.T) {
	require.NoError(t, SetupTestDatabase())
	mc := seedQuotaModel(t, 100)
	require.NoError(t, AddUsedQuota(mc.Id, 90))

	// raising the ceiling moves the model back to sufficient
	require.NoError(t, SyncQuota(mc.Id, 1000, QuotaSyncTypeManual))
	stat := getStat(t, mc.Id)
	assert.Equal(t, int64(1000), stat.TotalQuota)
	assert.Equal(t, int64(910), stat.RemainQuota)
	assert.Equal(t, 9.0, stat.UsedRatio)
	assert.Equal(t, QuotaSyncTypeManual, stat.SyncType)
	assert.NotZero(t, stat.LastSyncTime)

	reloaded, err := GetModelById(mc.Id)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatusSufficient, reloaded.QuotaStatus)
}

func TestRoundRatio(t *testing.T) {
	assert.Equal(t, 0.0, roundRatio(50, 0))
	assert.Equal(t, 33.33, roundRatio(1, 3))
	assert.Equal(t, 66.67, roundRatio(2, 3))
}
