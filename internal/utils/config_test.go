package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfig_EnvOverridesYaml(t *testing.T) {
	config = Config{FreeDailyQuota: "3", SignedURLTTL: "2h"}
	t.Cleanup(func() { config = Config{} })

	assert.Equal(t, 3, GetConfigInt("FREE_DAILY_QUOTA", 0))
	assert.Equal(t, 2*time.Hour, GetConfigDuration("SIGNED_URL_TTL", time.Hour))

	t.Setenv("FREE_DAILY_QUOTA", "5")
	assert.Equal(t, 5, GetConfigInt("FREE_DAILY_QUOTA", 0))
}

func TestGetConfig_Defaults(t *testing.T) {
	config = Config{AnalysisBackoffBase: "soon"}
	t.Cleanup(func() { config = Config{} })

	assert.Equal(t, 2*time.Second, GetConfigDuration("ANALYSIS_BACKOFF_BASE", 2*time.Second))
	assert.Equal(t, 3, GetConfigInt("ANALYSIS_MAX_ATTEMPTS", 3))
	assert.True(t, GetConfigBool("STORAGE_ENABLED", true))
	assert.Equal(t, "openai", GetConfigDefault("LLM_PROVIDER", "openai"))
	assert.Equal(t, "", GetConfig("NOT_A_KEY"))
}
