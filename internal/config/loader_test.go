package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `[Settings]
MaxThreads = 4
MaxThreadsNoProxy = 2
DelayBetweenRequests = 3
DelayStartBot = [5, 20]
MaxAmountGacha = 40
AutoMergePet = false
SkipTasks = 12, quest_daily ,
TargetClanID = 99
TimeSleep = 30
AutoShowCountDownTimeSleep = false
UseProxy = true
`

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Settings.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MaxThreads)
	assert.Equal(t, 100, cfg.MaxAmountGacha)
	assert.True(t, cfg.AutoMergePet)
	assert.Equal(t, 178, cfg.TargetClanID)
	assert.Equal(t, 120*time.Minute, cfg.SleepInterval())
	assert.Equal(t, 24*time.Hour, cfg.AccountTimeout)
	assert.Equal(t, 5*time.Second, cfg.Pacing.Batch)
}

func TestLoadFromINI(t *testing.T) {
	cfg, err := LoadFromINI(writeINI(t, sampleINI))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxThreads)
	assert.Equal(t, 2, cfg.MaxThreadsNoProxy)
	assert.Equal(t, 3, cfg.DelayBetweenRequests)
	assert.Equal(t, 5, cfg.DelayStartBotMin)
	assert.Equal(t, 20, cfg.DelayStartBotMax)
	assert.Equal(t, 40, cfg.MaxAmountGacha)
	assert.False(t, cfg.AutoMergePet)
	assert.Equal(t, []string{"12", "quest_daily"}, cfg.SkipTasks)
	assert.Equal(t, 99, cfg.TargetClanID)
	assert.False(t, cfg.AutoShowCountDownTimeSleep)
	assert.True(t, cfg.UseProxy)
	assert.Equal(t, 4, cfg.Concurrency())

	// untouched keys keep defaults
	assert.Equal(t, "data.txt", cfg.DataFile)
}

func TestLoadEnvOverridesINI(t *testing.T) {
	t.Setenv("ANIMIX_MAX_AMOUNT_GACHA", "7")
	t.Setenv("ANIMIX_SKIP_TASKS", "a,b")
	t.Setenv("ANIMIX_ACCOUNT_TIMEOUT", "90m")

	cfg, err := Load(writeINI(t, sampleINI))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxAmountGacha)
	assert.Equal(t, []string{"a", "b"}, cfg.SkipTasks)
	assert.Equal(t, 90*time.Minute, cfg.AccountTimeout)
	assert.Equal(t, 4, cfg.MaxThreads)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	_, err := Load(writeINI(t, "[Settings]\nMaxThreads = 0\n"))
	assert.Error(t, err)

	_, err = LoadFromINI(writeINI(t, "[Settings]\nDelayStartBot = 5\n"))
	assert.Error(t, err)
}

func TestLoadRejectsZeroAccountTimeout(t *testing.T) {
	t.Setenv("ANIMIX_ACCOUNT_TIMEOUT", "0s")

	_, err := Load(writeINI(t, sampleINI))
	assert.ErrorContains(t, err, "account timeout")
}

func TestParseRange(t *testing.T) {
	lo, hi, err := parseRange("[1, 15]")
	require.NoError(t, err)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 15, hi)

	lo, hi, err = parseRange("3,4")
	require.NoError(t, err)
	assert.Equal(t, 3, lo)
	assert.Equal(t, 4, hi)

	_, _, err = parseRange("x,4")
	assert.Error(t, err)
}

func TestSaveToINIRoundTrip(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxThreads = 6
	cfg.SkipTasks = []string{"5", "9"}
	cfg.DelayStartBotMin, cfg.DelayStartBotMax = 2, 8

	path := filepath.Join(t.TempDir(), "out.ini")
	require.NoError(t, SaveToINI(cfg, path))

	loaded, err := LoadFromINI(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.MaxThreads)
	assert.Equal(t, []string{"5", "9"}, loaded.SkipTasks)
	assert.Equal(t, 2, loaded.DelayStartBotMin)
	assert.Equal(t, 8, loaded.DelayStartBotMax)
}
