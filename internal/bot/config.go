package bot

import (
	"fmt"
	"slices"
	"time"
)

// Config holds every setting the fleet and the per-account engine read.
// Values come from Settings.ini and may be overridden by ANIMIX_* variables.
type Config struct {
	// Concurrency
	MaxThreads        int `env:"ANIMIX_MAX_THREADS"`          // proxy mode
	MaxThreadsNoProxy int `env:"ANIMIX_MAX_THREADS_NO_PROXY"` // direct mode

	// Pacing, in seconds
	DelayBetweenRequests int `env:"ANIMIX_DELAY_BETWEEN_REQUESTS"`
	DelayStartBotMin     int `env:"ANIMIX_DELAY_START_BOT_MIN"`
	DelayStartBotMax     int `env:"ANIMIX_DELAY_START_BOT_MAX"`

	// Game behaviour
	MaxAmountGacha int      `env:"ANIMIX_MAX_AMOUNT_GACHA"`
	AutoMergePet   bool     `env:"ANIMIX_AUTO_MERGE_PET"`
	SkipTasks      []string `env:"ANIMIX_SKIP_TASKS"`
	TargetClanID   int      `env:"ANIMIX_TARGET_CLAN_ID"`

	// Fleet loop
	TimeSleep                  int  `env:"ANIMIX_TIME_SLEEP"` // minutes
	AutoShowCountDownTimeSleep bool `env:"ANIMIX_SHOW_COUNTDOWN"`

	// Endpoint
	AdvancedAntiDetection bool   `env:"ANIMIX_ADVANCED_ANTI_DETECTION"`
	BaseURL               string `env:"ANIMIX_BASE_URL"`

	// Proxy routing
	UseProxy bool `env:"ANIMIX_USE_PROXY"`

	// Files
	DataFile       string `env:"ANIMIX_DATA_FILE"`
	ProxyFile      string `env:"ANIMIX_PROXY_FILE"`
	SessionFile    string `env:"ANIMIX_SESSION_FILE"`
	UserAgentsFile string `env:"ANIMIX_USER_AGENTS_FILE"`
	DatabasePath   string `env:"ANIMIX_DATABASE_PATH"`

	// Logging
	LogLevel string `env:"ANIMIX_LOG_LEVEL"`
	LogDir   string `env:"ANIMIX_LOG_DIR"`

	// Timing that is not exposed in Settings.ini
	AccountTimeout time.Duration `env:"ANIMIX_ACCOUNT_TIMEOUT"`
	Pacing         Pacing
}

// Pacing holds the fixed pauses between remote calls. Tests zero it out.
type Pacing struct {
	Stage       time.Duration // between orchestrator stages
	Short       time.Duration // after breeding, between mission steps
	Gacha       time.Duration // before each gacha batch
	Quest       time.Duration // between quest claims
	Achievement time.Duration // between achievement claims
	Batch       time.Duration // between fleet batches
}

// DefaultPacing returns the pauses the bot has always used
func DefaultPacing() Pacing {
	return Pacing{
		Stage:       2 * time.Second,
		Short:       1 * time.Second,
		Gacha:       2 * time.Second,
		Quest:       2 * time.Second,
		Achievement: 2 * time.Second,
		Batch:       5 * time.Second,
	}
}

// Concurrency returns the thread limit for the current proxy mode
func (c *Config) Concurrency() int {
	n := c.MaxThreadsNoProxy
	if c.UseProxy {
		n = c.MaxThreads
	}
	if n < 1 {
		return 1
	}
	return n
}

// IsSkipped reports whether a mission or quest code is in the skip list
func (c *Config) IsSkipped(code string) bool {
	return slices.Contains(c.SkipTasks, code)
}

// SleepInterval returns the pause between fleet passes
func (c *Config) SleepInterval() time.Duration {
	return time.Duration(c.TimeSleep) * time.Minute
}

// Validate rejects settings the fleet cannot run with
func (c *Config) Validate() error {
	if c.MaxThreads < 1 || c.MaxThreadsNoProxy < 1 {
		return fmt.Errorf("thread limits must be at least 1 (got %d/%d)", c.MaxThreads, c.MaxThreadsNoProxy)
	}
	if c.DelayStartBotMin < 0 || c.DelayStartBotMax < c.DelayStartBotMin {
		return fmt.Errorf("invalid start delay range [%d, %d]", c.DelayStartBotMin, c.DelayStartBotMax)
	}
	if c.MaxAmountGacha < 0 {
		return fmt.Errorf("gacha ceiling must not be negative (got %d)", c.MaxAmountGacha)
	}
	if c.TimeSleep < 0 {
		return fmt.Errorf("sleep minutes must not be negative (got %d)", c.TimeSleep)
	}
	if !c.AdvancedAntiDetection && c.BaseURL == "" {
		return fmt.Errorf("base URL is required when advanced anti detection is off")
	}
	if c.AccountTimeout <= 0 {
		return fmt.Errorf("account timeout must be positive (got %s)", c.AccountTimeout)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data file is required")
	}
	if c.UseProxy && c.ProxyFile == "" {
		return fmt.Errorf("proxy file is required in proxy mode")
	}
	return nil
}
