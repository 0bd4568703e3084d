package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"jordanella.com/animix-go/internal/bot"
)

const sectionName = "Settings"

// NewDefaultConfig creates a config with default values
func NewDefaultConfig() *bot.Config {
	return &bot.Config{
		MaxThreads:                 10,
		MaxThreadsNoProxy:          10,
		DelayBetweenRequests:       1,
		DelayStartBotMin:           1,
		DelayStartBotMax:           15,
		MaxAmountGacha:             100,
		AutoMergePet:               true,
		SkipTasks:                  []string{},
		TargetClanID:               178,
		TimeSleep:                  120,
		AutoShowCountDownTimeSleep: true,
		AdvancedAntiDetection:      false,
		BaseURL:                    "https://pro-api.animix.tech",
		UseProxy:                   false,
		DataFile:                   "data.txt",
		ProxyFile:                  "proxy.txt",
		SessionFile:                "session_user_agents.json",
		DatabasePath:               "data/animix.db",
		LogLevel:                   "INFO",
		LogDir:                     "logs",
		AccountTimeout:             24 * time.Hour,
		Pacing:                     bot.DefaultPacing(),
	}
}

// Load reads .env, Settings.ini and ANIMIX_* overrides, in that order of
// precedence from lowest to highest. A missing INI file is not an error.
func Load(path string) (*bot.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := NewDefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := applyINI(cfg, path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromINI loads configuration from a Settings.ini file only
func LoadFromINI(path string) (*bot.Config, error) {
	cfg := NewDefaultConfig()
	if err := applyINI(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyINI(config *bot.Config, path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section(sectionName)

	// Concurrency
	config.MaxThreads = section.Key("MaxThreads").MustInt(config.MaxThreads)
	config.MaxThreadsNoProxy = section.Key("MaxThreadsNoProxy").MustInt(config.MaxThreadsNoProxy)

	// Pacing
	config.DelayBetweenRequests = section.Key("DelayBetweenRequests").MustInt(config.DelayBetweenRequests)
	if r := section.Key("DelayStartBot").String(); r != "" {
		lo, hi, err := parseRange(r)
		if err != nil {
			return fmt.Errorf("DelayStartBot: %w", err)
		}
		config.DelayStartBotMin, config.DelayStartBotMax = lo, hi
	}

	// Game behaviour
	config.MaxAmountGacha = section.Key("MaxAmountGacha").MustInt(config.MaxAmountGacha)
	config.AutoMergePet = section.Key("AutoMergePet").MustBool(config.AutoMergePet)
	config.TargetClanID = section.Key("TargetClanID").MustInt(config.TargetClanID)
	if skip := section.Key("SkipTasks").String(); skip != "" {
		config.SkipTasks = splitList(skip)
	}

	// Fleet loop
	config.TimeSleep = section.Key("TimeSleep").MustInt(config.TimeSleep)
	config.AutoShowCountDownTimeSleep = section.Key("AutoShowCountDownTimeSleep").MustBool(config.AutoShowCountDownTimeSleep)

	// Endpoint and proxies
	config.AdvancedAntiDetection = section.Key("AdvancedAntiDetection").MustBool(config.AdvancedAntiDetection)
	config.BaseURL = section.Key("BaseURL").MustString(config.BaseURL)
	config.UseProxy = section.Key("UseProxy").MustBool(config.UseProxy)

	// Files
	config.DataFile = section.Key("DataFile").MustString(config.DataFile)
	config.ProxyFile = section.Key("ProxyFile").MustString(config.ProxyFile)
	config.SessionFile = section.Key("SessionFile").MustString(config.SessionFile)
	config.UserAgentsFile = section.Key("UserAgentsFile").MustString(config.UserAgentsFile)
	config.DatabasePath = section.Key("DatabasePath").MustString(config.DatabasePath)

	// Logging
	config.LogLevel = section.Key("LogLevel").MustString(config.LogLevel)
	config.LogDir = section.Key("LogDir").MustString(config.LogDir)

	return nil
}

// parseRange parses "min,max" or "[min, max]"
func parseRange(s string) (int, int, error) {
	parts := splitList(strings.Trim(strings.TrimSpace(s), "[]"))
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two values, got %q", s)
	}
	var lo, hi int
	if _, err := fmt.Sscanf(parts[0], "%d", &lo); err != nil {
		return 0, 0, fmt.Errorf("bad lower bound %q: %w", parts[0], err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &hi); err != nil {
		return 0, 0, fmt.Errorf("bad upper bound %q: %w", parts[1], err)
	}
	return lo, hi, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// SaveToINI writes the INI-backed settings to path
func SaveToINI(config *bot.Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section(sectionName)

	section.Key("MaxThreads").SetValue(fmt.Sprintf("%d", config.MaxThreads))
	section.Key("MaxThreadsNoProxy").SetValue(fmt.Sprintf("%d", config.MaxThreadsNoProxy))
	section.Key("DelayBetweenRequests").SetValue(fmt.Sprintf("%d", config.DelayBetweenRequests))
	section.Key("DelayStartBot").SetValue(fmt.Sprintf("%d,%d", config.DelayStartBotMin, config.DelayStartBotMax))
	section.Key("MaxAmountGacha").SetValue(fmt.Sprintf("%d", config.MaxAmountGacha))
	section.Key("AutoMergePet").SetValue(fmt.Sprintf("%t", config.AutoMergePet))
	section.Key("TargetClanID").SetValue(fmt.Sprintf("%d", config.TargetClanID))
	section.Key("SkipTasks").SetValue(strings.Join(config.SkipTasks, ","))
	section.Key("TimeSleep").SetValue(fmt.Sprintf("%d", config.TimeSleep))
	section.Key("AutoShowCountDownTimeSleep").SetValue(fmt.Sprintf("%t", config.AutoShowCountDownTimeSleep))
	section.Key("AdvancedAntiDetection").SetValue(fmt.Sprintf("%t", config.AdvancedAntiDetection))
	section.Key("BaseURL").SetValue(config.BaseURL)
	section.Key("UseProxy").SetValue(fmt.Sprintf("%t", config.UseProxy))
	section.Key("DataFile").SetValue(config.DataFile)
	section.Key("ProxyFile").SetValue(config.ProxyFile)
	section.Key("SessionFile").SetValue(config.SessionFile)
	section.Key("UserAgentsFile").SetValue(config.UserAgentsFile)
	section.Key("DatabasePath").SetValue(config.DatabasePath)
	section.Key("LogLevel").SetValue(config.LogLevel)
	section.Key("LogDir").SetValue(config.LogDir)

	return cfg.SaveTo(path)
}
