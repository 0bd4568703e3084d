package database

import (
	"time"
)

// Pass and run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
)

// FleetPass is one full sweep over every account
type FleetPass struct {
	ID           string     `db:"id"`
	PassNumber   int        `db:"pass_number"`
	AccountCount int        `db:"account_count"`
	ProxyMode    bool       `db:"proxy_mode"`
	Status       string     `db:"status"`
	Succeeded    int        `db:"succeeded"`
	Failed       int        `db:"failed"`
	StartedAt    time.Time  `db:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	DurationMs   *int64     `db:"duration_ms"`
}

// AccountRun is one account's run within a pass
type AccountRun struct {
	ID           int64   `db:"id"`
	PassID       string  `db:"pass_id"`
	AccountIndex int     `db:"account_index"`
	AccountName  *string `db:"account_name"`
	Proxy        *string `db:"proxy"`
	EgressIP     *string `db:"egress_ip"`
	Status       string  `db:"status"`

	RunMetrics

	StartedAt    time.Time  `db:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	DurationMs   *int64     `db:"duration_ms"`
	ErrorMessage *string    `db:"error_message"`
}

// RunMetrics are the outcome counters of an account run
type RunMetrics struct {
	GachaDraws          int `db:"gacha_draws"`
	PetsBred            int `db:"pets_bred"`
	MissionsClaimed     int `db:"missions_claimed"`
	MissionsEntered     int `db:"missions_entered"`
	QuestsClaimed       int `db:"quests_claimed"`
	AchievementsClaimed int `db:"achievements_claimed"`
	SeasonTiersClaimed  int `db:"season_tiers_claimed"`
}

// ErrorLog is one collected account failure
type ErrorLog struct {
	ID            int64     `db:"id"`
	PassID        *string   `db:"pass_id"`
	AccountRunID  *int64    `db:"account_run_id"`
	AccountIndex  *int      `db:"account_index"`
	ErrorCategory string    `db:"error_category"`
	ErrorSeverity string    `db:"error_severity"`
	ErrorMessage  string    `db:"error_message"`
	OccurredAt    time.Time `db:"occurred_at"`
}

// AccountSummary is a row of the account_summary view
type AccountSummary struct {
	AccountIndex    int       `db:"account_index"`
	TotalRuns       int       `db:"total_runs"`
	CompletedRuns   int       `db:"completed_runs"`
	FailedRuns      int       `db:"failed_runs"`
	GachaDraws      int       `db:"gacha_draws"`
	PetsBred        int       `db:"pets_bred"`
	MissionsEntered int       `db:"missions_entered"`
	LastRunAt       time.Time `db:"last_run_at"`
}
