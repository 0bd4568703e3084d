package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database schema migration
type Migration struct {
	Version     int
	Description string
	Up          func(*sql.Tx) error
	Down        func(*sql.Tx) error
}

// migrations is the ordered list of all database migrations
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create schema_version table",
		Up:          migration001Up,
		Down:        migration001Down,
	},
	{
		Version:     2,
		Description: "Create fleet_passes table",
		Up:          migration002Up,
		Down:        migration002Down,
	},
	{
		Version:     3,
		Description: "Create account_runs table",
		Up:          migration003Up,
		Down:        migration003Down,
	},
	{
		Version:     4,
		Description: "Create error_log table",
		Up:          migration004Up,
		Down:        migration004Down,
	},
	{
		Version:     5,
		Description: "Create account_summary view",
		Up:          migration005Up,
		Down:        migration005Down,
	},
}

// LatestVersion is the schema version after all migrations
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations runs all pending database migrations
func (db *DB) RunMigrations() error {
	currentVersion, err := db.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	db.logger.Debug(fmt.Sprintf("Current database version: %d", currentVersion))

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		db.logger.Info(fmt.Sprintf("Running migration %d: %s", migration.Version, migration.Description))

		err := db.ExecTx(func(tx *sql.Tx) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			_, err := tx.Exec(`
				INSERT INTO schema_version (version, description, applied_at)
				VALUES (?, ?, ?)
			`, migration.Version, migration.Description, time.Now())

			return err
		})

		if err != nil {
			return err
		}
	}

	return nil
}

// getCurrentVersion returns the current schema version
func (db *DB) getCurrentVersion() (int, error) {
	// Check if schema_version table exists
	var tableExists bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableExists)

	if err != nil {
		return 0, err
	}

	if !tableExists {
		return 0, nil
	}

	var version int
	err = db.conn.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_version
	`).Scan(&version)

	if err != nil {
		return 0, err
	}

	return version, nil
}

// Migration 001: Schema version tracking table
func migration001Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version INTEGER NOT NULL UNIQUE,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	return err
}

func migration001Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS schema_version`)
	return err
}

// Migration 002: One row per fleet pass
func migration002Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE fleet_passes (
			id TEXT PRIMARY KEY,
			pass_number INTEGER NOT NULL,
			account_count INTEGER NOT NULL,
			proxy_mode BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running',

			succeeded INTEGER DEFAULT 0,
			failed INTEGER DEFAULT 0,

			started_at DATETIME NOT NULL,
			completed_at DATETIME,
			duration_ms INTEGER
		);

		CREATE INDEX idx_fleet_passes_started ON fleet_passes(started_at);
	`)
	return err
}

func migration002Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS fleet_passes`)
	return err
}

// Migration 003: One row per account per pass
func migration003Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE account_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pass_id TEXT NOT NULL,
			account_index INTEGER NOT NULL,
			account_name TEXT,
			proxy TEXT,
			egress_ip TEXT,
			status TEXT NOT NULL DEFAULT 'running',

			-- Outcome counters
			gacha_draws INTEGER DEFAULT 0,
			pets_bred INTEGER DEFAULT 0,
			missions_claimed INTEGER DEFAULT 0,
			missions_entered INTEGER DEFAULT 0,
			quests_claimed INTEGER DEFAULT 0,
			achievements_claimed INTEGER DEFAULT 0,
			season_tiers_claimed INTEGER DEFAULT 0,

			started_at DATETIME NOT NULL,
			completed_at DATETIME,
			duration_ms INTEGER,
			error_message TEXT,

			FOREIGN KEY (pass_id) REFERENCES fleet_passes(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_account_runs_pass ON account_runs(pass_id);
		CREATE INDEX idx_account_runs_account ON account_runs(account_index, started_at);
		CREATE INDEX idx_account_runs_status ON account_runs(status);
	`)
	return err
}

func migration003Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS account_runs`)
	return err
}

// Migration 004: Collected account failures
func migration004Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE error_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pass_id TEXT,
			account_run_id INTEGER,
			account_index INTEGER,
			error_category TEXT NOT NULL,
			error_severity TEXT NOT NULL,
			error_message TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,

			FOREIGN KEY (account_run_id) REFERENCES account_runs(id) ON DELETE SET NULL
		);

		CREATE INDEX idx_error_log_occurred ON error_log(occurred_at);
		CREATE INDEX idx_error_log_category ON error_log(error_category);
	`)
	return err
}

func migration004Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS error_log`)
	return err
}

// Migration 005: Per-account totals
func migration005Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE VIEW account_summary AS
		SELECT
			account_index,
			COUNT(*) AS total_runs,
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed_runs,
			SUM(CASE WHEN status IN ('failed', 'timeout') THEN 1 ELSE 0 END) AS failed_runs,
			SUM(gacha_draws) AS gacha_draws,
			SUM(pets_bred) AS pets_bred,
			SUM(missions_entered) AS missions_entered,
			MAX(started_at) AS last_run_at
		FROM account_runs
		GROUP BY account_index
	`)
	return err
}

func migration005Down(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP VIEW IF EXISTS account_summary`)
	return err
}
