package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Account run operations

const accountRunColumns = `
	id, pass_id, account_index, account_name, proxy, egress_ip, status,
	gacha_draws, pets_bred, missions_claimed, missions_entered,
	quests_claimed, achievements_claimed, season_tiers_claimed,
	started_at, completed_at, duration_ms, error_message`

func scanAccountRun(row interface{ Scan(...any) error }) (*AccountRun, error) {
	run := &AccountRun{}
	err := row.Scan(
		&run.ID, &run.PassID, &run.AccountIndex, &run.AccountName, &run.Proxy, &run.EgressIP, &run.Status,
		&run.GachaDraws, &run.PetsBred, &run.MissionsClaimed, &run.MissionsEntered,
		&run.QuestsClaimed, &run.AchievementsClaimed, &run.SeasonTiersClaimed,
		&run.StartedAt, &run.CompletedAt, &run.DurationMs, &run.ErrorMessage,
	)
	return run, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StartAccountRun records an account entering a pass and returns the run id
func (db *DB) StartAccountRun(passID string, accountIndex int, accountName, proxy string) (int64, error) {
	result, err := db.conn.Exec(`
		INSERT INTO account_runs (pass_id, account_index, account_name, proxy, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, passID, accountIndex, nullable(accountName), nullable(proxy), StatusRunning, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to start account run: %w", err)
	}
	return result.LastInsertId()
}

// CompleteAccountRun stores the outcome counters of a finished run
func (db *DB) CompleteAccountRun(runID int64, egressIP string, metrics RunMetrics) error {
	return db.finishAccountRun(runID, StatusCompleted, egressIP, metrics, nil)
}

// FailAccountRun marks a run failed or timed out
func (db *DB) FailAccountRun(runID int64, status, egressIP string, metrics RunMetrics, errorMessage string) error {
	if status != StatusFailed && status != StatusTimeout {
		return fmt.Errorf("invalid failure status %q", status)
	}
	return db.finishAccountRun(runID, status, egressIP, metrics, &errorMessage)
}

func (db *DB) finishAccountRun(runID int64, status, egressIP string, m RunMetrics, errorMessage *string) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		var startedAt time.Time
		if err := tx.QueryRow(`SELECT started_at FROM account_runs WHERE id = ?`, runID).Scan(&startedAt); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("account run not found: %d", runID)
			}
			return err
		}

		now := time.Now()
		_, err := tx.Exec(`
			UPDATE account_runs
			SET status = ?, egress_ip = COALESCE(?, egress_ip),
			    gacha_draws = ?, pets_bred = ?, missions_claimed = ?, missions_entered = ?,
			    quests_claimed = ?, achievements_claimed = ?, season_tiers_claimed = ?,
			    completed_at = ?, duration_ms = ?, error_message = ?
			WHERE id = ?
		`, status, nullable(egressIP),
			m.GachaDraws, m.PetsBred, m.MissionsClaimed, m.MissionsEntered,
			m.QuestsClaimed, m.AchievementsClaimed, m.SeasonTiersClaimed,
			now, now.Sub(startedAt).Milliseconds(), errorMessage, runID)
		if err != nil {
			return fmt.Errorf("failed to finish account run: %w", err)
		}
		return nil
	})
}

// GetAccountRun retrieves a run by id
func (db *DB) GetAccountRun(runID int64) (*AccountRun, error) {
	run, err := scanAccountRun(db.conn.QueryRow(`SELECT `+accountRunColumns+` FROM account_runs WHERE id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account run not found: %d", runID)
	}
	return run, err
}

// GetRunsForPass returns every run of a pass in account order
func (db *DB) GetRunsForPass(passID string) ([]*AccountRun, error) {
	return db.queryRuns(`SELECT `+accountRunColumns+` FROM account_runs WHERE pass_id = ? ORDER BY account_index`, passID)
}

// GetAccountHistory returns the latest runs of one account
func (db *DB) GetAccountHistory(accountIndex, limit int) ([]*AccountRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.queryRuns(`SELECT `+accountRunColumns+` FROM account_runs WHERE account_index = ? ORDER BY started_at DESC, id DESC LIMIT ?`, accountIndex, limit)
}

func (db *DB) queryRuns(query string, args ...any) ([]*AccountRun, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*AccountRun{}
	for rows.Next() {
		run, err := scanAccountRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetAccountSummaries reads the per-account totals view
func (db *DB) GetAccountSummaries() ([]*AccountSummary, error) {
	rows, err := db.conn.Query(`
		SELECT account_index, total_runs, completed_runs, failed_runs,
		       gacha_draws, pets_bred, missions_entered, last_run_at
		FROM account_summary
		ORDER BY account_index
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*AccountSummary{}
	for rows.Next() {
		s := &AccountSummary{}
		var lastRun string
		if err := rows.Scan(&s.AccountIndex, &s.TotalRuns, &s.CompletedRuns, &s.FailedRuns,
			&s.GachaDraws, &s.PetsBred, &s.MissionsEntered, &lastRun); err != nil {
			return nil, err
		}
		// MAX() loses the column type, so SQLite hands back text
		s.LastRunAt, _ = parseSQLiteTime(lastRun)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
