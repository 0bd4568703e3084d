package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Fleet pass operations

// StartPass records a new fleet pass
func (db *DB) StartPass(passID string, passNumber, accountCount int, proxyMode bool) error {
	_, err := db.conn.Exec(`
		INSERT INTO fleet_passes (id, pass_number, account_count, proxy_mode, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, passID, passNumber, accountCount, proxyMode, StatusRunning, time.Now())
	if err != nil {
		return fmt.Errorf("failed to start pass: %w", err)
	}
	return nil
}

// CompletePass closes a pass with its account tallies
func (db *DB) CompletePass(passID string, succeeded, failed int) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		var startedAt time.Time
		err := tx.QueryRow(`SELECT started_at FROM fleet_passes WHERE id = ?`, passID).Scan(&startedAt)
		if err == sql.ErrNoRows {
			return fmt.Errorf("pass not found: %s", passID)
		}
		if err != nil {
			return err
		}

		now := time.Now()
		_, err = tx.Exec(`
			UPDATE fleet_passes
			SET status = ?, succeeded = ?, failed = ?, completed_at = ?, duration_ms = ?
			WHERE id = ?
		`, StatusCompleted, succeeded, failed, now, now.Sub(startedAt).Milliseconds(), passID)
		if err != nil {
			return fmt.Errorf("failed to complete pass: %w", err)
		}
		return nil
	})
}

// GetPass retrieves a pass by id
func (db *DB) GetPass(passID string) (*FleetPass, error) {
	pass := &FleetPass{}
	err := db.conn.QueryRow(`
		SELECT id, pass_number, account_count, proxy_mode, status,
		       succeeded, failed, started_at, completed_at, duration_ms
		FROM fleet_passes
		WHERE id = ?
	`, passID).Scan(
		&pass.ID, &pass.PassNumber, &pass.AccountCount, &pass.ProxyMode, &pass.Status,
		&pass.Succeeded, &pass.Failed, &pass.StartedAt, &pass.CompletedAt, &pass.DurationMs,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pass not found: %s", passID)
	}
	if err != nil {
		return nil, err
	}
	return pass, nil
}

// GetRecentPasses returns the latest passes, newest first
func (db *DB) GetRecentPasses(limit int) ([]*FleetPass, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(`
		SELECT id, pass_number, account_count, proxy_mode, status,
		       succeeded, failed, started_at, completed_at, duration_ms
		FROM fleet_passes
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passes := []*FleetPass{}
	for rows.Next() {
		pass := &FleetPass{}
		if err := rows.Scan(
			&pass.ID, &pass.PassNumber, &pass.AccountCount, &pass.ProxyMode, &pass.Status,
			&pass.Succeeded, &pass.Failed, &pass.StartedAt, &pass.CompletedAt, &pass.DurationMs,
		); err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return passes, rows.Err()
}
