package database

import (
	"fmt"
	"time"
)

// Error logging operations

// LogError stores one collected account failure
func (db *DB) LogError(
	passID string,
	accountRunID *int64,
	accountIndex *int,
	category string,
	severity string,
	message string,
) (int64, error) {
	result, err := db.conn.Exec(`
		INSERT INTO error_log (
			pass_id, account_run_id, account_index, error_category,
			error_severity, error_message, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nullable(passID), accountRunID, accountIndex, category, severity, message, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert error log: %w", err)
	}
	return result.LastInsertId()
}

// GetRecentErrors returns the most recent errors across all accounts
func (db *DB) GetRecentErrors(limit int) ([]*ErrorLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(`
		SELECT id, pass_id, account_run_id, account_index, error_category,
		       error_severity, error_message, occurred_at
		FROM error_log
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errors := []*ErrorLog{}
	for rows.Next() {
		errorLog := &ErrorLog{}
		err := rows.Scan(
			&errorLog.ID, &errorLog.PassID, &errorLog.AccountRunID, &errorLog.AccountIndex,
			&errorLog.ErrorCategory, &errorLog.ErrorSeverity, &errorLog.ErrorMessage,
			&errorLog.OccurredAt,
		)
		if err != nil {
			return nil, err
		}
		errors = append(errors, errorLog)
	}

	return errors, rows.Err()
}

// GetErrorStatsByCategory counts errors per category in a time window
func (db *DB) GetErrorStatsByCategory(startDate, endDate time.Time) (map[string]int, error) {
	rows, err := db.conn.Query(`
		SELECT error_category, COUNT(*)
		FROM error_log
		WHERE occurred_at BETWEEN ? AND ?
		GROUP BY error_category
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[category] = count
	}
	return stats, rows.Err()
}

// DeleteOldErrors removes errors older than the given time
func (db *DB) DeleteOldErrors(olderThan time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM error_log WHERE occurred_at < ?`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
