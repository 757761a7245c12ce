package model

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetViewState decodes the stored state of a screen into dst. found is false
// when the user never saved one.
func GetViewState(db *sql.DB, userID int64, screen string, dst any) (bool, error) {
	var raw string
	err := db.QueryRow(`SELECT state_json FROM view_state WHERE user_id = ? AND screen = ?`, userID, screen).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("corrupt view state for user %d screen %q: %w", userID, screen, err)
	}
	return true, nil
}

func UpsertViewState(db *sql.DB, userID int64, screen string, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	_, err = db.Exec(`
	INSERT INTO view_state (user_id, screen, state_json, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, screen) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		userID, screen, string(raw), time.Now().Unix())
	return err
}
