package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is a dashboard login. SealedToken is the remote API access token,
// encrypted; it is never stored in the clear.
type Session struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	SealedToken []byte    `json:"-"`
	UserAgent   string    `json:"user_agent"`
	ClientIP    string    `json:"client_ip"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func CreateSession(db *sql.DB, session *Session) error {
	query := `
	INSERT INTO sessions (id, user_id, username, role, sealed_token, user_agent, client_ip, expires_at, created_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	session.CreatedAt = now
	session.LastSeenAt = now
	_, err = stmt.Exec(
		session.ID,
		session.UserID,
		session.Username,
		session.Role,
		session.SealedToken,
		session.UserAgent,
		session.ClientIP,
		session.ExpiresAt.Unix(),
		session.CreatedAt.Unix(),
		session.LastSeenAt.Unix(),
	)
	return err
}

// GetSessionByID returns a live session; expired rows read as not found.
func GetSessionByID(db *sql.DB, id string) (*Session, error) {
	query := `
	SELECT id, user_id, username, role, sealed_token, user_agent, client_ip, expires_at, created_at, last_seen_at
	FROM sessions
	WHERE id = ? AND expires_at > ?`

	var (
		session                        Session
		expiresAt, createdAt, lastSeen int64
	)
	err := db.QueryRow(query, id, time.Now().Unix()).Scan(
		&session.ID,
		&session.UserID,
		&session.Username,
		&session.Role,
		&session.SealedToken,
		&session.UserAgent,
		&session.ClientIP,
		&expiresAt,
		&createdAt,
		&lastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	session.ExpiresAt = time.Unix(expiresAt, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.LastSeenAt = time.Unix(lastSeen, 0)
	return &session, nil
}

func TouchSession(db *sql.DB, id string, seenAt time.Time) error {
	_, err := db.Exec(`UPDATE sessions SET last_seen_at = ? WHERE id = ?`, seenAt.Unix(), id)
	return err
}

func DeleteSessionByID(db *sql.DB, id string) error {
	query := `DELETE FROM sessions WHERE id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(id)
	return err
}

// DeleteSessionsForUser drops every session of a user and returns their IDs
// so callers can evict cached copies.
func DeleteSessionsForUser(db *sql.DB, userID int64) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func DeleteExpiredSessions(db *sql.DB, now time.Time) (int64, error) {
	result, err := db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
