package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/offerboat/admin/internal/platform/storage/sqlitemigrate"
	"github.com/offerboat/admin/internal/services/admin/storage"
	"github.com/offerboat/admin/internal/services/admin/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so stored timestamps compare lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store provides a SQLite-backed store implementing admin storage interfaces.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutSession inserts or replaces a session record.
func (s *Store) PutSession(ctx context.Context, session storage.SessionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(session.Token) == "" {
		return fmt.Errorf("session token is required")
	}
	if session.ExpiresAt.IsZero() {
		return fmt.Errorf("session expiry is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO admin_sessions (session_id, token, user_name, role, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    token = excluded.token,
    user_name = excluded.user_name,
    role = excluded.role,
    expires_at = excluded.expires_at`,
		session.ID,
		session.Token,
		session.UserName,
		session.Role,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession loads a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (storage.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SessionRecord{}, err
	}
	var (
		record    storage.SessionRecord
		expiresAt string
		createdAt string
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT session_id, token, user_name, role, expires_at, created_at
FROM admin_sessions WHERE session_id = ?`, sessionID)
	if err := row.Scan(&record.ID, &record.Token, &record.UserName, &record.Role, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	var err error
	if record.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("parse session expiry: %w", err)
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("parse session created_at: %w", err)
	}
	return record, nil
}

// DeleteSession removes a session. Missing sessions are not an error.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// GetLoginAttempts loads the failure counter for a client.
func (s *Store) GetLoginAttempts(ctx context.Context, clientKey string) (storage.LoginAttempts, error) {
	if err := s.ready(ctx); err != nil {
		return storage.LoginAttempts{}, err
	}
	var (
		attempts    storage.LoginAttempts
		lastFailure string
		lockedAt    string
	)
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT client_key, failed, last_failure_at, locked_at
FROM login_attempts WHERE client_key = ?`, clientKey)
	if err := row.Scan(&attempts.ClientKey, &attempts.Failed, &lastFailure, &lockedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.LoginAttempts{}, storage.ErrNotFound
		}
		return storage.LoginAttempts{}, fmt.Errorf("get login attempts: %w", err)
	}
	var err error
	if attempts.LastFailureAt, err = parseOptionalTime(lastFailure); err != nil {
		return storage.LoginAttempts{}, fmt.Errorf("parse last failure: %w", err)
	}
	if attempts.LockedAt, err = parseOptionalTime(lockedAt); err != nil {
		return storage.LoginAttempts{}, fmt.Errorf("parse lock time: %w", err)
	}
	return attempts, nil
}

// PutLoginAttempts stores the failure counter for a client.
func (s *Store) PutLoginAttempts(ctx context.Context, attempts storage.LoginAttempts) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(attempts.ClientKey) == "" {
		return fmt.Errorf("client key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO login_attempts (client_key, failed, last_failure_at, locked_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(client_key) DO UPDATE SET
    failed = excluded.failed,
    last_failure_at = excluded.last_failure_at,
    locked_at = excluded.locked_at`,
		attempts.ClientKey,
		attempts.Failed,
		formatOptionalTime(attempts.LastFailureAt),
		formatOptionalTime(attempts.LockedAt),
	)
	if err != nil {
		return fmt.Errorf("put login attempts: %w", err)
	}
	return nil
}

// ClearLoginAttempts removes the failure counter for a client.
func (s *Store) ClearLoginAttempts(ctx context.Context, clientKey string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM login_attempts WHERE client_key = ?`, clientKey); err != nil {
		return fmt.Errorf("clear login attempts: %w", err)
	}
	return nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeFormat)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeFormat, value)
}

func formatOptionalTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return formatTime(value)
}

func parseOptionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseTime(value)
}

var _ storage.Store = (*Store)(nil)
