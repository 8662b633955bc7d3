package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chatup/chatup-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	login     TEXT NOT NULL UNIQUE,
	password  TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	is_banned BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	from_id INTEGER NOT NULL REFERENCES users(id),
	to_id   INTEGER NOT NULL,
	content TEXT NOT NULL,
	sent_at DATETIME NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_to_from ON messages(to_id, from_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// the schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

const userColumns = "id, login, password, is_active, is_banned"

func scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Login,
		&user.Password,
		&user.IsActive,
		&user.IsBanned,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, login, password string) (*store.User, error) {
	query := `
		INSERT INTO users (login, password)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, login, password)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByLogin retrieves a user by login.
func (s *SQLiteStore) GetUserByLogin(ctx context.Context, login string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, login))
}

// ListUsers lists users with pagination.
func (s *SQLiteStore) ListUsers(ctx context.Context, offset, limit int) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListUsersByActive lists users filtered by the stored is_active flag.
func (s *SQLiteStore) ListUsersByActive(ctx context.Context, active bool) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, active)
	if err != nil {
		return nil, fmt.Errorf("query users by status: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*store.User, error) {
	users := make([]*store.User, 0)
	for rows.Next() {
		var user store.User
		if err := rows.Scan(&user.ID, &user.Login, &user.Password, &user.IsActive, &user.IsBanned); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// SetUserActive updates the stored is_active flag.
func (s *SQLiteStore) SetUserActive(ctx context.Context, id int64, active bool) (*store.User, error) {
	return s.updateUserFlag(ctx, id, "is_active", active)
}

// SetUserBanned updates the is_banned flag.
func (s *SQLiteStore) SetUserBanned(ctx context.Context, id int64, banned bool) (*store.User, error) {
	return s.updateUserFlag(ctx, id, "is_banned", banned)
}

func (s *SQLiteStore) updateUserFlag(ctx context.Context, id int64, column string, value bool) (*store.User, error) {
	query := `UPDATE users SET ` + column + ` = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", column, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetUserByID(ctx, id)
}

// ==== MessageStore implementation ====

const messageColumns = "id, from_id, to_id, content, sent_at, is_read"

// CreateMessage persists a message stamped with the current time.
func (s *SQLiteStore) CreateMessage(ctx context.Context, fromID, toID int64, content string) (*store.Message, error) {
	query := `
		INSERT INTO messages (from_id, to_id, content, sent_at, is_read)
		VALUES (?, ?, ?, ?, 0)
	`
	result, err := s.db.ExecContext(ctx, query, fromID, toID, content, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getMessageByID(ctx, id)
}

func (s *SQLiteStore) getMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.FromID,
		&msg.ToID,
		&msg.Content,
		&msg.SentAt,
		&msg.IsRead,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return &msg, nil
}

// ListMessagesBetween returns the conversation between two users in either
// direction, oldest first.
func (s *SQLiteStore) ListMessagesBetween(ctx context.Context, a, b int64, since *time.Time, offset, limit int) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((to_id = ? AND from_id = ?) OR (to_id = ? AND from_id = ?))
	`
	args := []any{a, b, b, a}
	if since != nil {
		query += ` AND sent_at > ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY sent_at LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListGeneralMessages returns general-channel messages, oldest first.
func (s *SQLiteStore) ListGeneralMessages(ctx context.Context, since *time.Time, offset, limit int) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE to_id = 0
	`
	args := []any{}
	if since != nil {
		query += ` AND sent_at > ?`
		args = append(args, since.UTC())
	}
	query += ` ORDER BY sent_at LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query general messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]*store.Message, error) {
	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		err := rows.Scan(&msg.ID, &msg.FromID, &msg.ToID, &msg.Content, &msg.SentAt, &msg.IsRead)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// MarkMessagesRead marks the given messages as read. Messages addressed to
// someone other than receiverID are skipped silently.
func (s *SQLiteStore) MarkMessagesRead(ctx context.Context, receiverID int64, ids []int64) (bool, error) {
	if _, err := s.GetUserByID(ctx, receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if len(ids) == 0 {
		return true, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `UPDATE messages SET is_read = 1 WHERE to_id = ? AND id IN (` + placeholders + `)`

	args := make([]any, 0, len(ids)+1)
	args = append(args, receiverID)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("mark messages read: %w", err)
	}

	return true, nil
}

// CountUnread counts unread messages to receiverID from senderID.
func (s *SQLiteStore) CountUnread(ctx context.Context, receiverID, senderID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE to_id = ? AND from_id = ? AND is_read = 0
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, receiverID, senderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// LatestMessageDate returns the timestamp of the newest message to
// receiverID from senderID, or the zero time when there is none.
func (s *SQLiteStore) LatestMessageDate(ctx context.Context, receiverID, senderID int64) (time.Time, error) {
	query := `
		SELECT sent_at
		FROM messages
		WHERE to_id = ? AND from_id = ?
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var sentAt time.Time
	err := s.db.QueryRowContext(ctx, query, receiverID, senderID).Scan(&sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query latest message date: %w", err)
	}
	return sentAt, nil
}

// DeleteMessage removes a message by id.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
