package store

import (
	"context"
	"time"
)

// User represents a chat account.
//
// Password is stored and compared as plaintext; hardening authentication is
// out of scope for this server. IsActive is the persisted flag only; read
// APIs override it with live presence from the connection registry.
type User struct {
	ID       int64
	Login    string
	Password string
	IsActive bool
	IsBanned bool
}

// Message represents a persisted chat message. ToID 0 addresses the general
// channel rather than a real user.
type Message struct {
	ID      int64
	FromID  int64
	ToID    int64
	Content string
	SentAt  time.Time
	IsRead  bool
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user. The login must be unique.
	CreateUser(ctx context.Context, login, password string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByLogin retrieves a user by login.
	GetUserByLogin(ctx context.Context, login string) (*User, error)

	// ListUsers lists users with pagination.
	ListUsers(ctx context.Context, offset, limit int) ([]*User, error)

	// ListUsersByActive lists users filtered by the stored is_active flag.
	ListUsersByActive(ctx context.Context, active bool) ([]*User, error)

	// SetUserActive updates the stored is_active flag and returns the
	// updated user, or nil when the user does not exist.
	SetUserActive(ctx context.Context, id int64, active bool) (*User, error)

	// SetUserBanned updates the is_banned flag and returns the updated
	// user, or nil when the user does not exist.
	SetUserBanned(ctx context.Context, id int64, banned bool) (*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message stamped with the current time.
	CreateMessage(ctx context.Context, fromID, toID int64, content string) (*Message, error)

	// ListMessagesBetween returns the conversation between two users in
	// either direction, oldest first. A non-nil since restricts to
	// messages sent strictly after it.
	ListMessagesBetween(ctx context.Context, a, b int64, since *time.Time, offset, limit int) ([]*Message, error)

	// ListGeneralMessages returns general-channel messages, oldest first.
	ListGeneralMessages(ctx context.Context, since *time.Time, offset, limit int) ([]*Message, error)

	// MarkMessagesRead marks the given messages as read, skipping any not
	// addressed to receiverID. Reports whether the receiver exists.
	MarkMessagesRead(ctx context.Context, receiverID int64, ids []int64) (bool, error)

	// CountUnread counts unread messages to receiverID from senderID.
	CountUnread(ctx context.Context, receiverID, senderID int64) (int, error)

	// LatestMessageDate returns the timestamp of the newest message to
	// receiverID from senderID, or the zero time when there is none.
	LatestMessageDate(ctx context.Context, receiverID, senderID int64) (time.Time, error)

	// DeleteMessage removes a message. Reports whether a row was deleted.
	DeleteMessage(ctx context.Context, id int64) (bool, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
