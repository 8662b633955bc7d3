package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chatup/chatup-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if alice.ID == 0 || alice.Login != "alice" || !alice.IsActive || alice.IsBanned {
		t.Fatalf("unexpected new user: %+v", alice)
	}

	if _, err := s.CreateUser(ctx, "alice", "other"); err == nil {
		t.Fatal("duplicate login accepted")
	}

	byID, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Password != "secret" {
		t.Fatalf("unexpected password: %q", byID.Password)
	}

	byLogin, err := s.GetUserByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("get by login: %v", err)
	}
	if byLogin.ID != alice.ID {
		t.Fatalf("login lookup returned user %d, want %d", byLogin.ID, alice.ID)
	}

	if _, err := s.GetUserByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, login := range []string{"alice", "bob", "charlie"} {
		if _, err := s.CreateUser(ctx, login, "pw"); err != nil {
			t.Fatalf("create %s: %v", login, err)
		}
	}

	users, err := s.ListUsers(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}

	page, err := s.ListUsers(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list users paginated: %v", err)
	}
	if len(page) != 1 || page[0].Login != "bob" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestUserFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := s.SetUserActive(ctx, alice.ID, false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if updated == nil || updated.IsActive {
		t.Fatalf("expected inactive user, got %+v", updated)
	}

	banned, err := s.SetUserBanned(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("set banned: %v", err)
	}
	if banned == nil || !banned.IsBanned {
		t.Fatalf("expected banned user, got %+v", banned)
	}

	missing, err := s.SetUserActive(ctx, 999, true)
	if err != nil {
		t.Fatalf("set active on missing user: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	inactive, err := s.ListUsersByActive(ctx, false)
	if err != nil {
		t.Fatalf("list inactive: %v", err)
	}
	if len(inactive) != 1 || inactive[0].ID != alice.ID {
		t.Fatalf("unexpected inactive list: %+v", inactive)
	}

	active, err := s.ListUsersByActive(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active users, got %d", len(active))
	}
}

func TestMessageConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "pw")
	bob, _ := s.CreateUser(ctx, "bob", "pw")

	first, err := s.CreateMessage(ctx, alice.ID, bob.ID, "hi bob")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if first.IsRead {
		t.Fatal("new message already read")
	}
	if _, err := s.CreateMessage(ctx, bob.ID, alice.ID, "hi alice"); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if _, err := s.CreateMessage(ctx, alice.ID, 0, "hello everyone"); err != nil {
		t.Fatalf("create general message: %v", err)
	}

	// Both directions, oldest first, general excluded.
	conv, err := s.ListMessagesBetween(ctx, bob.ID, alice.ID, nil, 0, 100)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(conv) != 2 || conv[0].Content != "hi bob" || conv[1].Content != "hi alice" {
		t.Fatalf("unexpected conversation: %+v", conv)
	}

	since := first.SentAt
	later, err := s.ListMessagesBetween(ctx, bob.ID, alice.ID, &since, 0, 100)
	if err != nil {
		t.Fatalf("list conversation since: %v", err)
	}
	if len(later) != 1 || later[0].Content != "hi alice" {
		t.Fatalf("unexpected filtered conversation: %+v", later)
	}

	general, err := s.ListGeneralMessages(ctx, nil, 0, 100)
	if err != nil {
		t.Fatalf("list general: %v", err)
	}
	if len(general) != 1 || general[0].Content != "hello everyone" {
		t.Fatalf("unexpected general messages: %+v", general)
	}
}

func TestUnreadAndMarkRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "pw")
	bob, _ := s.CreateUser(ctx, "bob", "pw")

	m1, _ := s.CreateMessage(ctx, alice.ID, bob.ID, "one")
	m2, _ := s.CreateMessage(ctx, alice.ID, bob.ID, "two")
	toAlice, _ := s.CreateMessage(ctx, bob.ID, alice.ID, "back at you")

	count, err := s.CountUnread(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	// Ids not addressed to the receiver are skipped silently.
	found, err := s.MarkMessagesRead(ctx, bob.ID, []int64{m1.ID, toAlice.ID})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !found {
		t.Fatal("receiver reported missing")
	}

	count, _ = s.CountUnread(ctx, bob.ID, alice.ID)
	if count != 1 {
		t.Fatalf("expected 1 unread after marking, got %d", count)
	}
	count, _ = s.CountUnread(ctx, alice.ID, bob.ID)
	if count != 1 {
		t.Fatalf("foreign message was marked read, unread count %d", count)
	}

	if found, err := s.MarkMessagesRead(ctx, 999, []int64{m2.ID}); err != nil || found {
		t.Fatalf("expected found=false for unknown receiver, got found=%v err=%v", found, err)
	}
}

func TestLatestMessageDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "pw")
	bob, _ := s.CreateUser(ctx, "bob", "pw")

	latest, err := s.LatestMessageDate(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("latest on empty conversation: %v", err)
	}
	if !latest.IsZero() {
		t.Fatalf("expected zero time, got %v", latest)
	}

	s.CreateMessage(ctx, alice.ID, bob.ID, "old")
	newest, _ := s.CreateMessage(ctx, alice.ID, bob.ID, "new")

	latest, err = s.LatestMessageDate(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !latest.Equal(newest.SentAt) {
		t.Fatalf("latest = %v, want %v", latest, newest.SentAt)
	}

	if time.Since(latest) > time.Minute {
		t.Fatalf("latest suspiciously old: %v", latest)
	}
}

func TestDeleteMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "pw")
	msg, _ := s.CreateMessage(ctx, alice.ID, 0, "bye")

	deleted, err := s.DeleteMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}

	deleted, err = s.DeleteMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("second delete reported a row")
	}
}
