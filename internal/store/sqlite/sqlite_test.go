package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/roomhub/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	msgs := []*store.Message{
		{Room: "lobby", Author: "alice", Body: "hi", CreatedAt: at},
		{Room: "lobby", Author: "bob", Body: "hello", CreatedAt: at.Add(time.Second)},
		{Room: "vip", Author: "alice", Body: "secret", CreatedAt: at.Add(2 * time.Second)},
	}
	for i, m := range msgs {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if m.ID != int64(i+1) {
			t.Fatalf("expected id %d, got %d", i+1, m.ID)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE room = ?`, "lobby").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 lobby messages, got %d", count)
	}

	var author, body string
	if err := s.db.QueryRowContext(ctx, `SELECT author, body FROM messages WHERE id = ?`, 3).Scan(&author, &body); err != nil {
		t.Fatalf("select: %v", err)
	}
	if author != "alice" || body != "secret" {
		t.Fatalf("unexpected row: %s %s", author, body)
	}
}

func TestAppendMessageCanceledContext(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.AppendMessage(ctx, &store.Message{Room: "lobby", Author: "alice", Body: "hi", CreatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestNewWithSetupFailure(t *testing.T) {
	setupErr := errors.New("boom")
	_, err := NewWithSetup(":memory:", func(*sql.DB) error { return setupErr })
	if !errors.Is(err, setupErr) {
		t.Fatalf("expected setup error, got %v", err)
	}
}

func TestNewIsIdempotentOnExistingSchema(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(Schema); err != nil {
		t.Fatalf("reapply schema: %v", err)
	}
}
