package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the messages table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id INTEGER NOT NULL DEFAULT 0,
			address TEXT NOT NULL,
			body TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			kind TEXT NOT NULL DEFAULT 'inbox'
				CHECK (kind IN ('inbox', 'sent', 'draft', 'outbox', 'failed'))
		) STRICT;
		CREATE INDEX idx_messages_timestamp ON messages(timestamp DESC);
		CREATE INDEX idx_messages_read ON messages(read);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedMessage inserts a message and returns its assigned ID.
func seedMessage(t *testing.T, repo *SQLiteRepository, address, body string, ts int64, read bool) string {
	t.Helper()

	msg := &Message{
		Address:   address,
		Body:      body,
		Timestamp: ts,
		Read:      read,
		Kind:      KindInbox,
	}
	if err := repo.Insert(context.Background(), msg); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return msg.ID
}

func TestSQLiteRepository_Insert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("assigns id and defaults", func(t *testing.T) {
		msg := &Message{Address: "+15551234567", Body: "hello"}

		if err := repo.Insert(ctx, msg); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if msg.ID == "" {
			t.Error("Insert() did not assign an ID")
		}
		if msg.Kind != KindInbox {
			t.Errorf("Insert() kind = %q, want %q", msg.Kind, KindInbox)
		}
		if msg.Timestamp == 0 {
			t.Error("Insert() did not default the timestamp")
		}
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		msg := &Message{Address: "+15551234567", Body: "x", Kind: Kind("spam")}

		err := repo.Insert(ctx, msg)
		if !errors.Is(err, ErrInvalidKind) {
			t.Errorf("Insert() error = %v, want ErrInvalidKind", err)
		}
	})
}

func TestSQLiteRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedMessage(t, repo, "+15551230001", "first", 1700000000000, false)

	t.Run("returns stored message", func(t *testing.T) {
		got, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Address != "+15551230001" || got.Body != "first" {
			t.Errorf("GetByID() = %+v, want seeded message", got)
		}
		if got.Read {
			t.Error("GetByID() read = true, want false")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "999999")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "abc")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByID() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	seedMessage(t, repo, "+15551230001", "oldest", 1000, true)
	seedMessage(t, repo, "+15551230002", "middle", 2000, false)
	seedMessage(t, repo, "+447700900123", "newest", 3000, false)

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.List(ctx, ListFilter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("List() returned %d messages, want 3", len(got))
		}
		if got[0].Body != "newest" || got[2].Body != "oldest" {
			t.Errorf("List() order = [%s %s %s], want newest first",
				got[0].Body, got[1].Body, got[2].Body)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := repo.List(ctx, ListFilter{Limit: 2})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List() returned %d messages, want 2", len(got))
		}
		if got[0].Body != "newest" {
			t.Errorf("List() first = %q, want newest", got[0].Body)
		}
	})

	t.Run("unread only", func(t *testing.T) {
		got, err := repo.List(ctx, ListFilter{UnreadOnly: true})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List() returned %d messages, want 2 unread", len(got))
		}
		for _, m := range got {
			if m.Read {
				t.Errorf("List() returned read message %s", m.ID)
			}
		}
	})

	t.Run("from substring is case-insensitive", func(t *testing.T) {
		got, err := repo.List(ctx, ListFilter{FromContains: "4477"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 1 || got[0].Body != "newest" {
			t.Fatalf("List() = %+v, want the +447700900123 message", got)
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		got, err := repo.List(ctx, ListFilter{UnreadOnly: true, FromContains: "555", Limit: 5})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 1 || got[0].Body != "middle" {
			t.Fatalf("List() = %+v, want only the unread +1555 message", got)
		}
	})

	t.Run("empty store returns empty slice", func(t *testing.T) {
		empty := NewSQLiteRepository(setupTestDB(t))
		got, err := empty.List(ctx, ListFilter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("List() = %v, want empty non-nil slice", got)
		}
	})
}

func TestSQLiteRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		c, err := repo.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if c.Total != 0 || c.Unread != 0 {
			t.Errorf("Counts() = %+v, want zeros", c)
		}
	})

	t.Run("mixed read state", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			seedMessage(t, repo, "+15551230001", fmt.Sprintf("msg-%d", i), int64(1000+i), i%2 == 0)
		}

		c, err := repo.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if c.Total != 5 {
			t.Errorf("Counts() total = %d, want 5", c.Total)
		}
		if c.Unread != 2 {
			t.Errorf("Counts() unread = %d, want 2", c.Unread)
		}
	})
}

func TestSQLiteRepository_MarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedMessage(t, repo, "+15551230001", "mark me", 1000, false)

	t.Run("marks unread message", func(t *testing.T) {
		if err := repo.MarkRead(ctx, id); err != nil {
			t.Fatalf("MarkRead() error = %v", err)
		}

		got, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if !got.Read {
			t.Error("MarkRead() did not set read flag")
		}
	})

	t.Run("idempotent on already-read message", func(t *testing.T) {
		if err := repo.MarkRead(ctx, id); err != nil {
			t.Errorf("MarkRead() second call error = %v, want nil", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		err := repo.MarkRead(ctx, "424242")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("MarkRead() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedMessage(t, repo, "+15551230001", "delete me", 1000, false)

	t.Run("deletes existing message", func(t *testing.T) {
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		_, err := repo.GetByID(ctx, id)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("deleting again fails", func(t *testing.T) {
		err := repo.Delete(ctx, id)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestKind_Valid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindInbox, true},
		{KindSent, true},
		{KindDraft, true},
		{KindOutbox, true},
		{KindFailed, true},
		{Kind("spam"), false},
		{Kind(""), false},
	}

	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.want {
			t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
