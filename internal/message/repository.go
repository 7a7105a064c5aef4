package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Repository defines the interface for message persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a message by its identifier.
	// Returns ErrNotFound if the message does not exist.
	GetByID(ctx context.Context, id string) (*Message, error)

	// List retrieves messages newest-first, narrowed by filter.
	List(ctx context.Context, filter ListFilter) ([]Message, error)

	// Counts returns store-wide totals over the full, unfiltered store.
	Counts(ctx context.Context) (Counts, error)

	// Insert stores a new message and assigns its ID.
	Insert(ctx context.Context, msg *Message) error

	// MarkRead marks a message as read. Marking an already-read
	// message succeeds. Returns ErrNotFound if the message does
	// not exist.
	MarkRead(ctx context.Context, id string) error

	// Delete removes a message by ID.
	// Returns ErrNotFound if the message does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// parseID converts a wire ID to a store rowid. Non-numeric IDs cannot
// match any row, so they are reported as not found rather than as a
// malformed request.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return n, nil
}

// GetByID retrieves a message by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Message, error) {
	rowID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, thread_id, address, body, timestamp, read, kind
		FROM messages
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, rowID)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying message by id: %w", err)
	}
	return msg, nil
}

// List retrieves messages newest-first, narrowed by filter.
func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]Message, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, thread_id, address, body, timestamp, read, kind
		FROM messages`)

	var (
		conds []string
		args  []interface{}
	)
	if filter.UnreadOnly {
		conds = append(conds, "read = 0")
	}
	if filter.FromContains != "" {
		conds = append(conds, "instr(lower(address), lower(?)) > 0")
		args = append(args, filter.FromContains)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY timestamp DESC, id DESC")

	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

// Counts returns store-wide totals over the full, unfiltered store.
func (r *SQLiteRepository) Counts(ctx context.Context) (Counts, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN read = 0 THEN 1 ELSE 0 END), 0)
		FROM messages`

	var c Counts
	if err := r.db.QueryRowContext(ctx, query).Scan(&c.Total, &c.Unread); err != nil {
		return Counts{}, fmt.Errorf("counting messages: %w", err)
	}
	return c, nil
}

// Insert stores a new message and assigns its ID.
func (r *SQLiteRepository) Insert(ctx context.Context, msg *Message) error {
	if msg.Kind == "" {
		msg.Kind = KindInbox
	}
	if !msg.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, msg.Kind)
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO messages (thread_id, address, body, timestamp, read, kind)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		msg.ThreadID,
		msg.Address,
		msg.Body,
		msg.Timestamp,
		boolToInt(msg.Read),
		string(msg.Kind),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted message id: %w", err)
	}
	msg.ID = strconv.FormatInt(rowID, 10)
	return nil
}

// MarkRead marks a message as read.
func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	rowID, err := parseID(id)
	if err != nil {
		return err
	}

	// SQLite's changes() counts matched rows, so re-marking a read
	// message still reports one affected row.
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking mark-read result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a message by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	rowID, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts over sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(s scanner) (*Message, error) {
	var (
		msg    Message
		rowID  int64
		readIn int
		kind   string
	)
	if err := s.Scan(&rowID, &msg.ThreadID, &msg.Address, &msg.Body, &msg.Timestamp, &readIn, &kind); err != nil {
		return nil, err
	}
	msg.ID = strconv.FormatInt(rowID, 10)
	msg.Read = readIn != 0
	msg.Kind = Kind(kind)
	return &msg, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
