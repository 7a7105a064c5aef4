package message

// Kind classifies where a message sits in its lifecycle, mirroring the
// folder model used by Android-style SMS stores.
type Kind string

const (
	KindInbox  Kind = "inbox"
	KindSent   Kind = "sent"
	KindDraft  Kind = "draft"
	KindOutbox Kind = "outbox"
	KindFailed Kind = "failed"
)

// Valid reports whether k is a recognised message kind.
func (k Kind) Valid() bool {
	switch k {
	case KindInbox, KindSent, KindDraft, KindOutbox, KindFailed:
		return true
	}
	return false
}

// Message is a single SMS record.
//
// IDs are opaque strings on the wire; the SQLite store backs them with
// an integer rowid. Timestamp is Unix milliseconds to match the values
// modem bridges report.
type Message struct {
	ID        string `json:"id"`
	ThreadID  int64  `json:"threadId"`
	Address   string `json:"address"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
	Kind      Kind   `json:"type"`
}

// Counts holds store-wide totals, always computed over the full store
// regardless of any list filtering.
type Counts struct {
	Total  int `json:"totalCount"`
	Unread int `json:"unreadCount"`
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	// Limit caps the number of returned messages. <= 0 means no cap.
	Limit int

	// UnreadOnly restricts results to unread messages.
	UnreadOnly bool

	// FromContains keeps only messages whose address contains the
	// given substring (case-insensitive).
	FromContains string
}
