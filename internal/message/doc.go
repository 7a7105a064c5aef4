// Package message defines the SMS message model and its SQLite-backed
// persistence. The store is the source of truth for the inbox surface:
// list and detail reads, read-state transitions, deletion, and the
// inserts performed when the transport delivers inbound messages.
package message
