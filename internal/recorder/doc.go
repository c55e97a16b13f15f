// Package recorder implements a batch writer for WebSocket channel
// events.
//
// Payloads are stored verbatim as JSONB in the channel_events table.
// The row id is a uuid derived from the channel and payload, so writes
// are append-only with ON CONFLICT DO NOTHING and a frame replayed
// after a reconnect deduplicates instead of inserting a second row.
package recorder
