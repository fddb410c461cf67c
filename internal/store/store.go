// Package store persists sessions and their message logs and reconstructs
// question/answer turns from them. Two implementations satisfy the same
// contract: a relational one on Postgres and a document-oriented one on
// Redis. All pairing and ordering semantics live above the backend boundary;
// a backend only has to return raw messages in insertion order.
package store

import (
	"context"
	"time"

	"github.com/paperchat/backend/internal/models"
)

// Store is the backend-agnostic persistence contract used by the API layer.
//
// Unknown session ids are soft: GetHistory returns an empty slice and
// DeleteSession is a no-op. Errors are reserved for backend failures.
type Store interface {
	// CreateSession inserts a new session with the sentinel title and
	// returns its id.
	CreateSession(ctx context.Context) (string, error)

	// GetHistory returns the reconstructed turns for a session in the
	// order they were recorded.
	GetHistory(ctx context.Context, sessionID string) ([]models.Turn, error)

	// RecordTurn appends a user message followed by an assistant message.
	// The session is created if it does not exist, and its title is set
	// from the question if it still carries the sentinel.
	RecordTurn(ctx context.Context, sessionID, question, answer, contextText string) error

	// ListSessions returns all sessions, most recently created first.
	ListSessions(ctx context.Context) ([]models.Session, error)

	// DeleteSession removes a session and all of its messages.
	DeleteSession(ctx context.Context, sessionID string) error

	// Sweep deletes every session created before now-maxAge, messages
	// first. Deletion is all-or-nothing per session; no atomicity spans
	// sessions.
	Sweep(ctx context.Context, maxAge time.Duration) error
}
