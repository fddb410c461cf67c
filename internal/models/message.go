package models

import "time"

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one utterance in a session's append-only log. Context is only
// meaningful on assistant messages, where it holds the grounding text the
// answer was produced from.
//
// Seq is an explicit per-session insertion counter persisted at write time.
// Both backends order by it, so reconstruction never depends on a backend's
// native sort key or its timestamp granularity.
type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"type:varchar(36);index;not null" json:"session_id"`
	Seq       int64     `gorm:"index:idx_session_seq;not null" json:"seq"`
	Role      Role      `gorm:"type:varchar(10);check:role IN ('user', 'assistant')" json:"role"`
	Content   string    `json:"content"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
