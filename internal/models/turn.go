package models

import "time"

// Turn is one question/answer exchange, derived on demand from a user message
// immediately followed by an assistant message. Turns are never persisted.
type Turn struct {
	TurnIndex int       `json:"turn"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Context   string    `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
