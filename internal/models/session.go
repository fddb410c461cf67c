package models

import "time"

// SentinelTitle is the placeholder title a session carries until its first
// recorded turn replaces it with the opening question.
const SentinelTitle = "New Chat"

// TitleMaxLen bounds session titles to the leading runes of the first question.
const TitleMaxLen = 50

// Session represents one conversation thread.
type Session struct {
	ID        string    `gorm:"type:varchar(36);primary_key" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TruncateTitle trims a candidate title to TitleMaxLen runes.
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) > TitleMaxLen {
		return string(r[:TitleMaxLen])
	}
	return s
}
