package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/paperchat/backend/internal/models"
)

// Searcher is the external vector-search capability. The embedding and index
// implementation live behind this boundary.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
}

// SearchRetriever consolidates search results into one context string. For
// follow-up questions it folds the previous question into the query, and it
// drops chunks already present in prior turns' contexts so retrieval
// complements rather than duplicates the conversation.
type SearchRetriever struct {
	searcher Searcher
	topK     int
}

func NewSearchRetriever(searcher Searcher, topK int) *SearchRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &SearchRetriever{searcher: searcher, topK: topK}
}

var referentialWords = map[string]bool{
	"it": true, "that": true, "this": true, "these": true, "those": true,
	"they": true, "them": true, "its": true, "their": true,
}

var referentialPhrases = []string{
	"what about",
	"how about",
	"and the",
	"mentioned earlier",
	"the one",
	"tell me more",
	"more about",
	"why is that",
}

// isFollowUp reports whether a question refers back to earlier turns rather
// than standing on its own.
func isFollowUp(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range referentialPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	for _, word := range strings.Fields(q) {
		word = strings.Trim(word, ".,?!\"'")
		if referentialWords[word] {
			return true
		}
	}
	return false
}

func (r *SearchRetriever) Retrieve(ctx context.Context, question string, history []models.Turn) (string, error) {
	query := question
	if isFollowUp(question) && len(history) > 0 {
		// Disambiguate the referential question with the turn it most
		// likely refers to.
		prev := history[len(history)-1]
		query = prev.Question + " " + question
	}

	chunks, err := r.searcher.Search(ctx, query, r.topK)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	var fresh []string
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" || r.seenBefore(chunk, history) {
			continue
		}
		fresh = append(fresh, chunk)
	}

	return strings.Join(fresh, "\n\n"), nil
}

// seenBefore reports whether a chunk already appears in a prior turn's
// grounding context.
func (r *SearchRetriever) seenBefore(chunk string, history []models.Turn) bool {
	for _, turn := range history {
		if turn.Context != "" && strings.Contains(turn.Context, chunk) {
			return true
		}
	}
	return false
}
