package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paperchat/backend/internal/models"
)

type ConversationRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id"`
}

type ConversationResponse struct {
	Answer    string        `json:"answer"`
	Context   string        `json:"context,omitempty"`
	SessionID string        `json:"session_id"`
	History   []models.Turn `json:"history"`
}

// Conversation answers one question in a session: fetch history, run the
// answer pipeline, record the new turn and return the refreshed history.
func (h *handler) Conversation(c *gin.Context) {
	var req ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "`question` must be a non-empty string"})
		return
	}

	ctx := c.Request.Context()

	sessionID := req.SessionID
	if sessionID == "" {
		var err error
		if sessionID, err = h.store.CreateSession(ctx); err != nil {
			log.Printf("Failed to create session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	history, err := h.store.GetHistory(ctx, sessionID)
	if err != nil {
		log.Printf("Failed to fetch history for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result, err := h.orchestrator.Run(ctx, question, history)
	if err != nil {
		// No partial answer ever leaves the pipeline.
		log.Printf("Pipeline failed for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.store.RecordTurn(ctx, sessionID, question, result.Answer, result.Context); err != nil {
		log.Printf("Failed to record turn for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updated, err := h.store.GetHistory(ctx, sessionID)
	if err != nil {
		log.Printf("Failed to refresh history for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ConversationResponse{
		Answer:    result.Answer,
		Context:   result.Context,
		SessionID: sessionID,
		History:   updated,
	})
}

// GetSessionHistory returns the reconstructed turns for a session. Unknown
// ids yield an empty list, not an error.
func (h *handler) GetSessionHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	history, err := h.store.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to fetch history for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if history == nil {
		history = []models.Turn{}
	}

	c.JSON(http.StatusOK, history)
}

// ListSessions returns all sessions, most recently created first.
func (h *handler) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	c.JSON(http.StatusOK, sessions)
}

// DeleteSession removes a session and its messages. Deleting an unknown id
// is a no-op, so the response is 204 either way.
func (h *handler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	if err := h.store.DeleteSession(c.Request.Context(), sessionID); err != nil {
		log.Printf("Failed to delete session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
