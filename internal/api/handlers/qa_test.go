package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperchat/backend/internal/models"
	"github.com/paperchat/backend/internal/pipeline"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	sessions map[string]models.Session
	turns    map[string][]models.Turn
	nextID   int
	failAll  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]models.Session),
		turns:    make(map[string][]models.Turn),
	}
}

var errBackendDown = errors.New("backend unavailable")

func (f *fakeStore) CreateSession(_ context.Context) (string, error) {
	if f.failAll {
		return "", errBackendDown
	}
	f.nextID++
	id := fmt.Sprintf("session-%d", f.nextID)
	f.sessions[id] = models.Session{ID: id, Title: models.SentinelTitle, CreatedAt: time.Now()}
	return id, nil
}

func (f *fakeStore) GetHistory(_ context.Context, sessionID string) ([]models.Turn, error) {
	if f.failAll {
		return nil, errBackendDown
	}
	return f.turns[sessionID], nil
}

func (f *fakeStore) RecordTurn(_ context.Context, sessionID, question, answer, contextText string) error {
	if f.failAll {
		return errBackendDown
	}
	if _, ok := f.sessions[sessionID]; !ok {
		f.sessions[sessionID] = models.Session{ID: sessionID, Title: models.TruncateTitle(question), CreatedAt: time.Now()}
	}
	f.turns[sessionID] = append(f.turns[sessionID], models.Turn{
		TurnIndex: len(f.turns[sessionID]) + 1,
		Question:  question,
		Answer:    answer,
		Context:   contextText,
		Timestamp: time.Now(),
	})
	return nil
}

func (f *fakeStore) ListSessions(_ context.Context) ([]models.Session, error) {
	if f.failAll {
		return nil, errBackendDown
	}
	out := make([]models.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	if f.failAll {
		return errBackendDown
	}
	delete(f.sessions, sessionID)
	delete(f.turns, sessionID)
	return nil
}

func (f *fakeStore) Sweep(_ context.Context, _ time.Duration) error { return nil }

type echoRetriever struct{}

func (echoRetriever) Retrieve(_ context.Context, question string, _ []models.Turn) (string, error) {
	return "context for: " + question, nil
}

type echoDrafter struct{ err error }

func (d echoDrafter) Draft(_ context.Context, question, _ string, _ []models.Turn) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	return "answer to: " + question, nil
}

type passVerifier struct{}

func (passVerifier) Verify(_ context.Context, draft, _ string) (string, error) {
	return draft, nil
}

func newTestRouter(store *fakeStore, drafter pipeline.Drafter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orchestrator := pipeline.NewOrchestrator(echoRetriever{}, drafter, passVerifier{})
	handler := NewHandler(store, orchestrator)

	r := gin.New()
	qa := r.Group("/api/qa")
	qa.POST("/conversation", handler.Conversation)
	qa.GET("/sessions", handler.ListSessions)
	qa.GET("/session/:sessionId/history", handler.GetSessionHistory)
	qa.DELETE("/session/:sessionId", handler.DeleteSession)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConversationCreatesSessionAndRecordsTurn(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, echoDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/qa/conversation",
		gin.H{"question": "What is a vector database?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "answer to: What is a vector database?", resp.Answer)
	assert.Equal(t, "context for: What is a vector database?", resp.Context)
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.History, 1)
	assert.Equal(t, 1, resp.History[0].TurnIndex)
	assert.Equal(t, "What is a vector database?", resp.History[0].Question)
}

func TestConversationReusesSession(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, echoDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/qa/conversation", gin.H{"question": "first"})
	require.Equal(t, http.StatusOK, w.Code)
	var first ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doJSON(t, r, http.MethodPost, "/api/qa/conversation",
		gin.H{"question": "second", "session_id": first.SessionID})
	require.Equal(t, http.StatusOK, w.Code)
	var second ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	assert.Equal(t, first.SessionID, second.SessionID)
	require.Len(t, second.History, 2)
	assert.Equal(t, "first", second.History[0].Question)
	assert.Equal(t, "second", second.History[1].Question)
}

func TestConversationRejectsEmptyQuestion(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, echoDrafter{})

	for _, body := range []gin.H{
		{},
		{"question": ""},
		{"question": "   "},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/qa/conversation", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Empty(t, store.turns)
}

func TestConversationPipelineFailureIsGeneric500(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, echoDrafter{err: errors.New("model exploded: secret detail")})

	w := doJSON(t, r, http.MethodPost, "/api/qa/conversation", gin.H{"question": "q"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	// The caller gets a generic failure, not stage internals.
	assert.NotContains(t, w.Body.String(), "secret detail")
	// No partial turn was recorded.
	assert.Empty(t, store.turns)
}

func TestConversationBackendFailureIsGeneric500(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	r := newTestRouter(store, echoDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/qa/conversation", gin.H{"question": "q"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetSessionHistoryUnknownIDReturnsEmptyList(t *testing.T) {
	r := newTestRouter(newFakeStore(), echoDrafter{})

	w := doJSON(t, r, http.MethodGet, "/api/qa/session/nope/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(store, echoDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/qa/conversation", gin.H{"question": "q"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodDelete, "/api/qa/session/"+resp.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/qa/session/"+resp.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/qa/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
