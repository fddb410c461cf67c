package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/paperchat/backend/internal/models"
)

// RedisStore is the document-oriented Store implementation. Sessions live as
// JSON documents under session:<id>, indexed for listing by a zset scored
// with the creation time. Each session's messages are a JSON list under
// session:<id>:messages, with an INCR counter supplying the seq key.
type RedisStore struct {
	client *redis.Client
}

const sessionIndexKey = "sessions"

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string  { return fmt.Sprintf("session:%s", id) }
func messagesKey(id string) string { return fmt.Sprintf("session:%s:messages", id) }
func seqKey(id string) string      { return fmt.Sprintf("session:%s:seq", id) }

func (s *RedisStore) putSession(ctx context.Context, pipe redis.Pipeliner, session models.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	pipe.Set(ctx, sessionKey(session.ID), doc, 0)
	pipe.ZAdd(ctx, sessionIndexKey, &redis.Z{
		Score:  float64(session.CreatedAt.UnixMilli()),
		Member: session.ID,
	})
	return nil
}

func (s *RedisStore) CreateSession(ctx context.Context) (string, error) {
	session := models.Session{
		ID:        uuid.New().String(),
		Title:     models.SentinelTitle,
		CreatedAt: time.Now(),
	}
	pipe := s.client.TxPipeline()
	if err := s.putSession(ctx, pipe, session); err != nil {
		return "", err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

func (s *RedisStore) getSession(ctx context.Context, sessionID string) (*models.Session, error) {
	doc, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) GetHistory(ctx context.Context, sessionID string) ([]models.Turn, error) {
	raw, err := s.client.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	// RPush already preserves insertion order; sorting by the persisted
	// seq keeps reconstruction independent of the storage shape.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Seq < messages[j].Seq
	})
	return reconstructTurns(messages), nil
}

func (s *RedisStore) RecordTurn(ctx context.Context, sessionID, question, answer, contextText string) error {
	now := time.Now()

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}

	pipe := s.client.TxPipeline()
	switch {
	case session == nil:
		// Fallback: callers that skipped CreateSession get the session
		// created with the real title directly.
		created := models.Session{
			ID:        sessionID,
			Title:     models.TruncateTitle(question),
			CreatedAt: now,
		}
		if err := s.putSession(ctx, pipe, created); err != nil {
			return err
		}
	case session.Title == models.SentinelTitle:
		// Check-then-set: two concurrent first turns can race here. An
		// accepted limitation at this scale; the relational backend
		// resolves the same race with a conditional update.
		session.Title = models.TruncateTitle(question)
		if err := s.putSession(ctx, pipe, *session); err != nil {
			return err
		}
	}

	seq, err := s.client.IncrBy(ctx, seqKey(sessionID), 2).Result()
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	pair := []models.Message{
		{
			SessionID: sessionID,
			Seq:       seq - 1,
			Role:      models.RoleUser,
			Content:   question,
			Timestamp: now,
		},
		{
			SessionID: sessionID,
			Seq:       seq,
			Role:      models.RoleAssistant,
			Content:   answer,
			Context:   contextText,
			Timestamp: now,
		},
	}
	for _, msg := range pair {
		doc, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		pipe.RPush(ctx, messagesKey(sessionID), doc)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

func (s *RedisStore) ListSessions(ctx context.Context) ([]models.Session, error) {
	ids, err := s.client.ZRevRange(ctx, sessionIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]models.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.getSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			// Index entry outlived its document; skip it.
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, messagesKey(sessionID))
	pipe.Del(ctx, seqKey(sessionID))
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.ZRem(ctx, sessionIndexKey, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Sweep(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	ids, err := s.client.ZRangeByScore(ctx, sessionIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.UnixMilli()),
	}).Result()
	if err != nil {
		return fmt.Errorf("find expired sessions: %w", err)
	}

	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}
	return nil
}
