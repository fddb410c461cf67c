package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paperchat/backend/internal/models"
)

// PostgresStore is the relational Store implementation on gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore migrates the schema and returns a store over db.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&models.Session{}, &models.Message{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context) (string, error) {
	session := models.Session{
		ID:        uuid.New().String(),
		Title:     models.SentinelTitle,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

func (s *PostgresStore) GetHistory(ctx context.Context, sessionID string) ([]models.Turn, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return reconstructTurns(messages), nil
}

func (s *PostgresStore) RecordTurn(ctx context.Context, sessionID, question, answer, contextText string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		err := tx.Where("id = ?", sessionID).First(&session).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Fallback for callers that skipped CreateSession: the
			// session is created with the real title directly.
			session = models.Session{
				ID:        sessionID,
				Title:     models.TruncateTitle(question),
				CreatedAt: now,
			}
			if err := tx.Create(&session).Error; err != nil {
				return fmt.Errorf("create session: %w", err)
			}
		case err != nil:
			return fmt.Errorf("get session: %w", err)
		default:
			// Conditional update so the first-turn title race resolves
			// in the database: only a sentinel title ever changes.
			err := tx.Model(&models.Session{}).
				Where("id = ? AND title = ?", sessionID, models.SentinelTitle).
				Update("title", models.TruncateTitle(question)).Error
			if err != nil {
				return fmt.Errorf("set title: %w", err)
			}
		}

		var maxSeq int64
		err = tx.Model(&models.Message{}).
			Where("session_id = ?", sessionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return fmt.Errorf("next seq: %w", err)
		}

		pair := []models.Message{
			{
				SessionID: sessionID,
				Seq:       maxSeq + 1,
				Role:      models.RoleUser,
				Content:   question,
				Timestamp: now,
			},
			{
				SessionID: sessionID,
				Seq:       maxSeq + 2,
				Role:      models.RoleAssistant,
				Content:   answer,
				Context:   contextText,
				Timestamp: now,
			},
		}
		if err := tx.Create(&pair).Error; err != nil {
			return fmt.Errorf("append messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Messages first so a partial failure never leaves them dangling.
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("id = ?", sessionID).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *PostgresStore) Sweep(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	var expired []models.Session
	err := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Find(&expired).Error
	if err != nil {
		return fmt.Errorf("find expired sessions: %w", err)
	}

	for _, session := range expired {
		if err := s.DeleteSession(ctx, session.ID); err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
	}
	return nil
}
