package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "jbcnews/internal/errors"
	"jbcnews/internal/models"
)

// sessionService persists the conversational state of every chat.
type sessionService struct {
	db *gorm.DB
}

// NewSessionService creates a new SessionServicer.
func NewSessionService(db *gorm.DB) SessionServicer {
	return &sessionService{db: db}
}

// Ensure returns the session of a chat, creating it on first contact, and
// records the time the chat was last seen.
func (s *sessionService) Ensure(chatID int64) (*models.ChatSession, error) {
	session, err := s.Get(chatID)
	if err == nil {
		now := time.Now()
		if err := s.db.Model(&models.ChatSession{}).Where("id = ?", session.ID).Update("last_seen_at", now).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		session.LastSeenAt = &now
		return session, nil
	}
	if !errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, err
	}

	now := time.Now()
	created := &models.ChatSession{
		ChatID:     chatID,
		IsActive:   true,
		Draft:      models.EmptyDraft(),
		LastSeenAt: &now,
	}
	if err := s.db.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another bot created it first
			return s.Get(chatID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return created, nil
}

// Get returns the session of a chat with the linked account, its country and staff profile
func (s *sessionService) Get(chatID int64) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.
		Preload("User").
		Preload("User.Country").
		Preload("User.Staff").
		Where("chat_id = ?", chatID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &session, nil
}

// SaveStep stores the current flow, step and draft of a chat. Starting a flow
// overwrites whatever other flow was in progress.
func (s *sessionService) SaveStep(chatID int64, flow, step string, draft any) error {
	raw := models.EmptyDraft()
	if draft != nil {
		data, err := json.Marshal(draft)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		raw = datatypes.JSON(data)
	}
	return s.update(chatID, map[string]any{"flow": flow, "step": step, "draft": raw})
}

// ClearFlow ends whatever flow the chat was in and drops its draft
func (s *sessionService) ClearFlow(chatID int64) error {
	return s.update(chatID, map[string]any{"flow": "", "step": "", "draft": models.EmptyDraft()})
}

// SetActive subscribes or unsubscribes a chat from pushed news
func (s *sessionService) SetActive(chatID int64, active bool) error {
	return s.update(chatID, map[string]any{"is_active": active})
}

// Recipients returns the sessions that receive pushed news: registered,
// subscribed and linked to an active account.
func (s *sessionService) Recipients() ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.db.
		Preload("User").
		Preload("User.Country").
		Where("registered = ? AND is_active = ? AND user_id IS NOT NULL", true, true).
		Order("chat_id ASC").
		Find(&sessions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	recipients := sessions[:0]
	for _, session := range sessions {
		if session.User != nil && session.User.IsActive {
			recipients = append(recipients, session)
		}
	}
	return recipients, nil
}

func (s *sessionService) update(chatID int64, values map[string]any) error {
	result := s.db.Model(&models.ChatSession{}).Where("chat_id = ?", chatID).Updates(values)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}
