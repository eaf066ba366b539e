package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
)

// MessageService handles direct messages between users.
type MessageService struct {
	messages repository.MessageRepository
	metrics  *metrics.ServiceMetrics
	now      func() time.Time
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages repository.MessageRepository, m *metrics.ServiceMetrics) *MessageService {
	return &MessageService{
		messages: messages,
		metrics:  m,
		now:      time.Now,
	}
}

// CreateMessage stores an unread message. Participants are not checked
// for existence.
func (s *MessageService) CreateMessage(ctx context.Context, fromID, toID, content string) (msg *models.Message, err error) {
	defer func() { s.metrics.Observe("create_message", err) }()

	if strings.TrimSpace(fromID) == "" || strings.TrimSpace(toID) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrMessageInvalid
	}

	created := &models.Message{
		ID:         newID(),
		FromUserID: fromID,
		ToUserID:   toID,
		Content:    content,
		Timestamp:  s.now(),
		Read:       false,
	}
	if err := s.messages.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return created, nil
}

// GetUserConversations derives the conversations of a user on every call.
func (s *MessageService) GetUserConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	messages, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return models.BuildConversations(userID, messages), nil
}

// MarkAsRead flags a single message as read.
func (s *MessageService) MarkAsRead(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.Observe("mark_message_read", err) }()

	err = s.messages.MarkRead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark message: %w", err)
	}
	return nil
}

// ListMessages returns every stored message.
func (s *MessageService) ListMessages(ctx context.Context) ([]models.Message, error) {
	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
