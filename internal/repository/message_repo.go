package repository

import (
	"errors"
	"time"

	"github.com/tastelog/tastelog-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository is the message data access layer.
type MessageRepository interface {
	Create(msg *domain.Message) error
	CountBySender(conversationID, senderID string) (int64, error)
	LatestInConversation(conversationID string) (*domain.Message, error)
	ListByConversation(conversationID string, page, limit int) ([]*domain.Message, int64, error)
	MarkConversationRead(conversationID, readerID string, at time.Time) (int64, error)
	UnreadInConversation(conversationID, userID string) (int64, error)
	UnreadTotalActive(userID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) CountBySender(conversationID, senderID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id = ?", conversationID, senderID).
		Count(&count).Error
	return count, err
}

// LatestInConversation returns the most recent message, or nil if none exists.
func (r *messageRepository) LatestInConversation(conversationID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByConversation(conversationID string, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	query := r.db.Model(&domain.Message{}).Where("conversation_id = ?", conversationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkConversationRead sets read_at on every unread message in the
// conversation that the reader did not author. Returns rows affected, so the
// caller can skip the read-receipt push when nothing changed.
func (r *messageRepository) MarkConversationRead(conversationID, readerID string, at time.Time) (int64, error) {
	res := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *messageRepository) UnreadInConversation(conversationID, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		Count(&count).Error
	return count, err
}

// UnreadTotalActive is the global badge count: unread messages addressed to
// the user across active conversations only. Requests are surfaced separately
// and do not inflate the badge.
func (r *messageRepository) UnreadTotalActive(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.status = ?", domain.ConversationActive).
		Where("conversations.participant1_id = ? OR conversations.participant2_id = ?", userID, userID).
		Where("messages.sender_id <> ?", userID).
		Where("messages.read_at IS NULL").
		Count(&count).Error
	return count, err
}
