package repository

import (
	"time"

	"github.com/tastelog/tastelog-backend/internal/domain"
	"gorm.io/gorm"
)

// ConversationRepository is the conversation data access layer.
type ConversationRepository interface {
	Create(conv *domain.Conversation) error
	FindByID(id string) (*domain.Conversation, error)
	FindByPair(participant1ID, participant2ID string) (*domain.Conversation, error)
	UpdateStatus(id, status string) error
	TouchLastMessage(id string, at time.Time) error
	ListForUser(userID, status string) ([]*domain.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conv *domain.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *conversationRepository) FindByID(id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByPair(participant1ID, participant2ID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("participant1_id = ? AND participant2_id = ?", participant1ID, participant2ID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&domain.Conversation{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *conversationRepository) TouchLastMessage(id string, at time.Time) error {
	return r.db.Model(&domain.Conversation{}).Where("id = ?", id).
		Update("last_message_at", at).Error
}

// ListForUser returns the user's conversations newest-first by last message,
// optionally filtered by status. Declined conversations are always excluded.
func (r *conversationRepository) ListForUser(userID, status string) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation

	query := r.db.Where("(participant1_id = ? OR participant2_id = ?)", userID, userID).
		Where("status <> ?", domain.ConversationDeclined)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("last_message_at DESC, created_at DESC").Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}
