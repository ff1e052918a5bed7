package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tastelog/tastelog-backend/internal/common"
	"github.com/tastelog/tastelog-backend/internal/domain"
	"github.com/tastelog/tastelog-backend/internal/repository"
	"github.com/tastelog/tastelog-backend/pkg/cache"
	"github.com/tastelog/tastelog-backend/pkg/logger"
	"gorm.io/gorm"
)

// A requester may send at most this many messages while the conversation is
// still in request status. The check is read-then-insert without a lock; two
// concurrent sends can overshoot by one, which is tolerated for a best-effort
// limit.
const requestMessageLimit = 3

// ConversationService owns the conversation lifecycle: creation with the
// mutual-follow gate, accept/decline, message sends with the request cap,
// read receipts and unread counts.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifier      Notifier
	cache         cache.Service
}

// NewConversationService creates a ConversationService. notifier and cache
// may be nil (no realtime pushes / no badge caching).
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifier Notifier,
	cacheService cache.Service,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		follows:       follows,
		users:         users,
		notifier:      notifier,
		cache:         cacheService,
	}
}

// canonicalPair orders two user IDs so that the first is lexicographically
// smaller. Conversations are stored with this ordering, which together with
// the unique index guarantees one row per pair.
func canonicalPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// CreateOrGet returns the conversation between initiator and recipient,
// creating it if absent. A new conversation starts active when the two users
// follow each other; otherwise it starts as a request from the initiator.
func (s *ConversationService) CreateOrGet(initiatorID, recipientID string) (*domain.Conversation, error) {
	if initiatorID == recipientID {
		return nil, common.ErrSelfConversation
	}

	p1, p2 := canonicalPair(initiatorID, recipientID)

	conv, err := s.conversations.FindByPair(p1, p2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	mutual, err := s.follows.IsMutual(initiatorID, recipientID)
	if err != nil {
		return nil, err
	}

	conv = &domain.Conversation{
		ID:             uuid.NewString(),
		Participant1ID: p1,
		Participant2ID: p2,
	}
	if mutual {
		conv.Status = domain.ConversationActive
	} else {
		conv.Status = domain.ConversationRequest
		requester := initiatorID
		conv.RequestedByID = &requester
	}

	if err := s.conversations.Create(conv); err != nil {
		if repository.IsDuplicateKey(err) {
			// Lost a concurrent create; the winner's row is authoritative
			return s.conversations.FindByPair(p1, p2)
		}
		return nil, err
	}
	return conv, nil
}

// SendMessage validates, persists and announces a message. In request status
// the requester is capped at requestMessageLimit messages; the recipient may
// reply freely, and a reply does not auto-accept the request — an explicit
// Accept is still required.
func (s *ConversationService) SendMessage(conversationID, senderID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.ErrEmptyMessage
	}

	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, common.ErrForbidden
	}

	switch conv.Status {
	case domain.ConversationDeclined:
		return nil, common.ErrConversationDeclined
	case domain.ConversationRequest:
		if conv.IsRequester(senderID) {
			count, err := s.messages.CountBySender(conv.ID, senderID)
			if err != nil {
				return nil, err
			}
			if count >= requestMessageLimit {
				return nil, common.ErrMessageLimitReached
			}
		}
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}

	// last_message_at is advisory list ordering; a failure here must not lose
	// the already-persisted message
	if err := s.conversations.TouchLastMessage(conv.ID, msg.CreatedAt); err != nil {
		logger.Warn("failed to update last_message_at for conversation %s: %v", conv.ID, err)
	}

	s.invalidateUnread(conv.OtherParticipant(senderID))
	if s.notifier != nil {
		s.notifier.MessageCreated(conv, msg)
	}
	return msg, nil
}

// Accept transitions a request to active. Only the participant who did not
// initiate the request may accept; accepting an already-active conversation
// is a no-op.
func (s *ConversationService) Accept(conversationID, actorID string) (*domain.Conversation, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actorID) || conv.IsRequester(actorID) {
		return nil, common.ErrForbidden
	}

	switch conv.Status {
	case domain.ConversationActive:
		return conv, nil
	case domain.ConversationDeclined:
		// Declined is terminal
		return nil, common.ErrForbidden
	}

	if err := s.conversations.UpdateStatus(conv.ID, domain.ConversationActive); err != nil {
		return nil, err
	}
	conv.Status = domain.ConversationActive

	// The conversation now counts toward both badges
	s.invalidateUnread(conv.Participant1ID, conv.Participant2ID)
	if s.notifier != nil {
		s.notifier.ConversationAccepted(conv)
	}
	return conv, nil
}

// Decline transitions a request to declined, a terminal state. The same actor
// restrictions as Accept apply. No realtime event is emitted; the requester
// sees the decline on their next list fetch.
func (s *ConversationService) Decline(conversationID, actorID string) (*domain.Conversation, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actorID) || conv.IsRequester(actorID) {
		return nil, common.ErrForbidden
	}
	if conv.Status != domain.ConversationRequest {
		return nil, common.ErrForbidden
	}

	if err := s.conversations.UpdateStatus(conv.ID, domain.ConversationDeclined); err != nil {
		return nil, err
	}
	conv.Status = domain.ConversationDeclined
	return conv, nil
}

// MarkRead sets read_at on every unread message from the other participant.
// Idempotent; a repeat call affects no rows and emits no event.
func (s *ConversationService) MarkRead(conversationID, actorID string) (time.Time, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return time.Time{}, err
	}
	if !conv.HasParticipant(actorID) {
		return time.Time{}, common.ErrForbidden
	}

	now := time.Now()
	affected, err := s.messages.MarkConversationRead(conv.ID, actorID, now)
	if err != nil {
		return time.Time{}, err
	}

	s.invalidateUnread(actorID)
	if affected > 0 && s.notifier != nil {
		s.notifier.MessagesRead(conv, actorID, now)
	}
	return now, nil
}

// ListConversations returns the user's conversations newest-first, enriched
// with the other participant's profile, the latest message and the
// per-conversation unread count. Declined conversations are excluded; status
// may narrow the list to "active" or "request".
func (s *ConversationService) ListConversations(userID, status string) ([]*domain.ConversationSummary, error) {
	if status != "" && status != domain.ConversationActive && status != domain.ConversationRequest {
		return nil, common.ErrInvalidInput
	}

	convs, err := s.conversations.ListForUser(userID, status)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		otherIDs = append(otherIDs, conv.OtherParticipant(userID))
	}
	profiles, err := s.users.FindByIDs(otherIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		last, err := s.messages.LatestInConversation(conv.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.messages.UnreadInConversation(conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &domain.ConversationSummary{
			Conversation: conv,
			OtherUser:    profiles[conv.OtherParticipant(userID)],
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

// ListMessages returns a page of the conversation history, newest-first.
func (s *ConversationService) ListMessages(conversationID, userID string, page, limit int) ([]*domain.Message, int64, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conv.HasParticipant(userID) {
		return nil, 0, common.ErrForbidden
	}
	return s.messages.ListByConversation(conv.ID, page, limit)
}

// UnreadCount is the global badge: unread messages addressed to the user in
// active conversations only. Pending requests are surfaced separately and do
// not inflate it.
func (s *ConversationService) UnreadCount(userID string) (int64, error) {
	ctx := context.Background()
	if s.cache != nil && s.cache.IsAvailable() {
		if count, err := s.cache.GetUnreadCount(ctx, userID); err == nil {
			return count, nil
		}
	}

	count, err := s.messages.UnreadTotalActive(userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil && s.cache.IsAvailable() {
		if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
			logger.Warn("failed to cache unread count for user %s: %v", userID, err)
		}
	}
	return count, nil
}

func (s *ConversationService) findConversation(id string) (*domain.Conversation, error) {
	conv, err := s.conversations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) invalidateUnread(userIDs ...string) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.InvalidateUnreadCount(context.Background(), userIDs...); err != nil {
		logger.Warn("failed to invalidate unread cache: %v", err)
	}
}
