package domain

import "time"

// Conversation status values
const (
	ConversationActive   = "active"
	ConversationRequest  = "request"
	ConversationDeclined = "declined"
)

// Conversation is a two-party message thread. Participant1ID is always the
// lexicographically smaller user ID, so the composite unique index guarantees
// at most one row per pair of users.
type Conversation struct {
	ID             string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Participant1ID string     `gorm:"column:participant1_id;type:varchar(64);not null;uniqueIndex:idx_conversation_pair,priority:1;index:idx_conversation_p1" json:"participant1_id"`
	Participant2ID string     `gorm:"column:participant2_id;type:varchar(64);not null;uniqueIndex:idx_conversation_pair,priority:2;index:idx_conversation_p2" json:"participant2_id"`
	Status         string     `gorm:"column:status;type:varchar(16);not null;default:'request'" json:"status"`
	RequestedByID  *string    `gorm:"column:requested_by_id;type:varchar(64)" json:"requested_by_id,omitempty"`
	LastMessageAt  *time.Time `gorm:"column:last_message_at;index" json:"last_message_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// OtherParticipant returns the member that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

// IsRequester reports whether userID initiated this conversation while it was
// in request status.
func (c *Conversation) IsRequester(userID string) bool {
	return c.RequestedByID != nil && *c.RequestedByID == userID
}

// ConversationSummary is a conversation enriched for list views: the other
// participant's public profile, the most recent message and the number of
// unread messages from the other side.
type ConversationSummary struct {
	Conversation *Conversation `json:"conversation"`
	OtherUser    *User         `json:"other_user,omitempty"`
	LastMessage  *Message      `json:"last_message,omitempty"`
	UnreadCount  int64         `json:"unread_count"`
}
