package domain

import "time"

// Message is a single chat message. ReadAt is the only mutable field; it is
// set in bulk when the recipient marks the conversation read.
type Message struct {
	ID             string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;type:char(36);not null;index:idx_message_conv_created,priority:1;index:idx_message_conv_sender,priority:1" json:"conversation_id"`
	SenderID       string     `gorm:"column:sender_id;type:varchar(64);not null;index:idx_message_conv_sender,priority:2" json:"sender_id"`
	Body           string     `gorm:"column:body;type:text;not null" json:"body"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_message_conv_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
