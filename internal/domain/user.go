package domain

import "time"

// User carries the public identity fields needed to render a conversation
// partner. Accounts themselves are owned by the identity service; this table
// is read-only for the messaging core.
type User struct {
	ID          string    `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Username    string    `gorm:"column:username;type:varchar(64);uniqueIndex" json:"username"`
	DisplayName string    `gorm:"column:display_name;type:varchar(128)" json:"display_name"`
	AvatarURL   string    `gorm:"column:avatar_url;type:varchar(512)" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
