package domain

import "time"

// Follow is one direction of the follow graph. The messaging core only reads
// it to decide whether a new conversation skips the request workflow.
type Follow struct {
	FollowerID  string    `gorm:"column:follower_id;type:varchar(64);primaryKey" json:"follower_id"`
	FollowingID string    `gorm:"column:following_id;type:varchar(64);primaryKey" json:"following_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
