package repository

import (
	"github.com/tastelog/tastelog-backend/internal/domain"
	"gorm.io/gorm"
)

// FollowRepository reads the follow graph.
type FollowRepository interface {
	IsMutual(userA, userB string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// IsMutual reports whether both follow directions exist between two users.
func (r *followRepository) IsMutual(userA, userB string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Follow{}).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 2, nil
}
