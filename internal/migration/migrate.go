package migration

import (
	"github.com/tastelog/tastelog-backend/internal/domain"
	"gorm.io/gorm"
)

// Run applies the messaging schema. The unique index on the ordered
// participant pair enforces one conversation per pair at the storage layer,
// backing up the application-level canonicalization.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Follow{},
		&domain.Conversation{},
		&domain.Message{},
	)
}
