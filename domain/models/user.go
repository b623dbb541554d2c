package models

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the identity service; the board only reads it
// to check that assignees are active
type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	Username  string    `gorm:"uniqueIndex;not null"`
	Role      Role      `gorm:"size:20;default:'worker'"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
