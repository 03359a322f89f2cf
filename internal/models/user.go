package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex" json:"username"`
	// Compared verbatim at login; hidden from JSON.
	Password  string    `json:"-"`
	Email     *string   `gorm:"uniqueIndex" json:"email,omitempty"` // Nullable unique email; blank stays NULL so empty emails never collide
	CreatedAt time.Time `json:"created_at"`
}
