package models

import (
	"time"
)

type Contact struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `json:"name"`
	Phone1      string `gorm:"uniqueIndex:idx_contacts_phone_user" json:"phone1"`
	Phone2      string `json:"phone2"`
	Email1      string `json:"email1"`
	Email2      string `json:"email2"`
	SocialMedia string `json:"social_media"`
	Address     string `json:"address"`
	// 0 means "ungrouped" and is never checked against the groups table.
	GroupID    uint      `gorm:"default:0" json:"group_id"`
	UserID     uint      `gorm:"uniqueIndex:idx_contacts_phone_user" json:"user_id"`
	IsFavorite bool      `gorm:"default:false" json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
}
