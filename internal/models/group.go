package models

type Group struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	GroupName string `gorm:"uniqueIndex:idx_groups_name_user" json:"group_name"`
	UserID    uint   `gorm:"uniqueIndex:idx_groups_name_user" json:"user_id"`
}
