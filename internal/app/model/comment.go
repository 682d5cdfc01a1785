package model

import "time"

// Comment is free-text review text attached to a location. The author's
// display name is denormalized at write time so comment lists render
// without a join against users.
type Comment struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	LocationID      uint      `gorm:"not null;index" json:"location_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	UserDisplayName string    `gorm:"not null" json:"user_display_name"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
