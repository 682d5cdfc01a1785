package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the denormalized profile record. Credentials (the password hash)
// live on the same row but are never serialized.
type User struct {
	ID           uint     `gorm:"primarykey" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	DisplayName  string   `gorm:"not null" json:"display_name"`
	Role         UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	// Cities whose live feed the user follows. Feed clients are
	// subscribed to these on connect; empty means no preset.
	FeedCityIDs pq.Int64Array `gorm:"type:integer[]" json:"feed_city_ids"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
