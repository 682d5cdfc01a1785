package model

import (
	"time"

	"gorm.io/gorm"
)

// Location is a point of interest. Everything except the aggregate pair
// (AverageRating, TotalRatings) is immutable after creation; the aggregate
// is only ever rewritten inside the review transaction.
type Location struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Category  string         `gorm:"index;not null" json:"category"`
	PhotoURL  string         `gorm:"not null" json:"photo_url"`
	Latitude  *float64       `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude *float64       `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	CityID    uint           `gorm:"index;not null" json:"city_id"`
	City      City           `gorm:"foreignKey:CityID" json:"city,omitempty"`
	AddedByID uint           `gorm:"index;not null" json:"added_by_id"`
	AddedBy   User           `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`

	// Aggregate pair. Invariant: AverageRating == sum(ratings)/TotalRatings
	// whenever TotalRatings > 0, and 0.0 when TotalRatings == 0.
	AverageRating float64 `gorm:"not null;default:0" json:"average_rating"`
	TotalRatings  int64   `gorm:"not null;default:0" json:"total_ratings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

// LocationRating is one user's vote for a location. The unique index on
// (location_id, user_id) makes a re-rate overwrite the row rather than add
// a second one.
type LocationRating struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	LocationID uint      `gorm:"not null;index:idx_location_user_rating,unique" json:"location_id"`
	UserID     uint      `gorm:"not null;index:idx_location_user_rating,unique" json:"user_id"`
	Value      float64   `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (LocationRating) TableName() string {
	return "location_ratings"
}
