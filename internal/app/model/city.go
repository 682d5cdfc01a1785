package model

import "time"

// Sentinel values a blank city submission collapses into, so two blank
// submissions resolve to the same row instead of duplicating.
const (
	UnknownCityName   = "Onbekend"
	UnknownPostalCode = "0000"
)

// City is created lazily the first time a location references a new
// (name, postal code) pair.
type City struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"not null;index:idx_cities_name_postal,unique" json:"name"`
	PostalCode string    `gorm:"not null;index:idx_cities_name_postal,unique" json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func (City) TableName() string {
	return "cities"
}
