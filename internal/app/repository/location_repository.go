package repository

import (
	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"gorm.io/gorm"
)

// LocationFilter holds the optional filters for listing locations.
// Zero values mean "no filter".
type LocationFilter struct {
	Category  string
	CityID    uint
	AddedByID uint
}

type LocationRepository interface {
	FindAll(filter LocationFilter) ([]model.Location, error)
	FindByID(id uint) (*model.Location, error)
	TopRated(limit int) ([]model.Location, error)
	BulkCreate(locations []model.Location, batchSize int) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) FindAll(filter LocationFilter) ([]model.Location, error) {
	query := r.db.Model(&model.Location{}).Preload("City")

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.CityID != 0 {
		query = query.Where("city_id = ?", filter.CityID)
	}
	if filter.AddedByID != 0 {
		query = query.Where("added_by_id = ?", filter.AddedByID)
	}

	var locations []model.Location
	if err := query.Order("created_at DESC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) FindByID(id uint) (*model.Location, error) {
	var location model.Location
	if err := r.db.Preload("City").First(&location, id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// BulkCreate inserts locations in batches, used by the import tool.
func (r *locationRepository) BulkCreate(locations []model.Location, batchSize int) error {
	return r.db.CreateInBatches(locations, batchSize).Error
}

// TopRated returns the highest rated locations, rated ones first.
// Ties on average break on the number of ratings.
func (r *locationRepository) TopRated(limit int) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Preload("City").
		Where("total_ratings > 0").
		Order("average_rating DESC, total_ratings DESC").
		Limit(limit).
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}
