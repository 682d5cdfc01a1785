package repository

import (
	"errors"
	"strings"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"gorm.io/gorm"
)

type CityRepository interface {
	GetOrCreate(name, postalCode string) (*model.City, error)
	FindByID(id uint) (*model.City, error)
	FindAll() ([]model.City, error)
}

type cityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) CityRepository {
	return &cityRepository{db: db}
}

// GetOrCreate looks up a city by (name, postal code) and creates it when
// missing. Empty or whitespace-only fields are normalized to the sentinel
// values so unknown cities collapse into a single row instead of one row
// per blank submission.
func (r *cityRepository) GetOrCreate(name, postalCode string) (*model.City, error) {
	name = strings.TrimSpace(name)
	postalCode = strings.TrimSpace(postalCode)
	if name == "" {
		name = model.UnknownCityName
	}
	if postalCode == "" {
		postalCode = model.UnknownPostalCode
	}

	var city model.City
	err := r.db.Where("name = ? AND postal_code = ?", name, postalCode).First(&city).Error
	if err == nil {
		return &city, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	city = model.City{Name: name, PostalCode: postalCode}
	if err := r.db.Create(&city).Error; err != nil {
		// Lost a race with a concurrent create of the same city. The unique
		// index rejected our insert, so the winning row must exist now.
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
			if findErr := r.db.Where("name = ? AND postal_code = ?", name, postalCode).First(&city).Error; findErr == nil {
				return &city, nil
			}
		}
		return nil, err
	}
	return &city, nil
}

func (r *cityRepository) FindByID(id uint) (*model.City, error) {
	var city model.City
	if err := r.db.First(&city, id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *cityRepository) FindAll() ([]model.City, error) {
	var cities []model.City
	if err := r.db.Order("name ASC, postal_code ASC").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}
