package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/avdbroek/plekwijzer-backend/pkg/redis"
	"github.com/avdbroek/plekwijzer-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	topRatedLimit    = 10
	topRatedCacheTTL = 5 * time.Minute
)

var (
	ErrMissingFields = errors.New("name and category are required")
	ErrMissingPhoto  = errors.New("photo URL is required")
)

// CreateLocationInput carries a full submission: the location itself plus
// the submitter's first review.
type CreateLocationInput struct {
	Name       string
	Category   string
	PhotoURL   string
	Latitude   *float64
	Longitude  *float64
	Address    string
	CityName   string
	PostalCode string
	Rating     float64
	Comment    string
}

type LocationService interface {
	CreateLocation(userID uint, input CreateLocationInput) (*model.Location, error)
	GetLocation(id uint) (*model.Location, error)
	ListLocations(filter repository.LocationFilter) ([]model.Location, error)
	ListMyLocations(userID uint, category string) ([]model.Location, error)
	ListNearby(latitude, longitude, radiusKm float64) ([]model.Location, error)
	ListCities() ([]model.City, error)
	TopRated() ([]model.Location, error)
	RefreshTopRated() error
}

type locationService struct {
	locationRepo repository.LocationRepository
	cityRepo     repository.CityRepository
	reviewRepo   repository.ReviewRepository
	userRepo     repository.UserRepository
	broadcaster  FeedBroadcaster
}

func NewLocationService(locationRepo repository.LocationRepository, cityRepo repository.CityRepository,
	reviewRepo repository.ReviewRepository, userRepo repository.UserRepository,
	broadcaster FeedBroadcaster) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		cityRepo:     cityRepo,
		reviewRepo:   reviewRepo,
		userRepo:     userRepo,
		broadcaster:  broadcaster,
	}
}

// CreateLocation validates a submission and writes the location, its first
// rating and first comment atomically. The gate runs before any database
// write: a rejected submission leaves nothing behind, not even the city.
func (s *locationService) CreateLocation(userID uint, input CreateLocationInput) (*model.Location, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, ErrMissingFields
	}
	if strings.TrimSpace(input.PhotoURL) == "" {
		return nil, ErrMissingPhoto
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if input.Comment == "" {
		return nil, ErrEmptyComment
	}

	city, err := s.cityRepo.GetOrCreate(input.CityName, input.PostalCode)
	if err != nil {
		return nil, err
	}

	displayName := s.resolveDisplayName(userID)
	location := &model.Location{
		Name:      strings.TrimSpace(input.Name),
		Category:  strings.TrimSpace(input.Category),
		PhotoURL:  input.PhotoURL,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Address:   input.Address,
		CityID:    city.ID,
		AddedByID: userID,
	}

	if err := s.reviewRepo.CreateLocationWithFirstReview(location, userID, displayName, input.Rating, input.Comment); err != nil {
		logger.Error("failed to create location", err, map[string]interface{}{
			"user_id": userID,
			"name":    input.Name,
		})
		return nil, err
	}
	location.City = *city

	logger.Info("location created", map[string]interface{}{
		"location_id": location.ID,
		"user_id":     userID,
		"city_id":     city.ID,
	})

	redis.InvalidateTopLocations(context.Background())
	if s.broadcaster != nil {
		s.broadcaster.BroadcastLocationCreated(city.ID, location)
	}
	return location, nil
}

func (s *locationService) GetLocation(id uint) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return location, nil
}

func (s *locationService) ListLocations(filter repository.LocationFilter) ([]model.Location, error) {
	return s.locationRepo.FindAll(filter)
}

func (s *locationService) ListMyLocations(userID uint, category string) ([]model.Location, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.locationRepo.FindAll(repository.LocationFilter{
		AddedByID: userID,
		Category:  strings.TrimSpace(category),
	})
}

// ListNearby filters locations by great-circle distance. Locations without
// coordinates are skipped.
func (s *locationService) ListNearby(latitude, longitude, radiusKm float64) ([]model.Location, error) {
	locations, err := s.locationRepo.FindAll(repository.LocationFilter{})
	if err != nil {
		return nil, err
	}

	nearby := make([]model.Location, 0)
	for _, loc := range locations {
		if loc.Latitude == nil || loc.Longitude == nil {
			continue
		}
		if util.CalculateDistance(latitude, longitude, *loc.Latitude, *loc.Longitude) <= radiusKm {
			nearby = append(nearby, loc)
		}
	}
	return nearby, nil
}

func (s *locationService) ListCities() ([]model.City, error) {
	return s.cityRepo.FindAll()
}

// TopRated serves the ranking from the cache when possible and falls back
// to the database, repopulating the cache on the way out.
func (s *locationService) TopRated() ([]model.Location, error) {
	ctx := context.Background()

	if payload, err := redis.CachedTopLocations(ctx); err == nil && payload != nil {
		var locations []model.Location
		if err := json.Unmarshal(payload, &locations); err == nil {
			return locations, nil
		}
	}

	locations, err := s.locationRepo.TopRated(topRatedLimit)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(locations); err == nil {
		if err := redis.CacheTopLocations(ctx, payload, topRatedCacheTTL); err != nil {
			logger.Warn("failed to cache top locations", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return locations, nil
}

// RefreshTopRated recomputes the ranking and rewrites the cache. Called by
// the scheduler so the cache stays warm between invalidations.
func (s *locationService) RefreshTopRated() error {
	locations, err := s.locationRepo.TopRated(topRatedLimit)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(locations)
	if err != nil {
		return err
	}
	return redis.CacheTopLocations(context.Background(), payload, topRatedCacheTTL)
}

func (s *locationService) resolveDisplayName(userID uint) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || strings.TrimSpace(user.DisplayName) == "" {
		return AnonymousDisplayName
	}
	return user.DisplayName
}
