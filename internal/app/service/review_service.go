package service

import (
	"context"
	"errors"
	"strings"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/avdbroek/plekwijzer-backend/pkg/redis"
	"gorm.io/gorm"
)

// CommentPageSize is the fixed number of comments returned per location.
const CommentPageSize = 5

// AnonymousDisplayName is shown on comments from users without a profile name.
const AnonymousDisplayName = "Anonieme Gebruiker"

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrEmptyComment     = errors.New("comment must not be empty")
	ErrLocationNotFound = errors.New("location not found")
	ErrRatingNotFound   = errors.New("rating not found")
)

// FeedBroadcaster pushes location events to live feed subscribers.
// Implemented by the websocket hub; a nil broadcaster disables the feed.
type FeedBroadcaster interface {
	BroadcastReviewAdded(cityID uint, location *model.Location)
	BroadcastLocationCreated(cityID uint, location *model.Location)
}

type ReviewService interface {
	AddReview(userID, locationID uint, rating float64, commentText string) (*model.Location, error)
	GetComments(locationID uint) ([]model.Comment, error)
	GetMyRating(userID, locationID uint) (*model.LocationRating, error)
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	locationRepo repository.LocationRepository
	userRepo     repository.UserRepository
	broadcaster  FeedBroadcaster
}

func NewReviewService(reviewRepo repository.ReviewRepository, locationRepo repository.LocationRepository,
	userRepo repository.UserRepository, broadcaster FeedBroadcaster) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		broadcaster:  broadcaster,
	}
}

// AddReview validates the submission and hands it to the transactional
// aggregator. Validation is all-or-nothing: any failure means no write
// of any kind reaches the database.
func (s *reviewService) AddReview(userID, locationID uint, rating float64, commentText string) (*model.Location, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	commentText = strings.TrimSpace(commentText)
	if commentText == "" {
		return nil, ErrEmptyComment
	}

	displayName := s.resolveDisplayName(userID)

	location, err := s.reviewRepo.AddReview(locationID, userID, displayName, rating, commentText)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		logger.Error("failed to add review", err, map[string]interface{}{
			"user_id":     userID,
			"location_id": locationID,
		})
		return nil, err
	}

	logger.Info("review added", map[string]interface{}{
		"user_id":        userID,
		"location_id":    locationID,
		"rating":         rating,
		"average_rating": location.AverageRating,
		"total_ratings":  location.TotalRatings,
	})

	redis.InvalidateTopLocations(context.Background())
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReviewAdded(location.CityID, location)
	}
	return location, nil
}

// GetComments returns the newest page of comments for a location.
func (s *reviewService) GetComments(locationID uint) ([]model.Comment, error) {
	if _, err := s.locationRepo.FindByID(locationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return s.reviewRepo.FindCommentsByLocationID(locationID, CommentPageSize)
}

// GetMyRating returns the caller's stored rating for a location, so the
// client can show what the user previously gave before a re-rate.
func (s *reviewService) GetMyRating(userID, locationID uint) (*model.LocationRating, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if _, err := s.locationRepo.FindByID(locationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	rating, err := s.reviewRepo.FindRating(locationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return rating, nil
}

// resolveDisplayName snapshots the reviewer's name onto the comment. A
// missing or blank profile name falls back to the anonymous placeholder.
func (s *reviewService) resolveDisplayName(userID uint) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || strings.TrimSpace(user.DisplayName) == "" {
		return AnonymousDisplayName
	}
	return user.DisplayName
}
