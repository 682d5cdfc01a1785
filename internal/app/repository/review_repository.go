package repository

import (
	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	AddReview(locationID, userID uint, displayName string, rating float64, commentText string) (*model.Location, error)
	CreateLocationWithFirstReview(location *model.Location, userID uint, displayName string, rating float64, commentText string) error
	FindCommentsByLocationID(locationID uint, limit int) ([]model.Comment, error)
	FindRating(locationID, userID uint) (*model.LocationRating, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// AddReview records a rating and comment for a location and folds the
// rating into the location's running average inside a single transaction.
// The location row is locked for the duration so concurrent reviews
// serialize and no rating is lost from the aggregate.
func (r *reviewRepository) AddReview(locationID, userID uint, displayName string, rating float64, commentText string) (*model.Location, error) {
	var location *model.Location

	tx := r.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	updated, err := r.addReviewTx(tx, locationID, userID, displayName, rating, commentText)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	location = updated

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return location, nil
}

// addReviewTx performs the read-modify-write on an open transaction.
// Split out so tests can drive it against a transaction they control.
func (r *reviewRepository) addReviewTx(tx *gorm.DB, locationID, userID uint, displayName string, rating float64, commentText string) (*model.Location, error) {
	var location model.Location
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&location, locationID).Error; err != nil {
		return nil, err
	}

	// One rating row per (location, user); a re-rate overwrites the value.
	locationRating := model.LocationRating{
		LocationID: locationID,
		UserID:     userID,
		Value:      rating,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&locationRating).Error
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		LocationID:      locationID,
		UserID:          userID,
		UserDisplayName: displayName,
		Text:            commentText,
	}
	if err := tx.Create(&comment).Error; err != nil {
		return nil, err
	}

	// Incremental average: every submission extends the aggregate, a
	// re-rate included. The count tracks submissions, not distinct raters.
	newTotal := location.TotalRatings + 1
	location.AverageRating = (location.AverageRating*float64(location.TotalRatings) + rating) / float64(newTotal)
	location.TotalRatings = newTotal

	if err := tx.Model(&model.Location{}).
		Where("id = ?", location.ID).
		Updates(map[string]interface{}{
			"average_rating": location.AverageRating,
			"total_ratings":  location.TotalRatings,
		}).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// CreateLocationWithFirstReview creates a location together with its
// first rating and comment as one atomic write. The aggregate is seeded
// from the submitted rating, so the location never exists unrated.
func (r *reviewRepository) CreateLocationWithFirstReview(location *model.Location, userID uint, displayName string, rating float64, commentText string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		location.AverageRating = rating
		location.TotalRatings = 1
		if err := tx.Create(location).Error; err != nil {
			return err
		}

		locationRating := model.LocationRating{
			LocationID: location.ID,
			UserID:     userID,
			Value:      rating,
		}
		if err := tx.Create(&locationRating).Error; err != nil {
			return err
		}

		comment := model.Comment{
			LocationID:      location.ID,
			UserID:          userID,
			UserDisplayName: displayName,
			Text:            commentText,
		}
		return tx.Create(&comment).Error
	})
}

// FindCommentsByLocationID returns the newest comments first.
func (r *reviewRepository) FindCommentsByLocationID(locationID uint, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Where("location_id = ?", locationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *reviewRepository) FindRating(locationID, userID uint) (*model.LocationRating, error) {
	var rating model.LocationRating
	err := r.db.Where("location_id = ? AND user_id = ?", locationID, userID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
