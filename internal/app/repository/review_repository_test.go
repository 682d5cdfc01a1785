package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewTest(t *testing.T) (*gorm.DB, ReviewRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewReviewRepository(testDB)
	return testDB, repo
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		DisplayName:  "Test User",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestLocation(t *testing.T, testDB *gorm.DB, userID uint, avg float64, total int64) *model.Location {
	city := &model.City{Name: "Amsterdam", PostalCode: "1011"}
	require.NoError(t, testDB.FirstOrCreate(city, model.City{Name: "Amsterdam", PostalCode: "1011"}).Error)

	location := &model.Location{
		Name:          "Cafe de Prins",
		Category:      "cafe",
		PhotoURL:      "https://example.com/locations/photo.jpg",
		CityID:        city.ID,
		AddedByID:     userID,
		AverageRating: avg,
		TotalRatings:  total,
	}
	require.NoError(t, testDB.Create(location).Error)
	return location
}

func TestReviewRepository_AddReview(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	reviewer := createTestUser(t, testDB, "reviewer@example.com")
	location := createTestLocation(t, testDB, owner.ID, 4.0, 1)

	updated, err := repo.AddReview(location.ID, reviewer.ID, "Test User", 5, "Great spot")
	require.NoError(t, err)
	require.NotNil(t, updated)

	// (4.0*1 + 5) / 2 = 4.5
	assert.InDelta(t, 4.5, updated.AverageRating, 1e-9)
	assert.Equal(t, int64(2), updated.TotalRatings)

	// The aggregate is persisted, not just returned.
	var stored model.Location
	require.NoError(t, testDB.First(&stored, location.ID).Error)
	assert.InDelta(t, 4.5, stored.AverageRating, 1e-9)
	assert.Equal(t, int64(2), stored.TotalRatings)

	// Rating and comment rows landed in the same write.
	var rating model.LocationRating
	require.NoError(t, testDB.Where("location_id = ? AND user_id = ?", location.ID, reviewer.ID).First(&rating).Error)
	assert.Equal(t, 5.0, rating.Value)

	var comment model.Comment
	require.NoError(t, testDB.Where("location_id = ?", location.ID).First(&comment).Error)
	assert.Equal(t, "Great spot", comment.Text)
	assert.Equal(t, reviewer.ID, comment.UserID)
}

func TestReviewRepository_AddReview_AverageFormula(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	location := createTestLocation(t, testDB, owner.ID, 0, 0)

	ratings := []float64{3, 5, 4, 2, 5}
	var sum float64
	for i, value := range ratings {
		reviewer := createTestUser(t, testDB, fmt.Sprintf("reviewer%d@example.com", i))
		updated, err := repo.AddReview(location.ID, reviewer.ID, "Test User", value, "nice")
		require.NoError(t, err)

		sum += value
		assert.InDelta(t, sum/float64(i+1), updated.AverageRating, 1e-9)
		assert.Equal(t, int64(i+1), updated.TotalRatings)
	}
}

func TestReviewRepository_AddReview_Rerate(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	reviewer := createTestUser(t, testDB, "reviewer@example.com")
	location := createTestLocation(t, testDB, owner.ID, 0, 0)

	_, err := repo.AddReview(location.ID, reviewer.ID, "Test User", 2, "meh")
	require.NoError(t, err)

	updated, err := repo.AddReview(location.ID, reviewer.ID, "Test User", 4, "better on a second visit")
	require.NoError(t, err)

	// A re-rate keeps a single rating row but still extends the aggregate.
	var ratingCount int64
	testDB.Model(&model.LocationRating{}).Where("location_id = ?", location.ID).Count(&ratingCount)
	assert.Equal(t, int64(1), ratingCount)

	var rating model.LocationRating
	require.NoError(t, testDB.Where("location_id = ? AND user_id = ?", location.ID, reviewer.ID).First(&rating).Error)
	assert.Equal(t, 4.0, rating.Value)

	assert.Equal(t, int64(2), updated.TotalRatings)
	assert.InDelta(t, 3.0, updated.AverageRating, 1e-9) // (2*1 + 4) / 2

	// Both comments remain.
	var commentCount int64
	testDB.Model(&model.Comment{}).Where("location_id = ?", location.ID).Count(&commentCount)
	assert.Equal(t, int64(2), commentCount)
}

func TestReviewRepository_AddReview_LocationNotFound(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	reviewer := createTestUser(t, testDB, "reviewer@example.com")

	_, err := repo.AddReview(9999, reviewer.ID, "Test User", 5, "Great spot")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The failed submission left nothing behind.
	var ratingCount, commentCount int64
	testDB.Model(&model.LocationRating{}).Count(&ratingCount)
	testDB.Model(&model.Comment{}).Count(&commentCount)
	assert.Zero(t, ratingCount)
	assert.Zero(t, commentCount)
}

func TestReviewRepository_AddReview_RollbackLeavesNoPartialWrite(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	reviewer := createTestUser(t, testDB, "reviewer@example.com")
	location := createTestLocation(t, testDB, owner.ID, 4.0, 1)

	// Drive the read-modify-write on a transaction we roll back ourselves.
	tx := testDB.Begin()
	require.NoError(t, tx.Error)

	inner := repo.(*reviewRepository)
	updated, err := inner.addReviewTx(tx, location.ID, reviewer.ID, "Test User", 5, "Great spot")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.TotalRatings)

	require.NoError(t, tx.Rollback().Error)

	// After rollback the aggregate and both side tables are untouched.
	var stored model.Location
	require.NoError(t, testDB.First(&stored, location.ID).Error)
	assert.InDelta(t, 4.0, stored.AverageRating, 1e-9)
	assert.Equal(t, int64(1), stored.TotalRatings)

	var ratingCount, commentCount int64
	testDB.Model(&model.LocationRating{}).Count(&ratingCount)
	testDB.Model(&model.Comment{}).Count(&commentCount)
	assert.Zero(t, ratingCount)
	assert.Zero(t, commentCount)
}

func TestReviewRepository_AddReview_Concurrent(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	location := createTestLocation(t, testDB, owner.ID, 0, 0)

	const reviewers = 10
	userIDs := make([]uint, reviewers)
	for i := 0; i < reviewers; i++ {
		user := createTestUser(t, testDB, fmt.Sprintf("reviewer%d@example.com", i))
		userIDs[i] = user.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, reviewers)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := repo.AddReview(location.ID, userID, "Test User", 4, "busy place")
			errs <- err
		}(userIDs[i])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// No submission was lost to a concurrent read-modify-write.
	var stored model.Location
	require.NoError(t, testDB.First(&stored, location.ID).Error)
	assert.Equal(t, int64(reviewers), stored.TotalRatings)
	assert.InDelta(t, 4.0, stored.AverageRating, 1e-9)

	var ratingCount int64
	testDB.Model(&model.LocationRating{}).Where("location_id = ?", location.ID).Count(&ratingCount)
	assert.Equal(t, int64(reviewers), ratingCount)
}

func TestReviewRepository_CreateLocationWithFirstReview(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	user := createTestUser(t, testDB, "submitter@example.com")
	city := &model.City{Name: "Rotterdam", PostalCode: "3011"}
	require.NoError(t, testDB.Create(city).Error)

	location := &model.Location{
		Name:      "Hopper Coffee",
		Category:  "cafe",
		PhotoURL:  "https://example.com/locations/hopper.jpg",
		CityID:    city.ID,
		AddedByID: user.ID,
	}

	err := repo.CreateLocationWithFirstReview(location, user.ID, "Test User", 4, "Solid flat white")
	require.NoError(t, err)
	assert.NotZero(t, location.ID)

	// The aggregate is seeded from the first rating, never zero.
	var stored model.Location
	require.NoError(t, testDB.First(&stored, location.ID).Error)
	assert.InDelta(t, 4.0, stored.AverageRating, 1e-9)
	assert.Equal(t, int64(1), stored.TotalRatings)

	var rating model.LocationRating
	require.NoError(t, testDB.Where("location_id = ?", location.ID).First(&rating).Error)
	assert.Equal(t, 4.0, rating.Value)
	assert.Equal(t, user.ID, rating.UserID)

	var comment model.Comment
	require.NoError(t, testDB.Where("location_id = ?", location.ID).First(&comment).Error)
	assert.Equal(t, "Solid flat white", comment.Text)
}

func TestReviewRepository_FindCommentsByLocationID(t *testing.T) {
	testDB, repo := setupReviewTest(t)
	defer db.CleanupTestDB(testDB)

	owner := createTestUser(t, testDB, "owner@example.com")
	reviewer := createTestUser(t, testDB, "reviewer@example.com")
	location := createTestLocation(t, testDB, owner.ID, 0, 0)

	for i := 1; i <= 7; i++ {
		comment := &model.Comment{
			LocationID:      location.ID,
			UserID:          reviewer.ID,
			UserDisplayName: "Test User",
			Text:            fmt.Sprintf("comment %d", i),
		}
		require.NoError(t, testDB.Create(comment).Error)
	}

	comments, err := repo.FindCommentsByLocationID(location.ID, 5)
	require.NoError(t, err)
	require.Len(t, comments, 5)

	// Newest first.
	assert.Equal(t, "comment 7", comments[0].Text)
	assert.Equal(t, "comment 3", comments[4].Text)
}
