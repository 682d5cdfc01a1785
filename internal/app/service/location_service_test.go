package service

import (
	"testing"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLocationServiceTest(t *testing.T) (*gorm.DB, LocationService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	locationRepo := repository.NewLocationRepository(testDB)
	cityRepo := repository.NewCityRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	svc := NewLocationService(locationRepo, cityRepo, reviewRepo, userRepo, nil)
	return testDB, svc
}

func validInput() CreateLocationInput {
	return CreateLocationInput{
		Name:       "Cafe de Prins",
		Category:   "cafe",
		PhotoURL:   "https://example.com/locations/photo.jpg",
		CityName:   "Amsterdam",
		PostalCode: "1011",
		Rating:     4,
		Comment:    "Lekkere koffie",
	}
}

func TestLocationService_CreateLocation(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := createUser(t, testDB, "submitter@example.com", "Sanne")

	location, err := svc.CreateLocation(user.ID, validInput())
	require.NoError(t, err)
	assert.NotZero(t, location.ID)
	assert.Equal(t, "Amsterdam", location.City.Name)

	// The first review seeds the aggregate.
	assert.InDelta(t, 4.0, location.AverageRating, 1e-9)
	assert.Equal(t, int64(1), location.TotalRatings)

	var rating model.LocationRating
	require.NoError(t, testDB.Where("location_id = ?", location.ID).First(&rating).Error)
	assert.Equal(t, 4.0, rating.Value)

	var comment model.Comment
	require.NoError(t, testDB.Where("location_id = ?", location.ID).First(&comment).Error)
	assert.Equal(t, "Lekkere koffie", comment.Text)
	assert.Equal(t, "Sanne", comment.UserDisplayName)
}

func TestLocationService_CreateLocation_UnknownCity(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := createUser(t, testDB, "submitter@example.com", "Sanne")

	input := validInput()
	input.CityName = ""
	input.PostalCode = ""

	location, err := svc.CreateLocation(user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, model.UnknownCityName, location.City.Name)
	assert.Equal(t, model.UnknownPostalCode, location.City.PostalCode)
}

func TestLocationService_CreateLocation_ValidationGate(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := createUser(t, testDB, "submitter@example.com", "Sanne")

	tests := []struct {
		name    string
		userID  uint
		mutate  func(*CreateLocationInput)
		wantErr error
	}{
		{"Unauthenticated", 0, func(in *CreateLocationInput) {}, ErrUnauthenticated},
		{"Missing name", user.ID, func(in *CreateLocationInput) { in.Name = " " }, ErrMissingFields},
		{"Missing category", user.ID, func(in *CreateLocationInput) { in.Category = "" }, ErrMissingFields},
		{"Missing photo", user.ID, func(in *CreateLocationInput) { in.PhotoURL = "" }, ErrMissingPhoto},
		{"Zero rating", user.ID, func(in *CreateLocationInput) { in.Rating = 0 }, ErrInvalidRating},
		{"Rating out of range", user.ID, func(in *CreateLocationInput) { in.Rating = 5.5 }, ErrInvalidRating},
		{"Empty comment", user.ID, func(in *CreateLocationInput) { in.Comment = "  " }, ErrEmptyComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.CreateLocation(tt.userID, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Rejected submissions wrote nothing, not even a city row.
	var locationCount, cityCount, ratingCount, commentCount int64
	testDB.Model(&model.Location{}).Count(&locationCount)
	testDB.Model(&model.City{}).Count(&cityCount)
	testDB.Model(&model.LocationRating{}).Count(&ratingCount)
	testDB.Model(&model.Comment{}).Count(&commentCount)
	assert.Zero(t, locationCount)
	assert.Zero(t, cityCount)
	assert.Zero(t, ratingCount)
	assert.Zero(t, commentCount)
}

func TestLocationService_ListMyLocations(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	sanne := createUser(t, testDB, "sanne@example.com", "Sanne")
	pieter := createUser(t, testDB, "pieter@example.com", "Pieter")

	_, err := svc.CreateLocation(sanne.ID, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Domtoren"
	input.CityName = "Utrecht"
	input.PostalCode = "3511"
	_, err = svc.CreateLocation(pieter.ID, input)
	require.NoError(t, err)

	mine, err := svc.ListMyLocations(sanne.ID, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Cafe de Prins", mine[0].Name)

	_, err = svc.ListMyLocations(0, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLocationService_ListMyLocations_CategoryFilter(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	sanne := createUser(t, testDB, "sanne@example.com", "Sanne")

	_, err := svc.CreateLocation(sanne.ID, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Vondelpark"
	input.Category = "park"
	_, err = svc.CreateLocation(sanne.ID, input)
	require.NoError(t, err)

	parks, err := svc.ListMyLocations(sanne.ID, "park")
	require.NoError(t, err)
	require.Len(t, parks, 1)
	assert.Equal(t, "Vondelpark", parks[0].Name)

	all, err := svc.ListMyLocations(sanne.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLocationService_ListNearby(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := createUser(t, testDB, "submitter@example.com", "Sanne")

	// Dam Square, Amsterdam.
	amsLat, amsLng := 52.3731, 4.8926
	input := validInput()
	input.Latitude = &amsLat
	input.Longitude = &amsLng
	_, err := svc.CreateLocation(user.ID, input)
	require.NoError(t, err)

	// Dom Tower, Utrecht, roughly 35 km away.
	utLat, utLng := 52.0907, 5.1214
	input = validInput()
	input.Name = "Domtoren"
	input.CityName = "Utrecht"
	input.Latitude = &utLat
	input.Longitude = &utLng
	_, err = svc.CreateLocation(user.ID, input)
	require.NoError(t, err)

	// No coordinates at all.
	input = validInput()
	input.Name = "Zonder Coordinaten"
	_, err = svc.CreateLocation(user.ID, input)
	require.NoError(t, err)

	nearby, err := svc.ListNearby(52.37, 4.89, 5)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, "Cafe de Prins", nearby[0].Name)

	wide, err := svc.ListNearby(52.37, 4.89, 50)
	require.NoError(t, err)
	assert.Len(t, wide, 2)
}

func TestLocationService_TopRated(t *testing.T) {
	testDB, svc := setupLocationServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := createUser(t, testDB, "submitter@example.com", "Sanne")

	input := validInput()
	input.Rating = 5
	_, err := svc.CreateLocation(user.ID, input)
	require.NoError(t, err)

	input = validInput()
	input.Name = "Mindere Plek"
	input.Rating = 2
	_, err = svc.CreateLocation(user.ID, input)
	require.NoError(t, err)

	top, err := svc.TopRated()
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Cafe de Prins", top[0].Name)
	assert.Equal(t, "Mindere Plek", top[1].Name)
}
