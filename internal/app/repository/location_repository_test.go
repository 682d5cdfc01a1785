package repository

import (
	"testing"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLocationTest(t *testing.T) (*gorm.DB, LocationRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewLocationRepository(testDB)
	return testDB, repo
}

func seedLocations(t *testing.T, testDB *gorm.DB) (cityA, cityB *model.City, user *model.User) {
	user = createTestUser(t, testDB, "owner@example.com")
	cityA = &model.City{Name: "Amsterdam", PostalCode: "1011"}
	cityB = &model.City{Name: "Utrecht", PostalCode: "3511"}
	require.NoError(t, testDB.Create(cityA).Error)
	require.NoError(t, testDB.Create(cityB).Error)

	locations := []model.Location{
		{Name: "Cafe de Prins", Category: "cafe", PhotoURL: "p1.jpg", CityID: cityA.ID, AddedByID: user.ID, AverageRating: 4.5, TotalRatings: 10},
		{Name: "Vondelpark", Category: "park", PhotoURL: "p2.jpg", CityID: cityA.ID, AddedByID: user.ID, AverageRating: 4.8, TotalRatings: 25},
		{Name: "Domtoren", Category: "sight", PhotoURL: "p3.jpg", CityID: cityB.ID, AddedByID: user.ID, AverageRating: 4.5, TotalRatings: 40},
		{Name: "Nieuwe Zaak", Category: "cafe", PhotoURL: "p4.jpg", CityID: cityB.ID, AddedByID: user.ID},
	}
	require.NoError(t, testDB.Create(&locations).Error)
	return cityA, cityB, user
}

func TestLocationRepository_FindAll_Filters(t *testing.T) {
	testDB, repo := setupLocationTest(t)
	defer db.CleanupTestDB(testDB)

	cityA, cityB, user := seedLocations(t, testDB)

	tests := []struct {
		name   string
		filter LocationFilter
		want   int
	}{
		{"No filter", LocationFilter{}, 4},
		{"By category", LocationFilter{Category: "cafe"}, 2},
		{"By city", LocationFilter{CityID: cityA.ID}, 2},
		{"By category and city", LocationFilter{Category: "cafe", CityID: cityB.ID}, 1},
		{"By owner", LocationFilter{AddedByID: user.ID}, 4},
		{"No match", LocationFilter{Category: "museum"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locations, err := repo.FindAll(tt.filter)
			require.NoError(t, err)
			assert.Len(t, locations, tt.want)
		})
	}
}

func TestLocationRepository_FindAll_PreloadsCity(t *testing.T) {
	testDB, repo := setupLocationTest(t)
	defer db.CleanupTestDB(testDB)

	seedLocations(t, testDB)

	locations, err := repo.FindAll(LocationFilter{Category: "park"})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Amsterdam", locations[0].City.Name)
}

func TestLocationRepository_FindByID(t *testing.T) {
	testDB, repo := setupLocationTest(t)
	defer db.CleanupTestDB(testDB)

	seedLocations(t, testDB)

	var seeded model.Location
	require.NoError(t, testDB.Where("name = ?", "Domtoren").First(&seeded).Error)

	found, err := repo.FindByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Domtoren", found.Name)
	assert.Equal(t, "Utrecht", found.City.Name)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLocationRepository_TopRated(t *testing.T) {
	testDB, repo := setupLocationTest(t)
	defer db.CleanupTestDB(testDB)

	seedLocations(t, testDB)

	top, err := repo.TopRated(10)
	require.NoError(t, err)

	// The unrated location is excluded; ties break on rating count.
	require.Len(t, top, 3)
	assert.Equal(t, "Vondelpark", top[0].Name)
	assert.Equal(t, "Domtoren", top[1].Name)
	assert.Equal(t, "Cafe de Prins", top[2].Name)

	top, err = repo.TopRated(2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
