package repository

import (
	"testing"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCityTest(t *testing.T) (*gorm.DB, CityRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCityRepository(testDB)
	return testDB, repo
}

func TestCityRepository_GetOrCreate(t *testing.T) {
	testDB, repo := setupCityTest(t)
	defer db.CleanupTestDB(testDB)

	city, err := repo.GetOrCreate("Amsterdam", "1011")
	require.NoError(t, err)
	require.NotNil(t, city)
	assert.NotZero(t, city.ID)
	assert.Equal(t, "Amsterdam", city.Name)
	assert.Equal(t, "1011", city.PostalCode)

	// A second call with the same pair returns the same row.
	again, err := repo.GetOrCreate("Amsterdam", "1011")
	require.NoError(t, err)
	assert.Equal(t, city.ID, again.ID)

	var count int64
	testDB.Model(&model.City{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCityRepository_GetOrCreate_Sentinels(t *testing.T) {
	testDB, repo := setupCityTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name       string
		cityName   string
		postalCode string
		wantName   string
		wantPostal string
	}{
		{
			name:       "Both empty",
			cityName:   "",
			postalCode: "",
			wantName:   model.UnknownCityName,
			wantPostal: model.UnknownPostalCode,
		},
		{
			name:       "Whitespace only",
			cityName:   "   ",
			postalCode: "\t",
			wantName:   model.UnknownCityName,
			wantPostal: model.UnknownPostalCode,
		},
		{
			name:       "Missing postal code only",
			cityName:   "Utrecht",
			postalCode: "",
			wantName:   "Utrecht",
			wantPostal: model.UnknownPostalCode,
		},
		{
			name:       "Missing name only",
			cityName:   "",
			postalCode: "3511",
			wantName:   model.UnknownCityName,
			wantPostal: "3511",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, err := repo.GetOrCreate(tt.cityName, tt.postalCode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, city.Name)
			assert.Equal(t, tt.wantPostal, city.PostalCode)
		})
	}

	// Every fully blank submission collapses into the same sentinel row.
	first, err := repo.GetOrCreate("", "")
	require.NoError(t, err)
	second, err := repo.GetOrCreate("  ", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCityRepository_FindAll(t *testing.T) {
	testDB, repo := setupCityTest(t)
	defer db.CleanupTestDB(testDB)

	for _, c := range []struct{ name, postal string }{
		{"Utrecht", "3511"},
		{"Amsterdam", "1011"},
		{"Groningen", "9711"},
	} {
		_, err := repo.GetOrCreate(c.name, c.postal)
		require.NoError(t, err)
	}

	cities, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, "Amsterdam", cities[0].Name)
	assert.Equal(t, "Groningen", cities[1].Name)
	assert.Equal(t, "Utrecht", cities[2].Name)
}
