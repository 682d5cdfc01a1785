package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/avdbroek/plekwijzer-backend/config"
	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/internal/db"
	"github.com/avdbroek/plekwijzer-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Imports locations from an XLSX export. Expected columns:
// Name, Category, City, PostalCode, Address, Latitude, Longitude
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	cityRepo := repository.NewCityRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())

	seedUser, err := ensureSeedUser(userRepo)
	if err != nil {
		log.Fatal("Failed to create seed user:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	locations, err := readLocationsFromXLSX(filePath, cityRepo, seedUser.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total locations to import: %d\n", len(locations))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	if err := locationRepo.BulkCreate(locations, batchSize); err != nil {
		log.Fatal("Failed to bulk create locations:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total locations imported: %d\n", len(locations))
}

// ensureSeedUser returns the system account that owns imported locations
func ensureSeedUser(userRepo repository.UserRepository) (*model.User, error) {
	const seedEmail = "import@plekwijzer.nl"

	if user, err := userRepo.FindByEmail(seedEmail); err == nil {
		return user, nil
	}

	hash, err := util.HashPassword(util.RandomString(32))
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        seedEmail,
		PasswordHash: hash,
		DisplayName:  "Plekwijzer Import",
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func readLocationsFromXLSX(filePath string, cityRepo repository.CityRepository, addedByID uint) ([]model.Location, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var locations []model.Location
	seen := make(map[string]bool)
	cityIDs := make(map[string]uint)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 5 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		category := strings.TrimSpace(row[1])
		cityName := strings.TrimSpace(row[2])
		postalCode := strings.TrimSpace(row[3])
		address := strings.TrimSpace(row[4])

		if name == "" || category == "" {
			skippedCount++
			continue
		}

		// Deduplicate on name + city + address.
		key := fmt.Sprintf("%s|%s|%s", name, cityName, address)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		var latitude, longitude *float64
		if len(row) >= 7 {
			lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
			lng, errLng := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
			if errLat == nil && errLng == nil && lat != 0 && lng != 0 {
				latitude = &lat
				longitude = &lng
			}
		}

		// City rows are shared across the import, resolve each one once.
		cityKey := cityName + "|" + postalCode
		cityID, ok := cityIDs[cityKey]
		if !ok {
			city, err := cityRepo.GetOrCreate(cityName, postalCode)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve city %q: %w", cityName, err)
			}
			cityID = city.ID
			cityIDs[cityKey] = cityID
		}

		locations = append(locations, model.Location{
			Name:      name,
			Category:  category,
			Address:   address,
			Latitude:  latitude,
			Longitude: longitude,
			CityID:    cityID,
			AddedByID: addedByID,
		})

		if len(locations)%500 == 0 {
			fmt.Printf("Processed %d locations...\n", len(locations))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid locations: %d\n", len(locations))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return locations, nil
}
