package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avdbroek/plekwijzer-backend/internal/app/repository"
	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	apperrors "github.com/avdbroek/plekwijzer-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type LocationController struct {
	locationService service.LocationService
}

func NewLocationController(locationService service.LocationService) *LocationController {
	return &LocationController{
		locationService: locationService,
	}
}

// CreateLocation adds a location together with the submitter's first review
// @Summary Create a location
// @Tags Locations
// @Accept json
// @Produce json
// @Param location body object true "Location and first review"
// @Success 201 {object} model.Location
// @Router /locations [post]
func (ctrl *LocationController) CreateLocation(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "You must be logged in to add a location")
		return
	}

	var input struct {
		Name       string   `json:"name" binding:"required"`
		Category   string   `json:"category" binding:"required"`
		PhotoURL   string   `json:"photo_url"`
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
		Address    string   `json:"address"`
		CityName   string   `json:"city_name"`
		PostalCode string   `json:"postal_code"`
		Rating     float64  `json:"rating" binding:"required"`
		Comment    string   `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name, category, rating and comment are required")
		return
	}

	location, err := ctrl.locationService.CreateLocation(userID.(uint), service.CreateLocationInput{
		Name:       input.Name,
		Category:   input.Category,
		PhotoURL:   input.PhotoURL,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Address:    input.Address,
		CityName:   input.CityName,
		PostalCode: input.PostalCode,
		Rating:     input.Rating,
		Comment:    input.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.LocationMissingFields, "Name and category are required")
		case errors.Is(err, service.ErrMissingPhoto):
			apperrors.BadRequest(c, apperrors.LocationMissingPhoto, "A photo is required")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrEmptyComment):
			apperrors.BadRequest(c, apperrors.ReviewEmptyComment, "Comment must not be empty")
		case errors.Is(err, service.ErrUnauthenticated):
			apperrors.Unauthorized(c, "You must be logged in to add a location")
		default:
			parsed := apperrors.ParseError(err)
			apperrors.RespondWithError(c, parsed.StatusCode, parsed.ErrorCode, parsed.Message)
		}
		return
	}

	c.JSON(http.StatusCreated, location)
}

// GetLocations lists locations, optionally filtered
// @Summary List locations
// @Tags Locations
// @Produce json
// @Param category query string false "Category"
// @Param city_id query int false "City ID"
// @Success 200 {object} object
// @Router /locations [get]
func (ctrl *LocationController) GetLocations(c *gin.Context) {
	filter := repository.LocationFilter{
		Category: c.Query("category"),
	}
	if cityID, err := strconv.ParseUint(c.Query("city_id"), 10, 32); err == nil {
		filter.CityID = uint(cityID)
	}

	locations, err := ctrl.locationService.ListLocations(filter)
	if err != nil {
		apperrors.InternalError(c, "Failed to load locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  locations,
		"total": len(locations),
	})
}

// GetLocation returns a single location
// @Summary Get a location
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} model.Location
// @Router /locations/{id} [get]
func (ctrl *LocationController) GetLocation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid location ID")
		return
	}

	location, err := ctrl.locationService.GetLocation(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
			return
		}
		apperrors.InternalError(c, "Failed to load location")
		return
	}

	c.JSON(http.StatusOK, location)
}

// GetMyLocations lists the locations added by the current user
// @Summary My locations
// @Tags Locations
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} object
// @Router /users/me/locations [get]
func (ctrl *LocationController) GetMyLocations(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "You must be logged in")
		return
	}

	locations, err := ctrl.locationService.ListMyLocations(userID.(uint), c.Query("category"))
	if err != nil {
		apperrors.InternalError(c, "Failed to load your locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  locations,
		"total": len(locations),
	})
}

// GetNearbyLocations lists locations within a radius of a point
// @Summary Nearby locations
// @Tags Locations
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in km" default(5)
// @Success 200 {object} object
// @Router /locations/nearby [get]
func (ctrl *LocationController) GetNearbyLocations(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "lat and lng are required")
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)
	if err != nil || radius <= 0 {
		radius = 5
	}

	locations, err := ctrl.locationService.ListNearby(lat, lng, radius)
	if err != nil {
		apperrors.InternalError(c, "Failed to load nearby locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  locations,
		"total": len(locations),
	})
}

// GetTopLocations returns the highest rated locations
// @Summary Top rated locations
// @Tags Locations
// @Produce json
// @Success 200 {object} object
// @Router /locations/top [get]
func (ctrl *LocationController) GetTopLocations(c *gin.Context) {
	locations, err := ctrl.locationService.TopRated()
	if err != nil {
		apperrors.InternalError(c, "Failed to load top locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": locations,
	})
}

// GetCities lists all known cities
// @Summary List cities
// @Tags Cities
// @Produce json
// @Success 200 {object} object
// @Router /cities [get]
func (ctrl *LocationController) GetCities(c *gin.Context) {
	cities, err := ctrl.locationService.ListCities()
	if err != nil {
		apperrors.InternalError(c, "Failed to load cities")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": cities,
	})
}
