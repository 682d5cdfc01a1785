package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	apperrors "github.com/avdbroek/plekwijzer-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// AddReview submits a rating and comment for a location
// @Summary Add a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Param review body object true "Rating and comment"
// @Success 201 {object} model.Location
// @Router /locations/{id}/reviews [post]
func (ctrl *ReviewController) AddReview(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "You must be logged in to review a location")
		return
	}

	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid location ID")
		return
	}

	var input struct {
		Rating  float64 `json:"rating" binding:"required"`
		Comment string  `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Rating and comment are required")
		return
	}

	location, err := ctrl.reviewService.AddReview(userID.(uint), uint(locationID), input.Rating, input.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrEmptyComment):
			apperrors.BadRequest(c, apperrors.ReviewEmptyComment, "Comment must not be empty")
		case errors.Is(err, service.ErrLocationNotFound):
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
		case errors.Is(err, service.ErrUnauthenticated):
			apperrors.Unauthorized(c, "You must be logged in to review a location")
		default:
			parsed := apperrors.ParseError(err)
			apperrors.RespondWithError(c, parsed.StatusCode, parsed.ErrorCode, parsed.Message)
		}
		return
	}

	c.JSON(http.StatusCreated, location)
}

// GetComments returns the newest comments for a location
// @Summary Location comments
// @Tags Reviews
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} object
// @Router /locations/{id}/comments [get]
func (ctrl *ReviewController) GetComments(c *gin.Context) {
	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid location ID")
		return
	}

	comments, err := ctrl.reviewService.GetComments(uint(locationID))
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
			return
		}
		apperrors.InternalError(c, "Failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": comments,
	})
}

// GetMyRating returns the current user's rating for a location
// @Summary My rating for a location
// @Tags Reviews
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} model.LocationRating
// @Router /locations/{id}/ratings/me [get]
func (ctrl *ReviewController) GetMyRating(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "You must be logged in")
		return
	}

	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid location ID")
		return
	}

	rating, err := ctrl.reviewService.GetMyRating(userID.(uint), uint(locationID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "You have not rated this location")
		case errors.Is(err, service.ErrUnauthenticated):
			apperrors.Unauthorized(c, "You must be logged in")
		default:
			parsed := apperrors.ParseError(err)
			apperrors.RespondWithError(c, parsed.StatusCode, parsed.ErrorCode, parsed.Message)
		}
		return
	}

	c.JSON(http.StatusOK, rating)
}
