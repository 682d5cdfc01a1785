package controller

import (
	"net/http"

	apperrors "github.com/avdbroek/plekwijzer-backend/internal/errors"
	"github.com/avdbroek/plekwijzer-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	photoStorage *storage.PhotoStorage
}

func NewUploadController(photoStorage *storage.PhotoStorage) *UploadController {
	return &UploadController{
		photoStorage: photoStorage,
	}
}

// PresignPhotoUpload hands out a pre-signed PUT URL for a location photo
// @Summary Pre-sign a photo upload
// @Tags Uploads
// @Accept json
// @Produce json
// @Param upload body object true "Content type and size"
// @Success 200 {object} storage.PresignedUpload
// @Router /uploads/photos [post]
func (ctrl *UploadController) PresignPhotoUpload(c *gin.Context) {
	if _, exists := c.Get("userID"); !exists {
		apperrors.Unauthorized(c, "You must be logged in to upload a photo")
		return
	}

	var input struct {
		ContentType string `json:"content_type" binding:"required"`
		Size        int64  `json:"size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "content_type and size are required")
		return
	}

	upload, err := ctrl.photoStorage.PresignPhotoUpload(c.Request.Context(), input.ContentType, input.Size)
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}

	c.JSON(http.StatusOK, upload)
}
