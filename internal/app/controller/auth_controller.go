package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/avdbroek/plekwijzer-backend/config"
	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	apperrors "github.com/avdbroek/plekwijzer-backend/internal/errors"
	"github.com/avdbroek/plekwijzer-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
	jwtConfig   *config.JWTConfig
}

func NewAuthController(authService service.AuthService, jwtConfig *config.JWTConfig) *AuthController {
	return &AuthController{
		authService: authService,
		jwtConfig:   jwtConfig,
	}
}

// Register creates a new account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body object true "Registration details"
// @Success 201 {object} model.User
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A valid email and a password of at least 8 characters are required")
		return
	}

	user, err := ctrl.authService.Register(input.Email, input.Password, input.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
			return
		}
		apperrors.InternalError(c, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a token pair
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body object true "Email and password"
// @Success 200 {object} object
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	tokens, user, err := ctrl.authService.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		apperrors.InternalError(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          user,
	})
}

// Logout revokes the current access token
// @Summary Logout
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	token := extractBearerToken(c)
	if token == "" {
		apperrors.Unauthorized(c, "")
		return
	}

	claims, err := util.ValidateToken(token, ctrl.jwtConfig.Secret)
	if err != nil {
		// An invalid or already expired token needs no revocation.
		c.JSON(http.StatusNoContent, nil)
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), token, claims.ExpiresAt.Time); err != nil {
		apperrors.InternalError(c, "Failed to log out")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param token body object true "Refresh token"
// @Success 200 {object} object
// @Router /auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A refresh token is required")
		return
	}

	tokens, err := ctrl.authService.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid or expired refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Me returns the current user's profile
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} model.User
// @Router /users/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID.(uint))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateFeedCities replaces the cities the current user follows on the live feed
// @Summary Update followed cities
// @Tags Auth
// @Accept json
// @Produce json
// @Param cities body object true "City IDs"
// @Success 200 {object} model.User
// @Router /users/me/feed-cities [put]
func (ctrl *AuthController) UpdateFeedCities(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var input struct {
		CityIDs []int64 `json:"city_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A list of city IDs is required")
		return
	}

	user, err := ctrl.authService.UpdateFeedCities(userID.(uint), input.CityIDs)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "Failed to update followed cities")
		return
	}

	c.JSON(http.StatusOK, user)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
