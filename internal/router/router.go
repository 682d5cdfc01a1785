package router

import (
	"github.com/avdbroek/plekwijzer-backend/config"
	"github.com/avdbroek/plekwijzer-backend/internal/app/controller"
	"github.com/avdbroek/plekwijzer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController     *controller.AuthController
	locationController *controller.LocationController
	reviewController   *controller.ReviewController
	uploadController   *controller.UploadController
	feedController     *controller.FeedController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	locationController *controller.LocationController,
	reviewController *controller.ReviewController,
	uploadController *controller.UploadController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		locationController: locationController,
		reviewController:   reviewController,
		uploadController:   uploadController,
		feedController:     feedController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Plekwijzer API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.POST("/refresh", r.authController.Refresh)
		}

		users := v1.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("/me", r.authController.Me)
			users.GET("/me/locations", r.locationController.GetMyLocations)
			users.PUT("/me/feed-cities", r.authController.UpdateFeedCities)
		}

		locations := v1.Group("/locations")
		{
			locations.GET("", r.locationController.GetLocations)
			locations.GET("/nearby", r.locationController.GetNearbyLocations)
			locations.GET("/top", r.locationController.GetTopLocations)
			locations.GET("/:id", r.locationController.GetLocation)
			locations.GET("/:id/comments", r.reviewController.GetComments)
			locations.GET("/:id/ratings/me",
				r.authMiddleware.Authenticate(),
				r.reviewController.GetMyRating,
			)

			locations.POST("",
				r.authMiddleware.Authenticate(),
				r.locationController.CreateLocation,
			)
			locations.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.AddReview,
			)
		}

		v1.GET("/cities", r.locationController.GetCities)

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/photos", r.uploadController.PresignPhotoUpload)
		}

		v1.GET("/feed",
			r.authMiddleware.Authenticate(),
			r.feedController.Connect,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
