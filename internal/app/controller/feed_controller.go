package controller

import (
	"net/http"
	"time"

	"github.com/avdbroek/plekwijzer-backend/internal/app/service"
	apperrors "github.com/avdbroek/plekwijzer-backend/internal/errors"
	"github.com/avdbroek/plekwijzer-backend/internal/middleware"
	ws "github.com/avdbroek/plekwijzer-backend/internal/websocket"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type FeedController struct {
	hub            *ws.Hub
	authService    service.AuthService
	allowedOrigins map[string]bool
}

func NewFeedController(hub *ws.Hub, authService service.AuthService, allowedOrigins []string) *FeedController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}
	return &FeedController{
		hub:            hub,
		authService:    authService,
		allowedOrigins: origins,
	}
}

// Connect upgrades the request to a websocket and attaches the client to
// the live location feed
// @Summary Live location feed
// @Tags Feed
// @Router /feed [get]
func (ctrl *FeedController) Connect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "You must be logged in")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no Origin header.
				return true
			}
			return ctrl.allowedOrigins[origin]
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		UserID:        userID,
		Send:          make(chan []byte, 64),
		Cities:        make(map[uint]bool),
		LastResetTime: time.Now(),
	}

	// Start the session on the user's saved cities; explicit
	// subscribe/unsubscribe messages adjust from there.
	if user, err := ctrl.authService.GetUserByID(userID); err == nil {
		for _, cityID := range user.FeedCityIDs {
			if cityID > 0 {
				client.Cities[uint(cityID)] = true
			}
		}
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
