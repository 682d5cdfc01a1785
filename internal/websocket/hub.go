package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/avdbroek/plekwijzer-backend/internal/app/model"
	"github.com/avdbroek/plekwijzer-backend/pkg/logger"
)

const (
	// Rate limiting: maximum client messages per second
	maxMessagesPerSecond = 10

	// AllCities is the wildcard subscription; subscribers receive events
	// for every city.
	AllCities uint = 0
)

// Feed event types pushed to subscribers
const (
	EventLocationCreated = "location_created"
	EventReviewAdded     = "review_added"
)

// ClientMessage is what feed clients send: subscribe/unsubscribe to a city
type ClientMessage struct {
	Type   string `json:"type"` // subscribe, unsubscribe
	CityID uint   `json:"city_id"`
}

// FeedEvent is what the hub pushes out
type FeedEvent struct {
	Type     string          `json:"type"`
	CityID   uint            `json:"city_id"`
	Location *model.Location `json:"location"`
}

// Client is one websocket session
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte

	Cities map[uint]bool // subscribed city IDs
	mu     sync.RWMutex

	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Hub fans location events out to city subscribers
type Hub struct {
	// UserID -> sessions; one user can be connected from several devices
	clients map[uint][]*Client

	// CityID -> set of subscribed user IDs
	cities map[uint]map[uint]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *FeedEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		cities:     make(map[uint]map[uint]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *FeedEvent, 1024),
	}
}

// Run processes registrations and broadcasts. Meant to run as a single
// goroutine for the lifetime of the server.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)

			// A client may arrive already subscribed, e.g. to the
			// user's saved cities.
			client.mu.RLock()
			for cityID := range client.Cities {
				if _, ok := h.cities[cityID]; !ok {
					h.cities[cityID] = make(map[uint]bool)
				}
				h.cities[cityID][client.UserID] = true
			}
			client.mu.RUnlock()
			h.mu.Unlock()
			logger.Info("Feed client connected", map[string]interface{}{
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				if len(newList) == 0 {
					delete(h.clients, client.UserID)

					// Drop the user's city subscriptions with the last session.
					client.mu.RLock()
					for cityID := range client.Cities {
						if subs, ok := h.cities[cityID]; ok {
							delete(subs, client.UserID)
							if len(subs) == 0 {
								delete(h.cities, cityID)
							}
						}
					}
					client.mu.RUnlock()
				} else {
					h.clients[client.UserID] = newList
				}

				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Feed client disconnected", map[string]interface{}{
				"user_id": client.UserID,
			})

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal feed event", err, nil)
				continue
			}

			h.mu.RLock()
			recipients := make(map[uint]bool)
			for userID := range h.cities[event.CityID] {
				recipients[userID] = true
			}
			for userID := range h.cities[AllCities] {
				recipients[userID] = true
			}

			for userID := range recipients {
				for _, client := range h.clients[userID] {
					select {
					case client.Send <- payload:
					default:
						// Send buffer full, drop the session asynchronously.
						go h.Unregister(client)
						logger.Warn("Feed client send buffer full, disconnecting", map[string]interface{}{
							"user_id": userID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Subscribe adds all of a user's sessions to a city feed
func (h *Hub) Subscribe(userID, cityID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[userID]
	if !ok {
		return
	}
	for _, client := range clientList {
		client.mu.Lock()
		client.Cities[cityID] = true
		client.mu.Unlock()
	}

	if _, ok := h.cities[cityID]; !ok {
		h.cities[cityID] = make(map[uint]bool)
	}
	h.cities[cityID][userID] = true
}

// Unsubscribe removes a user from a city feed
func (h *Hub) Unsubscribe(userID, cityID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			delete(client.Cities, cityID)
			client.mu.Unlock()
		}
	}

	if subs, ok := h.cities[cityID]; ok {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.cities, cityID)
		}
	}
}

// BroadcastLocationCreated pushes a new location to the city's subscribers
func (h *Hub) BroadcastLocationCreated(cityID uint, location *model.Location) {
	h.push(&FeedEvent{Type: EventLocationCreated, CityID: cityID, Location: location})
}

// BroadcastReviewAdded pushes an updated aggregate to the city's subscribers
func (h *Hub) BroadcastReviewAdded(cityID uint, location *model.Location) {
	h.push(&FeedEvent{Type: EventReviewAdded, CityID: cityID, Location: location})
}

func (h *Hub) push(event *FeedEvent) {
	select {
	case h.broadcast <- event:
	default:
		// The feed is best effort, losing an event never blocks a write.
		logger.Warn("Feed broadcast channel full, event dropped", map[string]interface{}{
			"city_id": event.CityID,
			"type":    event.Type,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// HandleClientMessage applies a subscribe/unsubscribe request from a client
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Feed rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse feed client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	switch msg.Type {
	case "subscribe":
		h.Subscribe(client.UserID, msg.CityID)
	case "unsubscribe":
		h.Unsubscribe(client.UserID, msg.CityID)
	}
}
