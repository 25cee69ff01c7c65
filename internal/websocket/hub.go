package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const roomEventsChannel = "chat_room_events"

// Hub keeps the per-room fan-out groups. The room registry is the only
// structure mutated concurrently by connection lifecycle events; everything
// else goes through the storage layer.
type Hub struct {
	// Registered clients map: RoomID -> set of Clients
	rooms map[uuid.UUID]map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Identifies this process so its own published events are skipped on
	// the subscribe side (local delivery already happened).
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.RoomID] == nil {
				h.rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.rooms[client.RoomID][client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client joined room", map[string]interface{}{
				"room_id": client.RoomID,
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.RoomID]; ok {
				if _, joined := clients[client]; joined {
					delete(clients, client)
					client.closeSend()
				}
				if len(clients) == 0 {
					delete(h.rooms, client.RoomID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client left room", map[string]interface{}{
				"room_id": client.RoomID,
				"user_id": client.UserID,
			})
		}
	}
}

// BroadcastToRoom delivers data to every connection currently joined to the
// room on this instance and publishes it for the other instances.
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, data []byte) {
	h.deliverLocal(roomID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceID,
			"room_id": roomID.String(),
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), roomEventsChannel, payload)
	}
}

func (h *Hub) deliverLocal(roomID uuid.UUID, data []byte) {
	h.mu.RLock()
	for client := range h.rooms[roomID] {
		if !client.TrySend(data) {
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"room_id": roomID,
				"user_id": client.UserID,
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, roomEventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			RoomID  string          `json:"room_id"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Local delivery already happened on the publishing instance.
		if payload.Origin == h.instanceID {
			continue
		}

		roomID, err := uuid.Parse(payload.RoomID)
		if err != nil {
			continue
		}

		h.deliverLocal(roomID, payload.Message)
	}
}
