package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "note_version_feed"

// Hub keeps the open version-feed connections per owner. With Redis, every
// instance republishes what it delivers so owners connected elsewhere get it too.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	OwnerId uuid.UUID       `json:"owner_id"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run owns the client map mutations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OwnerId] = append(h.clients[client.OwnerId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "client registered", map[string]interface{}{"owner_id": client.OwnerId})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// join and drop return immediately once Run has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.OwnerId]
	for i, c := range clients {
		if c == client {
			h.clients[client.OwnerId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.OwnerId]) == 0 {
		delete(h.clients, client.OwnerId)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ownerId, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, ownerId)
	}
}

// NotifyVersion delivers a version message to the owner's sessions on this
// instance and, when Redis is configured, to the other instances.
func (h *Hub) NotifyVersion(ownerId uuid.UUID, msg dto.PublishVersionMessage) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "note_version",
		"data": msg,
	})
	if err != nil {
		h.logger.Error("Hub", "failed to encode version message", map[string]interface{}{"error": err})
		return
	}

	h.deliver(ownerId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.instanceId, OwnerId: ownerId, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "failed to publish to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Connected reports how many sessions ownerId has open on this instance.
func (h *Hub) Connected(ownerId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerId])
}

func (h *Hub) deliver(ownerId uuid.UUID, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[ownerId] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// unregister outside the read lock, Run needs the write lock
	for _, client := range slow {
		h.logger.Warn("Hub", "client send buffer full, dropping session", map[string]interface{}{"owner_id": ownerId})
		go h.drop(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "malformed cluster message", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceId {
				continue
			}
			h.deliver(payload.OwnerId, payload.Message)
		}
	}
}
