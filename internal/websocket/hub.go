package websocket

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/shopfloor/api/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte

	mu     sync.Mutex
	closed bool
}

// Offer queues data without blocking. It reports false when the buffer is
// full or the client has been closed.
func (c *Client) Offer(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close closes Send once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by topic
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to topic subscribers
	broadcast chan *BroadcastMessage

	done chan struct{}
	once sync.Once

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	Topic   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					client.Close()
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
			log.Printf("Client subscribed to %s", client.Topic)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Topic]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.Close()
					if len(clients) == 0 {
						delete(h.clients, client.Topic)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unsubscribed from %s", client.Topic)

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.Topic]; ok {
				for client := range clients {
					if !client.Offer(msg.Message) {
						client.Close()
						delete(clients, client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop ends the main loop and closes every client.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers returns the number of clients on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Publish marshals v and queues it for topic subscribers. Messages are
// dropped when the broadcast queue is full.
func (h *Hub) Publish(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", topic, err)
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{Topic: topic, Message: data}:
	default:
		log.Printf("Warning: broadcast queue full, dropping %s message", topic)
	}
}

// BroadcastJob sends a job update to the jobs topic and the job's own topic
func (h *Hub) BroadcastJob(job model.Job, entry *model.JobLog) {
	msg := model.WSJobMessage{Type: model.WSMessageTypeJob, Job: job, Log: entry}
	h.Publish(model.TopicJobs, msg)
	h.Publish(model.JobTopic(job.ID), msg)
}

// BroadcastMachine sends a machine update
func (h *Hub) BroadcastMachine(m model.Machine) {
	h.Publish(model.TopicMachines, model.WSMachineMessage{Type: model.WSMessageTypeMachine, Machine: m})
}

// BroadcastMaterial sends a material update
func (h *Hub) BroadcastMaterial(m model.Material, trx *model.MaterialTransaction) {
	h.Publish(model.TopicMaterials, model.WSMaterialMessage{
		Type:        model.WSMessageTypeMaterial,
		Material:    m,
		Transaction: trx,
	})
}

// BroadcastAlert sends an alert to the alerts topic
func (h *Hub) BroadcastAlert(code, message, subject string) {
	h.Publish(model.TopicAlerts, model.WSAlertMessage{
		Type:    model.WSMessageTypeAlert,
		Code:    code,
		Message: message,
		Subject: subject,
	})
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, topic string) {
	client := &Client{
		Topic: topic,
		Conn:  c,
		Send:  make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Offer(data)
		}
	}
}

// ValidTopic reports whether topic can be subscribed to.
func ValidTopic(topic string) bool {
	switch topic {
	case model.TopicJobs, model.TopicMachines, model.TopicMaterials, model.TopicAlerts:
		return true
	}
	id, ok := strings.CutPrefix(topic, model.JobTopic(""))
	return ok && id != ""
}
