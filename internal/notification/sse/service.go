// Package sse provides Server-Sent Events support for real-time
// notifications. Clients join a personal channel keyed by user ID and a
// role room derived from their JWT.
package sse

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/logger"
)

// EventType identifies the kind of notification being pushed.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventDuplicateDetected EventType = "duplicate_detected"
	EventLeadUpdated       EventType = "lead_updated"
	EventLeadConverted     EventType = "lead_converted"
	EventLeadAssigned      EventType = "lead_assigned"
	EventLeadUnassigned    EventType = "lead_unassigned"
	EventFollowUpDue       EventType = "followup_due"
)

// Event is the SSE payload pushed to connected clients.
type Event struct {
	Type    EventType   `json:"type"`
	LeadKey uuid.UUID   `json:"leadKey,omitempty"`
	LeadID  string      `json:"leadId,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client is a single open SSE connection.
type client struct {
	userID uuid.UUID
	role   string
	events chan Event
}

// clientBuffer is the per-connection event backlog; deliver drops events
// for clients that fall further behind.
const clientBuffer = 32

// Service manages SSE connections and event fan-out.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	rooms   map[string][]*client
	log     *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		rooms:   make(map[string][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
	if c.role != "" {
		s.rooms[c.role] = append(s.rooms[c.role], c)
	}
}

// removeClient detaches a connection and closes its channel. It is
// idempotent so a listener cancelled after Close does not double-close.
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.clients[c.userID]
	remaining := removeFrom(current, c)
	if len(remaining) == len(current) {
		return
	}

	if len(remaining) == 0 {
		delete(s.clients, c.userID)
	} else {
		s.clients[c.userID] = remaining
	}
	if c.role != "" {
		s.rooms[c.role] = removeFrom(s.rooms[c.role], c)
		if len(s.rooms[c.role]) == 0 {
			delete(s.rooms, c.role)
		}
	}

	close(c.events)
}

// Subscribe attaches a listener to the user's personal channel and role
// room. The returned cancel detaches the listener; calling it after the
// service closed is safe.
func (s *Service) Subscribe(userID uuid.UUID, role string) (<-chan Event, func()) {
	cl := &client{
		userID: userID,
		role:   role,
		events: make(chan Event, clientBuffer),
	}
	s.addClient(cl)
	return cl.events, func() { s.removeClient(cl) }
}

func removeFrom(clients []*client, target *client) []*client {
	for i, c := range clients {
		if c == target {
			return append(clients[:i], clients[i+1:]...)
		}
	}
	return clients
}

// Publish sends an event to every open connection of a user.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	clients := s.clients[userID]
	s.mu.RUnlock()

	for _, c := range clients {
		s.deliver(c, event)
	}
}

// Broadcast sends an event to every connected client, once each.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	var targets []*client
	for _, clients := range s.clients {
		targets = append(targets, clients...)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		s.deliver(c, event)
	}
}

// PublishToRoles broadcasts an event to every client in the given role
// rooms. A client receives the event at most once.
func (s *Service) PublishToRoles(event Event, roles ...string) {
	s.mu.RLock()
	seen := make(map[*client]bool)
	var targets []*client
	for _, role := range roles {
		for _, c := range s.rooms[role] {
			if !seen[c] {
				seen[c] = true
				targets = append(targets, c)
			}
		}
	}
	s.mu.RUnlock()

	for _, c := range targets {
		s.deliver(c, event)
	}
}

func (s *Service) deliver(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		s.log.Warn("sse event buffer full, dropping event",
			"user_id", c.userID,
			"event_type", string(event.Type))
	}
}

// Handler returns the gin handler for the SSE stream endpoint. The auth
// middleware must run first; the identity drives channel membership.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		stream, cancel := s.Subscribe(identity.UserID(), identity.Role())
		defer cancel()

		c.SSEvent("connected", gin.H{"userId": identity.UserID(), "role": identity.Role()})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-stream:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					continue
				}
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close terminates every open connection.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
	s.rooms = make(map[string][]*client)
}
