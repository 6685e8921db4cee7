package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

// Hub tracks connected sessions and their groups and fans events out to
// them. Broadcasts are queued and delivered by the Run loop in send order,
// so each session sees events in the order they were broadcast.
type Hub struct {
	sessions map[string]*Session            // sessionID -> session
	groups   map[string]map[string]*Session // group -> sessionID -> session
	closed   bool
	mu       sync.RWMutex

	queue    chan *envelope
	done     chan struct{}
	stopOnce sync.Once
	cfg      config.WebSocketConfig

	broadcasts atomic.Uint64
	rejected   atomic.Uint64
	deliveries atomic.Uint64
	dropped    atomic.Uint64
}

type envelope struct {
	group string // empty means every session
	event string
	data  []byte
}

// Stats is a point-in-time snapshot of hub activity.
type Stats struct {
	Sessions   int    `json:"sessions"`
	Groups     int    `json:"groups"`
	Broadcasts uint64 `json:"broadcasts"`
	Rejected   uint64 `json:"rejected"`
	Deliveries uint64 `json:"deliveries"`
	Dropped    uint64 `json:"dropped"`
}

func New(cfg config.WebSocketConfig) *Hub {
	if cfg.HubQueue <= 0 {
		cfg.HubQueue = 1024
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Hub{
		sessions: make(map[string]*Session),
		groups:   make(map[string]map[string]*Session),
		queue:    make(chan *envelope, cfg.HubQueue),
		done:     make(chan struct{}),
		cfg:      cfg,
	}
}

// NewSession creates a session sized by the hub's configuration.
func (h *Hub) NewSession(userID, username string) *Session {
	return NewSession(userID, username, h.cfg.SendBuffer)
}

// Run delivers queued broadcasts until ctx is done, then closes every
// session and rejects further broadcasts.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-h.queue:
			h.deliver(env)
		}
	}
}

// Register adds a session to the hub.
func (h *Hub) Register(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, ok := h.sessions[s.ID]; ok {
		return ErrSessionExists
	}
	h.sessions[s.ID] = s

	l := log.L()
	l.Debug().Str(log.FieldSessionID, s.ID).Str(log.FieldUserID, s.UserID).Msg("session registered")
	return nil
}

// Unregister removes the session from the hub and every group and closes
// its queue. Safe to call more than once.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *Session) {
	if cur, ok := h.sessions[s.ID]; !ok || cur != s {
		return
	}
	for group := range s.groups {
		if members, ok := h.groups[group]; ok {
			delete(members, s.ID)
			if len(members) == 0 {
				delete(h.groups, group)
			}
		}
	}
	s.groups = make(map[string]struct{})
	delete(h.sessions, s.ID)
	close(s.send)

	l := log.L()
	l.Debug().Str(log.FieldSessionID, s.ID).Msg("session unregistered")
}

// Join adds a registered session to group.
func (h *Hub) Join(sessionID, group string) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return ErrInvalidGroup
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Session)
		h.groups[group] = members
	}
	members[sessionID] = s
	s.groups[group] = struct{}{}

	l := log.L()
	l.Info().Str(log.FieldSessionID, sessionID).Str(log.FieldGroup, group).Msg("session joined group")
	return nil
}

// Leave removes a session from group. Leaving a group the session is not
// in is not an error.
func (h *Hub) Leave(sessionID, group string) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return ErrInvalidGroup
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if members, ok := h.groups[group]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	delete(s.groups, group)

	l := log.L()
	l.Info().Str(log.FieldSessionID, sessionID).Str(log.FieldGroup, group).Msg("session left group")
	return nil
}

// BroadcastToAll queues event for every connected session.
func (h *Hub) BroadcastToAll(ctx context.Context, event, payload string) error {
	return h.enqueue(ctx, "", event, payload)
}

// BroadcastToGroup queues event for the current members of group.
func (h *Hub) BroadcastToGroup(ctx context.Context, group, event, payload string) error {
	if strings.TrimSpace(group) == "" {
		return ErrInvalidGroup
	}
	return h.enqueue(ctx, group, event, payload)
}

// enqueue never waits for the run loop. A full queue drops the broadcast.
func (h *Hub) enqueue(ctx context.Context, group, event, payload string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("queue broadcast: %w", err)
	}
	data, err := json.Marshal(domain.NewEventMessage(event, payload))
	if err != nil {
		return err
	}
	env := &envelope{group: group, event: event, data: data}

	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.queue <- env:
		h.broadcasts.Add(1)
		return nil
	default:
		h.rejected.Add(1)
		l := log.L()
		l.Warn().
			Str(log.FieldEvent, event).
			Str(log.FieldGroup, group).
			Int("queue", cap(h.queue)).
			Msg("hub queue full, broadcast dropped")
		return ErrQueueFull
	}
}

// SendTo queues a direct message for one session, such as a reply to a
// client request.
func (h *Hub) SendTo(sessionID string, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// deliver hands env to each target without blocking. Sessions whose queue
// is full are dropped after the read lock is released.
func (h *Hub) deliver(env *envelope) {
	var slow []*Session

	h.mu.RLock()
	targets := h.sessions
	if env.group != "" {
		targets = h.groups[env.group]
	}
	for _, s := range targets {
		select {
		case s.send <- env.data:
			h.deliveries.Add(1)
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	l := log.L()
	h.mu.Lock()
	for _, s := range slow {
		derr := &DeliveryError{SessionID: s.ID, Event: env.event, Err: ErrSendQueueFull}
		l.Warn().Err(derr).Str(log.FieldSessionID, s.ID).Str(log.FieldEvent, env.event).Msg("dropping slow session")
		h.dropped.Add(1)
		h.removeLocked(s)
	}
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, s := range h.sessions {
		h.removeLocked(s)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GroupSize returns the number of sessions in group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// GroupsOf returns the sorted groups a session belongs to.
func (h *Hub) GroupsOf(sessionID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return nil
	}
	groups := make([]string, 0, len(s.groups))
	for g := range s.groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Stats returns a snapshot of hub counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	sessions, groups := len(h.sessions), len(h.groups)
	h.mu.RUnlock()

	return Stats{
		Sessions:   sessions,
		Groups:     groups,
		Broadcasts: h.broadcasts.Load(),
		Rejected:   h.rejected.Load(),
		Deliveries: h.deliveries.Load(),
		Dropped:    h.dropped.Load(),
	}
}
