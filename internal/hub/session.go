package hub

import (
	"time"

	"github.com/google/uuid"
)

// Session is one connected viewer. Its outbound queue is owned by the hub:
// only the hub sends on it and only Unregister closes it.
type Session struct {
	ID          string
	UserID      string
	Username    string
	ConnectedAt time.Time

	send   chan []byte
	groups map[string]struct{} // guarded by Hub.mu
}

// NewSession creates a session with a buffered outbound queue.
func NewSession(userID, username string, buffer int) *Session {
	if buffer <= 0 {
		buffer = 256
	}
	return &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Username:    username,
		ConnectedAt: time.Now(),
		send:        make(chan []byte, buffer),
		groups:      make(map[string]struct{}),
	}
}

// Send returns the outbound queue. It is closed when the session is
// unregistered.
func (s *Session) Send() <-chan []byte {
	return s.send
}
