package hub

import (
	"errors"
	"fmt"
)

var (
	ErrHubClosed       = errors.New("hub is closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already registered")
	ErrInvalidGroup    = errors.New("group name must not be empty")
	ErrSendQueueFull   = errors.New("session send queue is full")
	ErrQueueFull       = errors.New("hub broadcast queue is full")
)

// DeliveryError describes a failed delivery to one session. It is logged by
// the hub and never returned to broadcasters.
type DeliveryError struct {
	SessionID string
	Event     string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %q to session %s: %v", e.Event, e.SessionID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
