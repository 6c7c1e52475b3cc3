package model

import "time"

const (
	EventUserJoined  = "user.joined"
	EventUserDeleted = "user.deleted"
)

// UserEvent is the payload published to the user event queue.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	Profile    string    `json:"profile,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
