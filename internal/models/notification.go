// internal/models/notification.go
package models

import "time"

type RosterEventType string

const (
	RosterEventSignup     RosterEventType = "signup"
	RosterEventUnregister RosterEventType = "unregister"
)

// RosterEvent records a committed roster change. Listeners receive it after
// the registry has already been updated.
type RosterEvent struct {
	ID               string          `json:"id"`
	Type             RosterEventType `json:"type"`
	Activity         string          `json:"activity"`
	Email            string          `json:"email"`
	ParticipantCount int             `json:"participantCount"`
	MaxParticipants  int             `json:"maxParticipants"`
	Participants     []string        `json:"participants,omitempty"`
	OccurredAt       time.Time       `json:"occurredAt"`
}

// Notification is the message published for a roster event.
type Notification struct {
	ID        string                 `json:"id"`
	Recipient string                 `json:"recipient"`
	Type      string                 `json:"type"`    // "signup_confirmation", "roster_update"
	Channel   string                 `json:"channel"` // "email", "topic"
	Status    string                 `json:"status"`  // "sent", "failed", "skipped"
	Payload   map[string]interface{} `json:"payload"`
	SentAt    string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
}
