// internal/listeners/audit-log/models.go
package auditlog

import "time"

// Entry is one row of roster_events.
type Entry struct {
	ID               string    `json:"id"`
	EventType        string    `json:"eventType"`
	ActivityName     string    `json:"activityName"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participantCount"`
	MaxParticipants  int       `json:"maxParticipants"`
	OccurredAt       time.Time `json:"occurredAt"`
}
