// internal/listeners/event-index/models.go
package eventindex

import "time"

// Document is the indexed form of a roster event.
type Document struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	Activity         string    `json:"activity"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	SpotsLeft        int       `json:"spots_left"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// IndexMapping is applied when the index does not exist yet.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "event_id":          { "type": "keyword" },
      "event_type":        { "type": "keyword" },
      "activity":          { "type": "keyword" },
      "email":             { "type": "keyword" },
      "participant_count": { "type": "integer" },
      "max_participants":  { "type": "integer" },
      "spots_left":        { "type": "integer" },
      "occurred_at":       { "type": "date" }
    }
  }
}`
