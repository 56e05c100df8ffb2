// internal/listeners/roster-mirror/models.go
package rostermirror

// Roster is the mirrored view of one activity.
type Roster struct {
	Activity        string   `json:"activity"`
	Participants    []string `json:"participants"`
	MaxParticipants int      `json:"maxParticipants"`
}
