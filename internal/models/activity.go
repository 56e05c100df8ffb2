// internal/models/activity.go
package models

import "slices"

// Activity is one extracurricular offering. Participants keeps signup order.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Clone returns a copy that shares no memory with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

func (a Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// SpotsLeft never goes below zero, even for rosters seeded over capacity.
func (a Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// MessageResponse is the body of a successful roster mutation.
type MessageResponse struct {
	Message string `json:"message"`
}
