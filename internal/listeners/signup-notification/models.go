// internal/listeners/signup-notification/models.go
package signupnotification

import "activity-signup/internal/models"

const (
	TypeSignupConfirmation     = "signup_confirmation"
	TypeUnregisterConfirmation = "unregister_confirmation"
)

const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

const (
	ChannelEmail = "email"
	ChannelTopic = "topic"
)

var templates = map[models.RosterEventType]models.NotificationTemplate{
	models.RosterEventSignup: {
		ID:      "signup-confirmation-v1",
		Type:    TypeSignupConfirmation,
		Subject: "You are signed up for {{activity}}",
		Body:    "Hi {{email}},\n\nYou are now on the roster for {{activity}}. {{spotsLeft}} spots remain.\n\nMergington High School Activities",
	},
	models.RosterEventUnregister: {
		ID:      "unregister-confirmation-v1",
		Type:    TypeUnregisterConfirmation,
		Subject: "You have left {{activity}}",
		Body:    "Hi {{email}},\n\nYou have been removed from the roster for {{activity}}.\n\nMergington High School Activities",
	},
}
