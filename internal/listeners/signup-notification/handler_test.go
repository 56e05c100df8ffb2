// internal/listeners/signup-notification/handler_test.go
package signupnotification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-2")}, nil
}

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		TopicEnabled: true,
		FromEmail:    "activities@mergington.edu",
		TopicARN:     "arn:aws:sns:us-east-1:123456789012:roster-events",
		AWSRegion:    "us-east-1",
		Timeout:      time.Second,
	}
}

func createEvent(eventType models.RosterEventType, email string) models.RosterEvent {
	return models.RosterEvent{
		ID:               "evt-7",
		Type:             eventType,
		Activity:         "Chess Club",
		Email:            email,
		ParticipantCount: 3,
		MaxParticipants:  12,
		OccurredAt:       time.Date(2024, 9, 2, 15, 30, 0, 0, time.UTC),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Handle_SendsOnBothChannels(t *testing.T) {
	mockSES := &MockSESService{}
	mockSNS := &MockSNSService{}
	handler := NewHandler(createTestConfig(), mockSES, mockSNS, logger.NewTestLogger(t))

	err := handler.Handle(context.Background(), createEvent(models.RosterEventSignup, "newstudent@mergington.edu"))
	require.NoError(t, err)

	require.Len(t, mockSES.calls, 1)
	email := mockSES.calls[0]
	assert.Equal(t, []string{"newstudent@mergington.edu"}, email.Destination.ToAddresses)
	assert.Equal(t, "activities@mergington.edu", aws.ToString(email.Source))
	assert.Equal(t, "You are signed up for Chess Club", aws.ToString(email.Message.Subject.Data))
	assert.Contains(t, aws.ToString(email.Message.Body.Text.Data), "9 spots remain")

	require.Len(t, mockSNS.calls, 1)
	publish := mockSNS.calls[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:roster-events", aws.ToString(publish.TopicArn))
	assert.Equal(t, "signup", aws.ToString(publish.MessageAttributes["eventType"].StringValue))

	var event models.RosterEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(publish.Message)), &event))
	assert.Equal(t, "evt-7", event.ID)
}

func TestHandler_Notify_Statuses(t *testing.T) {
	tests := []struct {
		name           string
		config         func(c *Config)
		event          models.RosterEvent
		sesErr         error
		snsErr         error
		expectedStatus map[string]string
		expectErr      bool
	}{
		{
			name:           "unregister confirmation",
			event:          createEvent(models.RosterEventUnregister, "michael@mergington.edu"),
			expectedStatus: map[string]string{ChannelEmail: StatusSent, ChannelTopic: StatusSent},
		},
		{
			name:           "undeliverable address skips email only",
			event:          createEvent(models.RosterEventSignup, "not-an-email"),
			expectedStatus: map[string]string{ChannelEmail: StatusSkipped, ChannelTopic: StatusSent},
		},
		{
			name:           "ses failure",
			event:          createEvent(models.RosterEventSignup, "newstudent@mergington.edu"),
			sesErr:         errors.New("MessageRejected"),
			expectedStatus: map[string]string{ChannelEmail: StatusFailed, ChannelTopic: StatusSent},
			expectErr:      true,
		},
		{
			name:           "sns failure",
			event:          createEvent(models.RosterEventSignup, "newstudent@mergington.edu"),
			snsErr:         errors.New("NotFound"),
			expectedStatus: map[string]string{ChannelEmail: StatusSent, ChannelTopic: StatusFailed},
			expectErr:      true,
		},
		{
			name:           "email disabled",
			config:         func(c *Config) { c.EmailEnabled = false },
			event:          createEvent(models.RosterEventSignup, "newstudent@mergington.edu"),
			expectedStatus: map[string]string{ChannelTopic: StatusSent},
		},
		{
			name: "all channels disabled",
			config: func(c *Config) {
				c.EmailEnabled = false
				c.TopicEnabled = false
			},
			event:          createEvent(models.RosterEventSignup, "newstudent@mergington.edu"),
			expectedStatus: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			if tt.config != nil {
				tt.config(cfg)
			}
			mockSES := &MockSESService{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
				return &ses.SendEmailOutput{}, tt.sesErr
			}}
			mockSNS := &MockSNSService{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
				return &sns.PublishOutput{}, tt.snsErr
			}}
			handler := NewHandler(cfg, mockSES, mockSNS, logger.NewTestLogger(t))

			results := handler.Notify(context.Background(), tt.event)
			got := make(map[string]string, len(results))
			for _, n := range results {
				got[n.Channel] = n.Status
			}
			assert.Equal(t, tt.expectedStatus, got)

			err := handler.Handle(context.Background(), tt.event)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrNotificationSendFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("{{email}} joined {{activity}} ({{spotsLeft}} left)", map[string]interface{}{
		"email":     "a@mergington.edu",
		"activity":  "Art & Craft",
		"spotsLeft": 4,
	})
	assert.Equal(t, "a@mergington.edu joined Art & Craft (4 left)", out)
}

func TestConfig_Enabled(t *testing.T) {
	assert.True(t, createTestConfig().Enabled())
	assert.False(t, (&Config{}).Enabled())
}
