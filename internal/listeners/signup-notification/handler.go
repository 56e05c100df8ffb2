// internal/listeners/signup-notification/handler.go
package signupnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/validation"
	"activity-signup/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const (
	ListenerName = "signup-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Handler mails a confirmation to the student and publishes the raw event
// to an SNS topic. Either channel may be disabled.
type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"listener": ListenerName}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (h *Handler) Name() string { return ListenerName }

// Handle returns an error when any enabled channel failed. Both channels are
// attempted regardless.
func (h *Handler) Handle(ctx context.Context, event models.RosterEvent) error {
	results := h.Notify(ctx, event)

	var failed []string
	for _, n := range results {
		if n.Status == StatusFailed {
			failed = append(failed, n.Channel)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(failed, ","))
	}
	return nil
}

// Notify sends on every enabled channel and reports the outcome per channel.
func (h *Handler) Notify(ctx context.Context, event models.RosterEvent) []models.Notification {
	var results []models.Notification

	if h.config.EmailEnabled && h.sesClient != nil {
		results = append(results, h.sendEmail(ctx, event))
	}
	if h.config.TopicEnabled && h.snsClient != nil {
		results = append(results, h.publishEvent(ctx, event))
	}
	return results
}

func (h *Handler) sendEmail(ctx context.Context, event models.RosterEvent) models.Notification {
	tmpl, ok := templates[event.Type]
	n := models.Notification{
		ID:        uuid.NewString(),
		Recipient: event.Email,
		Type:      tmpl.Type,
		Channel:   ChannelEmail,
		SentAt:    event.OccurredAt.Format(time.RFC3339),
	}

	if !ok || !validation.ValidateEmail(event.Email) {
		n.Status = StatusSkipped
		h.logger.Debug("confirmation email skipped", map[string]interface{}{
			"eventId": event.ID,
			"email":   event.Email,
		})
		return n
	}

	data := map[string]interface{}{
		"activity":  event.Activity,
		"email":     event.Email,
		"spotsLeft": max(event.MaxParticipants-event.ParticipantCount, 0),
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	if err != nil {
		n.Status = StatusFailed
		h.logger.Error("email send failed", map[string]interface{}{
			"error":   err,
			"eventId": event.ID,
		})
		return n
	}

	n.Status = StatusSent
	n.Payload = map[string]interface{}{"subject": subject}
	return n
}

func (h *Handler) publishEvent(ctx context.Context, event models.RosterEvent) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Recipient: h.config.TopicARN,
		Type:      string(event.Type),
		Channel:   ChannelTopic,
		SentAt:    event.OccurredAt.Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.Status = StatusFailed
		return n
	}

	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(string(event.Type))},
			"activity":  {DataType: aws.String("String"), StringValue: aws.String(event.Activity)},
		},
	})
	if err != nil {
		n.Status = StatusFailed
		h.logger.Error("topic publish failed", map[string]interface{}{
			"error":   err,
			"eventId": event.ID,
		})
		return n
	}

	n.Status = StatusSent
	return n
}

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		var value string
		switch val := v.(type) {
		case string:
			value = val
		case int:
			value = strconv.Itoa(val)
		default:
			value = fmt.Sprintf("%v", val)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
