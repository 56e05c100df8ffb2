// internal/listeners/event-index/handler.go
package eventindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	ListenerName = "event-index"
)

var (
	ErrIndexFailed  = errors.New("INDEX_FAILED")
	ErrSearchFailed = errors.New("SEARCH_FAILED")
)

// Handler writes roster events to an Elasticsearch index keyed by event ID,
// so a replayed event overwrites rather than duplicates.
type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"listener": ListenerName}),
	}
}

func (h *Handler) Name() string { return ListenerName }

func (h *Handler) Handle(ctx context.Context, event models.RosterEvent) error {
	doc := Document{
		EventID:          event.ID,
		EventType:        string(event.Type),
		Activity:         event.Activity,
		Email:            event.Email,
		ParticipantCount: event.ParticipantCount,
		MaxParticipants:  event.MaxParticipants,
		SpotsLeft:        max(event.MaxParticipants-event.ParticipantCount, 0),
		OccurredAt:       event.OccurredAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: event.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, h.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}

	h.logger.Debug("roster event indexed", map[string]interface{}{
		"eventId": event.ID,
		"index":   h.config.Index,
	})
	return nil
}

// Recent returns the newest indexed events for activity.
func (h *Handler) Recent(ctx context.Context, activity string, size int) ([]Document, error) {
	if size <= 0 || size > 100 {
		size = 20
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"term": map[string]interface{}{"activity": activity},
		},
		"sort": []interface{}{
			map[string]interface{}{"occurred_at": map[string]interface{}{"order": "desc"}},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{h.config.Index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, h.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchFailed, err)
	}

	docs := make([]Document, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
