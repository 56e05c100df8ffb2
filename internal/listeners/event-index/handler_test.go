// internal/listeners/event-index/handler_test.go
package eventindex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockTransport struct {
	requests []*http.Request
	bodies   []string
	respond  func(req *http.Request) (int, string)
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)

	status, respBody := m.respond(req)
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(respBody)),
	}, nil
}

func createTestHandler(t *testing.T, transport http.RoundTripper) *Handler {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return NewHandler(&Config{Enabled: true, Timeout: time.Second, Index: "roster-events"}, client, logger.NewTestLogger(t))
}

func createEvent() models.RosterEvent {
	return models.RosterEvent{
		ID:               "evt-42",
		Type:             models.RosterEventSignup,
		Activity:         "Art & Craft",
		Email:            "student+test@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  15,
		OccurredAt:       time.Date(2024, 9, 2, 15, 30, 0, 0, time.UTC),
	}
}

// ==========================
// Handle
// ==========================

func TestHandler_Handle_IndexesDocument(t *testing.T) {
	transport := &mockTransport{respond: func(req *http.Request) (int, string) {
		return http.StatusCreated, `{"result":"created"}`
	}}
	handler := createTestHandler(t, transport)

	require.NoError(t, handler.Handle(context.Background(), createEvent()))

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/roster-events/_doc/evt-42", req.URL.Path)

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(transport.bodies[0]), &doc))
	assert.Equal(t, "signup", doc.EventType)
	assert.Equal(t, "Art & Craft", doc.Activity)
	assert.Equal(t, "student+test@mergington.edu", doc.Email)
	assert.Equal(t, 12, doc.SpotsLeft)
}

func TestHandler_Handle_ErrorResponse(t *testing.T) {
	transport := &mockTransport{respond: func(req *http.Request) (int, string) {
		return http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception"}}`
	}}

	err := createTestHandler(t, transport).Handle(context.Background(), createEvent())
	assert.ErrorIs(t, err, ErrIndexFailed)
}

// ==========================
// Recent
// ==========================

func TestHandler_Recent(t *testing.T) {
	transport := &mockTransport{respond: func(req *http.Request) (int, string) {
		return http.StatusOK, `{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {"event_id": "evt-2", "event_type": "unregister", "activity": "Chess Club", "email": "michael@mergington.edu"}},
					{"_source": {"event_id": "evt-1", "event_type": "signup", "activity": "Chess Club", "email": "newstudent@mergington.edu"}}
				]
			}
		}`
	}}
	handler := createTestHandler(t, transport)

	docs, err := handler.Recent(context.Background(), "Chess Club", 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "evt-2", docs[0].EventID)
	assert.Equal(t, "/roster-events/_search", transport.requests[0].URL.Path)
	assert.Contains(t, transport.bodies[0], `"size":20`)
	assert.Contains(t, transport.bodies[0], `"activity":"Chess Club"`)
}

func TestHandler_Recent_Failure(t *testing.T) {
	transport := &mockTransport{respond: func(req *http.Request) (int, string) {
		return http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`
	}}

	_, err := createTestHandler(t, transport).Recent(context.Background(), "Chess Club", 5)
	assert.ErrorIs(t, err, ErrSearchFailed)
}
