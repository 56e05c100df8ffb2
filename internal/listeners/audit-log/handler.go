// internal/listeners/audit-log/handler.go
package auditlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"
)

const (
	ListenerName = "audit-log"
)

var (
	ErrAuditInsertFailed = errors.New("AUDIT_INSERT_FAILED")
	ErrAuditQueryFailed  = errors.New("AUDIT_QUERY_FAILED")
)

const insertEvent = `
	INSERT INTO roster_events (
		id, event_type, activity_name, email,
		participant_count, max_participants, occurred_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING`

const selectHistory = `
	SELECT id, event_type, activity_name, email, participant_count, max_participants, occurred_at
	FROM roster_events
	WHERE activity_name = $1
	ORDER BY occurred_at DESC
	LIMIT $2`

// Handler appends every roster event to the roster_events table.
type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"listener": ListenerName}),
	}
}

func (h *Handler) Name() string { return ListenerName }

func (h *Handler) Handle(ctx context.Context, event models.RosterEvent) error {
	res, err := h.db.ExecContext(ctx, insertEvent,
		event.ID,
		string(event.Type),
		event.Activity,
		event.Email,
		event.ParticipantCount,
		event.MaxParticipants,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuditInsertFailed, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		h.logger.Debug("roster event already recorded", map[string]interface{}{
			"eventId": event.ID,
		})
		return nil
	}

	h.logger.Debug("roster event recorded", map[string]interface{}{
		"eventId":  event.ID,
		"type":     string(event.Type),
		"activity": event.Activity,
	})
	return nil
}

// History returns the most recent entries for activity, newest first.
func (h *Handler) History(ctx context.Context, activity string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.QueryContext(ctx, selectHistory, activity, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuditQueryFailed, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EventType, &e.ActivityName, &e.Email,
			&e.ParticipantCount, &e.MaxParticipants, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrAuditQueryFailed, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuditQueryFailed, err)
	}
	return entries, nil
}
