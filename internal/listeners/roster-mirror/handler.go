// internal/listeners/roster-mirror/handler.go
package rostermirror

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	ListenerName = "roster-mirror"
)

var (
	ErrMirrorWriteFailed = errors.New("MIRROR_WRITE_FAILED")
	ErrMirrorReadFailed  = errors.New("MIRROR_READ_FAILED")
)

// Handler keeps a Redis copy of every roster: a set of emails per activity
// plus a hash of participant counts, for consumers outside this process.
type Handler struct {
	config *Config
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, redisClient *redis.Client, log logger.Logger) *Handler {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "activity"
	}
	return &Handler{
		config: config,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"listener": ListenerName}),
	}
}

func (h *Handler) Name() string { return ListenerName }

func (h *Handler) participantsKey(activity string) string {
	return fmt.Sprintf("%s:%s:participants", h.config.KeyPrefix, activity)
}

func (h *Handler) countsKey() string {
	return h.config.KeyPrefix + ":counts"
}

// applyEvent updates the participant set and stores its size in the counts
// hash atomically, so the count always matches the mirrored set.
var applyEvent = redis.NewScript(`
if ARGV[1] == "add" then
  redis.call("SADD", KEYS[1], ARGV[2])
else
  redis.call("SREM", KEYS[1], ARGV[2])
end
local n = redis.call("SCARD", KEYS[1])
redis.call("HSET", KEYS[2], ARGV[3], n)
return n
`)

func (h *Handler) Handle(ctx context.Context, event models.RosterEvent) error {
	op := "add"
	if event.Type == models.RosterEventUnregister {
		op = "remove"
	}

	count, err := applyEvent.Run(ctx, h.redis,
		[]string{h.participantsKey(event.Activity), h.countsKey()},
		op, event.Email, event.Activity,
	).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorWriteFailed, err)
	}

	h.logger.Debug("roster mirrored", map[string]interface{}{
		"eventId":  event.ID,
		"activity": event.Activity,
		"count":    count,
	})
	return nil
}

// Sync overwrites the mirror with the given rosters. It runs at startup so the
// mirror matches the freshly seeded registry.
func (h *Handler) Sync(ctx context.Context, activities map[string]models.Activity) error {
	_, err := h.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, h.countsKey())
		for name, a := range activities {
			key := h.participantsKey(name)
			pipe.Del(ctx, key)
			if len(a.Participants) > 0 {
				members := make([]interface{}, len(a.Participants))
				for i, p := range a.Participants {
					members[i] = p
				}
				pipe.SAdd(ctx, key, members...)
			}
			pipe.HSet(ctx, h.countsKey(), name, len(a.Participants))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: sync: %v", ErrMirrorWriteFailed, err)
	}

	h.logger.Info("roster mirror synced", map[string]interface{}{
		"activities": len(activities),
	})
	return nil
}

// Participants reads the mirrored roster of activity, sorted.
func (h *Handler) Participants(ctx context.Context, activity string) ([]string, error) {
	members, err := h.redis.SMembers(ctx, h.participantsKey(activity)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMirrorReadFailed, err)
	}
	sort.Strings(members)
	return members, nil
}
