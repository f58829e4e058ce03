package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-prefs/pkg/event"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts preference-change events to a go-users ActivitySink so updates
// land in the per-user activity log.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, evt event.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := event.NormalizeEvent(evt)
	if normalized.Verb == "" || normalized.Key == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID),
		UserID:     parseUUID(normalized.UserID),
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: "pref",
		ObjectID:   normalized.Key,
		Channel:    normalized.Channel,
		Data:       cloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if normalized.Kind != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["kind"] = normalized.Kind
	}
	if normalized.Revision != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["revision"] = normalized.Revision
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	value := strings.TrimSpace(input)
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
