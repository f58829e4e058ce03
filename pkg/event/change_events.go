package event

import (
	"strings"
	"time"
)

// VerbPrefUpdated tags events describing a successful cell update.
const VerbPrefUpdated = "pref.updated"

// Identity carries the actor/user/tenant attribution stamped onto change
// events.
type Identity struct {
	ActorID  string
	UserID   string
	TenantID string
	Channel  string
}

// ChangeInput describes one committed preference change.
type ChangeInput struct {
	Identity   Identity
	Key        string
	Kind       string
	Revision   string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPrefUpdatedEvent constructs a normalized change event for a committed
// update. Old/new values and the revision travel in the event metadata so
// sinks with fixed schemas keep them without extra columns.
func BuildPrefUpdatedEvent(input ChangeInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}
	if input.Revision != "" {
		metadata = ensureMetadata(metadata)
		metadata["revision"] = input.Revision
	}
	if input.Kind != "" {
		metadata = ensureMetadata(metadata)
		metadata["kind"] = input.Kind
	}

	return Event{
		Verb:       VerbPrefUpdated,
		Key:        strings.TrimSpace(input.Key),
		Kind:       strings.TrimSpace(input.Kind),
		Revision:   strings.TrimSpace(input.Revision),
		ActorID:    strings.TrimSpace(input.Identity.ActorID),
		UserID:     strings.TrimSpace(input.Identity.UserID),
		TenantID:   strings.TrimSpace(input.Identity.TenantID),
		Channel:    strings.TrimSpace(input.Identity.Channel),
		OldValue:   input.OldValue,
		NewValue:   input.NewValue,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
