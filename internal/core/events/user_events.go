package events

import (
	"context"
	"log/slog"

	"github.com/aura-baza/aura-hr/internal"
)

const (
	EventTypeUserCreated     = "user.created"
	EventTypeUserUpdated     = "user.updated"
	EventTypeUserDeleted     = "user.deleted"
	EventTypeUserBulkUpdated = "user.bulk_updated"
)

var UserEventTypes = []string{
	EventTypeUserCreated,
	EventTypeUserUpdated,
	EventTypeUserDeleted,
	EventTypeUserBulkUpdated,
}

type UserChangedEvent struct {
	BaseEvent
	UserID  string   `json:"user_id"`
	ActorID string   `json:"actor_id,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func newUserEvent(eventType, userID, actorID string, fields []string) *UserChangedEvent {
	return &UserChangedEvent{
		BaseEvent: newBaseEvent(eventType, map[string]interface{}{
			"user_id":  userID,
			"actor_id": actorID,
			"fields":   fields,
		}),
		UserID:  userID,
		ActorID: actorID,
		Fields:  fields,
	}
}

func NewUserCreatedEvent(userID, actorID string) *UserChangedEvent {
	return newUserEvent(EventTypeUserCreated, userID, actorID, nil)
}

func NewUserUpdatedEvent(userID, actorID string, fields []string) *UserChangedEvent {
	return newUserEvent(EventTypeUserUpdated, userID, actorID, fields)
}

func NewUserDeletedEvent(userID, actorID string) *UserChangedEvent {
	return newUserEvent(EventTypeUserDeleted, userID, actorID, nil)
}

type UsersBulkUpdatedEvent struct {
	BaseEvent
	UserIDs []string `json:"user_ids"`
	ActorID string   `json:"actor_id,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func NewUsersBulkUpdatedEvent(userIDs []string, actorID string, fields []string) *UsersBulkUpdatedEvent {
	return &UsersBulkUpdatedEvent{
		BaseEvent: newBaseEvent(EventTypeUserBulkUpdated, map[string]interface{}{
			"user_ids": userIDs,
			"actor_id": actorID,
			"fields":   fields,
		}),
		UserIDs: userIDs,
		ActorID: actorID,
		Fields:  fields,
	}
}

// AuditLogHandler writes one structured log line per user change.
func AuditLogHandler(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"actor_username", internal.UsernameFromContext(ctx),
			"payload", event.Payload())
		return nil
	}
}

// SubscribeAudit registers the audit handler for every user event type.
func SubscribeAudit(bus *EventBus, logger *slog.Logger) {
	bus.Subscribe(AuditLogHandler(logger), UserEventTypes...)
}
