package consumer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RosterSnapshot is the last roster size observed for an activity.
type RosterSnapshot struct {
	Activity         string
	ParticipantCount int
	MaxParticipants  int
	LastEventID      string
	UpdatedAt        time.Time
}

// AuditHandler writes every roster event to the audit log and tracks the
// latest participant count per activity.
type AuditHandler struct {
	logger *zap.Logger

	mu      sync.RWMutex
	rosters map[string]RosterSnapshot
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{
		logger:  logger.Named("audit"),
		rosters: make(map[string]RosterSnapshot),
	}
}

// Handle records msg.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	evt := msg.Event

	h.mu.Lock()
	current, ok := h.rosters[evt.Activity]
	// Events for one activity share a partition, but a replayed older event must not rewind the tally.
	if !ok || !evt.OccurredAt.Before(current.UpdatedAt) {
		h.rosters[evt.Activity] = RosterSnapshot{
			Activity:         evt.Activity,
			ParticipantCount: evt.ParticipantCount,
			MaxParticipants:  evt.MaxParticipants,
			LastEventID:      evt.EventID,
			UpdatedAt:        evt.OccurredAt,
		}
	}
	h.mu.Unlock()

	h.logger.Info("roster changed",
		zap.String("event_id", evt.EventID),
		zap.String("operation", evt.Operation()),
		zap.String("activity", evt.Activity),
		zap.String("email", evt.Email),
		zap.Int("participant_count", evt.ParticipantCount),
		zap.Int("max_participants", evt.MaxParticipants),
		zap.Time("occurred_at", evt.OccurredAt),
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
	)
	return nil
}

// Roster returns the latest snapshot for activity.
func (h *AuditHandler) Roster(activity string) (RosterSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snap, ok := h.rosters[activity]
	return snap, ok
}
