package afk

import (
	"context"
	"time"

	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

// DefaultReason is stored when a user goes AFK without giving one.
const DefaultReason = "No reason provided."

// StatusStore persists AFK statuses.
type StatusStore interface {
	Set(ctx context.Context, status *types.AfkStatus) error
	Get(ctx context.Context, userID uint64) (*types.AfkStatus, error)
	Delete(ctx context.Context, userID uint64) (bool, error)
	All(ctx context.Context) ([]*types.AfkStatus, error)
}

// Tracker maintains the current AFK status per user.
type Tracker struct {
	store  StatusStore
	logger *zap.Logger
}

// NewTracker creates a new AFK tracker.
func NewTracker(store StatusStore, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger.Named("afk"),
	}
}

// Set marks a user as AFK, replacing any previous status.
func (t *Tracker) Set(ctx context.Context, userID uint64, reason string) (*types.AfkStatus, error) {
	if reason == "" {
		reason = DefaultReason
	}

	status := &types.AfkStatus{
		UserID: userID,
		Reason: reason,
		Since:  time.Now().UTC(),
	}

	if err := t.store.Set(ctx, status); err != nil {
		return nil, err
	}

	t.logger.Debug("User marked AFK", zap.Uint64("user_id", userID))

	return status, nil
}

// List returns all active statuses, most recent first.
func (t *Tracker) List(ctx context.Context) ([]*types.AfkStatus, error) {
	return t.store.All(ctx)
}

// ClearOnMessage removes the author's AFK status if one is active and
// returns it so the caller can announce the return. The delete result
// guards against double announcements when events race.
func (t *Tracker) ClearOnMessage(ctx context.Context, authorID uint64) (*types.AfkStatus, error) {
	status, err := t.store.Get(ctx, authorID)
	if err != nil || status == nil {
		return nil, err
	}

	removed, err := t.store.Delete(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if !removed {
		return nil, nil
	}

	t.logger.Debug("Cleared AFK status", zap.Uint64("user_id", authorID))

	return status, nil
}

// MentionedAway returns the active statuses of the given mentioned users,
// deduplicated, in input order. This lookup is independent of
// ClearOnMessage: a message may clear its author and still report other
// AFK users it mentions.
func (t *Tracker) MentionedAway(ctx context.Context, userIDs []uint64) ([]*types.AfkStatus, error) {
	seen := make(map[uint64]struct{}, len(userIDs))

	var statuses []*types.AfkStatus

	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}

		seen[userID] = struct{}{}

		status, err := t.store.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		if status != nil {
			statuses = append(statuses, status)
		}
	}

	return statuses, nil
}
