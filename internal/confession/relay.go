package confession

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/pkg/utils"
	"go.uber.org/zap"
)

// MaxContentLength bounds confession content, in characters.
const MaxContentLength = 1500

const confessionEmbedColor = 0x0E8388

var (
	// ErrEmptyContent means the submission had no usable text.
	ErrEmptyContent = errors.New("confession content is empty")
	// ErrContentTooLong means the submission exceeds MaxContentLength.
	ErrContentTooLong = errors.New("confession content exceeds the length limit")
	// ErrChannelUnconfigured means no confession channel is set, so an
	// accepted submission stays persisted but unposted.
	ErrChannelUnconfigured = errors.New("confession channel not configured")
)

// Store persists confessions.
type Store interface {
	Insert(ctx context.Context, confession *types.Confession) error
	SetMessageID(ctx context.Context, id int64, messageID uint64) error
	MarkDeleted(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*types.Confession, error)
}

// Messenger is the channel surface used to post and retract confessions.
type Messenger interface {
	CreateMessage(channelID snowflake.ID, message discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
}

// SubmitResult reports an accepted submission. Posted is false when the
// confession was persisted but could not reach the channel; PostErr then
// carries the cause.
type SubmitResult struct {
	Confession *types.Confession
	Posted     bool
	PostErr    error
}

// Relay accepts anonymous submissions, rate-limits per submitter, posts
// them to the configured channel, and supports moderator retraction.
type Relay struct {
	store     Store
	rest      Messenger
	limiter   *Limiter
	channelID snowflake.ID
	logger    *zap.Logger
}

// NewRelay creates a confession relay. A zero channelID leaves accepted
// submissions unposted.
func NewRelay(
	store Store, client Messenger, limiter *Limiter, channelID snowflake.ID, logger *zap.Logger,
) *Relay {
	return &Relay{
		store:     store,
		rest:      client,
		limiter:   limiter,
		channelID: channelID,
		logger:    logger.Named("confession"),
	}
}

// Limiter exposes the relay's rate limiter for quota messaging.
func (r *Relay) Limiter() *Limiter {
	return r.limiter
}

// Submit validates, rate-limits, persists, and posts one anonymous
// submission. The stored row carries no submitter identity. An insert
// failure rolls the rate-limit reservation back; a post failure does not
// (the row stays, unposted - deliberate fire-and-forget).
func (r *Relay) Submit(
	ctx context.Context, submitterID uint64, category, content string,
) (*SubmitResult, error) {
	if isBlank(content) {
		return nil, ErrEmptyContent
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	if remaining, ok := r.limiter.Reserve(submitterID); !ok {
		return nil, &QuotaError{Remaining: remaining}
	}

	confession := &types.Confession{
		Content:   content,
		Category:  category,
		Timestamp: time.Now().UTC(),
	}

	if err := r.store.Insert(ctx, confession); err != nil {
		r.limiter.Release(submitterID)
		return nil, fmt.Errorf("failed to save confession: %w", err)
	}

	result := &SubmitResult{Confession: confession}

	if r.channelID == 0 {
		result.PostErr = ErrChannelUnconfigured
		r.logger.Warn("Confession accepted but no channel configured",
			zap.Int64("confession_id", confession.ID))

		return result, nil
	}

	message := discord.NewMessageCreateBuilder().
		SetEmbeds(buildConfessionEmbed(confession)).
		Build()

	posted, err := r.rest.CreateMessage(r.channelID, message, rest.WithCtx(ctx))
	if err != nil {
		result.PostErr = err
		r.logger.Error("Failed to post confession",
			zap.Int64("confession_id", confession.ID),
			zap.Uint64("channel_id", uint64(r.channelID)),
			zap.Error(err))

		return result, nil
	}

	result.Posted = true
	confession.MessageID = uint64(posted.ID)

	if err := r.store.SetMessageID(ctx, confession.ID, confession.MessageID); err != nil {
		r.logger.Error("Failed to back-fill confession message ID",
			zap.Int64("confession_id", confession.ID),
			zap.Error(err))
	}

	return result, nil
}

// Retract deletes the posted message (tolerating one that is already
// gone) and soft-deletes the row. The row is never physically removed.
func (r *Relay) Retract(ctx context.Context, id int64) (*types.Confession, error) {
	confession, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if confession.MessageID != 0 && r.channelID != 0 {
		err := r.rest.DeleteMessage(r.channelID, snowflake.ID(confession.MessageID), rest.WithCtx(ctx))
		if err != nil && !isNotFound(err) {
			r.logger.Warn("Failed to delete confession message",
				zap.Int64("confession_id", id),
				zap.Uint64("message_id", confession.MessageID),
				zap.Error(err))
		}
	}

	if err := r.store.MarkDeleted(ctx, id); err != nil {
		return nil, err
	}

	confession.Deleted = true

	r.logger.Info("Confession retracted", zap.Int64("confession_id", id))

	return confession, nil
}

func buildConfessionEmbed(confession *types.Confession) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitlef("Confession #%d", confession.ID).
		SetDescription(utils.TruncateString(confession.Content, 1900)).
		SetColor(confessionEmbedColor).
		AddField("Category", confession.Category, true).
		SetTimestamp(confession.Timestamp).
		Build()
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}

	return true
}

func isNotFound(err error) bool {
	var restErr *rest.Error
	return errors.As(err, &restErr) &&
		restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusNotFound
}
