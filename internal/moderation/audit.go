package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

// ErrLogChannelUnconfigured means no mod-log channel is set; the
// notification half of the audit sink is skipped.
var ErrLogChannelUnconfigured = errors.New("mod log channel not configured")

const auditEmbedColor = 0xE67E22

// RecordStore persists moderation records.
type RecordStore interface {
	Add(ctx context.Context, log *types.ModerationLog) error
}

// ChannelClient is the messaging surface used to mirror audit records to
// the mod-log channel.
type ChannelClient interface {
	CreateMessage(channelID snowflake.ID, message discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// RecordResult carries the independent outcomes of the two audit
// sub-operations. Callers must not assume either succeeded.
type RecordResult struct {
	StoreOK   bool
	StoreErr  error
	NotifyOK  bool
	NotifyErr error
}

// AuditLogger writes one durable record per moderation action and
// best-effort mirrors it to the mod-log channel. The two sinks are
// failure-isolated: a store failure never prevents the channel post and
// vice versa.
type AuditLogger struct {
	store        RecordStore
	rest         ChannelClient
	logChannelID snowflake.ID
	logger       *zap.Logger
}

// NewAuditLogger creates an audit logger. A zero logChannelID disables the
// channel mirror.
func NewAuditLogger(
	store RecordStore, client ChannelClient, logChannelID snowflake.ID, logger *zap.Logger,
) *AuditLogger {
	return &AuditLogger{
		store:        store,
		rest:         client,
		logChannelID: logChannelID,
		logger:       logger.Named("audit"),
	}
}

// Record stores the entry and posts the channel summary. Failures are
// captured in the result, never raised.
func (a *AuditLogger) Record(ctx context.Context, entry *types.ModerationLog) RecordResult {
	var result RecordResult

	if err := a.store.Add(ctx, entry); err != nil {
		result.StoreErr = err
		a.logger.Error("Failed to store moderation record",
			zap.String("action", string(entry.Action)),
			zap.Uint64("target_id", entry.TargetID),
			zap.Error(err))
	} else {
		result.StoreOK = true
	}

	if a.logChannelID == 0 {
		result.NotifyErr = ErrLogChannelUnconfigured
		return result
	}

	message := discord.NewMessageCreateBuilder().
		SetEmbeds(a.buildEmbed(entry, result.StoreErr)).
		Build()

	if _, err := a.rest.CreateMessage(a.logChannelID, message, rest.WithCtx(ctx)); err != nil {
		result.NotifyErr = err
		a.logger.Error("Failed to post mod log message",
			zap.Uint64("channel_id", uint64(a.logChannelID)),
			zap.Error(err))
	} else {
		result.NotifyOK = true
	}

	return result
}

// buildEmbed renders the mod-log summary. A store failure is surfaced as
// an extra diagnostic field so the channel record flags the gap.
func (a *AuditLogger) buildEmbed(entry *types.ModerationLog, storeErr error) discord.Embed {
	reason := entry.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	action := string(entry.Action)
	if action != "" {
		action = strings.ToUpper(action[:1]) + action[1:]
	}

	builder := discord.NewEmbedBuilder().
		SetTitle("Moderation: "+action).
		SetColor(auditEmbedColor).
		SetTimestamp(entry.Timestamp).
		AddField("Target", fmt.Sprintf("%s (`%d`)", entry.TargetName, entry.TargetID), false).
		AddField("Moderator", fmt.Sprintf("%s (`%d`)", entry.ModeratorName, entry.ModeratorID), false).
		AddField("Reason", reason, false).
		AddField("Success", fmt.Sprintf("%t", entry.Success), true)

	if entry.Note != "" {
		builder.AddField("Note", entry.Note, false)
	}

	if storeErr != nil {
		builder.AddField("DB note", storeErr.Error(), false)
	}

	return builder.Build()
}
