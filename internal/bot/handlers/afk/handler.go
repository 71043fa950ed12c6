package afk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/wardenbot/warden/internal/afk"
	afkview "github.com/wardenbot/warden/internal/bot/views/afk"
	"github.com/wardenbot/warden/pkg/utils"
	"go.uber.org/zap"
)

// Handler serves the AFK commands and the message hooks that clear and
// report AFK statuses.
type Handler struct {
	tracker *afk.Tracker
	logger  *zap.Logger
}

// NewHandler creates an AFK handler.
func NewHandler(tracker *afk.Tracker, logger *zap.Logger) *Handler {
	return &Handler{
		tracker: tracker,
		logger:  logger.Named("afk"),
	}
}

// HandleAfk serves /afk.
func (h *Handler) HandleAfk(event *events.ApplicationCommandInteractionCreate) {
	reason, _ := event.SlashCommandInteractionData().OptString("reason")

	status, err := h.tracker.Set(context.Background(), uint64(event.User().ID), reason)
	if err != nil {
		h.logger.Error("Failed to set AFK status", zap.Error(err))
		h.reply(event, "Could not save your AFK status. Try again.", true)

		return
	}

	h.reply(event, fmt.Sprintf("You are now AFK: %s", status.Reason), false)
}

// HandleAfkList serves /afklist.
func (h *Handler) HandleAfkList(event *events.ApplicationCommandInteractionCreate) {
	statuses, err := h.tracker.List(context.Background())
	if err != nil {
		h.logger.Error("Failed to list AFK statuses", zap.Error(err))
		h.reply(event, "Could not load the AFK list. Try again.", true)

		return
	}

	message := discord.NewMessageCreateBuilder().
		SetEmbeds(afkview.NewListBuilder(statuses).Build()).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send AFK list", zap.Error(err))
	}
}

// HandleMessage clears the author's AFK status and reports any mentioned
// users who are away. The two concerns are independent: a message can do
// both.
func (h *Handler) HandleMessage(event *events.MessageCreate) {
	if event.Message.Author.Bot {
		return
	}

	ctx := context.Background()

	h.welcomeBack(ctx, event)
	h.reportMentioned(ctx, event)
}

func (h *Handler) welcomeBack(ctx context.Context, event *events.MessageCreate) {
	status, err := h.tracker.ClearOnMessage(ctx, uint64(event.Message.Author.ID))
	if err != nil {
		h.logger.Error("Failed to clear AFK status",
			zap.Uint64("user_id", uint64(event.Message.Author.ID)),
			zap.Error(err))

		return
	}

	if status == nil {
		return
	}

	away := utils.FormatDuration(time.Since(status.Since))
	client := event.Client().Rest()

	notice := discord.NewMessageCreateBuilder().
		SetContentf("Welcome back <@%d>! You were AFK for %s.", status.UserID, away).
		Build()

	if _, err := client.CreateMessage(event.ChannelID, notice, rest.WithCtx(ctx)); err != nil {
		h.logger.Warn("Failed to post welcome-back notice", zap.Error(err))
	}

	// Best effort; users with closed DMs are skipped silently
	dm, err := client.CreateDMChannel(event.Message.Author.ID, rest.WithCtx(ctx))
	if err != nil {
		return
	}

	direct := discord.NewMessageCreateBuilder().
		SetContentf("Your AFK status has been cleared. You were away for %s.", away).
		Build()
	_, _ = client.CreateMessage(dm.ID(), direct, rest.WithCtx(ctx))
}

func (h *Handler) reportMentioned(ctx context.Context, event *events.MessageCreate) {
	var userIDs []uint64

	for _, mentioned := range event.Message.Mentions {
		if mentioned.Bot || mentioned.ID == event.Message.Author.ID {
			continue
		}

		userIDs = append(userIDs, uint64(mentioned.ID))
	}

	if len(userIDs) == 0 {
		return
	}

	statuses, err := h.tracker.MentionedAway(ctx, userIDs)
	if err != nil {
		h.logger.Error("Failed to look up mentioned AFK users", zap.Error(err))
		return
	}

	if len(statuses) == 0 {
		return
	}

	var sb strings.Builder
	for _, status := range statuses {
		sb.WriteString(fmt.Sprintf("<@%d> is AFK: %s (since %s)\n",
			status.UserID,
			utils.TruncateString(status.Reason, 80),
			utils.FormatTimestamp(status.Since)))
	}

	notice := discord.NewMessageCreateBuilder().
		SetContent(sb.String()).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build()

	client := event.Client().Rest()
	if _, err := client.CreateMessage(event.ChannelID, notice, rest.WithCtx(ctx)); err != nil {
		h.logger.Warn("Failed to post AFK mention notice", zap.Error(err))
	}
}

func (h *Handler) reply(event *events.ApplicationCommandInteractionCreate, content string, ephemeral bool) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(ephemeral).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send reply", zap.Error(err))
	}
}
