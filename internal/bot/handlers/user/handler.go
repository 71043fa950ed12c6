package user

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	userview "github.com/wardenbot/warden/internal/bot/views/user"
	"github.com/wardenbot/warden/internal/database/models"
	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

// Handler serves the user utility commands and keeps the member sighting
// table current.
type Handler struct {
	members *models.MemberModel
	logger  *zap.Logger
}

// NewHandler creates a user utility handler.
func NewHandler(members *models.MemberModel, logger *zap.Logger) *Handler {
	return &Handler{
		members: members,
		logger:  logger.Named("user"),
	}
}

// HandleAvatar serves /avatar. Without a user option it shows the
// invoker's own avatar.
func (h *Handler) HandleAvatar(event *events.ApplicationCommandInteractionCreate) {
	target, ok := event.SlashCommandInteractionData().OptUser("user")
	if !ok {
		target = event.User()
	}

	if err := event.CreateMessage(userview.NewAvatarBuilder(target).Build()); err != nil {
		h.logger.Warn("Failed to send avatar", zap.Error(err))
	}
}

// HandleUserInfo serves /userinfo.
func (h *Handler) HandleUserInfo(event *events.ApplicationCommandInteractionCreate) {
	ctx := context.Background()

	target, ok := event.SlashCommandInteractionData().OptUser("user")
	if !ok {
		target = event.User()
	}

	// Refresh the sighting when the target is a resolved member so the
	// join time is available next lookup.
	if resolved, ok := event.SlashCommandInteractionData().OptMember("user"); ok && !resolved.JoinedAt.IsZero() {
		err := h.members.Upsert(ctx, &types.Member{
			UserID:   uint64(target.ID),
			Username: target.Username,
			JoinedAt: resolved.JoinedAt,
		})
		if err != nil {
			h.logger.Warn("Failed to refresh member sighting", zap.Error(err))
		}
	}

	member, err := h.members.Get(ctx, uint64(target.ID))
	if err != nil {
		h.logger.Warn("Failed to load member sighting", zap.Error(err))
	}

	message := discord.NewMessageCreateBuilder().
		SetEmbeds(userview.NewInfoBuilder(target, member).Build()).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send user info", zap.Error(err))
	}
}

// HandleLatency serves /latency.
func (h *Handler) HandleLatency(event *events.ApplicationCommandInteractionCreate) {
	latency := event.Client().Gateway().Latency()

	message := discord.NewMessageCreateBuilder().
		SetContentf("Gateway latency: %s", latency.Round(time.Millisecond)).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send latency", zap.Error(err))
	}
}

// HandleMemberJoin records a join so later lookups know when the user
// first arrived.
func (h *Handler) HandleMemberJoin(event *events.GuildMemberJoin) {
	joinedAt := event.Member.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}

	err := h.members.Upsert(context.Background(), &types.Member{
		UserID:   uint64(event.Member.User.ID),
		Username: event.Member.User.Username,
		JoinedAt: joinedAt,
	})
	if err != nil {
		h.logger.Error("Failed to record member join",
			zap.Uint64("user_id", uint64(event.Member.User.ID)),
			zap.Error(err))

		return
	}

	h.logger.Debug("Recorded member join",
		zap.Uint64("user_id", uint64(event.Member.User.ID)),
		zap.String("username", event.Member.User.Username))
}
