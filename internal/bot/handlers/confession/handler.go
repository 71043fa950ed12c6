package confession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenbot/warden/internal/confession"
	"github.com/wardenbot/warden/internal/database/models"
	"go.uber.org/zap"
)

// Handler serves anonymous confession submission and moderator removal.
type Handler struct {
	relay     *confession.Relay
	modRoleID snowflake.ID
	logger    *zap.Logger
}

// NewHandler creates a confession handler.
func NewHandler(relay *confession.Relay, modRoleID snowflake.ID, logger *zap.Logger) *Handler {
	return &Handler{
		relay:     relay,
		modRoleID: modRoleID,
		logger:    logger.Named("confession"),
	}
}

// HandleConfess serves /confess. Every reply is ephemeral so the
// submitter is never linked to the confession in public.
func (h *Handler) HandleConfess(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()

	content := data.String("content")

	category, ok := data.OptString("category")
	if !ok {
		category = "other"
	}

	result, err := h.relay.Submit(context.Background(), uint64(event.User().ID), category, content)
	if err != nil {
		h.reply(event, h.rejectionMessage(err))
		return
	}

	if !result.Posted {
		h.reply(event, fmt.Sprintf(
			"Your confession was saved as #%d but could not be posted right now.",
			result.Confession.ID))

		return
	}

	h.reply(event, fmt.Sprintf("Your confession has been posted anonymously as #%d.", result.Confession.ID))
}

func (h *Handler) rejectionMessage(err error) string {
	var quotaErr *confession.QuotaError

	switch {
	case errors.Is(err, confession.ErrEmptyContent):
		return "Your confession is empty."
	case errors.Is(err, confession.ErrContentTooLong):
		return fmt.Sprintf("Confessions are limited to %d characters.", confession.MaxContentLength)
	case errors.As(err, &quotaErr):
		return fmt.Sprintf("You recently submitted a confession. Try again in %s.",
			quotaErr.Remaining.Round(time.Second))
	default:
		h.logger.Error("Failed to submit confession", zap.Error(err))
		return "Could not save your confession. Try again."
	}
}

// HandleRemove serves /confession remove.
func (h *Handler) HandleRemove(event *events.ApplicationCommandInteractionCreate) {
	if !h.isModerator(event.Member()) {
		h.reply(event, "You do not have permission to remove confessions.")
		return
	}

	id := int64(event.SlashCommandInteractionData().Int("id"))

	retracted, err := h.relay.Retract(context.Background(), id)
	if err != nil {
		if errors.Is(err, models.ErrConfessionNotFound) {
			h.reply(event, fmt.Sprintf("No confession with ID %d.", id))
			return
		}

		h.logger.Error("Failed to remove confession",
			zap.Int64("confession_id", id),
			zap.Error(err))
		h.reply(event, "Could not remove the confession. Try again.")

		return
	}

	h.reply(event, fmt.Sprintf("Confession #%d has been removed.", retracted.ID))
}

func (h *Handler) isModerator(member *discord.ResolvedMember) bool {
	if member == nil {
		return false
	}

	if h.modRoleID != 0 {
		for _, roleID := range member.RoleIDs {
			if roleID == h.modRoleID {
				return true
			}
		}
	}

	return member.Permissions.Has(discord.PermissionManageMessages)
}

func (h *Handler) reply(event *events.ApplicationCommandInteractionCreate, content string) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send reply", zap.Error(err))
	}
}
