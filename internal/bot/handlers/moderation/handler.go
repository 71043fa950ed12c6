package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenbot/warden/internal/bot/constants"
	modview "github.com/wardenbot/warden/internal/bot/views/moderation"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/internal/moderation"
	"go.uber.org/zap"
)

const actionTimeout = 15 * time.Second

// Handler serves the kick/ban/unban commands and their confirmation
// buttons.
type Handler struct {
	executor  *moderation.Executor
	registry  *moderation.Registry
	audit     *moderation.AuditLogger
	modRoleID snowflake.ID
	logger    *zap.Logger
}

// NewHandler creates a moderation command handler.
func NewHandler(
	executor *moderation.Executor,
	registry *moderation.Registry,
	audit *moderation.AuditLogger,
	modRoleID snowflake.ID,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		executor:  executor,
		registry:  registry,
		audit:     audit,
		modRoleID: modRoleID,
		logger:    logger.Named("moderation"),
	}
}

// HandleKick serves /kick.
func (h *Handler) HandleKick(event *events.ApplicationCommandInteractionCreate) {
	h.handleAction(event, types.ActionKick, discord.PermissionKickMembers)
}

// HandleBan serves /ban.
func (h *Handler) HandleBan(event *events.ApplicationCommandInteractionCreate) {
	h.handleAction(event, types.ActionBan, discord.PermissionBanMembers)
}

// HandleUnban serves /unban. Unban has no role hierarchy concern since
// the target is no longer a member.
func (h *Handler) HandleUnban(event *events.ApplicationCommandInteractionCreate) {
	h.handleAction(event, types.ActionUnban, discord.PermissionBanMembers)
}

func (h *Handler) handleAction(
	event *events.ApplicationCommandInteractionCreate,
	action types.ActionType,
	perm discord.Permissions,
) {
	guildID := event.GuildID()
	if guildID == nil {
		h.replyEphemeral(event, "This command can only be used in a server.")
		return
	}

	if !isModerator(event.Member(), h.modRoleID, perm) {
		h.replyEphemeral(event, "You do not have permission to use this command.")
		return
	}

	data := event.SlashCommandInteractionData()

	target, ok := data.OptUser("user")
	if !ok {
		h.replyEphemeral(event, "No target user provided.")
		return
	}

	if target.ID == event.User().ID {
		h.replyEphemeral(event, fmt.Sprintf("You cannot %s yourself.", action))
		return
	}

	if target.ID == event.ApplicationID() {
		h.replyEphemeral(event, "I cannot perform moderation actions on myself.")
		return
	}

	if action != types.ActionUnban {
		if msg := h.checkHierarchy(event, *guildID, action); msg != "" {
			h.replyEphemeral(event, msg)
			return
		}
	}

	reason, _ := data.OptString("reason")

	applicationID := event.ApplicationID()
	token := event.Token()
	client := event.Client().Rest()

	session := h.registry.Create(
		event.User().ID, *guildID, action,
		moderation.Target{ID: target.ID, Name: target.Username},
		reason,
		func(s *moderation.Session) {
			update := modview.NewConfirmBuilder(s).BuildResolved("Confirmation timed out.")
			if _, err := client.UpdateInteractionResponse(applicationID, token, update); err != nil {
				h.logger.Warn("Failed to disable expired confirmation",
					zap.String("session_id", s.ID),
					zap.Error(err))
			}
		},
	)

	prompt := modview.NewConfirmBuilder(session).BuildPrompt()
	if err := event.CreateMessage(prompt); err != nil {
		h.logger.Error("Failed to send confirmation prompt",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

// checkHierarchy rejects targets at or above the invoker's top role. It
// returns an empty string when the action may proceed. A target that is
// not a resolved member has already left; the action itself will report
// that.
func (h *Handler) checkHierarchy(
	event *events.ApplicationCommandInteractionCreate,
	guildID snowflake.ID,
	action types.ActionType,
) string {
	targetMember, ok := event.SlashCommandInteractionData().OptMember("user")
	if !ok {
		return ""
	}

	client := event.Client().Rest()

	guild, err := client.GetGuild(guildID, false, rest.WithCtx(context.Background()))
	if err != nil {
		h.logger.Warn("Failed to fetch guild for hierarchy check", zap.Error(err))
		return "Could not verify role hierarchy. Try again."
	}

	roles, err := client.GetRoles(guildID, rest.WithCtx(context.Background()))
	if err != nil {
		h.logger.Warn("Failed to fetch roles for hierarchy check", zap.Error(err))
		return "Could not verify role hierarchy. Try again."
	}

	invoker := event.Member()
	if !outranks(roles, invoker.User.ID, invoker.RoleIDs, targetMember.RoleIDs, guild.OwnerID) {
		return fmt.Sprintf("You cannot %s a member with an equal or higher role.", action)
	}

	return ""
}

// HandleComponent serves confirm/cancel button presses. Custom IDs have
// the form "mod:<decision>:<session>".
func (h *Handler) HandleComponent(event *events.ComponentInteractionCreate) {
	parts := strings.Split(event.Data.CustomID(), constants.CustomIDSeparator)
	if len(parts) != constants.ModerationIDSegments || parts[0] != constants.ModerationPrefix {
		return
	}

	session := h.registry.Get(parts[2])
	if session == nil {
		h.replyComponentEphemeral(event, "This confirmation has expired.")
		return
	}

	confirm := parts[1] == constants.ConfirmButtonAction

	if err := h.registry.Resolve(session, event.User().ID, confirm); err != nil {
		if errors.Is(err, moderation.ErrNotInvoker) {
			h.replyComponentEphemeral(event, "Only the invoker can respond to this confirmation.")
		} else {
			h.replyComponentEphemeral(event, "This confirmation was already handled.")
		}

		return
	}

	builder := modview.NewConfirmBuilder(session)

	if !confirm {
		if err := event.UpdateMessage(builder.BuildResolved("Cancelled. No action was taken.")); err != nil {
			h.logger.Warn("Failed to update cancelled prompt", zap.Error(err))
		}

		return
	}

	status := fmt.Sprintf("Performing %s...", session.Action)
	if err := event.UpdateMessage(builder.BuildResolved(status)); err != nil {
		h.logger.Warn("Failed to disable confirmed prompt", zap.Error(err))
	}

	h.execute(event, session)
}

// execute runs the confirmed action, records it, and reports the outcome
// to the invoker.
func (h *Handler) execute(event *events.ComponentInteractionCreate, session *moderation.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	auditReason := fmt.Sprintf("%s - moderator:%s (%d)",
		session.Reason, event.User().Username, event.User().ID)

	err := h.executor.Do(ctx, session.Action, session.GuildID, session.Target.ID, auditReason)
	outcome := moderation.Classify(session.Action, err)

	entry := &types.ModerationLog{
		Action:        session.Action,
		TargetID:      uint64(session.Target.ID),
		TargetName:    session.Target.Name,
		ModeratorID:   uint64(event.User().ID),
		ModeratorName: event.User().Username,
		Reason:        session.Reason,
		Timestamp:     time.Now().UTC(),
		Success:       outcome.Success,
		Note:          outcome.Note,
	}
	h.audit.Record(ctx, entry)

	var notice string
	if outcome.Success {
		notice = fmt.Sprintf("**%s** has been %s.", session.Target.Name, session.Action.Past())
	} else {
		notice = outcome.Note
	}

	followup := discord.NewMessageCreateBuilder().
		SetContent(notice).
		SetEphemeral(true).
		Build()

	client := event.Client().Rest()
	if _, err := client.CreateFollowupMessage(event.ApplicationID(), event.Token(), followup); err != nil {
		h.logger.Warn("Failed to send outcome followup", zap.Error(err))

		update := builderStatus(session, notice)
		if _, err := client.UpdateInteractionResponse(event.ApplicationID(), event.Token(), update); err != nil {
			h.logger.Error("Failed to report action outcome", zap.Error(err))
		}
	}
}

func builderStatus(session *moderation.Session, status string) discord.MessageUpdate {
	return modview.NewConfirmBuilder(session).BuildResolved(status)
}

func (h *Handler) replyEphemeral(event *events.ApplicationCommandInteractionCreate, content string) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send reply", zap.Error(err))
	}
}

func (h *Handler) replyComponentEphemeral(event *events.ComponentInteractionCreate, content string) {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()

	if err := event.CreateMessage(message); err != nil {
		h.logger.Warn("Failed to send reply", zap.Error(err))
	}
}
