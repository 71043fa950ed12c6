package moderation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

var (
	// ErrPermissionDenied means Discord rejected the action (HTTP 403).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTargetNotFound means the target does not exist for this action,
	// e.g. the member already left or the user is not currently banned.
	ErrTargetNotFound = errors.New("target not found")
	// ErrTransport covers Discord API and network failures.
	ErrTransport = errors.New("transport error")
	// ErrUnsupportedAction is returned for unknown action kinds.
	ErrUnsupportedAction = errors.New("unsupported moderation action")
)

// GuildModerator is the subset of the Discord REST API used for
// destructive moderation actions.
type GuildModerator interface {
	RemoveMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) error
	AddBan(guildID snowflake.ID, userID snowflake.ID, deleteMessageDuration time.Duration, opts ...rest.RequestOpt) error
	DeleteBan(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) error
	GetBan(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Ban, error)
}

// Executor performs kick/ban/unban actions. Every action is attempted
// exactly once; failures are classified, never retried.
type Executor struct {
	rest   GuildModerator
	logger *zap.Logger
}

// NewExecutor creates a new action executor.
func NewExecutor(client GuildModerator, logger *zap.Logger) *Executor {
	return &Executor{
		rest:   client,
		logger: logger.Named("executor"),
	}
}

// Do dispatches a single attempt of the given action.
func (e *Executor) Do(
	ctx context.Context, action types.ActionType, guildID, targetID snowflake.ID, auditReason string,
) error {
	var err error

	switch action {
	case types.ActionKick:
		err = e.Kick(ctx, guildID, targetID, auditReason)
	case types.ActionBan:
		err = e.Ban(ctx, guildID, targetID, auditReason)
	case types.ActionUnban:
		err = e.Unban(ctx, guildID, targetID, auditReason)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}

	return err
}

// Kick removes a member from the guild.
func (e *Executor) Kick(ctx context.Context, guildID, targetID snowflake.ID, auditReason string) error {
	err := e.rest.RemoveMember(guildID, targetID, rest.WithCtx(ctx), rest.WithReason(auditReason))
	if err != nil {
		err = classifyError(err)
		e.logger.Warn("Kick failed",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("target_id", uint64(targetID)),
			zap.Error(err))

		return err
	}

	return nil
}

// Ban bans a member from the guild without deleting message history.
func (e *Executor) Ban(ctx context.Context, guildID, targetID snowflake.ID, auditReason string) error {
	err := e.rest.AddBan(guildID, targetID, 0, rest.WithCtx(ctx), rest.WithReason(auditReason))
	if err != nil {
		err = classifyError(err)
		e.logger.Warn("Ban failed",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("target_id", uint64(targetID)),
			zap.Error(err))

		return err
	}

	return nil
}

// Unban lifts a ban. The ban state is resolved with a single direct
// lookup; a missing ban entry classifies as ErrTargetNotFound.
func (e *Executor) Unban(ctx context.Context, guildID, targetID snowflake.ID, auditReason string) error {
	if _, err := e.rest.GetBan(guildID, targetID, rest.WithCtx(ctx)); err != nil {
		err = classifyError(err)
		e.logger.Warn("Ban lookup failed",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("target_id", uint64(targetID)),
			zap.Error(err))

		return err
	}

	err := e.rest.DeleteBan(guildID, targetID, rest.WithCtx(ctx), rest.WithReason(auditReason))
	if err != nil {
		err = classifyError(err)
		e.logger.Warn("Unban failed",
			zap.Uint64("guild_id", uint64(guildID)),
			zap.Uint64("target_id", uint64(targetID)),
			zap.Error(err))

		return err
	}

	return nil
}

// classifyError maps an outbound call failure onto the error taxonomy.
// Anything that is neither a Discord REST error nor a network error is
// left as-is and treated as unexpected by Classify.
func classifyError(err error) error {
	var restErr *rest.Error
	if errors.As(err, &restErr) {
		if restErr.Response != nil {
			switch restErr.Response.StatusCode {
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrPermissionDenied, restErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrTargetNotFound, restErr.Message)
			}
		}

		return fmt.Errorf("%w: %s", ErrTransport, restErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %s", ErrTransport, netErr)
	}

	return err
}

// Outcome is the classified result of one action attempt. The note is
// stored verbatim in the audit record and shown to the invoker.
type Outcome struct {
	Success bool
	Note    string
}

// Classify converts an action error into its audit outcome.
func Classify(action types.ActionType, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Success: true}
	case errors.Is(err, ErrPermissionDenied):
		return Outcome{Note: fmt.Sprintf("Missing permissions or role hierarchy prevents %s (Forbidden).", action)}
	case errors.Is(err, ErrTargetNotFound):
		if action == types.ActionUnban {
			return Outcome{Note: "User is not currently banned."}
		}

		return Outcome{Note: "Member not found / already left the guild."}
	case errors.Is(err, ErrTransport):
		return Outcome{Note: fmt.Sprintf("Discord API error during %s: %v", action, err)}
	default:
		return Outcome{Note: fmt.Sprintf("Unexpected error during %s: %v", action, err)}
	}
}
