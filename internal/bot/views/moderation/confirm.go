package moderation

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/wardenbot/warden/internal/bot/constants"
	"github.com/wardenbot/warden/internal/moderation"
)

// ConfirmBuilder renders the confirm/cancel prompt for one pending
// moderation session.
type ConfirmBuilder struct {
	session *moderation.Session
}

// NewConfirmBuilder creates a prompt builder for the given session.
func NewConfirmBuilder(session *moderation.Session) *ConfirmBuilder {
	return &ConfirmBuilder{session: session}
}

// BuildPrompt creates the initial confirmation message with live buttons.
func (b *ConfirmBuilder) BuildPrompt() discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContentf(
			"Confirm %s **%s**? This action is irreversible.",
			b.session.Action.Gerund(), b.session.Target.Name,
		).
		AddActionRow(b.buttons(false)...).
		Build()
}

// BuildResolved updates the prompt after a decision or expiry, disabling
// both buttons and appending a status line.
func (b *ConfirmBuilder) BuildResolved(status string) discord.MessageUpdate {
	return discord.NewMessageUpdateBuilder().
		SetContentf(
			"Confirm %s **%s**? This action is irreversible.\n%s",
			b.session.Action.Gerund(), b.session.Target.Name, status,
		).
		AddActionRow(b.buttons(true)...).
		Build()
}

func (b *ConfirmBuilder) buttons(disabled bool) []discord.InteractiveComponent {
	confirmID := customID(constants.ConfirmButtonAction, b.session.ID)
	cancelID := customID(constants.CancelButtonAction, b.session.ID)

	return []discord.InteractiveComponent{
		discord.NewDangerButton(
			fmt.Sprintf("Confirm %s", capitalize(string(b.session.Action))), confirmID,
		).WithDisabled(disabled),
		discord.NewSecondaryButton("Cancel", cancelID).WithDisabled(disabled),
	}
}

func customID(action, sessionID string) string {
	return strings.Join(
		[]string{constants.ModerationPrefix, action, sessionID},
		constants.CustomIDSeparator,
	)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
