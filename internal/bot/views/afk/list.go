package afk

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/wardenbot/warden/internal/bot/constants"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/pkg/utils"
)

// ListBuilder renders the currently-away listing.
type ListBuilder struct {
	statuses []*types.AfkStatus
}

// NewListBuilder creates a listing builder from the given statuses,
// expected most-recent first.
func NewListBuilder(statuses []*types.AfkStatus) *ListBuilder {
	return &ListBuilder{statuses: statuses}
}

// Build creates the AFK listing embed.
func (b *ListBuilder) Build() discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("Currently AFK").
		SetColor(constants.DefaultEmbedColor)

	if len(b.statuses) == 0 {
		return builder.SetDescription("Nobody is AFK right now.").Build()
	}

	shown := b.statuses
	if len(shown) > constants.AfkListMaxEntries {
		shown = shown[:constants.AfkListMaxEntries]
	}

	var sb strings.Builder
	for _, status := range shown {
		sb.WriteString(fmt.Sprintf("<@%d> - %s - since %s\n",
			status.UserID,
			utils.TruncateString(status.Reason, 80),
			utils.FormatTimestamp(status.Since)))
	}

	if hidden := len(b.statuses) - len(shown); hidden > 0 {
		sb.WriteString(fmt.Sprintf("\n...and %d more.", hidden))
	}

	return builder.SetDescription(sb.String()).Build()
}
