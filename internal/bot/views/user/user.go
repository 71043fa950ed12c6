package user

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/wardenbot/warden/internal/bot/constants"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/pkg/utils"
)

// AvatarBuilder renders a user's avatar with direct download links.
type AvatarBuilder struct {
	user discord.User
}

// NewAvatarBuilder creates an avatar view builder for the given user.
func NewAvatarBuilder(user discord.User) *AvatarBuilder {
	return &AvatarBuilder{user: user}
}

// Build creates the avatar message with one link button per image format.
func (b *AvatarBuilder) Build() discord.MessageCreate {
	embed := discord.NewEmbedBuilder().
		SetTitlef("%s's avatar", b.user.EffectiveName()).
		SetImage(b.url(discord.FileFormatPNG)).
		SetColor(constants.DefaultEmbedColor).
		Build()

	buttons := []discord.InteractiveComponent{
		discord.NewLinkButton("PNG", b.url(discord.FileFormatPNG)),
		discord.NewLinkButton("JPG", b.url(discord.FileFormatJPEG)),
		discord.NewLinkButton("WebP", b.url(discord.FileFormatWebP)),
	}
	if b.animated() {
		buttons = append(buttons, discord.NewLinkButton("GIF", b.url(discord.FileFormatGIF)))
	}

	return discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		AddActionRow(buttons...).
		Build()
}

func (b *AvatarBuilder) url(format discord.FileFormat) string {
	return b.user.EffectiveAvatarURL(discord.WithSize(1024), discord.WithFormat(format))
}

func (b *AvatarBuilder) animated() bool {
	return b.user.Avatar != nil && len(*b.user.Avatar) > 2 && (*b.user.Avatar)[:2] == "a_"
}

// InfoBuilder renders the user information card.
type InfoBuilder struct {
	user   discord.User
	member *types.Member
}

// NewInfoBuilder creates an info view builder. member may be nil when no
// join record exists for the user.
func NewInfoBuilder(user discord.User, member *types.Member) *InfoBuilder {
	return &InfoBuilder{user: user, member: member}
}

// Build creates the user info embed.
func (b *InfoBuilder) Build() discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitlef("User info: %s", b.user.EffectiveName()).
		SetThumbnail(b.user.EffectiveAvatarURL(discord.WithSize(256))).
		SetColor(constants.DefaultEmbedColor).
		AddField("ID", fmt.Sprintf("`%d`", b.user.ID), true).
		AddField("Username", b.user.Username, true).
		AddField("Account created", utils.FormatTimestamp(b.user.ID.Time()), false)

	if b.member != nil && !b.member.JoinedAt.IsZero() {
		builder.AddField("First seen joining", utils.FormatTimestamp(b.member.JoinedAt), false)
	}

	if b.user.Bot {
		builder.AddField("Bot", "Yes", true)
	}

	return builder.Build()
}
