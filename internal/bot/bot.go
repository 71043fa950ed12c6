package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/afk"
	"github.com/wardenbot/warden/internal/bot/constants"
	afkHandler "github.com/wardenbot/warden/internal/bot/handlers/afk"
	confessionHandler "github.com/wardenbot/warden/internal/bot/handlers/confession"
	moderationHandler "github.com/wardenbot/warden/internal/bot/handlers/moderation"
	userHandler "github.com/wardenbot/warden/internal/bot/handlers/user"
	"github.com/wardenbot/warden/internal/confession"
	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/moderation"
	"github.com/wardenbot/warden/internal/setup/config"
)

// Bot wires the Discord client to the moderation, AFK, confession, and
// user handlers.
type Bot struct {
	client     bot.Client
	logger     *zap.Logger
	guildID    snowflake.ID
	moderation *moderationHandler.Handler
	afk        *afkHandler.Handler
	confession *confessionHandler.Handler
	user       *userHandler.Handler
}

// New builds the Discord client with the required gateway intents and
// constructs every handler with its dependencies.
func New(cfg *config.Config, db *database.Client, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		logger:  logger.Named("bot"),
		guildID: snowflake.ID(cfg.Bot.GuildID),
	}

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMembers,
				gateway.IntentDirectMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
			OnMessageCreate:                 b.handleMessageCreate,
			OnGuildMemberJoin:               b.handleGuildMemberJoin,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	registry := moderation.NewRegistry(cfg.Moderation.ConfirmTimeout(), logger)
	executor := moderation.NewExecutor(client.Rest(), logger)
	audit := moderation.NewAuditLogger(
		db.Moderation, client.Rest(), snowflake.ID(cfg.Moderation.LogChannelID), logger,
	)

	relay := confession.NewRelay(
		db.Confessions, client.Rest(),
		confession.NewLimiter(cfg.Confession.RateLimitWindow()),
		snowflake.ID(cfg.Confession.ChannelID), logger,
	)

	modRoleID := snowflake.ID(cfg.Moderation.ModRoleID)

	b.moderation = moderationHandler.NewHandler(executor, registry, audit, modRoleID, logger)
	b.afk = afkHandler.NewHandler(afk.NewTracker(db.Afk, logger), logger)
	b.confession = confessionHandler.NewHandler(relay, modRoleID, logger)
	b.user = userHandler.NewHandler(db.Members, logger)

	return b, nil
}

// Start registers the slash commands and opens the gateway connection.
// Commands register per-guild when a guild is configured so they appear
// instantly; otherwise they register globally.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	var err error
	if b.guildID != 0 {
		_, err = b.client.Rest().SetGuildCommands(b.client.ApplicationID(), b.guildID, commands())
	} else {
		_, err = b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands())
	}

	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())
}

// handleApplicationCommandInteraction dispatches slash commands. Each
// command runs in its own goroutine so a slow one cannot block others.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		start := time.Now()
		data := event.SlashCommandInteractionData()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in command handler",
					zap.String("command", data.CommandName()),
					zap.Any("panic", r))
			}

			b.logger.Debug("Command handled",
				zap.String("command", data.CommandName()),
				zap.Duration("duration", time.Since(start)))
		}()

		switch data.CommandName() {
		case constants.KickCommandName:
			b.moderation.HandleKick(event)
		case constants.BanCommandName:
			b.moderation.HandleBan(event)
		case constants.UnbanCommandName:
			b.moderation.HandleUnban(event)
		case constants.AfkCommandName:
			b.afk.HandleAfk(event)
		case constants.AfkListCommandName:
			b.afk.HandleAfkList(event)
		case constants.ConfessCommandName:
			b.confession.HandleConfess(event)
		case constants.ConfessionCommandName:
			if data.SubCommandName != nil && *data.SubCommandName == constants.RemoveSubCommandName {
				b.confession.HandleRemove(event)
			}
		case constants.AvatarCommandName:
			b.user.HandleAvatar(event)
		case constants.UserInfoCommandName:
			b.user.HandleUserInfo(event)
		case constants.LatencyCommandName:
			b.user.HandleLatency(event)
		default:
			b.logger.Warn("Unknown command", zap.String("command", data.CommandName()))
		}
	}()
}

// handleComponentInteraction routes button presses by custom ID prefix.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component handler",
					zap.String("custom_id", event.Data.CustomID()),
					zap.Any("panic", r))
			}

			b.logger.Debug("Component interaction handled",
				zap.String("custom_id", event.Data.CustomID()),
				zap.Duration("duration", time.Since(start)))
		}()

		if strings.HasPrefix(event.Data.CustomID(), constants.ModerationPrefix+constants.CustomIDSeparator) {
			b.moderation.HandleComponent(event)
		}
	}()
}

func (b *Bot) handleMessageCreate(event *events.MessageCreate) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in message handler", zap.Any("panic", r))
			}
		}()

		b.afk.HandleMessage(event)
	}()
}

func (b *Bot) handleGuildMemberJoin(event *events.GuildMemberJoin) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in member join handler", zap.Any("panic", r))
			}
		}()

		b.user.HandleMemberJoin(event)
	}()
}

// commands defines every slash command the bot serves.
func commands() []discord.ApplicationCommandCreate {
	categoryChoices := []discord.ApplicationCommandOptionChoiceString{
		{Name: "Love", Value: "love"},
		{Name: "Secret", Value: "secret"},
		{Name: "Rant", Value: "rant"},
		{Name: "Question", Value: "question"},
		{Name: "Other", Value: "other"},
	}

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.KickCommandName,
			Description: "Kick a member from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to kick",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the kick",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.BanCommandName,
			Description: "Ban a member from the server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to ban",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the ban",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.UnbanCommandName,
			Description: "Lift a ban",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The banned user",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the unban",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AfkCommandName,
			Description: "Mark yourself as AFK",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why you are away",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AfkListCommandName,
			Description: "List everyone who is currently AFK",
		},
		discord.SlashCommandCreate{
			Name:        constants.ConfessCommandName,
			Description: "Submit an anonymous confession",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "content",
					Description: "Your confession",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "category",
					Description: "Confession category",
					Choices:     categoryChoices,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.ConfessionCommandName,
			Description: "Manage confessions",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.RemoveSubCommandName,
					Description: "Remove a posted confession",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionInt{
							Name:        "id",
							Description: "The confession number",
							Required:    true,
						},
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AvatarCommandName,
			Description: "Show a user's avatar",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user whose avatar to show",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.UserInfoCommandName,
			Description: "Show information about a user",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to inspect",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.LatencyCommandName,
			Description: "Show the bot's gateway latency",
		},
	}
}
