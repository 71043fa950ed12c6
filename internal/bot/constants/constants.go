package constants

const (
	// Commands.
	KickCommandName       = "kick"
	BanCommandName        = "ban"
	UnbanCommandName      = "unban"
	AfkCommandName        = "afk"
	AfkListCommandName    = "afklist"
	ConfessCommandName    = "confess"
	ConfessionCommandName = "confession"
	AvatarCommandName     = "avatar"
	UserInfoCommandName   = "userinfo"
	LatencyCommandName    = "latency"

	RemoveSubCommandName = "remove"

	// Component custom IDs. Moderation buttons carry the session ID as a
	// third segment: "mod:confirm:<session>".
	ModerationPrefix     = "mod"
	ConfirmButtonAction  = "confirm"
	CancelButtonAction   = "cancel"
	CustomIDSeparator    = ":"
	ModerationIDSegments = 3

	// Embed colors.
	DefaultEmbedColor = 0x5865F2
	WarningEmbedColor = 0xE67E22

	// AFK list.
	AfkListMaxEntries = 50
)
