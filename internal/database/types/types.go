package types

import "time"

// ActionType identifies a moderation action kind.
type ActionType string

const (
	ActionKick  ActionType = "kick"
	ActionBan   ActionType = "ban"
	ActionUnban ActionType = "unban"
)

// Past returns the past-tense form of the action for user-facing messages.
func (a ActionType) Past() string {
	switch a {
	case ActionKick:
		return "kicked"
	case ActionBan:
		return "banned"
	case ActionUnban:
		return "unbanned"
	default:
		return string(a)
	}
}

// Gerund returns the present-participle form of the action for prompts.
func (a ActionType) Gerund() string {
	switch a {
	case ActionKick:
		return "kicking"
	case ActionBan:
		return "banning"
	case ActionUnban:
		return "unbanning"
	default:
		return string(a)
	}
}

// ModerationLog is one attempted kick/ban/unban. Rows are immutable once
// written; both successful and failed attempts are recorded.
type ModerationLog struct {
	ID            int64
	Action        ActionType
	TargetID      uint64
	TargetName    string
	ModeratorID   uint64
	ModeratorName string
	Reason        string
	Timestamp     time.Time
	Success       bool
	Note          string
}

// AfkStatus is a user's current AFK marker. At most one active status
// exists per user.
type AfkStatus struct {
	UserID uint64
	Reason string
	Since  time.Time
}

// Confession is one anonymous submission. No submitter identity is stored.
// MessageID is zero until the confession has been posted to the configured
// channel. Deleted is terminal; rows are never physically removed.
type Confession struct {
	ID        int64
	Content   string
	Category  string
	Timestamp time.Time
	MessageID uint64
	Deleted   bool
}

// Member is a guild member sighting used by the user info lookup.
type Member struct {
	UserID   uint64
	Username string
	JoinedAt time.Time
}
