package moderation

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// isModerator reports whether the member holds the configured moderator
// role or carries the native permission for the action.
func isModerator(member *discord.ResolvedMember, modRoleID snowflake.ID, perm discord.Permissions) bool {
	if member == nil {
		return false
	}

	if modRoleID != 0 {
		for _, roleID := range member.RoleIDs {
			if roleID == modRoleID {
				return true
			}
		}
	}

	return member.Permissions.Has(perm)
}

// topRolePosition returns the highest role position among the given role
// IDs. Members with no roles rank at 0, the @everyone position.
func topRolePosition(roles []discord.Role, roleIDs []snowflake.ID) int {
	position := 0

	for _, roleID := range roleIDs {
		for _, role := range roles {
			if role.ID == roleID && role.Position > position {
				position = role.Position
			}
		}
	}

	return position
}

// outranks reports whether the invoker sits strictly above the target in
// the role hierarchy. The guild owner outranks everyone.
func outranks(
	roles []discord.Role,
	invokerID snowflake.ID, invokerRoles []snowflake.ID,
	targetRoles []snowflake.ID,
	ownerID snowflake.ID,
) bool {
	if invokerID == ownerID {
		return true
	}

	return topRolePosition(roles, invokerRoles) > topRolePosition(roles, targetRoles)
}
