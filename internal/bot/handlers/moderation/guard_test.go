package moderation

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func resolvedMember(roleIDs []snowflake.ID, perms discord.Permissions) *discord.ResolvedMember {
	return &discord.ResolvedMember{
		Member:      discord.Member{RoleIDs: roleIDs},
		Permissions: perms,
	}
}

func TestIsModerator(t *testing.T) {
	t.Parallel()

	const modRole = snowflake.ID(100)

	tests := []struct {
		name     string
		member   *discord.ResolvedMember
		modRole  snowflake.ID
		perm     discord.Permissions
		expected bool
	}{
		{
			name:     "nil member",
			member:   nil,
			modRole:  modRole,
			perm:     discord.PermissionKickMembers,
			expected: false,
		},
		{
			name:     "holds the moderator role",
			member:   resolvedMember([]snowflake.ID{5, 100}, 0),
			modRole:  modRole,
			perm:     discord.PermissionKickMembers,
			expected: true,
		},
		{
			name:     "holds the native permission",
			member:   resolvedMember(nil, discord.PermissionKickMembers),
			modRole:  modRole,
			perm:     discord.PermissionKickMembers,
			expected: true,
		},
		{
			name:     "wrong permission and no role",
			member:   resolvedMember([]snowflake.ID{5}, discord.PermissionManageMessages),
			modRole:  modRole,
			perm:     discord.PermissionBanMembers,
			expected: false,
		},
		{
			name:     "no moderator role configured",
			member:   resolvedMember([]snowflake.ID{100}, 0),
			modRole:  0,
			perm:     discord.PermissionKickMembers,
			expected: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, isModerator(tt.member, tt.modRole, tt.perm))
		})
	}
}

func TestOutranks(t *testing.T) {
	t.Parallel()

	roles := []discord.Role{
		{ID: 1, Position: 1},
		{ID: 2, Position: 5},
		{ID: 3, Position: 9},
	}

	const ownerID = snowflake.ID(777)

	tests := []struct {
		name         string
		invokerID    snowflake.ID
		invokerRoles []snowflake.ID
		targetRoles  []snowflake.ID
		expected     bool
	}{
		{
			name:         "strictly above",
			invokerID:    1,
			invokerRoles: []snowflake.ID{3},
			targetRoles:  []snowflake.ID{2},
			expected:     true,
		},
		{
			name:         "equal top role",
			invokerID:    1,
			invokerRoles: []snowflake.ID{2},
			targetRoles:  []snowflake.ID{2},
			expected:     false,
		},
		{
			name:         "below",
			invokerID:    1,
			invokerRoles: []snowflake.ID{1},
			targetRoles:  []snowflake.ID{3},
			expected:     false,
		},
		{
			name:         "owner bypasses hierarchy",
			invokerID:    ownerID,
			invokerRoles: nil,
			targetRoles:  []snowflake.ID{3},
			expected:     true,
		},
		{
			name:         "both roleless",
			invokerID:    1,
			invokerRoles: nil,
			targetRoles:  nil,
			expected:     false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := outranks(roles, tt.invokerID, tt.invokerRoles, tt.targetRoles, ownerID)
			assert.Equal(t, tt.expected, got)
		})
	}
}
