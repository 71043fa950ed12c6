package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/database/models"
	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *database.Client {
	t.Helper()

	client, err := database.Connect(
		context.Background(),
		filepath.Join(t.TempDir(), "warden.db"),
		zap.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestModerationLogAddAndRecent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := context.Background()

	first := &types.ModerationLog{
		Action:        types.ActionKick,
		TargetID:      100,
		TargetName:    "target#1",
		ModeratorID:   200,
		ModeratorName: "mod#1",
		Reason:        "spam",
		Timestamp:     time.Unix(1700000000, 0).UTC(),
		Success:       true,
	}
	require.NoError(t, client.Moderation.Add(ctx, first))
	assert.NotZero(t, first.ID)

	second := &types.ModerationLog{
		Action:        types.ActionBan,
		TargetID:      101,
		TargetName:    "target#2",
		ModeratorID:   200,
		ModeratorName: "mod#1",
		Reason:        "repeat offender",
		Timestamp:     time.Unix(1700000100, 0).UTC(),
		Success:       false,
		Note:          "Missing permissions or role hierarchy prevents ban.",
	}
	require.NoError(t, client.Moderation.Add(ctx, second))

	logs, err := client.Moderation.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// Most recent first
	assert.Equal(t, types.ActionBan, logs[0].Action)
	assert.False(t, logs[0].Success)
	assert.Equal(t, second.Note, logs[0].Note)
	assert.Equal(t, types.ActionKick, logs[1].Action)
	assert.True(t, logs[1].Success)
	assert.Equal(t, first.Timestamp, logs[1].Timestamp)
}

func TestAfkStatusLifecycle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := context.Background()

	status, err := client.Afk.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, status)

	require.NoError(t, client.Afk.Set(ctx, &types.AfkStatus{
		UserID: 42,
		Reason: "lunch",
		Since:  time.Unix(1700000000, 0).UTC(),
	}))

	// Replacing an existing status keeps one row per user
	require.NoError(t, client.Afk.Set(ctx, &types.AfkStatus{
		UserID: 42,
		Reason: "meeting",
		Since:  time.Unix(1700000500, 0).UTC(),
	}))

	require.NoError(t, client.Afk.Set(ctx, &types.AfkStatus{
		UserID: 43,
		Reason: "sleep",
		Since:  time.Unix(1700000100, 0).UTC(),
	}))

	status, err = client.Afk.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "meeting", status.Reason)

	all, err := client.Afk.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(42), all[0].UserID, "most recent status first")

	removed, err := client.Afk.Delete(ctx, 42)
	require.NoError(t, err)
	assert.True(t, removed)

	// Second delete is a no-op
	removed, err = client.Afk.Delete(ctx, 42)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestConfessionLifecycle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := context.Background()

	confession := &types.Confession{
		Content:   "I never liked the old logo",
		Category:  "rant",
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, client.Confessions.Insert(ctx, confession))
	require.NotZero(t, confession.ID)

	stored, err := client.Confessions.Get(ctx, confession.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.MessageID, "message reference unset until posted")
	assert.False(t, stored.Deleted)

	require.NoError(t, client.Confessions.SetMessageID(ctx, confession.ID, 987654321))

	stored, err = client.Confessions.Get(ctx, confession.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(987654321), stored.MessageID)

	require.NoError(t, client.Confessions.MarkDeleted(ctx, confession.ID))

	stored, err = client.Confessions.Get(ctx, confession.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted, "soft delete keeps the row")

	_, err = client.Confessions.Get(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrConfessionNotFound)

	err = client.Confessions.MarkDeleted(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrConfessionNotFound)
}

func TestMemberUpsertKeepsJoinTime(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	ctx := context.Background()

	joined := time.Unix(1690000000, 0).UTC()
	require.NoError(t, client.Members.Upsert(ctx, &types.Member{
		UserID:   7,
		Username: "old_name",
		JoinedAt: joined,
	}))

	require.NoError(t, client.Members.Upsert(ctx, &types.Member{
		UserID:   7,
		Username: "new_name",
		JoinedAt: time.Unix(1700000000, 0).UTC(),
	}))

	member, err := client.Members.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "new_name", member.Username)
	assert.Equal(t, joined, member.JoinedAt, "original join time preserved")
}
