package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/internal/moderation"
	"go.uber.org/zap"
)

type fakeStore struct {
	err     error
	entries []*types.ModerationLog
}

func (s *fakeStore) Add(_ context.Context, log *types.ModerationLog) error {
	if s.err != nil {
		return s.err
	}

	s.entries = append(s.entries, log)

	return nil
}

type fakeChannel struct {
	err      error
	messages []discord.MessageCreate
	channels []snowflake.ID
}

func (c *fakeChannel) CreateMessage(
	channelID snowflake.ID, message discord.MessageCreate, _ ...rest.RequestOpt,
) (*discord.Message, error) {
	if c.err != nil {
		return nil, c.err
	}

	c.messages = append(c.messages, message)
	c.channels = append(c.channels, channelID)

	return &discord.Message{}, nil
}

func testEntry(success bool, note string) *types.ModerationLog {
	return &types.ModerationLog{
		Action:        types.ActionKick,
		TargetID:      100,
		TargetName:    "target#1",
		ModeratorID:   200,
		ModeratorName: "mod#1",
		Reason:        "spam",
		Timestamp:     time.Unix(1700000000, 0).UTC(),
		Success:       success,
		Note:          note,
	}
}

func TestRecordBothSinksSucceed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	channel := &fakeChannel{}
	audit := moderation.NewAuditLogger(store, channel, 555, zap.NewNop())

	result := audit.Record(context.Background(), testEntry(true, ""))

	assert.True(t, result.StoreOK)
	assert.NoError(t, result.StoreErr)
	assert.True(t, result.NotifyOK)
	assert.NoError(t, result.NotifyErr)

	require.Len(t, store.entries, 1)
	require.Len(t, channel.messages, 1)
	assert.Equal(t, snowflake.ID(555), channel.channels[0])
}

func TestRecordStoreFailureStillNotifies(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("disk full")
	store := &fakeStore{err: storeErr}
	channel := &fakeChannel{}
	audit := moderation.NewAuditLogger(store, channel, 555, zap.NewNop())

	result := audit.Record(context.Background(), testEntry(true, ""))

	assert.False(t, result.StoreOK)
	assert.ErrorIs(t, result.StoreErr, storeErr)
	assert.True(t, result.NotifyOK, "channel post is isolated from store failure")

	// The posted embed carries the store failure as a diagnostic field
	require.Len(t, channel.messages, 1)
	require.Len(t, channel.messages[0].Embeds, 1)

	var found bool
	for _, field := range channel.messages[0].Embeds[0].Fields {
		if field.Name == "DB note" {
			found = true
			assert.Contains(t, field.Value, "disk full")
		}
	}
	assert.True(t, found, "expected DB note field")
}

func TestRecordNotifyFailureStillStores(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("channel gone")
	store := &fakeStore{}
	channel := &fakeChannel{err: sendErr}
	audit := moderation.NewAuditLogger(store, channel, 555, zap.NewNop())

	result := audit.Record(context.Background(), testEntry(false, "Member not found / already left the guild."))

	assert.True(t, result.StoreOK)
	assert.False(t, result.NotifyOK)
	assert.ErrorIs(t, result.NotifyErr, sendErr)

	require.Len(t, store.entries, 1)
	assert.False(t, store.entries[0].Success)
	assert.Equal(t, "Member not found / already left the guild.", store.entries[0].Note)
}

func TestRecordSkipsNotifyWhenUnconfigured(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	channel := &fakeChannel{}
	audit := moderation.NewAuditLogger(store, channel, 0, zap.NewNop())

	result := audit.Record(context.Background(), testEntry(true, ""))

	assert.True(t, result.StoreOK)
	assert.False(t, result.NotifyOK)
	assert.ErrorIs(t, result.NotifyErr, moderation.ErrLogChannelUnconfigured)
	assert.Empty(t, channel.messages)
}
