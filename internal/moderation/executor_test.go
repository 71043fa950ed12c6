package moderation_test

import (
	"context"
	"errors"
	"net/http"
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

type fakeModerator struct {
	removeErr    error
	addBanErr    error
	deleteBanErr error
	getBanErr    error

	removeCalls    int
	addBanCalls    int
	deleteBanCalls int
	getBanCalls    int
}

func (m *fakeModerator) RemoveMember(_, _ snowflake.ID, _ ...rest.RequestOpt) error {
	m.removeCalls++
	return m.removeErr
}

func (m *fakeModerator) AddBan(_, _ snowflake.ID, _ time.Duration, _ ...rest.RequestOpt) error {
	m.addBanCalls++
	return m.addBanErr
}

func (m *fakeModerator) DeleteBan(_, _ snowflake.ID, _ ...rest.RequestOpt) error {
	m.deleteBanCalls++
	return m.deleteBanErr
}

func (m *fakeModerator) GetBan(_, _ snowflake.ID, _ ...rest.RequestOpt) (*discord.Ban, error) {
	m.getBanCalls++
	if m.getBanErr != nil {
		return nil, m.getBanErr
	}

	return &discord.Ban{}, nil
}

func restError(statusCode int, message string) *rest.Error {
	return &rest.Error{
		Response: &http.Response{StatusCode: statusCode},
		Message:  message,
	}
}

func TestExecutorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		action   types.ActionType
		restErr  error
		expected error
	}{
		{
			name:     "kick success",
			action:   types.ActionKick,
			restErr:  nil,
			expected: nil,
		},
		{
			name:     "kick forbidden",
			action:   types.ActionKick,
			restErr:  restError(http.StatusForbidden, "Missing Permissions"),
			expected: moderation.ErrPermissionDenied,
		},
		{
			name:     "ban target gone",
			action:   types.ActionBan,
			restErr:  restError(http.StatusNotFound, "Unknown User"),
			expected: moderation.ErrTargetNotFound,
		},
		{
			name:     "ban rate limited counts as transport",
			action:   types.ActionBan,
			restErr:  restError(http.StatusTooManyRequests, "You are being rate limited."),
			expected: moderation.ErrTransport,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeModerator{removeErr: tt.restErr, addBanErr: tt.restErr}
			executor := moderation.NewExecutor(fake, zap.NewNop())

			err := executor.Do(context.Background(), tt.action, 1, 2, "reason")
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}

func TestExecutorSingleAttempt(t *testing.T) {
	t.Parallel()

	fake := &fakeModerator{removeErr: restError(http.StatusInternalServerError, "boom")}
	executor := moderation.NewExecutor(fake, zap.NewNop())

	err := executor.Kick(context.Background(), 1, 2, "reason")
	require.Error(t, err)
	assert.Equal(t, 1, fake.removeCalls, "no retries")
}

func TestUnbanMissingBanEntry(t *testing.T) {
	t.Parallel()

	fake := &fakeModerator{getBanErr: restError(http.StatusNotFound, "Unknown Ban")}
	executor := moderation.NewExecutor(fake, zap.NewNop())

	err := executor.Unban(context.Background(), 1, 2, "reason")
	assert.ErrorIs(t, err, moderation.ErrTargetNotFound)
	assert.Equal(t, 1, fake.getBanCalls)
	assert.Zero(t, fake.deleteBanCalls, "no delete attempt without a ban entry")
}

func TestUnbanLiftsExistingBan(t *testing.T) {
	t.Parallel()

	fake := &fakeModerator{}
	executor := moderation.NewExecutor(fake, zap.NewNop())

	require.NoError(t, executor.Unban(context.Background(), 1, 2, "appealed"))
	assert.Equal(t, 1, fake.getBanCalls)
	assert.Equal(t, 1, fake.deleteBanCalls)
}

func TestClassifyNotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		action      types.ActionType
		err         error
		wantSuccess bool
		wantNote    string
	}{
		{
			name:        "success has empty note",
			action:      types.ActionKick,
			err:         nil,
			wantSuccess: true,
		},
		{
			name:     "permission denied",
			action:   types.ActionKick,
			err:      moderation.ErrPermissionDenied,
			wantNote: "Missing permissions or role hierarchy prevents kick (Forbidden).",
		},
		{
			name:     "kick target missing",
			action:   types.ActionKick,
			err:      moderation.ErrTargetNotFound,
			wantNote: "Member not found / already left the guild.",
		},
		{
			name:     "unban target missing",
			action:   types.ActionUnban,
			err:      moderation.ErrTargetNotFound,
			wantNote: "User is not currently banned.",
		},
		{
			name:     "transport",
			action:   types.ActionBan,
			err:      moderation.ErrTransport,
			wantNote: "Discord API error during ban: transport error",
		},
		{
			name:     "unexpected",
			action:   types.ActionBan,
			err:      errors.New("weird state"),
			wantNote: "Unexpected error during ban: weird state",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outcome := moderation.Classify(tt.action, tt.err)
			assert.Equal(t, tt.wantSuccess, outcome.Success)
			assert.Equal(t, tt.wantNote, outcome.Note)
		})
	}
}
