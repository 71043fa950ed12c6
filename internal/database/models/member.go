package models

import (
	"context"
	"fmt"

	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// MemberModel handles database operations for guild member sightings.
type MemberModel struct {
	pool   *sqlitex.Pool
	logger *zap.Logger
}

// NewMember creates a new member model instance.
func NewMember(pool *sqlitex.Pool, logger *zap.Logger) *MemberModel {
	return &MemberModel{
		pool:   pool,
		logger: logger.Named("db_member"),
	}
}

// Upsert stores or refreshes a member sighting. The original join time is
// kept on conflict so first-seen data survives username changes.
func (m *MemberModel) Upsert(ctx context.Context, member *types.Member) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO guild_members (user_id, username, joined_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET username = excluded.username`,
		&sqlitex.ExecOptions{
			Args: []any{int64(member.UserID), member.Username, member.JoinedAt.Unix()},
		})
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

// Get returns a member sighting, or nil when the user has not been seen.
func (m *MemberModel) Get(ctx context.Context, userID uint64) (*types.Member, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var member *types.Member

	err = sqlitex.Execute(conn,
		`SELECT user_id, username, joined_at FROM guild_members WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(userID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				member = &types.Member{
					UserID:   uint64(stmt.ColumnInt64(0)),
					Username: stmt.ColumnText(1),
					JoinedAt: unixTime(stmt.ColumnInt64(2)),
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}

	return member, nil
}
