package models

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// unixTime converts a stored unix timestamp back to UTC time.
func unixTime(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}

// AfkModel handles database operations for AFK statuses.
type AfkModel struct {
	pool   *sqlitex.Pool
	logger *zap.Logger
}

// NewAfk creates a new AFK model instance.
func NewAfk(pool *sqlitex.Pool, logger *zap.Logger) *AfkModel {
	return &AfkModel{
		pool:   pool,
		logger: logger.Named("db_afk"),
	}
}

// Set stores or replaces a user's AFK status.
func (m *AfkModel) Set(ctx context.Context, status *types.AfkStatus) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`REPLACE INTO afk_statuses (user_id, reason, since) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{int64(status.UserID), status.Reason, status.Since.Unix()},
		})
	if err != nil {
		return fmt.Errorf("failed to set AFK status: %w", err)
	}

	m.logger.Debug("Set AFK status", zap.Uint64("user_id", status.UserID))

	return nil
}

// Get returns the user's active AFK status, or nil when none exists.
func (m *AfkModel) Get(ctx context.Context, userID uint64) (*types.AfkStatus, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var status *types.AfkStatus

	err = sqlitex.Execute(conn,
		`SELECT user_id, reason, since FROM afk_statuses WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(userID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				status = &types.AfkStatus{
					UserID: uint64(stmt.ColumnInt64(0)),
					Reason: stmt.ColumnText(1),
					Since:  unixTime(stmt.ColumnInt64(2)),
				}
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query AFK status: %w", err)
	}

	return status, nil
}

// Delete removes the user's AFK status. Reports whether a row was removed
// so callers can announce the clear exactly once.
func (m *AfkModel) Delete(ctx context.Context, userID uint64) (bool, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM afk_statuses WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(userID)},
		})
	if err != nil {
		return false, fmt.Errorf("failed to delete AFK status: %w", err)
	}

	return conn.Changes() > 0, nil
}

// All returns every active AFK status, most recent first.
func (m *AfkModel) All(ctx context.Context) ([]*types.AfkStatus, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var statuses []*types.AfkStatus

	err = sqlitex.Execute(conn,
		`SELECT user_id, reason, since FROM afk_statuses ORDER BY since DESC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				statuses = append(statuses, &types.AfkStatus{
					UserID: uint64(stmt.ColumnInt64(0)),
					Reason: stmt.ColumnText(1),
					Since:  unixTime(stmt.ColumnInt64(2)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query AFK statuses: %w", err)
	}

	return statuses, nil
}
