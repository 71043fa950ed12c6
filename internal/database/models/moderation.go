package models

import (
	"context"
	"fmt"

	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ModerationLogModel handles database operations for the moderation log.
type ModerationLogModel struct {
	pool   *sqlitex.Pool
	logger *zap.Logger
}

// NewModerationLog creates a new moderation log model instance.
func NewModerationLog(pool *sqlitex.Pool, logger *zap.Logger) *ModerationLogModel {
	return &ModerationLogModel{
		pool:   pool,
		logger: logger.Named("db_moderation"),
	}
}

// Add inserts one moderation record and fills in its row ID.
// Records are immutable once written.
func (m *ModerationLogModel) Add(ctx context.Context, log *types.ModerationLog) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	success := 0
	if log.Success {
		success = 1
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO moderation_logs
		(action, target_id, target_name, moderator_id, moderator_name, reason, timestamp, success, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				string(log.Action),
				int64(log.TargetID),
				log.TargetName,
				int64(log.ModeratorID),
				log.ModeratorName,
				log.Reason,
				log.Timestamp.Unix(),
				success,
				log.Note,
			},
		})
	if err != nil {
		return fmt.Errorf("failed to insert moderation log: %w", err)
	}

	log.ID = conn.LastInsertRowID()

	m.logger.Debug("Added moderation log",
		zap.Int64("id", log.ID),
		zap.String("action", string(log.Action)),
		zap.Uint64("target_id", log.TargetID),
		zap.Bool("success", log.Success))

	return nil
}

// Recent returns the newest moderation records, most recent first.
func (m *ModerationLogModel) Recent(ctx context.Context, limit int) ([]*types.ModerationLog, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var logs []*types.ModerationLog

	err = sqlitex.Execute(conn, `
		SELECT id, action, target_id, target_name, moderator_id, moderator_name, reason, timestamp, success, note
		FROM moderation_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				logs = append(logs, scanModerationLog(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation logs: %w", err)
	}

	return logs, nil
}

func scanModerationLog(stmt *sqlite.Stmt) *types.ModerationLog {
	return &types.ModerationLog{
		ID:            stmt.ColumnInt64(0),
		Action:        types.ActionType(stmt.ColumnText(1)),
		TargetID:      uint64(stmt.ColumnInt64(2)),
		TargetName:    stmt.ColumnText(3),
		ModeratorID:   uint64(stmt.ColumnInt64(4)),
		ModeratorName: stmt.ColumnText(5),
		Reason:        stmt.ColumnText(6),
		Timestamp:     unixTime(stmt.ColumnInt64(7)),
		Success:       stmt.ColumnInt64(8) != 0,
		Note:          stmt.ColumnText(9),
	}
}
