package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenbot/warden/internal/database/types"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrConfessionNotFound is returned when a confession ID does not exist.
var ErrConfessionNotFound = errors.New("confession not found")

// ConfessionModel handles database operations for confessions.
type ConfessionModel struct {
	pool   *sqlitex.Pool
	logger *zap.Logger
}

// NewConfession creates a new confession model instance.
func NewConfession(pool *sqlitex.Pool, logger *zap.Logger) *ConfessionModel {
	return &ConfessionModel{
		pool:   pool,
		logger: logger.Named("db_confession"),
	}
}

// Insert stores a new confession and fills in its row ID. The submitter
// identity is deliberately not part of the row.
func (m *ConfessionModel) Insert(ctx context.Context, confession *types.Confession) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO confessions (content, category, timestamp) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{confession.Content, confession.Category, confession.Timestamp.Unix()},
		})
	if err != nil {
		return fmt.Errorf("failed to insert confession: %w", err)
	}

	confession.ID = conn.LastInsertRowID()

	m.logger.Debug("Inserted confession",
		zap.Int64("id", confession.ID),
		zap.String("category", confession.Category))

	return nil
}

// SetMessageID back-fills the posted channel message reference.
func (m *ConfessionModel) SetMessageID(ctx context.Context, id int64, messageID uint64) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE confessions SET message_id = ? WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(messageID), id},
		})
	if err != nil {
		return fmt.Errorf("failed to set confession message ID: %w", err)
	}

	return nil
}

// MarkDeleted soft-deletes a confession. The row itself is kept.
func (m *ConfessionModel) MarkDeleted(ctx context.Context, id int64) error {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE confessions SET deleted = 1 WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
		})
	if err != nil {
		return fmt.Errorf("failed to mark confession deleted: %w", err)
	}

	if conn.Changes() == 0 {
		return ErrConfessionNotFound
	}

	m.logger.Debug("Marked confession deleted", zap.Int64("id", id))

	return nil
}

// Get returns a confession by ID, or ErrConfessionNotFound.
func (m *ConfessionModel) Get(ctx context.Context, id int64) (*types.Confession, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var confession *types.Confession

	err = sqlitex.Execute(conn,
		`SELECT id, content, category, timestamp, message_id, deleted FROM confessions WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				confession = scanConfession(stmt)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query confession: %w", err)
	}

	if confession == nil {
		return nil, ErrConfessionNotFound
	}

	return confession, nil
}

// Recent returns the newest confessions, most recent first.
func (m *ConfessionModel) Recent(ctx context.Context, limit int) ([]*types.Confession, error) {
	conn, err := m.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer m.pool.Put(conn)

	var confessions []*types.Confession

	err = sqlitex.Execute(conn,
		`SELECT id, content, category, timestamp, message_id, deleted
		FROM confessions
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				confessions = append(confessions, scanConfession(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query confessions: %w", err)
	}

	return confessions, nil
}

func scanConfession(stmt *sqlite.Stmt) *types.Confession {
	confession := &types.Confession{
		ID:        stmt.ColumnInt64(0),
		Content:   stmt.ColumnText(1),
		Category:  stmt.ColumnText(2),
		Timestamp: unixTime(stmt.ColumnInt64(3)),
		Deleted:   stmt.ColumnInt64(5) != 0,
	}

	if stmt.ColumnType(4) != sqlite.TypeNull {
		confession.MessageID = uint64(stmt.ColumnInt64(4))
	}

	return confession
}
