package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wardenbot/warden/internal/database/models"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// schema is applied on every startup; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS moderation_logs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	action         TEXT    NOT NULL,
	target_id      INTEGER NOT NULL,
	target_name    TEXT    NOT NULL,
	moderator_id   INTEGER NOT NULL,
	moderator_name TEXT    NOT NULL,
	reason         TEXT    NOT NULL DEFAULT '',
	timestamp      INTEGER NOT NULL,
	success        INTEGER NOT NULL,
	note           TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS afk_statuses (
	user_id INTEGER PRIMARY KEY,
	reason  TEXT    NOT NULL,
	since   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS confessions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT    NOT NULL,
	category   TEXT    NOT NULL,
	timestamp  INTEGER NOT NULL,
	message_id INTEGER,
	deleted    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS guild_members (
	user_id   INTEGER PRIMARY KEY,
	username  TEXT    NOT NULL,
	joined_at INTEGER NOT NULL
);
`

// Client owns the SQLite connection pool and bundles the per-table models.
type Client struct {
	pool   *sqlitex.Pool
	logger *zap.Logger

	Moderation  *models.ModerationLogModel
	Afk         *models.AfkModel
	Confessions *models.ConfessionModel
	Members     *models.MemberModel
}

// Connect opens the database at the given path, creating parent directories
// and the schema as needed.
func Connect(ctx context.Context, path string, logger *zap.Logger) (*Client, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		Flags:    sqlite.OpenCreate | sqlite.OpenReadWrite | sqlite.OpenWAL,
		PoolSize: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	c := &Client{
		pool:        pool,
		logger:      logger.Named("database"),
		Moderation:  models.NewModerationLog(pool, logger),
		Afk:         models.NewAfk(pool, logger),
		Confessions: models.NewConfession(pool, logger),
		Members:     models.NewMember(pool, logger),
	}

	if err := c.bootstrap(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	c.logger.Info("Database ready", zap.String("path", path))

	return c, nil
}

// bootstrap applies the schema.
func (c *Client) bootstrap(ctx context.Context) error {
	conn, err := c.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer c.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return nil
}

// Close shuts down the connection pool.
func (c *Client) Close() error {
	return c.pool.Close()
}
