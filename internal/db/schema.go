package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		channel_id     TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		thumbnail      TEXT,
		last_video_id  TEXT NOT NULL DEFAULT '',
		notify         BOOLEAN NOT NULL DEFAULT TRUE,
		last_upload_at TIMESTAMPTZ,
		subscribed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_updated   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		video_id      TEXT PRIMARY KEY,
		channel_id    TEXT NOT NULL,
		channel_title TEXT NOT NULL,
		title         TEXT NOT NULL,
		link          TEXT NOT NULL,
		thumbnail     TEXT,
		published_at  TIMESTAMPTZ,
		view_count    BIGINT,
		discovered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos (channel_id)`,
	`CREATE TABLE IF NOT EXISTS bot_state (
		key            TEXT PRIMARY KEY,
		last_subs_sync TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the bot's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
