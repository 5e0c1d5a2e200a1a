package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

var _ ChannelStore = (*ChannelRepo)(nil)

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

const channelColumns = `channel_id, title, thumbnail, last_video_id, notify,
       last_upload_at, subscribed_at, last_updated`

// List returns every channel record, newest subscription first.
func (r *ChannelRepo) List(ctx context.Context) ([]model.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM subscriptions
		ORDER BY subscribed_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Get returns a single channel by its ID.
func (r *ChannelRepo) Get(ctx context.Context, channelID string) (*model.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM subscriptions
		WHERE channel_id = $1`

	ch, err := scanChannel(r.pool.QueryRow(ctx, query, channelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepo) Exists(ctx context.Context, channelID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1)`,
		channelID).Scan(&exists)
	return exists, err
}

// Upsert merge-writes a channel record. Optional fields keep their stored
// value when the caller supplies nil; callers that must preserve the cursor
// or notify flag re-read the record first and carry those fields forward.
func (r *ChannelRepo) Upsert(ctx context.Context, ch model.Channel) error {
	query := `
		INSERT INTO subscriptions (channel_id, title, thumbnail, last_video_id, notify, last_upload_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (channel_id) DO UPDATE SET
			title          = EXCLUDED.title,
			thumbnail      = COALESCE(EXCLUDED.thumbnail, subscriptions.thumbnail),
			last_video_id  = EXCLUDED.last_video_id,
			notify         = EXCLUDED.notify,
			last_upload_at = COALESCE(EXCLUDED.last_upload_at, subscriptions.last_upload_at),
			last_updated   = NOW()`

	_, err := r.pool.Exec(ctx, query,
		ch.ChannelID, ch.Title, ch.Thumbnail, ch.LastVideoID, ch.Notify, ch.LastUploadAt)
	return err
}

// AdvanceCursor sets the channel's last seen video id without rewriting the
// whole record. uploadAt is best-effort: nil leaves the stored value alone.
func (r *ChannelRepo) AdvanceCursor(ctx context.Context, channelID, videoID string, uploadAt *time.Time) error {
	query := `
		UPDATE subscriptions
		SET last_video_id  = $2,
		    last_upload_at = COALESCE($3, last_upload_at),
		    last_updated   = NOW()
		WHERE channel_id = $1`

	tag, err := r.pool.Exec(ctx, query, channelID, videoID, uploadAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *ChannelRepo) SetNotify(ctx context.Context, channelID string, notify bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET notify = $2, last_updated = NOW()
		WHERE channel_id = $1`, channelID, notify)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChannelNotFound
	}
	return nil
}

// TouchSyncTime records the completion time of a subscription sync cycle.
func (r *ChannelRepo) TouchSyncTime(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bot_state (key, last_subs_sync) VALUES ('sync_info', NOW())
		ON CONFLICT (key) DO UPDATE SET last_subs_sync = NOW()`)
	return err
}

func (r *ChannelRepo) LastSyncTime(ctx context.Context) (*time.Time, error) {
	var ts *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT last_subs_sync FROM bot_state WHERE key = 'sync_info'`).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func scanChannel(row pgx.Row) (model.Channel, error) {
	var ch model.Channel
	err := row.Scan(
		&ch.ChannelID, &ch.Title, &ch.Thumbnail, &ch.LastVideoID, &ch.Notify,
		&ch.LastUploadAt, &ch.SubscribedAt, &ch.LastUpdated,
	)
	return ch, err
}
