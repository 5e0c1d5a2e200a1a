package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

var _ VideoStore = (*VideoRepo)(nil)

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// Save upserts a video record. discovered_at is server-assigned on first
// insert and never overwritten, so re-saving the same video is harmless.
func (r *VideoRepo) Save(ctx context.Context, v model.Video) error {
	query := `
		INSERT INTO videos (video_id, channel_id, channel_title, title, link, thumbnail, published_at, view_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (video_id) DO UPDATE SET
			channel_id    = EXCLUDED.channel_id,
			channel_title = EXCLUDED.channel_title,
			title         = EXCLUDED.title,
			link          = EXCLUDED.link,
			thumbnail     = COALESCE(EXCLUDED.thumbnail, videos.thumbnail),
			published_at  = COALESCE(EXCLUDED.published_at, videos.published_at),
			view_count    = COALESCE(EXCLUDED.view_count, videos.view_count)`

	_, err := r.pool.Exec(ctx, query,
		v.VideoID, v.ChannelID, v.ChannelTitle, v.Title, v.Link, v.Thumbnail, v.PublishedAt, v.ViewCount)
	return err
}

func (r *VideoRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}
