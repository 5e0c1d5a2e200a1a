package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

// ErrChannelNotFound is returned by Get when no channel record exists.
var ErrChannelNotFound = errors.New("channel not found")

// ErrStoreUnavailable is returned by the unavailable store variant.
var ErrStoreUnavailable = errors.New("channel store unavailable")

// ChannelStore is the durable repository contract for channel records and
// the subscription-sync marker. Two variants exist: the Postgres-backed
// ChannelRepo and the Unavailable stub, selected once at construction.
type ChannelStore interface {
	List(ctx context.Context) ([]model.Channel, error)
	Get(ctx context.Context, channelID string) (*model.Channel, error)
	Exists(ctx context.Context, channelID string) (bool, error)
	Upsert(ctx context.Context, ch model.Channel) error
	AdvanceCursor(ctx context.Context, channelID, videoID string, uploadAt *time.Time) error
	SetNotify(ctx context.Context, channelID string, notify bool) error
	TouchSyncTime(ctx context.Context) error
	LastSyncTime(ctx context.Context) (*time.Time, error)
}

// VideoStore persists accepted video records keyed by video id.
type VideoStore interface {
	Save(ctx context.Context, v model.Video) error
	Count(ctx context.Context) (int64, error)
}
