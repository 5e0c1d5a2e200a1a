package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

// Unavailable is the stand-in ChannelStore used when no durable store was
// wired, e.g. when exercising components in isolation. Reads return empty
// results, writes fail with ErrStoreUnavailable, and every call is logged
// once per operation so a misconfigured process is visible.
type Unavailable struct {
	Logger zerolog.Logger
}

var _ ChannelStore = (*Unavailable)(nil)

func (u *Unavailable) List(ctx context.Context) ([]model.Channel, error) {
	u.Logger.Warn().Msg("channel store unavailable, returning empty channel list")
	return nil, nil
}

func (u *Unavailable) Get(ctx context.Context, channelID string) (*model.Channel, error) {
	return nil, ErrStoreUnavailable
}

func (u *Unavailable) Exists(ctx context.Context, channelID string) (bool, error) {
	return false, nil
}

func (u *Unavailable) Upsert(ctx context.Context, ch model.Channel) error {
	u.Logger.Warn().Str("channel_id", ch.ChannelID).Msg("channel store unavailable, skipping upsert")
	return ErrStoreUnavailable
}

func (u *Unavailable) AdvanceCursor(ctx context.Context, channelID, videoID string, uploadAt *time.Time) error {
	return ErrStoreUnavailable
}

func (u *Unavailable) SetNotify(ctx context.Context, channelID string, notify bool) error {
	return ErrStoreUnavailable
}

func (u *Unavailable) TouchSyncTime(ctx context.Context) error {
	return ErrStoreUnavailable
}

func (u *Unavailable) LastSyncTime(ctx context.Context) (*time.Time, error) {
	return nil, nil
}
