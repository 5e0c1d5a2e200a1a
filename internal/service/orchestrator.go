package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/metrics"
	"github.com/lamedts/youtube-new-video-bot/internal/model"
	"github.com/lamedts/youtube-new-video-bot/internal/repository"
	"github.com/lamedts/youtube-new-video-bot/internal/youtube"
)

// FeedSource produces the single latest feed entry for a channel.
// A nil result means "no usable video this cycle", never an error.
type FeedSource interface {
	Latest(ctx context.Context, ch model.Channel) *model.Video
}

// SubscriptionSource lists the authenticated user's subscriptions.
type SubscriptionSource interface {
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	UserInfo(ctx context.Context) (*model.UserChannelInfo, error)
}

// Orchestrator coordinates the three scheduled jobs: subscription sync,
// video polling, and summary flushing. Channels are processed one at a
// time within a cycle; every per-item failure is logged and absorbed so a
// single bad feed or failed write never aborts the batch.
type Orchestrator struct {
	registry *RegistryService
	videos   repository.VideoStore
	buffer   *BufferService
	dispatch *DispatchService
	feed     FeedSource
	subs     SubscriptionSource
	initMode bool
	logger   zerolog.Logger
}

type OrchestratorDeps struct {
	Registry *RegistryService
	Videos   repository.VideoStore
	Buffer   *BufferService
	Dispatch *DispatchService
	Feed     FeedSource
	Subs     SubscriptionSource
	InitMode bool
	Logger   zerolog.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		registry: deps.Registry,
		videos:   deps.Videos,
		buffer:   deps.Buffer,
		dispatch: deps.Dispatch,
		feed:     deps.Feed,
		subs:     deps.Subs,
		initMode: deps.InitMode,
		logger:   deps.Logger,
	}
}

// AnnounceStartup sends the boot notification with the authenticated
// user's channel title and subscription count. Best-effort.
func (o *Orchestrator) AnnounceStartup(ctx context.Context, configSummary string) {
	var userTitle string
	if info, err := o.subs.UserInfo(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("could not fetch user channel info")
	} else if info != nil {
		userTitle = info.Title
	}

	subCount := "Unknown"
	if subs, err := o.subs.ListSubscriptions(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("could not count subscriptions")
	} else {
		subCount = strconv.Itoa(len(subs))
	}

	if err := o.dispatch.NotifyStartup(ctx, userTitle, subCount, configSummary); err != nil {
		o.logger.Warn().Err(err).Msg("startup notification failed")
	}
}

// SyncChannels refreshes the channel list from the authenticated source.
// Existing channels keep their cursor, notify flag, and upload time; only
// title and thumbnail are refreshed. Genuinely new channels are announced
// one message each, unless the process runs in bulk-initialization mode.
func (o *Orchestrator) SyncChannels(ctx context.Context) {
	o.logger.Info().Msg("syncing subscriptions")

	subs, err := o.subs.ListSubscriptions(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("subscription sync failed")
		return
	}

	var added []model.Channel
	for _, sub := range subs {
		ch := model.Channel{
			ChannelID: sub.ChannelID,
			Title:     sub.Title,
			Thumbnail: sub.Thumbnail,
			Notify:    true,
		}
		if ch.Title == "" {
			ch.Title = ch.ChannelID
		}

		exists, err := o.registry.Exists(ctx, sub.ChannelID)
		if err != nil {
			o.logger.Error().Err(err).Str("channel_id", sub.ChannelID).Msg("existence check failed")
			continue
		}

		if exists {
			// Carry forward local state the subscription listing knows
			// nothing about.
			existing, err := o.registry.Get(ctx, sub.ChannelID)
			if err != nil {
				o.logger.Error().Err(err).Str("channel_id", sub.ChannelID).Msg("channel read failed")
				continue
			}
			ch.LastVideoID = existing.LastVideoID
			ch.Notify = existing.Notify
			ch.LastUploadAt = existing.LastUploadAt
			if ch.Thumbnail == nil {
				ch.Thumbnail = existing.Thumbnail
			}
		}

		if err := o.registry.Upsert(ctx, ch); err != nil {
			o.logger.Error().Err(err).Str("channel_id", ch.ChannelID).Msg("channel upsert failed")
			continue
		}
		if !exists {
			added = append(added, ch)
		}
	}

	if err := o.registry.TouchSyncTime(ctx); err != nil {
		o.logger.Error().Err(err).Msg("sync timestamp update failed")
	}

	for _, ch := range added {
		if err := o.dispatch.NotifySubscription(ctx, ch.Title, ch.ChannelID); err != nil {
			o.logger.Warn().Err(err).Str("channel_id", ch.ChannelID).
				Msg("new subscription notification failed")
		}
	}

	metrics.SyncCycles.Inc()
	o.logger.Info().Int("total", len(subs)).Int("added", len(added)).Msg("subscription sync complete")
}

// PollVideos checks every notify-enabled channel's feed for a new upload.
//
// Decision per channel: identical cursor short-circuits all side effects;
// a short-form video bumps the filtered counter and deliberately does NOT
// advance the cursor, so the same short stays "new" until a full-form
// video supersedes it; a full-form video is persisted, the cursor advances
// to it, and it is buffered for the next summary — except on bootstrap in
// bulk-initialization mode, where buffering is skipped.
func (o *Orchestrator) PollVideos(ctx context.Context) {
	channels, err := o.registry.All(ctx, true)
	if err != nil {
		o.logger.Error().Err(err).Msg("channel listing failed, skipping poll cycle")
		return
	}

	var accepted []model.Video
	var filtered int64

	for _, ch := range channels {
		video := o.feed.Latest(ctx, ch)
		if video == nil || video.VideoID == "" {
			continue
		}
		if video.VideoID == ch.LastVideoID {
			continue
		}

		if !youtube.IsFullFormVideo(*video) {
			filtered++
			metrics.ShortsFiltered.Inc()
			o.logger.Debug().Str("channel", ch.Title).Str("video_id", video.VideoID).
				Msg("short-form video filtered")
			continue
		}

		bootstrap := ch.LastVideoID == ""

		if err := o.videos.Save(ctx, *video); err != nil {
			o.logger.Error().Err(err).Str("video_id", video.VideoID).Msg("video save failed")
		}
		if err := o.registry.AdvanceCursor(ctx, ch.ChannelID, video.VideoID, video.PublishedAt); err != nil {
			o.logger.Error().Err(err).Str("channel_id", ch.ChannelID).Msg("cursor advance failed")
		}
		metrics.VideosDiscovered.Inc()

		if bootstrap && o.initMode {
			o.logger.Debug().Str("channel", ch.Title).Str("video_id", video.VideoID).
				Msg("bootstrap in init mode, not buffering")
			continue
		}
		accepted = append(accepted, *video)
	}

	for _, v := range accepted {
		if err := o.buffer.Add(ctx, v); err != nil {
			o.logger.Error().Err(err).Str("video_id", v.VideoID).Msg("buffering video failed")
		}
	}
	if filtered > 0 {
		if err := o.buffer.IncrementFiltered(ctx, filtered); err != nil {
			o.logger.Error().Err(err).Msg("filtered counter update failed")
		}
	}

	metrics.PollCycles.Inc()
	if len(accepted) > 0 || filtered > 0 {
		o.logger.Info().Int("channels", len(channels)).Int("new", len(accepted)).
			Int64("filtered", filtered).Msg("poll cycle complete")
	} else {
		o.logger.Debug().Int("channels", len(channels)).Msg("no new videos found")
	}
}

// FlushSummary drains the day's buffer, sends one batched notification,
// and clears the buffer only after the dispatch succeeded.
func (o *Orchestrator) FlushSummary(ctx context.Context) {
	videos, filtered, err := o.buffer.Drain(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("buffer drain failed")
		return
	}
	if len(videos) == 0 && filtered == 0 {
		o.logger.Debug().Msg("nothing to summarize")
		return
	}

	if err := o.dispatch.NotifyNewVideos(ctx, videos, filtered); err != nil {
		o.logger.Error().Err(err).Msg("summary dispatch failed, keeping buffer")
		return
	}

	cleared, err := o.buffer.Clear(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("buffer clear failed")
		return
	}
	o.logger.Info().Int("videos", len(videos)).Int64("filtered", filtered).
		Int64("cleared", cleared).Msg("summary flushed")
}
