package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/metrics"
	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

// MessageSink is the outbound messaging capability the dispatcher needs.
type MessageSink interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photoURL, caption string) error
}

// DispatchService turns polling outcomes into terse Telegram messages.
// Sends are fire-and-forget from the caller's perspective: a failed send
// is logged and counted, never retried within the cycle.
type DispatchService struct {
	sink     MessageSink
	initMode bool
	logger   zerolog.Logger
}

func NewDispatchService(sink MessageSink, initMode bool, logger zerolog.Logger) *DispatchService {
	return &DispatchService{sink: sink, initMode: initMode, logger: logger}
}

// NotifyNewVideos sends one batched message summarizing the day's counts.
// No-op success when there is nothing to report. Videos are not itemized;
// the sink has a hard message length cap.
func (d *DispatchService) NotifyNewVideos(ctx context.Context, videos []model.Video, filtered int64) error {
	if len(videos) == 0 && filtered == 0 {
		return nil
	}

	text := fmt.Sprintf("📺 *Video summary*\nNew videos: %d", len(videos))
	if filtered > 0 {
		text += fmt.Sprintf("\nShorts filtered: %d", filtered)
	}

	return d.send(ctx, text)
}

// NotifySubscription announces one newly discovered channel. Suppressed
// entirely in bulk-initialization mode to avoid a storm on first seed.
func (d *DispatchService) NotifySubscription(ctx context.Context, channelTitle, channelID string) error {
	if d.initMode {
		d.logger.Debug().Str("channel_id", channelID).
			Msg("init mode, suppressing new subscription notification")
		return nil
	}

	text := fmt.Sprintf("🆕 *New subscription detected*\n*%s*\nhttps://www.youtube.com/channel/%s",
		channelTitle, channelID)
	return d.send(ctx, text)
}

// NotifyStartup sends the one-shot boot message. subCount is a rendered
// count, or "Unknown" when the subscription listing failed.
func (d *DispatchService) NotifyStartup(ctx context.Context, userTitle, subCount, configSummary string) error {
	text := "🚀 YouTube → Telegram bot has started.\n"
	if userTitle != "" {
		text += fmt.Sprintf("User: *%s*\n", userTitle)
	} else {
		text += "Could not fetch user info.\n"
	}
	text += fmt.Sprintf("Subscriptions: %s\n\n⚙️ *Bot Configuration*\n%s", subCount, configSummary)

	return d.send(ctx, text)
}

func (d *DispatchService) send(ctx context.Context, text string) error {
	if err := d.sink.SendText(ctx, text); err != nil {
		metrics.NotificationErrors.Inc()
		return err
	}
	metrics.NotificationsSent.Inc()
	return nil
}
