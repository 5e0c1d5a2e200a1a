package youtube

import (
	"context"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/metrics"
	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

const feedFetchTimeout = 15 * time.Second

// FeedService reads a channel's public Atom feed and extracts the single
// latest entry. It fails soft: any fetch or parse problem, or an empty
// feed, yields nil — one unreachable channel must never crash a poll
// cycle.
type FeedService struct {
	parser  *gofeed.Parser
	logger  zerolog.Logger
	feedURL func(model.Channel) string
}

func NewFeedService(logger zerolog.Logger) *FeedService {
	return &FeedService{
		parser:  gofeed.NewParser(),
		logger:  logger,
		feedURL: model.Channel.FeedURL,
	}
}

// Latest returns the newest feed entry normalized into a Video, or nil.
func (s *FeedService) Latest(ctx context.Context, ch model.Channel) *model.Video {
	ctx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.feedURL(ch), ctx)
	if err != nil {
		metrics.FeedErrors.Inc()
		s.logger.Debug().Err(err).Str("channel_id", ch.ChannelID).Msg("feed fetch failed")
		return nil
	}
	if len(feed.Items) == 0 {
		return nil
	}

	return entryToVideo(feed.Items[0], ch)
}

// entryToVideo normalizes one feed entry. The video id comes from the
// yt:videoId extension, falling back to the entry's generic id; the link
// falls back to a synthesized watch URL; the published time is parsed to
// UTC, or left nil.
func entryToVideo(item *gofeed.Item, ch model.Channel) *model.Video {
	videoID := extValue(item.Extensions, "yt", "videoId")
	if videoID == "" {
		videoID = item.GUID
	}

	link := item.Link
	if link == "" && videoID != "" {
		link = model.WatchURL(videoID)
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	video := &model.Video{
		VideoID:      videoID,
		ChannelID:    ch.ChannelID,
		ChannelTitle: ch.Title,
		Title:        title,
		Link:         link,
	}

	if thumb := mediaAttr(item.Extensions, "thumbnail", "url"); thumb != "" {
		video.Thumbnail = &thumb
	} else if content := mediaAttr(item.Extensions, "content", "url"); content != "" {
		video.Thumbnail = &content
	}

	if item.PublishedParsed != nil {
		published := item.PublishedParsed.UTC()
		video.PublishedAt = &published
	}

	if views := mediaStatistic(item.Extensions, "views"); views != "" {
		if n, err := strconv.ParseInt(views, 10, 64); err == nil {
			video.ViewCount = &n
		}
	}

	return video
}

func extValue(exts ext.Extensions, namespace, name string) string {
	for _, e := range exts[namespace][name] {
		if e.Value != "" {
			return e.Value
		}
	}
	return ""
}

// mediaAttr digs into media:group for the first child of the given name
// and returns the requested attribute.
func mediaAttr(exts ext.Extensions, child, attr string) string {
	for _, group := range exts["media"]["group"] {
		for _, e := range group.Children[child] {
			if v := e.Attrs[attr]; v != "" {
				return v
			}
		}
	}
	return ""
}

func mediaStatistic(exts ext.Extensions, attr string) string {
	for _, group := range exts["media"]["group"] {
		for _, community := range group.Children["community"] {
			for _, stats := range community.Children["statistics"] {
				if v := stats.Attrs[attr]; v != "" {
					return v
				}
			}
		}
	}
	return ""
}
