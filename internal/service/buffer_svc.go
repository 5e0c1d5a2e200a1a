package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

// bufferTTL is the safety net against unbounded growth if the summary
// flush never runs.
const bufferTTL = 7 * 24 * time.Hour

// BufferService accumulates newly discovered videos and a counter of
// filtered shorts in Redis, keyed by UTC calendar day. The day key is
// computed at call time: entries written just before midnight belong to
// the day they were written, even when drained after. That boundary loss
// is part of the summary cadence, not something to correct here.
type BufferService struct {
	rdb     *redis.Client
	appName string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewBufferService connects to Redis. If the URL is empty or the
// connection fails, buffering is disabled and all operations become
// logged no-ops; the bot keeps polling without summaries.
func NewBufferService(redisURL, appName string, logger zerolog.Logger) *BufferService {
	svc := &BufferService{appName: appName, logger: logger, now: time.Now}

	if redisURL == "" {
		logger.Warn().Msg("no redis URL configured, summary buffering disabled")
		return svc
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis URL, summary buffering disabled")
		return svc
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, summary buffering disabled")
		return svc
	}

	logger.Info().Msg("redis connected, summary buffering enabled")
	svc.rdb = rdb
	return svc
}

// NewBufferServiceWithClient wires an existing Redis client.
func NewBufferServiceWithClient(rdb *redis.Client, appName string, logger zerolog.Logger) *BufferService {
	return &BufferService{rdb: rdb, appName: appName, logger: logger, now: time.Now}
}

// Client returns the underlying Redis client for health checks. May be nil.
func (b *BufferService) Client() *redis.Client {
	return b.rdb
}

// Add appends a video to today's pending list and refreshes its expiry.
func (b *BufferService) Add(ctx context.Context, v model.Video) error {
	if b.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(bufferEntry{Video: v, StoredAt: b.now().UTC()})
	if err != nil {
		return err
	}

	key := b.videosKey()
	if err := b.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return err
	}
	return b.rdb.Expire(ctx, key, bufferTTL).Err()
}

// IncrementFiltered adds to today's filtered-shorts counter.
func (b *BufferService) IncrementFiltered(ctx context.Context, count int64) error {
	if b.rdb == nil || count <= 0 {
		return nil
	}

	key := b.filteredKey()
	if err := b.rdb.IncrBy(ctx, key, count).Err(); err != nil {
		return err
	}
	return b.rdb.Expire(ctx, key, bufferTTL).Err()
}

// Drain returns today's accumulated videos and filtered count without
// clearing them.
func (b *BufferService) Drain(ctx context.Context) ([]model.Video, int64, error) {
	if b.rdb == nil {
		return nil, 0, nil
	}

	raw, err := b.rdb.LRange(ctx, b.videosKey(), 0, -1).Result()
	if err != nil {
		return nil, 0, err
	}

	videos := make([]model.Video, 0, len(raw))
	for _, item := range raw {
		var entry bufferEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			b.logger.Warn().Err(err).Msg("skipping unparseable buffered video")
			continue
		}
		videos = append(videos, entry.Video)
	}

	filtered, err := b.rdb.Get(ctx, b.filteredKey()).Int64()
	if err != nil && err != redis.Nil {
		return videos, 0, err
	}

	return videos, filtered, nil
}

// Clear deletes today's video list and filtered counter, returning how
// many video entries were removed.
func (b *BufferService) Clear(ctx context.Context) (int64, error) {
	if b.rdb == nil {
		return 0, nil
	}

	count, err := b.rdb.LLen(ctx, b.videosKey()).Result()
	if err != nil {
		return 0, err
	}
	if err := b.rdb.Del(ctx, b.videosKey(), b.filteredKey()).Err(); err != nil {
		return 0, err
	}
	return count, nil
}

type bufferEntry struct {
	Video    model.Video `json:"video"`
	StoredAt time.Time   `json:"storedAt"`
}

func (b *BufferService) videosKey() string {
	return fmt.Sprintf("%s:videos:%s", b.appName, b.dayKey())
}

func (b *BufferService) filteredKey() string {
	return fmt.Sprintf("%s:filtered_count:%s", b.appName, b.dayKey())
}

func (b *BufferService) dayKey() string {
	return b.now().UTC().Format("2006-01-02")
}
