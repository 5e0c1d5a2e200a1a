package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/metrics"
	"github.com/lamedts/youtube-new-video-bot/internal/model"
	"github.com/lamedts/youtube-new-video-bot/internal/repository"
)

// channelCacheTTL bounds read volume against the metered durable store.
// Reads inside the window never hit Postgres; every mutation invalidates,
// so reads following a write in the same process are always consistent.
const channelCacheTTL = 23 * time.Hour

// RegistryService is the single owner of channel records. It wraps the
// durable ChannelStore with a read-through in-process cache shared by the
// sync and poll loops; the mutex is the only lock those loops contend on.
type RegistryService struct {
	store  repository.ChannelStore
	logger zerolog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	cached   []model.Channel
	cachedAt time.Time
}

func NewRegistryService(store repository.ChannelStore, logger zerolog.Logger) *RegistryService {
	return &RegistryService{
		store:  store,
		logger: logger,
		ttl:    channelCacheTTL,
		now:    time.Now,
	}
}

// All returns every known channel, optionally restricted to notify=true.
func (s *RegistryService) All(ctx context.Context, notifyOnly bool) ([]model.Channel, error) {
	channels, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if !notifyOnly {
		return channels, nil
	}

	filtered := make([]model.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Notify {
			filtered = append(filtered, ch)
		}
	}
	return filtered, nil
}

// Get returns a single channel, served from cache when the cache is warm.
// Returns repository.ErrChannelNotFound when the channel is unknown.
func (s *RegistryService) Get(ctx context.Context, channelID string) (*model.Channel, error) {
	if cached, ok := s.cachedSnapshot(); ok {
		for i := range cached {
			if cached[i].ChannelID == channelID {
				ch := cached[i]
				return &ch, nil
			}
		}
		return nil, repository.ErrChannelNotFound
	}
	return s.store.Get(ctx, channelID)
}

func (s *RegistryService) Exists(ctx context.Context, channelID string) (bool, error) {
	if cached, ok := s.cachedSnapshot(); ok {
		for i := range cached {
			if cached[i].ChannelID == channelID {
				return true, nil
			}
		}
		return false, nil
	}
	return s.store.Exists(ctx, channelID)
}

// Upsert merge-writes a channel record and invalidates the cache.
func (s *RegistryService) Upsert(ctx context.Context, ch model.Channel) error {
	if err := s.store.Upsert(ctx, ch); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// AdvanceCursor moves a channel's last seen video id forward.
func (s *RegistryService) AdvanceCursor(ctx context.Context, channelID, videoID string, uploadAt *time.Time) error {
	if err := s.store.AdvanceCursor(ctx, channelID, videoID, uploadAt); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *RegistryService) SetNotify(ctx context.Context, channelID string, notify bool) error {
	if err := s.store.SetNotify(ctx, channelID, notify); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info().Str("channel_id", channelID).Bool("notify", notify).
		Msg("notification preference updated")
	return nil
}

func (s *RegistryService) TouchSyncTime(ctx context.Context) error {
	if err := s.store.TouchSyncTime(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *RegistryService) LastSyncTime(ctx context.Context) (*time.Time, error) {
	return s.store.LastSyncTime(ctx)
}

func (s *RegistryService) list(ctx context.Context) ([]model.Channel, error) {
	if cached, ok := s.cachedSnapshot(); ok {
		metrics.CacheHits.Inc()
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	channels, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = channels
	s.cachedAt = s.now()
	s.mu.Unlock()

	s.logger.Debug().Int("channels", len(channels)).Dur("ttl", s.ttl).
		Msg("channel cache refreshed")
	return channels, nil
}

// cachedSnapshot returns a copy of the cached channel list while the TTL
// window is still open.
func (s *RegistryService) cachedSnapshot() ([]model.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil || s.now().Sub(s.cachedAt) >= s.ttl {
		return nil, false
	}
	snapshot := make([]model.Channel, len(s.cached))
	copy(snapshot, s.cached)
	return snapshot, true
}

func (s *RegistryService) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}
