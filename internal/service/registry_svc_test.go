package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
	"github.com/lamedts/youtube-new-video-bot/internal/repository"
)

// fakeChannelStore is an in-memory ChannelStore that counts calls so tests
// can assert whether the cache absorbed a read.
type fakeChannelStore struct {
	channels map[string]model.Channel
	syncedAt *time.Time

	listCalls   int
	getCalls    int
	existsCalls int
}

func newFakeChannelStore(channels ...model.Channel) *fakeChannelStore {
	s := &fakeChannelStore{channels: make(map[string]model.Channel)}
	for _, ch := range channels {
		s.channels[ch.ChannelID] = ch
	}
	return s
}

func (s *fakeChannelStore) List(ctx context.Context) ([]model.Channel, error) {
	s.listCalls++
	out := make([]model.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (s *fakeChannelStore) Get(ctx context.Context, channelID string) (*model.Channel, error) {
	s.getCalls++
	ch, ok := s.channels[channelID]
	if !ok {
		return nil, repository.ErrChannelNotFound
	}
	return &ch, nil
}

func (s *fakeChannelStore) Exists(ctx context.Context, channelID string) (bool, error) {
	s.existsCalls++
	_, ok := s.channels[channelID]
	return ok, nil
}

func (s *fakeChannelStore) Upsert(ctx context.Context, ch model.Channel) error {
	s.channels[ch.ChannelID] = ch
	return nil
}

func (s *fakeChannelStore) AdvanceCursor(ctx context.Context, channelID, videoID string, uploadAt *time.Time) error {
	ch, ok := s.channels[channelID]
	if !ok {
		return repository.ErrChannelNotFound
	}
	ch.LastVideoID = videoID
	if uploadAt != nil {
		ch.LastUploadAt = uploadAt
	}
	s.channels[channelID] = ch
	return nil
}

func (s *fakeChannelStore) SetNotify(ctx context.Context, channelID string, notify bool) error {
	ch, ok := s.channels[channelID]
	if !ok {
		return repository.ErrChannelNotFound
	}
	ch.Notify = notify
	s.channels[channelID] = ch
	return nil
}

func (s *fakeChannelStore) TouchSyncTime(ctx context.Context) error {
	now := time.Now()
	s.syncedAt = &now
	return nil
}

func (s *fakeChannelStore) LastSyncTime(ctx context.Context) (*time.Time, error) {
	return s.syncedAt, nil
}

func newTestRegistry(store repository.ChannelStore) *RegistryService {
	return NewRegistryService(store, zerolog.Nop())
}

func TestAllServesFromCache(t *testing.T) {
	store := newFakeChannelStore(
		model.Channel{ChannelID: "UC1", Title: "one", Notify: true},
		model.Channel{ChannelID: "UC2", Title: "two", Notify: false},
	)
	svc := newTestRegistry(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.All(ctx, false); err != nil {
			t.Fatalf("All() error: %v", err)
		}
	}

	if store.listCalls != 1 {
		t.Errorf("store.List called %d times, want 1", store.listCalls)
	}
}

func TestAllNotifyOnly(t *testing.T) {
	store := newFakeChannelStore(
		model.Channel{ChannelID: "UC1", Notify: true},
		model.Channel{ChannelID: "UC2", Notify: false},
		model.Channel{ChannelID: "UC3", Notify: true},
	)
	svc := newTestRegistry(store)

	channels, err := svc.All(context.Background(), true)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("All(notifyOnly) returned %d channels, want 2", len(channels))
	}
	for _, ch := range channels {
		if !ch.Notify {
			t.Errorf("channel %s has notify=false in notify-only listing", ch.ChannelID)
		}
	}
}

func TestCacheExpires(t *testing.T) {
	store := newFakeChannelStore(model.Channel{ChannelID: "UC1"})
	svc := newTestRegistry(store)

	current := time.Now()
	svc.now = func() time.Time { return current }
	ctx := context.Background()

	if _, err := svc.All(ctx, false); err != nil {
		t.Fatalf("All() error: %v", err)
	}
	current = current.Add(channelCacheTTL - time.Minute)
	if _, err := svc.All(ctx, false); err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("store.List called %d times inside TTL, want 1", store.listCalls)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.All(ctx, false); err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("store.List called %d times after TTL, want 2", store.listCalls)
	}
}

func TestMutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(svc *RegistryService) error
	}{
		{"Upsert", func(svc *RegistryService) error {
			return svc.Upsert(ctx, model.Channel{ChannelID: "UC2"})
		}},
		{"AdvanceCursor", func(svc *RegistryService) error {
			return svc.AdvanceCursor(ctx, "UC1", "vid1", nil)
		}},
		{"SetNotify", func(svc *RegistryService) error {
			return svc.SetNotify(ctx, "UC1", false)
		}},
		{"TouchSyncTime", func(svc *RegistryService) error {
			return svc.TouchSyncTime(ctx)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeChannelStore(model.Channel{ChannelID: "UC1", Notify: true})
			svc := newTestRegistry(store)

			if _, err := svc.All(ctx, false); err != nil {
				t.Fatalf("warm-up All() error: %v", err)
			}
			if err := tt.mutate(svc); err != nil {
				t.Fatalf("mutation error: %v", err)
			}
			if _, err := svc.All(ctx, false); err != nil {
				t.Fatalf("All() after mutation error: %v", err)
			}
			if store.listCalls != 2 {
				t.Errorf("store.List called %d times, want 2 (cache invalidated)", store.listCalls)
			}
		})
	}
}

func TestGetUsesWarmCache(t *testing.T) {
	store := newFakeChannelStore(model.Channel{ChannelID: "UC1", Title: "one"})
	svc := newTestRegistry(store)
	ctx := context.Background()

	// Cold cache goes to the store.
	if _, err := svc.Get(ctx, "UC1"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if store.getCalls != 1 {
		t.Fatalf("store.Get called %d times, want 1", store.getCalls)
	}

	// Warm the cache, then Get and Exists stay in-process.
	if _, err := svc.All(ctx, false); err != nil {
		t.Fatalf("All() error: %v", err)
	}
	ch, err := svc.Get(ctx, "UC1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ch.Title != "one" {
		t.Errorf("Get() title = %q, want %q", ch.Title, "one")
	}
	if ok, err := svc.Exists(ctx, "UC1"); err != nil || !ok {
		t.Errorf("Exists() = (%v, %v), want (true, nil)", ok, err)
	}
	if store.getCalls != 1 || store.existsCalls != 0 {
		t.Errorf("store hit with warm cache: getCalls=%d existsCalls=%d", store.getCalls, store.existsCalls)
	}

	// Unknown channel against a warm cache is authoritative.
	if _, err := svc.Get(ctx, "UCmissing"); err != repository.ErrChannelNotFound {
		t.Errorf("Get(missing) error = %v, want ErrChannelNotFound", err)
	}
}

func TestRegistryOverUnavailableStore(t *testing.T) {
	svc := newTestRegistry(&repository.Unavailable{Logger: zerolog.Nop()})
	ctx := context.Background()

	channels, err := svc.All(ctx, true)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("All() = %d channels, want 0", len(channels))
	}

	if err := svc.Upsert(ctx, model.Channel{ChannelID: "UC1"}); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Errorf("Upsert() error = %v, want ErrStoreUnavailable", err)
	}
	if err := svc.AdvanceCursor(ctx, "UC1", "v1", nil); !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Errorf("AdvanceCursor() error = %v, want ErrStoreUnavailable", err)
	}
}
