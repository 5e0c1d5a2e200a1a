package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

func newTestBuffer(t *testing.T) *BufferService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewBufferServiceWithClient(rdb, "youtube-bot", zerolog.Nop())
}

func testVideo(id string) model.Video {
	return model.Video{
		VideoID: id,
		Title:   "video " + id,
		Link:    model.WatchURL(id),
	}
}

func TestBufferAddAndDrain(t *testing.T) {
	buf := newTestBuffer(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v3"} {
		if err := buf.Add(ctx, testVideo(id)); err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}
	if err := buf.IncrementFiltered(ctx, 2); err != nil {
		t.Fatalf("IncrementFiltered() error: %v", err)
	}

	videos, filtered, err := buf.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(videos) != 3 {
		t.Errorf("Drain() returned %d videos, want 3", len(videos))
	}
	if filtered != 2 {
		t.Errorf("Drain() filtered = %d, want 2", filtered)
	}

	// Drain is a read, not a pop.
	videos, filtered, err = buf.Drain(ctx)
	if err != nil {
		t.Fatalf("second Drain() error: %v", err)
	}
	if len(videos) != 3 || filtered != 2 {
		t.Errorf("second Drain() = (%d videos, %d filtered), want (3, 2)", len(videos), filtered)
	}
}

func TestBufferDrainEmpty(t *testing.T) {
	buf := newTestBuffer(t)

	videos, filtered, err := buf.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(videos) != 0 || filtered != 0 {
		t.Errorf("Drain() on empty buffer = (%d, %d), want (0, 0)", len(videos), filtered)
	}
}

func TestBufferClear(t *testing.T) {
	buf := newTestBuffer(t)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2"} {
		if err := buf.Add(ctx, testVideo(id)); err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}
	if err := buf.IncrementFiltered(ctx, 5); err != nil {
		t.Fatalf("IncrementFiltered() error: %v", err)
	}

	cleared, err := buf.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if cleared != 2 {
		t.Errorf("Clear() = %d, want 2", cleared)
	}

	videos, filtered, err := buf.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() after Clear() error: %v", err)
	}
	if len(videos) != 0 || filtered != 0 {
		t.Errorf("buffer not empty after Clear(): (%d, %d)", len(videos), filtered)
	}
}

func TestBufferDayScoping(t *testing.T) {
	buf := newTestBuffer(t)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 29, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 0, 10, 0, 0, time.UTC)

	buf.now = func() time.Time { return day1 }
	if err := buf.Add(ctx, testVideo("v1")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := buf.IncrementFiltered(ctx, 1); err != nil {
		t.Fatalf("IncrementFiltered() error: %v", err)
	}

	// After midnight the writes land under a fresh key; yesterday's
	// entries are not visible to today's drain.
	buf.now = func() time.Time { return day2 }
	videos, filtered, err := buf.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(videos) != 0 || filtered != 0 {
		t.Errorf("Drain() on new day = (%d, %d), want (0, 0)", len(videos), filtered)
	}

	if err := buf.Add(ctx, testVideo("v2")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	videos, _, err = buf.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(videos) != 1 || videos[0].VideoID != "v2" {
		t.Errorf("Drain() on new day = %+v, want only v2", videos)
	}

	// Yesterday's buffer is still intact under its own key.
	buf.now = func() time.Time { return day1 }
	videos, filtered, err = buf.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if len(videos) != 1 || videos[0].VideoID != "v1" || filtered != 1 {
		t.Errorf("yesterday's buffer = (%+v, %d), want (v1, 1)", videos, filtered)
	}
}

func TestBufferDisabledIsNoOp(t *testing.T) {
	buf := NewBufferService("", "youtube-bot", zerolog.Nop())
	ctx := context.Background()

	if err := buf.Add(ctx, testVideo("v1")); err != nil {
		t.Errorf("Add() on disabled buffer error: %v", err)
	}
	if err := buf.IncrementFiltered(ctx, 3); err != nil {
		t.Errorf("IncrementFiltered() on disabled buffer error: %v", err)
	}
	videos, filtered, err := buf.Drain(ctx)
	if err != nil || len(videos) != 0 || filtered != 0 {
		t.Errorf("Drain() on disabled buffer = (%v, %d, %v)", videos, filtered, err)
	}
	if cleared, err := buf.Clear(ctx); err != nil || cleared != 0 {
		t.Errorf("Clear() on disabled buffer = (%d, %v)", cleared, err)
	}
}
