package model

import "time"

// WatchURLPrefix is the canonical full-form watch URL prefix. Links that do
// not start with it (shorts, youtu.be, mobile domain) are short-form.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// Video is a single feed entry normalized into a storable record. Immutable
// once constructed. VideoID is unique within a channel's feed history, not
// globally.
type Video struct {
	VideoID      string     `json:"videoId"`
	ChannelID    string     `json:"channelId"`
	ChannelTitle string     `json:"channelTitle"`
	Title        string     `json:"title"`
	Link         string     `json:"link"`
	Thumbnail    *string    `json:"thumbnail,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	ViewCount    *int64     `json:"viewCount,omitempty"`
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return WatchURLPrefix + videoID
}
