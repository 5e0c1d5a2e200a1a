package model

import "time"

// Channel represents a subscribed YouTube channel and its polling cursor.
// LastVideoID is the watermark separating already-processed uploads from
// not-yet-seen ones; it only moves forward, and only when a full-form
// video is accepted.
type Channel struct {
	ChannelID    string     `json:"channelId"`
	Title        string     `json:"title"`
	Thumbnail    *string    `json:"thumbnail,omitempty"`
	LastVideoID  string     `json:"lastVideoId"`
	Notify       bool       `json:"notify"`
	LastUploadAt *time.Time `json:"lastUploadAt,omitempty"`
	SubscribedAt time.Time  `json:"subscribedAt"`
	LastUpdated  time.Time  `json:"lastUpdated"`
}

// Link returns the public channel URL.
func (c Channel) Link() string {
	return "https://www.youtube.com/channel/" + c.ChannelID
}

// FeedURL returns the channel's public Atom feed address.
func (c Channel) FeedURL() string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + c.ChannelID
}

// Subscription is one entry from the authenticated subscriptions listing.
type Subscription struct {
	ChannelID string
	Title     string
	Thumbnail *string
}

// UserChannelInfo describes the authenticated user's own channel.
type UserChannelInfo struct {
	ChannelID       string
	Title           string
	SubscriberCount string
	VideoCount      string
}
