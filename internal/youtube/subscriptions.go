package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

const apiCallTimeout = 30 * time.Second

// authErrorMarkers identify credential failures by error text, the only
// signal the API surface gives us across transport layers.
var authErrorMarkers = []string{
	"invalid_grant",
	"token has been expired",
	"invalid_token",
	"unauthorized",
	"authentication required",
}

// Client calls the authenticated YouTube Data API. Credentials come from
// a stored OAuth token file with a refresh token; the token source
// refreshes access tokens transparently. When an auth-class error slips
// through anyway, the client rebuilds itself once from the token file and
// retries the call once, then gives up for the cycle.
type Client struct {
	tokenFile string
	logger    zerolog.Logger
	opts      []option.ClientOption // extra service options, set by tests

	mu  sync.Mutex
	svc *yt.Service
}

// storedToken is the authorized-user token file layout.
type storedToken struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry"`
}

func NewClient(ctx context.Context, tokenFile string, logger zerolog.Logger) (*Client, error) {
	c := &Client{tokenFile: tokenFile, logger: logger}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	raw, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("parse token file: %w", err)
	}
	if stored.RefreshToken == "" {
		return fmt.Errorf("token file %s has no refresh token", c.tokenFile)
	}

	cfg := oauth2.Config{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       stored.Scopes,
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(cfg.TokenSource(ctx, storedOAuthToken(stored))),
	}, c.opts...)

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("build youtube service: %w", err)
	}

	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	c.logger.Info().Msg("youtube api client initialized")
	return nil
}

// ListSubscriptions pages through the user's full subscription list.
func (c *Client) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	subs, err := c.listSubscriptions(ctx)
	if err != nil && isAuthError(err) {
		c.logger.Warn().Err(err).Msg("auth error detected, re-authenticating")
		if reconnectErr := c.connect(ctx); reconnectErr != nil {
			return nil, fmt.Errorf("re-authentication failed: %w", reconnectErr)
		}
		return c.listSubscriptions(ctx)
	}
	return subs, err
}

func (c *Client) listSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var subs []model.Subscription
	pageToken := ""

	for {
		callCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		resp, err := c.service().Subscriptions.List([]string{"snippet"}).
			Mine(true).
			MaxResults(50).
			PageToken(pageToken).
			Context(callCtx).
			Do()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("list subscriptions: %w", err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			channelID := item.Snippet.ResourceId.ChannelId
			if channelID == "" {
				continue
			}
			sub := model.Subscription{
				ChannelID: channelID,
				Title:     item.Snippet.Title,
			}
			if thumb := pickThumbnail(item.Snippet.Thumbnails); thumb != "" {
				sub.Thumbnail = &thumb
			}
			subs = append(subs, sub)
		}

		if resp.NextPageToken == "" {
			return subs, nil
		}
		pageToken = resp.NextPageToken
	}
}

// UserInfo returns the authenticated user's own channel details.
func (c *Client) UserInfo(ctx context.Context) (*model.UserChannelInfo, error) {
	info, err := c.userInfo(ctx)
	if err != nil && isAuthError(err) {
		c.logger.Warn().Err(err).Msg("auth error detected, re-authenticating")
		if reconnectErr := c.connect(ctx); reconnectErr != nil {
			return nil, fmt.Errorf("re-authentication failed: %w", reconnectErr)
		}
		return c.userInfo(ctx)
	}
	return info, err
}

func (c *Client) userInfo(ctx context.Context) (*model.UserChannelInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	defer cancel()

	resp, err := c.service().Channels.List([]string{"snippet", "statistics"}).
		Mine(true).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list own channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	ch := resp.Items[0]
	info := &model.UserChannelInfo{
		ChannelID:       ch.Id,
		SubscriberCount: "N/A",
		VideoCount:      "N/A",
	}
	if ch.Snippet != nil {
		info.Title = ch.Snippet.Title
	}
	if ch.Statistics != nil {
		info.SubscriberCount = fmt.Sprintf("%d", ch.Statistics.SubscriberCount)
		info.VideoCount = fmt.Sprintf("%d", ch.Statistics.VideoCount)
	}
	return info, nil
}

// storedOAuthToken converts the file layout into an oauth2 token. A
// missing or unparseable expiry is treated as already expired: a zero
// expiry would make the token source replay the stored access token
// forever instead of redeeming the refresh token.
func storedOAuthToken(stored storedToken) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  stored.Token,
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	if stored.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, stored.Expiry); err == nil {
			token.Expiry = expiry
		}
	}
	return token
}

func (c *Client) service() *yt.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc
}

func pickThumbnail(thumbs *yt.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*yt.Thumbnail{thumbs.Medium, thumbs.High, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, marker := range authErrorMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
