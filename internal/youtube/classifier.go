package youtube

import (
	"strings"

	"github.com/lamedts/youtube-new-video-bot/internal/model"
)

// IsFullFormVideo reports whether a video's canonical link is a regular
// watch URL. Shorts paths, youtu.be links, and mobile-domain links all
// classify as short-form; so does a missing link. The prefix match is
// exact and case-sensitive. This predicate is the sole gate between feed
// discovery and persistence.
func IsFullFormVideo(v model.Video) bool {
	return v.Link != "" && strings.HasPrefix(v.Link, model.WatchURLPrefix)
}
