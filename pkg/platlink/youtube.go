package platlink

import (
	"fmt"
	"regexp"
)

// YouTubeIDLength is the expected length of a YouTube video ID.
const YouTubeIDLength = 11

var (
	youtubeURLRegex      = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})(?:&.*)?$`)
	youtubeShortURLRegex = regexp.MustCompile(`^(?:https?://)?youtu\.be/([a-zA-Z0-9_-]{11})(?:[?#].*)?$`)
	youtubeMusicURLRegex = regexp.MustCompile(`^(?:https?://)?music\.youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})(?:&.*)?$`)
	youtubeIDRegex       = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

func init() {
	register(YouTube, strategy{
		urlPatterns: []*regexp.Regexp{youtubeURLRegex, youtubeShortURLRegex},
		idPattern:   youtubeIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
		},
	})

	// YouTube Music shares YouTube's video ID scheme; only the host differs.
	register(YouTubeMusic, strategy{
		urlPatterns: []*regexp.Regexp{youtubeMusicURLRegex},
		idPattern:   youtubeIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://music.youtube.com/watch?v=%s", id)
		},
	})
}
