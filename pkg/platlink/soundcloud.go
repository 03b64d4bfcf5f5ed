package platlink

import (
	"fmt"
	"regexp"
)

var (
	soundcloudURIRegex = regexp.MustCompile(`^soundcloud:tracks:(\d+)$`)
	// Permalink URLs (artist/track slugs) are already canonical; the API
	// track URL form carries the numeric ID.
	soundcloudURLRegex    = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?soundcloud\.com/([a-z0-9_-]+/[a-z0-9_-]+)(?:[?#].*)?$`)
	soundcloudAPIURLRegex = regexp.MustCompile(`^(?:https?://)?api\.soundcloud\.com/tracks/(\d+)(?:[?#].*)?$`)
	soundcloudIDRegex     = regexp.MustCompile(`^\d+$`)
)

func init() {
	// A bare numeric ID cannot reach a permalink URL (those need the artist
	// slug), but the API track URL dereferences publicly.
	register(SoundCloud, strategy{
		uriPattern:  soundcloudURIRegex,
		urlPatterns: []*regexp.Regexp{soundcloudAPIURLRegex, soundcloudURLRegex},
		idPattern:   soundcloudIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://api.soundcloud.com/tracks/%s", id)
		},
	})
}
