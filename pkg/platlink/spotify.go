package platlink

import (
	"fmt"
	"regexp"
)

// SpotifyIDLength is the expected length of a Spotify track ID.
const SpotifyIDLength = 22

var (
	spotifyURIRegex = regexp.MustCompile(`^spotify:track:([a-zA-Z0-9]{22})$`)
	spotifyURLRegex = regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/(?:intl-[a-z]{2}/)?track/([a-zA-Z0-9]{22})(?:[?#].*)?$`)
	spotifyIDRegex  = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)
)

func init() {
	register(Spotify, strategy{
		uriPattern:  spotifyURIRegex,
		urlPatterns: []*regexp.Regexp{spotifyURLRegex},
		idPattern:   spotifyIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://open.spotify.com/track/%s", id)
		},
	})
}
