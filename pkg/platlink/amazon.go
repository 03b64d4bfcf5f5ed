package platlink

import (
	"fmt"
	"regexp"
)

var (
	amazonTrackURLRegex = regexp.MustCompile(`^(?:https?://)?music\.amazon\.(?:com|de|co\.uk|fr|it|es|co\.jp)/tracks/([A-Z0-9]{10})(?:[?#].*)?$`)
	amazonAlbumURLRegex = regexp.MustCompile(`^(?:https?://)?music\.amazon\.(?:com|de|co\.uk|fr|it|es|co\.jp)/albums/[A-Z0-9]{10}\?(?:.*&)?trackAsin=([A-Z0-9]{10})(?:&.*)?$`)
	amazonASINRegex     = regexp.MustCompile(`^B0[A-Z0-9]{8}$`)
)

func init() {
	register(Amazon, strategy{
		urlPatterns: []*regexp.Regexp{amazonTrackURLRegex, amazonAlbumURLRegex},
		idPattern:   amazonASINRegex,
		buildURL: func(asin string) string {
			return fmt.Sprintf("https://music.amazon.com/tracks/%s", asin)
		},
	})
}
