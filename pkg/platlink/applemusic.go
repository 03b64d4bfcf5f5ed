package platlink

import "regexp"

var (
	// Song links carry the track ID as the last path segment; album links
	// carry it in the ?i= query parameter.
	appleMusicSongURLRegex  = regexp.MustCompile(`^(?:https?://)?music\.apple\.com/[a-z]{2}/song/[^/]+/(\d+)(?:[?#].*)?$`)
	appleMusicAlbumURLRegex = regexp.MustCompile(`^(?:https?://)?music\.apple\.com/[a-z]{2}/album/[^/]+/\d+\?(?:.*&)?i=(\d+)(?:&.*)?$`)
	appleMusicIDRegex       = regexp.MustCompile(`^\d+$`)
)

func init() {
	// A bare numeric ID cannot yield a working Apple Music URL: the
	// canonical form needs a storefront code and album slug that are not
	// available at this layer. The ID is preserved for later enrichment.
	register(AppleMusic, strategy{
		urlPatterns: []*regexp.Regexp{appleMusicSongURLRegex, appleMusicAlbumURLRegex},
		idPattern:   appleMusicIDRegex,
		buildURL:    nil,
		bareIDNote:  "apple music URLs require a storefront and album context; bare ID preserved without URL",
	})
}
