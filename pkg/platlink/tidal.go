package platlink

import (
	"fmt"
	"regexp"
)

var (
	tidalURIRegex = regexp.MustCompile(`^tidal://track/(\d+)$`)
	tidalURLRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.|listen\.)?tidal\.com/(?:browse/)?track/(\d+)(?:[/?#].*)?$`)
	tidalIDRegex  = regexp.MustCompile(`^\d+$`)
)

func init() {
	register(Tidal, strategy{
		uriPattern:  tidalURIRegex,
		urlPatterns: []*regexp.Regexp{tidalURLRegex},
		idPattern:   tidalIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://tidal.com/browse/track/%s", id)
		},
	})
}
