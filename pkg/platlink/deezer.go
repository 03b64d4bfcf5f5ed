package platlink

import (
	"fmt"
	"regexp"
)

var (
	deezerURLRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]{2}/)?track/(\d+)(?:[?#].*)?$`)
	deezerIDRegex  = regexp.MustCompile(`^\d+$`)
)

func init() {
	register(Deezer, strategy{
		urlPatterns: []*regexp.Regexp{deezerURLRegex},
		idPattern:   deezerIDRegex,
		buildURL: func(id string) string {
			return fmt.Sprintf("https://www.deezer.com/track/%s", id)
		},
	})
}
