package platlink

import "regexp"

// strategy bundles everything needed to recognize and canonicalize one
// platform's identifiers. Adding a platform is a single register call in
// that platform's file.
type strategy struct {
	// uriPattern matches a scheme-prefixed URI form (e.g. spotify:track:<id>).
	// Capture group 1 is the ID. May be nil.
	uriPattern *regexp.Regexp

	// urlPatterns match canonical URL forms. Capture group 1 is the ID.
	// Tried in order, first match wins.
	urlPatterns []*regexp.Regexp

	// idPattern matches the platform's bare ID shape. May be nil when the
	// platform has no recognizable standalone ID.
	idPattern *regexp.Regexp

	// buildURL synthesizes the canonical URL for a bare ID. Nil when a bare
	// ID alone cannot yield a working URL (Apple Music).
	buildURL func(id string) string

	// bareIDNote explains why buildURL is nil, shown when a bare ID is
	// recognized but no URL can be built.
	bareIDNote string
}

var registry = map[Platform]strategy{}

func register(p Platform, s strategy) {
	registry[p] = s
}
