// Package platlink provides pure, deterministic normalization of streaming
// platform track identifiers (URIs, URLs, bare IDs) into canonical links.
package platlink

// Platform identifies a streaming service in the canonical link set.
type Platform string

// Supported platforms.
const (
	Spotify      Platform = "spotify"
	AppleMusic   Platform = "apple_music"
	YouTube      Platform = "youtube"
	YouTubeMusic Platform = "youtube_music"
	Tidal        Platform = "tidal"
	Deezer       Platform = "deezer"
	SoundCloud   Platform = "soundcloud"
	Amazon       Platform = "amazon"
)

// Platforms lists every supported platform in canonical order.
var Platforms = []Platform{
	Spotify,
	AppleMusic,
	YouTube,
	YouTubeMusic,
	Tidal,
	Deezer,
	SoundCloud,
	Amazon,
}

// Normalized is the outcome of normalizing one platform identifier.
type Normalized struct {
	Platform Platform
	URL      string // Canonical URL. Empty when none can be built.
	RawID    string // Extracted platform-native ID, if recognized.
	Note     string // Provenance diagnostic. Never persisted.
}

// FromProviderKey maps an external provider's platform key onto our
// canonical platform name. Providers spell some platforms differently
// (e.g. "amazon_music").
func FromProviderKey(key string) (Platform, bool) {
	switch key {
	case "amazon_music":
		return Amazon, true
	case string(Spotify), string(AppleMusic), string(YouTube),
		string(YouTubeMusic), string(Tidal), string(Deezer),
		string(SoundCloud), string(Amazon):
		return Platform(key), true
	}
	return "", false
}
