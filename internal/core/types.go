package core

import (
	"context"
	"strings"
	"time"

	"fanlink/pkg/platlink"
)

// ResolverPath identifies which resolution tier produced a result.
type ResolverPath string

const (
	// PathCache means a persisted resolution was reused without network calls.
	PathCache ResolverPath = "cache"
	// PathACRStrong means the fingerprint match scored at or above the strong threshold.
	PathACRStrong ResolverPath = "acrcloud_strong"
	// PathACROK means the fingerprint match scored between the lower bound and the strong threshold.
	PathACROK ResolverPath = "acrcloud_ok"
	// PathFallbackOnly means resolution used only direct platform inputs.
	PathFallbackOnly ResolverPath = "fallback_only"
	// PathACRFailedFallback means a fingerprint attempt failed and direct inputs were used instead.
	PathACRFailedFallback ResolverPath = "acrcloud_failed_fallback"
	// PathNone means no input produced any link.
	PathNone ResolverPath = "none"
)

// ResolverPaths lists every defined resolver path.
var ResolverPaths = []ResolverPath{
	PathCache,
	PathACRStrong,
	PathACROK,
	PathFallbackOnly,
	PathACRFailedFallback,
	PathNone,
}

// ResolutionRequest is the union of identifying inputs a caller may supply.
// At least one identifying field must be non-empty.
type ResolutionRequest struct {
	AudioURL      string `json:"audio_url,omitempty"`
	ISRC          string `json:"isrc,omitempty"`
	FingerprintID string `json:"fingerprint_id,omitempty"`
	SmartLinkID   string `json:"smart_link_id,omitempty"`
	ForceRefresh  bool   `json:"force_refresh,omitempty"`

	HintTitle  string `json:"hint_title,omitempty"`
	HintArtist string `json:"hint_artist,omitempty"`
	HintAlbum  string `json:"hint_album,omitempty"`

	SpotifyURL      string `json:"spotify_url,omitempty"`
	AppleMusicURL   string `json:"apple_music_url,omitempty"`
	YouTubeURL      string `json:"youtube_url,omitempty"`
	YouTubeMusicURL string `json:"youtube_music_url,omitempty"`
	TidalURL        string `json:"tidal_url,omitempty"`
	DeezerURL       string `json:"deezer_url,omitempty"`
	SoundCloudURL   string `json:"soundcloud_url,omitempty"`
	AmazonURL       string `json:"amazon_url,omitempty"`
}

// PlatformInputs returns the direct per-platform inputs, skipping empties.
func (r *ResolutionRequest) PlatformInputs() map[platlink.Platform]string {
	all := map[platlink.Platform]string{
		platlink.Spotify:      r.SpotifyURL,
		platlink.AppleMusic:   r.AppleMusicURL,
		platlink.YouTube:      r.YouTubeURL,
		platlink.YouTubeMusic: r.YouTubeMusicURL,
		platlink.Tidal:        r.TidalURL,
		platlink.Deezer:       r.DeezerURL,
		platlink.SoundCloud:   r.SoundCloudURL,
		platlink.Amazon:       r.AmazonURL,
	}
	out := make(map[platlink.Platform]string, len(all))
	for platform, value := range all {
		if strings.TrimSpace(value) != "" {
			out[platform] = value
		}
	}
	return out
}

// HasIdentifyingInput reports whether the request carries at least one of:
// audio reference, ISRC, fingerprint ID, a platform URL, or a title+artist
// hint pair.
func (r *ResolutionRequest) HasIdentifyingInput() bool {
	if strings.TrimSpace(r.AudioURL) != "" ||
		strings.TrimSpace(r.ISRC) != "" ||
		strings.TrimSpace(r.FingerprintID) != "" {
		return true
	}
	if len(r.PlatformInputs()) > 0 {
		return true
	}
	return strings.TrimSpace(r.HintTitle) != "" && strings.TrimSpace(r.HintArtist) != ""
}

// IdentityKey derives the strongest cache/persistence key available on the
// request: fingerprint ID beats ISRC beats smart-link identity. Empty when
// the request carries none of them.
func (r *ResolutionRequest) IdentityKey() string {
	if id := strings.TrimSpace(r.FingerprintID); id != "" {
		return "fp:" + id
	}
	if isrc := strings.TrimSpace(r.ISRC); isrc != "" {
		return "isrc:" + strings.ToUpper(isrc)
	}
	if id := strings.TrimSpace(r.SmartLinkID); id != "" {
		return "link:" + id
	}
	return ""
}

// PlatformLinkSet maps each platform to its canonical URL. Absent platforms
// are simply missing keys.
type PlatformLinkSet map[platlink.Platform]string

// RawIdentifierSet carries the raw per-platform IDs extracted during
// normalization plus ISRC/UPC copied through unvalidated.
type RawIdentifierSet struct {
	PlatformIDs map[platlink.Platform]string `json:"platform_ids,omitempty"`
	ISRC        string                       `json:"isrc,omitempty"`
	UPC         string                       `json:"upc,omitempty"`
}

// TrackMetadata is the track-level metadata attached to a resolution when known.
type TrackMetadata struct {
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	ISRC       string `json:"isrc,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
	CoverURL   string `json:"cover_url,omitempty"`
}

// FingerprintMatch records which fingerprint result backed a resolution.
type FingerprintMatch struct {
	ID    string  `json:"id,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// ResolutionResult is the pipeline's outcome for one request.
type ResolutionResult struct {
	Success           bool              `json:"success"`
	ResolverPath      ResolverPath      `json:"resolver_path"`
	Track             *TrackMetadata    `json:"track,omitempty"`
	CanonicalPlatform platlink.Platform `json:"canonical_platform,omitempty"`
	CanonicalURL      string            `json:"canonical_url,omitempty"`
	Links             PlatformLinkSet   `json:"links"`
	RawIDs            RawIdentifierSet  `json:"raw_ids"`
	Fingerprint       *FingerprintMatch `json:"fingerprint,omitempty"`
	Confidence        float64           `json:"confidence"`
	Sources           []string          `json:"resolver_sources"`
	NeedsManualReview bool              `json:"needs_manual_review"`
	RecordID          string            `json:"record_id,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// EmptyResult returns the terminal "could not determine links" result.
func EmptyResult() *ResolutionResult {
	return &ResolutionResult{
		Success:           false,
		ResolverPath:      PathNone,
		Links:             PlatformLinkSet{},
		Confidence:        0,
		NeedsManualReview: true,
	}
}

// Record is the persisted resolution record. It is overwritten, never
// deleted, by this subsystem.
type Record struct {
	IdentityKey       string
	SmartLinkID       string
	ISRC              string
	FingerprintID     string
	Track             TrackMetadata
	CanonicalPlatform platlink.Platform
	CanonicalURL      string
	Links             PlatformLinkSet
	RawIDs            RawIdentifierSet
	Confidence        float64
	ResolverPath      ResolverPath
	NeedsManualReview bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// QueryMode is how a fingerprint query was made.
type QueryMode string

const (
	ModeISRC      QueryMode = "isrc"
	ModeSourceURL QueryMode = "source_url"
	ModeText      QueryMode = "query"
	ModeNone      QueryMode = "none"
)

// FingerprintQuery is one outbound identification request. Exactly one mode
// is used per call, selected by priority: ISRC > source URL > free text.
type FingerprintQuery struct {
	ISRC      string
	SourceURL string
	Text      string
}

// ExternalResult is one candidate recording in a fingerprint response.
type ExternalResult struct {
	ID         string                          `json:"id"`
	Score      float64                         `json:"score"`
	Title      string                          `json:"title"`
	Artists    []string                        `json:"artists"`
	Album      string                          `json:"album"`
	ISRC       string                          `json:"isrc"`
	UPC        string                          `json:"upc"`
	DurationMS int                             `json:"duration_ms"`
	CoverURL   string                          `json:"cover_url"`
	Platforms  map[string]platlink.PlatformRef `json:"platforms"`
}

// ExternalMetadata is the parsed fingerprint response body.
type ExternalMetadata struct {
	Results []ExternalResult `json:"results"`
}

// FingerprintResult is the structured, non-throwing outcome of one
// fingerprint call. A successful call with no metadata in the body is a
// valid outcome, not a failure.
type FingerprintResult struct {
	Mode                QueryMode
	StatusCode          int // 0 on transport failure.
	HadExternalMetadata bool
	Err                 string
	Metadata            *ExternalMetadata
}

// Failed reports whether the call itself failed (as opposed to succeeding
// with no match).
func (r FingerprintResult) Failed() bool {
	return r.Err != ""
}

// FingerprintClient identifies a recording via an external audio
// identification service.
type FingerprintClient interface {
	Identify(ctx context.Context, query FingerprintQuery) FingerprintResult
}

// ResolutionStore persists and re-reads resolution records.
type ResolutionStore interface {
	Get(ctx context.Context, identityKey string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
}

// MetadataEnricher backfills track metadata from a platform-native ID.
type MetadataEnricher interface {
	TrackByID(ctx context.Context, id string) (*TrackMetadata, error)
}
