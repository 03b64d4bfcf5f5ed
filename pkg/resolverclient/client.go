// Package resolverclient wraps the resolver HTTP API for UI callers: it
// translates wire results into camelCase fields and never fails, so callers
// need no error handling.
package resolverclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Request mirrors the resolver endpoint's accepted fields in the camelCase
// convention (the endpoint accepts either spelling).
type Request struct {
	AudioURL      string `json:"audioUrl,omitempty"`
	ISRC          string `json:"isrc,omitempty"`
	FingerprintID string `json:"fingerprintId,omitempty"`
	SmartLinkID   string `json:"smartLinkId,omitempty"`
	ForceRefresh  bool   `json:"forceRefresh,omitempty"`

	HintTitle  string `json:"hintTitle,omitempty"`
	HintArtist string `json:"hintArtist,omitempty"`
	HintAlbum  string `json:"hintAlbum,omitempty"`

	SpotifyURL      string `json:"spotifyUrl,omitempty"`
	AppleMusicURL   string `json:"appleMusicUrl,omitempty"`
	YouTubeURL      string `json:"youtubeUrl,omitempty"`
	YouTubeMusicURL string `json:"youtubeMusicUrl,omitempty"`
	TidalURL        string `json:"tidalUrl,omitempty"`
	DeezerURL       string `json:"deezerUrl,omitempty"`
	SoundCloudURL   string `json:"soundcloudUrl,omitempty"`
	AmazonURL       string `json:"amazonUrl,omitempty"`
}

// Result is the caller-facing resolution outcome.
type Result struct {
	Success           bool              `json:"success"`
	ResolverPath      string            `json:"resolverPath"`
	Title             string            `json:"title,omitempty"`
	Artist            string            `json:"artist,omitempty"`
	Album             string            `json:"album,omitempty"`
	ISRC              string            `json:"isrc,omitempty"`
	DurationMS        int               `json:"durationMs,omitempty"`
	CoverURL          string            `json:"coverUrl,omitempty"`
	CanonicalPlatform string            `json:"canonicalPlatform,omitempty"`
	CanonicalURL      string            `json:"canonicalUrl,omitempty"`
	Links             map[string]string `json:"links"`
	PlatformIDs       map[string]string `json:"platformIds,omitempty"`
	Confidence        float64           `json:"confidence"`
	Sources           []string          `json:"resolverSources,omitempty"`
	NeedsManualReview bool              `json:"needsManualReview"`
	RecordID          string            `json:"recordId,omitempty"`
	Error             string            `json:"error,omitempty"`
}

// wireResult mirrors the server's snake_case response body.
type wireResult struct {
	Success      bool   `json:"success"`
	ResolverPath string `json:"resolver_path"`
	Track        *struct {
		Title      string `json:"title"`
		Artist     string `json:"artist"`
		Album      string `json:"album"`
		ISRC       string `json:"isrc"`
		DurationMS int    `json:"duration_ms"`
		CoverURL   string `json:"cover_url"`
	} `json:"track"`
	CanonicalPlatform string            `json:"canonical_platform"`
	CanonicalURL      string            `json:"canonical_url"`
	Links             map[string]string `json:"links"`
	RawIDs            struct {
		PlatformIDs map[string]string `json:"platform_ids"`
		ISRC        string            `json:"isrc"`
	} `json:"raw_ids"`
	Confidence        float64  `json:"confidence"`
	Sources           []string `json:"resolver_sources"`
	NeedsManualReview bool     `json:"needs_manual_review"`
	RecordID          string   `json:"record_id"`
	Error             string   `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a resolver client against a service base URL (e.g.
// "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Resolve posts a resolution request. It never fails: any transport or
// decoding problem yields the safe "could not determine links" value so
// callers can render a manual-entry call-to-action unconditionally.
func (c *Client) Resolve(ctx context.Context, req Request) Result {
	body, err := json.Marshal(req)
	if err != nil {
		return failedResult("failed to encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/resolve", bytes.NewReader(body))
	if err != nil {
		return failedResult("failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failedResult("resolver unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return failedResult("resolver returned an error status")
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return failedResult("failed to decode resolver response")
	}

	return fromWire(wire)
}

func fromWire(wire wireResult) Result {
	result := Result{
		Success:           wire.Success,
		ResolverPath:      wire.ResolverPath,
		CanonicalPlatform: wire.CanonicalPlatform,
		CanonicalURL:      wire.CanonicalURL,
		Links:             wire.Links,
		PlatformIDs:       wire.RawIDs.PlatformIDs,
		Confidence:        wire.Confidence,
		Sources:           wire.Sources,
		NeedsManualReview: wire.NeedsManualReview,
		RecordID:          wire.RecordID,
		Error:             wire.Error,
	}
	if result.Links == nil {
		result.Links = map[string]string{}
	}
	result.ISRC = wire.RawIDs.ISRC
	if wire.Track != nil {
		result.Title = wire.Track.Title
		result.Artist = wire.Track.Artist
		result.Album = wire.Track.Album
		if wire.Track.ISRC != "" {
			result.ISRC = wire.Track.ISRC
		}
		result.DurationMS = wire.Track.DurationMS
		result.CoverURL = wire.Track.CoverURL
	}
	return result
}

func failedResult(message string) Result {
	return Result{
		Success:           false,
		ResolverPath:      "none",
		Links:             map[string]string{},
		Confidence:        0,
		NeedsManualReview: true,
		Error:             message,
	}
}
