// Package acrcloud adapts a third-party audio identification service into a
// non-throwing fingerprint client.
package acrcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fanlink/internal/core"
)

const (
	// MaxPlatformsPerCall is the provider's bound on how many platforms one
	// request may ask for.
	MaxPlatformsPerCall = 5
	// maxResponseSize limits how much of the response body we read.
	maxResponseSize = 1 << 20
	// defaultTimeout is used when the config leaves the timeout unset.
	defaultTimeout = 10 * time.Second
	// defaultRatePerSec is used when the config leaves the rate unset.
	defaultRatePerSec = 2
)

// defaultPlatforms is the ordered subset requested when the config does not
// override it.
var defaultPlatforms = []string{"spotify", "apple_music", "youtube", "amazon_music", "tidal"}

// Client is an outbound fingerprint service adapter. All failure modes are
// reported as structured results, never as errors or panics.
type Client struct {
	baseURL   string
	token     string
	platforms []string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient creates a fingerprint client from injected configuration. An
// empty base URL or token is tolerated here and surfaced as a structured
// failure on the first Identify call.
func NewClient(cfg *core.ACRCloudConfig, logger *zap.Logger) *Client {
	platforms := cfg.Platforms
	if len(platforms) == 0 {
		platforms = defaultPlatforms
	}
	if len(platforms) > MaxPlatformsPerCall {
		platforms = platforms[:MaxPlatformsPerCall]
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = defaultRatePerSec
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		platforms: platforms,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(perSec), 1),
		logger:    logger,
	}
}

// Identify performs exactly one identification query. Query mode is
// selected by strict priority: ISRC > source URL > free text.
func (c *Client) Identify(ctx context.Context, query core.FingerprintQuery) core.FingerprintResult {
	mode, value := selectMode(query)
	res := core.FingerprintResult{Mode: mode}

	if mode == core.ModeNone {
		res.Err = "no queryable signal in request"
		return res
	}

	if c.baseURL == "" || c.token == "" {
		res.Err = "fingerprint service not configured (base URL or token missing)"
		c.logger.Warn("Fingerprint call skipped, service not configured",
			zap.String("mode", string(mode)))
		return res
	}

	_ = c.limiter.Wait(ctx)

	params := url.Values{}
	params.Set(string(mode), value)
	params.Set("format", "json")
	params.Set("platforms", strings.Join(c.platforms, ","))
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		res.Err = fmt.Sprintf("failed to build request: %v", err)
		return res
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = fmt.Sprintf("transport error: %v", err)
		c.logger.Warn("Fingerprint call failed",
			zap.String("mode", string(mode)),
			zap.Error(err))
		return res
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		res.Err = fmt.Sprintf("fingerprint service returned status %d", resp.StatusCode)
		c.logger.Warn("Fingerprint call returned non-2xx",
			zap.String("mode", string(mode)),
			zap.Int("status", resp.StatusCode))
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		res.Err = fmt.Sprintf("failed to read response body: %v", err)
		return res
	}

	var meta core.ExternalMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		res.Err = "malformed response body"
		c.logger.Warn("Fingerprint response body malformed",
			zap.String("mode", string(mode)))
		return res
	}

	// A 2xx with no results is a valid "no strong match" outcome.
	if len(meta.Results) > 0 {
		res.HadExternalMetadata = true
		res.Metadata = &meta
	}

	c.logger.Debug("Fingerprint call completed",
		zap.String("mode", string(mode)),
		zap.Int("status", resp.StatusCode),
		zap.Bool("had_metadata", res.HadExternalMetadata))

	return res
}

// selectMode picks the single query mode for a call.
func selectMode(q core.FingerprintQuery) (core.QueryMode, string) {
	if isrc := strings.TrimSpace(q.ISRC); isrc != "" {
		return core.ModeISRC, strings.ToUpper(isrc)
	}
	if src := strings.TrimSpace(q.SourceURL); src != "" {
		return core.ModeSourceURL, src
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		return core.ModeText, text
	}
	return core.ModeNone, ""
}

// FirstISRC extracts the first result's ISRC from a fingerprint response.
// Returns "" on any missing path.
func FirstISRC(meta *core.ExternalMetadata) string {
	if meta == nil || len(meta.Results) == 0 {
		return ""
	}
	return strings.TrimSpace(meta.Results[0].ISRC)
}

// FlatTrack flattens the first result into track metadata. Every field
// defaults to its zero value on missing paths; nil when there is no result
// at all.
func FlatTrack(meta *core.ExternalMetadata) *core.TrackMetadata {
	if meta == nil || len(meta.Results) == 0 {
		return nil
	}
	first := meta.Results[0]
	return &core.TrackMetadata{
		Title:      strings.TrimSpace(first.Title),
		Artist:     strings.TrimSpace(strings.Join(first.Artists, ", ")),
		Album:      strings.TrimSpace(first.Album),
		ISRC:       strings.TrimSpace(first.ISRC),
		DurationMS: first.DurationMS,
		CoverURL:   strings.TrimSpace(first.CoverURL),
	}
}
