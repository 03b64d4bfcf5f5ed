// Package resolver orchestrates multi-tier track resolution: cache,
// fingerprint identification, and direct-input fallback, in strict priority
// order with first success short-circuiting.
package resolver

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fanlink/internal/core"
	"fanlink/pkg/fuzzy"
	"fanlink/pkg/platlink"
)

// Metrics is the subset of instrumentation the pipeline records.
type Metrics interface {
	RecordResolution(path, status string)
	RecordFingerprintCall(mode, status string)
	RecordCacheHit()
	RecordError(component, errorType string)
}

// Pipeline resolves heterogeneous track identifiers into a canonical
// per-platform link set. Each call is independent; no shared mutable state
// exists between concurrent resolutions (same-identity races are
// last-write-wins on the persisted record).
type Pipeline struct {
	cfg         *core.ResolverConfig
	fingerprint core.FingerprintClient
	store       core.ResolutionStore
	enricher    core.MetadataEnricher
	normalizer  *fuzzy.Normalizer
	metrics     Metrics
	logger      *zap.Logger
}

// NewPipeline wires the pipeline. enricher and metrics may be nil.
func NewPipeline(
	cfg *core.ResolverConfig,
	fingerprint core.FingerprintClient,
	store core.ResolutionStore,
	enricher core.MetadataEnricher,
	metrics Metrics,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		fingerprint: fingerprint,
		store:       store,
		enricher:    enricher,
		normalizer:  fuzzy.NewNormalizer(),
		metrics:     metrics,
		logger:      logger,
	}
}

// Resolve runs the resolution tiers for one request. It never returns an
// error: every failure mode degrades to a structured result.
func (p *Pipeline) Resolve(ctx context.Context, req *core.ResolutionRequest) *core.ResolutionResult {
	result := p.resolve(ctx, req)

	if p.metrics != nil {
		status := "failure"
		if result.Success {
			status = "success"
		}
		p.metrics.RecordResolution(string(result.ResolverPath), status)
	}

	p.logger.Info("Resolution completed",
		zap.String("resolver_path", string(result.ResolverPath)),
		zap.Bool("success", result.Success),
		zap.Float64("confidence", result.Confidence),
		zap.Int("links", len(result.Links)))

	return result
}

func (p *Pipeline) resolve(ctx context.Context, req *core.ResolutionRequest) *core.ResolutionResult {
	// Tier 1: cached resolution for the derived identity.
	if cached := p.fromCache(ctx, req); cached != nil {
		return cached
	}

	direct := platlink.NormalizeAll(req.PlatformInputs())
	p.logNotes(direct)

	// Tiers 2-3: fingerprint identification, when the request carries a
	// fingerprintable signal.
	query := p.buildQuery(req)
	if !queryEmpty(query) {
		p.logger.Debug("Resolution stage: fingerprint attempt")
		fpResult := p.fingerprint.Identify(ctx, query)

		if p.metrics != nil {
			status := "ok"
			switch {
			case fpResult.Failed():
				status = "failed"
			case !fpResult.HadExternalMetadata:
				status = "no_match"
			}
			p.metrics.RecordFingerprintCall(string(fpResult.Mode), status)
		}

		switch {
		case fpResult.Failed():
			p.logger.Warn("Resolution stage: fingerprint failed, falling back",
				zap.String("mode", string(fpResult.Mode)),
				zap.Int("status", fpResult.StatusCode),
				zap.String("error", fpResult.Err))
			return p.finish(ctx, req, p.fallback(req, direct, core.PathACRFailedFallback, "acrcloud_error", fpResult.Err))

		case fpResult.HadExternalMetadata:
			best := fpResult.Metadata.Results[0]
			score := clamp01(best.Score)
			switch {
			case score >= p.cfg.StrongThreshold:
				return p.finish(ctx, req, p.fromFingerprint(req, direct, &best, core.PathACRStrong, score))
			case score >= p.cfg.OKThreshold:
				return p.finish(ctx, req, p.fromFingerprint(req, direct, &best, core.PathACROK, score))
			default:
				// Below the lower bound the match is untrusted; only direct
				// inputs contribute links.
				p.logger.Debug("Resolution stage: fingerprint match below lower bound",
					zap.Float64("score", score))
				return p.finish(ctx, req, p.fallback(req, direct, core.PathFallbackOnly, "acrcloud_weak", ""))
			}
		default:
			// 2xx with no metadata: a valid "no strong match" outcome.
			p.logger.Debug("Resolution stage: fingerprint returned no metadata")
			return p.finish(ctx, req, p.fallback(req, direct, core.PathFallbackOnly, "acrcloud_no_match", ""))
		}
	}

	// Tier 4: direct inputs only.
	return p.finish(ctx, req, p.fallback(req, direct, core.PathFallbackOnly, "", ""))
}

// fromCache returns a cached result for the request identity, or nil.
// force_refresh bypasses the read (but not the later upsert).
func (p *Pipeline) fromCache(ctx context.Context, req *core.ResolutionRequest) *core.ResolutionResult {
	identity := req.IdentityKey()
	if identity == "" || req.ForceRefresh || p.store == nil {
		return nil
	}

	rec, err := p.store.Get(ctx, identity)
	if err != nil {
		p.logger.Warn("Cache read failed, resolving fresh", zap.Error(err))
		if p.metrics != nil {
			p.metrics.RecordError("store", "read")
		}
		return nil
	}
	if rec == nil {
		return nil
	}

	p.logger.Debug("Resolution stage: cache hit", zap.String("identity", identity))
	if p.metrics != nil {
		p.metrics.RecordCacheHit()
	}

	result := resultFromRecord(rec)
	return result
}

// buildQuery derives the single fingerprint query for a request: ISRC beats
// audio reference beats normalized free-text hints.
func (p *Pipeline) buildQuery(req *core.ResolutionRequest) core.FingerprintQuery {
	return core.FingerprintQuery{
		ISRC:      strings.TrimSpace(req.ISRC),
		SourceURL: strings.TrimSpace(req.AudioURL),
		Text:      p.normalizer.QueryString(req.HintTitle, req.HintArtist),
	}
}

func queryEmpty(q core.FingerprintQuery) bool {
	return q.ISRC == "" && q.SourceURL == "" && q.Text == ""
}

// fromFingerprint merges a trusted fingerprint match with direct inputs.
// Direct input always wins per platform.
func (p *Pipeline) fromFingerprint(
	req *core.ResolutionRequest,
	direct map[platlink.Platform]platlink.Normalized,
	best *core.ExternalResult,
	path core.ResolverPath,
	score float64,
) *core.ResolutionResult {
	merged := platlink.FromMetadata(best.Platforms, direct)
	p.logNotes(merged)

	links, platformIDs := collect(merged)

	result := &core.ResolutionResult{
		Success:      true,
		ResolverPath: path,
		Track: &core.TrackMetadata{
			Title:      best.Title,
			Artist:     strings.Join(best.Artists, ", "),
			Album:      best.Album,
			ISRC:       best.ISRC,
			DurationMS: best.DurationMS,
			CoverURL:   best.CoverURL,
		},
		Links: links,
		RawIDs: core.RawIdentifierSet{
			PlatformIDs: platformIDs,
			ISRC:        firstNonEmpty(strings.TrimSpace(req.ISRC), best.ISRC),
			UPC:         best.UPC,
		},
		Fingerprint: &core.FingerprintMatch{
			ID:    best.ID,
			Score: score,
		},
		Confidence:        score,
		Sources:           []string{"acrcloud"},
		NeedsManualReview: path == core.PathACROK,
	}
	if len(direct) > 0 {
		result.Sources = append(result.Sources, "direct_input")
	}

	result.CanonicalPlatform, result.CanonicalURL = canonical(links)
	return result
}

// fallback resolves from direct platform inputs alone. attemptTag records a
// fingerprint attempt that yielded no trusted match (error, weak score or no
// metadata); empty when no call was made. With no inputs at all this
// degrades to the terminal "none" result.
func (p *Pipeline) fallback(
	req *core.ResolutionRequest,
	direct map[platlink.Platform]platlink.Normalized,
	path core.ResolverPath,
	attemptTag string,
	errNote string,
) *core.ResolutionResult {
	links, platformIDs := collect(direct)

	if len(links) == 0 {
		result := core.EmptyResult()
		result.Error = errNote
		if attemptTag != "" {
			result.Sources = []string{attemptTag}
		}
		return result
	}

	result := &core.ResolutionResult{
		Success:      true,
		ResolverPath: path,
		Links:        links,
		RawIDs: core.RawIdentifierSet{
			PlatformIDs: platformIDs,
			ISRC:        strings.TrimSpace(req.ISRC),
		},
		Confidence:        fallbackConfidence(len(links)),
		Sources:           []string{"direct_input"},
		NeedsManualReview: true,
		Error:             errNote,
	}
	if attemptTag != "" {
		result.Sources = append([]string{attemptTag}, result.Sources...)
	}

	if title, artist := strings.TrimSpace(req.HintTitle), strings.TrimSpace(req.HintArtist); title != "" || artist != "" {
		result.Track = &core.TrackMetadata{Title: title, Artist: artist, Album: strings.TrimSpace(req.HintAlbum)}
	}

	result.CanonicalPlatform, result.CanonicalURL = canonical(links)
	return result
}

// finish applies best-effort enrichment and persistence to a non-cache
// outcome, then returns it. Terminal "none" results are returned as-is.
func (p *Pipeline) finish(ctx context.Context, req *core.ResolutionRequest, result *core.ResolutionResult) *core.ResolutionResult {
	if result.ResolverPath == core.PathNone {
		return result
	}

	p.enrich(ctx, result)
	p.persist(ctx, req, result)
	return result
}

// enrich backfills missing track metadata from the Spotify enricher when a
// Spotify track ID is available. Failures never change the outcome.
func (p *Pipeline) enrich(ctx context.Context, result *core.ResolutionResult) {
	if p.enricher == nil {
		return
	}
	if result.Track != nil && result.Track.Title != "" && result.Track.ISRC != "" {
		return
	}

	spotifyID := result.RawIDs.PlatformIDs[platlink.Spotify]
	if spotifyID == "" {
		return
	}

	meta, err := p.enricher.TrackByID(ctx, spotifyID)
	if err != nil {
		p.logger.Debug("Metadata enrichment skipped", zap.Error(err))
		return
	}

	if result.Track == nil {
		result.Track = &core.TrackMetadata{}
	}
	mergeMissing(result.Track, meta)
	if result.RawIDs.ISRC == "" {
		result.RawIDs.ISRC = meta.ISRC
	}
	result.Sources = append(result.Sources, "spotify_enrichment")
}

// persist upserts the resolution record keyed by the strongest identity
// available. Persistence failure still returns the resolved result.
func (p *Pipeline) persist(ctx context.Context, req *core.ResolutionRequest, result *core.ResolutionResult) {
	if p.store == nil {
		return
	}

	identity, fingerprintID, isrc := persistIdentity(req, result)
	if identity == "" {
		p.logger.Debug("No persistable identity, skipping upsert")
		return
	}

	rec := &core.Record{
		IdentityKey:       identity,
		SmartLinkID:       strings.TrimSpace(req.SmartLinkID),
		ISRC:              isrc,
		FingerprintID:     fingerprintID,
		CanonicalPlatform: result.CanonicalPlatform,
		CanonicalURL:      result.CanonicalURL,
		Links:             result.Links,
		RawIDs:            result.RawIDs,
		Confidence:        result.Confidence,
		ResolverPath:      result.ResolverPath,
		NeedsManualReview: result.NeedsManualReview,
	}
	if result.Track != nil {
		rec.Track = *result.Track
	}

	if err := p.store.Upsert(ctx, rec); err != nil {
		p.logger.Warn("Failed to persist resolution", zap.Error(err))
		if p.metrics != nil {
			p.metrics.RecordError("store", "write")
		}
		return
	}

	result.RecordID = identity
}

// persistIdentity derives the identity to persist under. The record must be
// findable by the next identical request, so the request-derived key (the
// same derivation fromCache reads with) wins; result-derived identifiers
// only key records for requests that carried no identity of their own.
func persistIdentity(req *core.ResolutionRequest, result *core.ResolutionResult) (identity, fingerprintID, isrc string) {
	fingerprintID = strings.TrimSpace(req.FingerprintID)
	if result.Fingerprint != nil && result.Fingerprint.ID != "" {
		fingerprintID = result.Fingerprint.ID
	}

	isrc = strings.TrimSpace(req.ISRC)
	if isrc == "" && result.Track != nil {
		isrc = strings.TrimSpace(result.Track.ISRC)
	}
	isrc = strings.ToUpper(isrc)

	identity = req.IdentityKey()
	if identity == "" {
		switch {
		case fingerprintID != "":
			identity = "fp:" + fingerprintID
		case isrc != "":
			identity = "isrc:" + isrc
		}
	}
	return identity, fingerprintID, isrc
}

func resultFromRecord(rec *core.Record) *core.ResolutionResult {
	result := &core.ResolutionResult{
		Success:           true,
		ResolverPath:      core.PathCache,
		CanonicalPlatform: rec.CanonicalPlatform,
		CanonicalURL:      rec.CanonicalURL,
		Links:             rec.Links,
		RawIDs:            rec.RawIDs,
		Confidence:        rec.Confidence,
		Sources:           []string{"cache"},
		NeedsManualReview: rec.NeedsManualReview,
		RecordID:          rec.IdentityKey,
	}
	if rec.Links == nil {
		result.Links = core.PlatformLinkSet{}
	}
	if rec.Track != (core.TrackMetadata{}) {
		track := rec.Track
		result.Track = &track
	}
	if rec.FingerprintID != "" {
		result.Fingerprint = &core.FingerprintMatch{ID: rec.FingerprintID}
	}
	return result
}

// collect splits normalized entries into the link set and the raw ID set.
func collect(merged map[platlink.Platform]platlink.Normalized) (core.PlatformLinkSet, map[platlink.Platform]string) {
	links := core.PlatformLinkSet{}
	ids := make(map[platlink.Platform]string)
	for platform, n := range merged {
		if n.URL != "" {
			links[platform] = n.URL
		}
		if n.RawID != "" {
			ids[platform] = n.RawID
		}
	}
	if len(ids) == 0 {
		ids = nil
	}
	return links, ids
}

// canonical picks the canonical platform/URL in fixed platform order.
func canonical(links core.PlatformLinkSet) (platlink.Platform, string) {
	for _, platform := range platlink.Platforms {
		if url, ok := links[platform]; ok && url != "" {
			return platform, url
		}
	}
	return "", ""
}

func (p *Pipeline) logNotes(entries map[platlink.Platform]platlink.Normalized) {
	for platform, n := range entries {
		if n.Note == "" {
			continue
		}
		p.logger.Debug("Normalization note",
			zap.String("platform", string(platform)),
			zap.String("note", n.Note))
	}
}

func mergeMissing(dst, src *core.TrackMetadata) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Artist == "" {
		dst.Artist = src.Artist
	}
	if dst.Album == "" {
		dst.Album = src.Album
	}
	if dst.ISRC == "" {
		dst.ISRC = src.ISRC
	}
	if dst.DurationMS == 0 {
		dst.DurationMS = src.DurationMS
	}
	if dst.CoverURL == "" {
		dst.CoverURL = src.CoverURL
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
