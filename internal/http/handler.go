package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fanlink/internal/core"
)

// maxRequestBody bounds how much of a request body is read.
const maxRequestBody = 1 << 20

// fieldAliases maps the camelCase spelling convention onto the canonical
// snake_case field set, so heterogeneous callers interoperate without a
// breaking change.
var fieldAliases = map[string]string{
	"audioUrl":        "audio_url",
	"fingerprintId":   "fingerprint_id",
	"smartLinkId":     "smart_link_id",
	"forceRefresh":    "force_refresh",
	"hintTitle":       "hint_title",
	"hintArtist":      "hint_artist",
	"hintAlbum":       "hint_album",
	"spotifyUrl":      "spotify_url",
	"appleMusicUrl":   "apple_music_url",
	"youtubeUrl":      "youtube_url",
	"youtubeMusicUrl": "youtube_music_url",
	"tidalUrl":        "tidal_url",
	"deezerUrl":       "deezer_url",
	"soundcloudUrl":   "soundcloud_url",
	"amazonUrl":       "amazon_url",
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// No-op preflight.
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Only send the 500 if nothing has been committed yet; recovering after
	// writeJSON started must not stack a second WriteHeader on a partial body.
	committed := false
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Panic in resolve handler", zap.Any("panic", rec))
			if !committed {
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}
	}()

	req, err := decodeRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Reject before the pipeline runs, so empty requests have no side
	// effects.
	if !req.HasIdentifyingInput() {
		writeError(w, http.StatusBadRequest,
			"at least one identifying field is required (audio reference, isrc, fingerprint id, platform url, or title+artist hints)")
		return
	}

	start := time.Now()
	result := s.resolver.Resolve(r.Context(), req)
	s.metrics.RecordResolveDuration(string(result.ResolverPath), time.Since(start))

	// Pipeline-level failure is carried in the body, never the status code.
	committed = true
	writeJSON(w, http.StatusOK, result)
}

// decodeRequest parses a JSON body accepting both spelling conventions:
// alias keys are rewritten onto the canonical field set before decoding.
// Canonical spelling wins when a caller supplies both.
func decodeRequest(body io.Reader) (*core.ResolutionRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBody))
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	for alias, canonical := range fieldAliases {
		value, ok := fields[alias]
		if !ok {
			continue
		}
		if _, exists := fields[canonical]; !exists {
			fields[canonical] = value
		}
		delete(fields, alias)
	}

	canonicalJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var req core.ResolutionRequest
	if err := json.Unmarshal(canonicalJSON, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
