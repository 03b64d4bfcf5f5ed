package resolverclient

// Confidence thresholds shared by the presentation helpers.
const (
	highConfidence   = 0.8
	mediumConfidence = 0.65
	lowConfidence    = 0.5
)

// PathLabel maps a resolver path to a human-readable label.
func PathLabel(path string) string {
	switch path {
	case "cache":
		return "Cached"
	case "acrcloud_strong":
		return "Strong fingerprint match"
	case "acrcloud_ok":
		return "Fingerprint match"
	case "fallback_only":
		return "Direct links only"
	case "acrcloud_failed_fallback":
		return "Direct links (fingerprint unavailable)"
	case "none":
		return "Unresolved"
	}
	return "Unknown"
}

// ConfidenceBucket maps a confidence score to a coarse display bucket.
func ConfidenceBucket(confidence float64) string {
	switch {
	case confidence >= highConfidence:
		return "green"
	case confidence >= mediumConfidence:
		return "yellow"
	}
	return "red"
}

// ConfidenceLabel maps a confidence score to a display label.
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= highConfidence:
		return "High"
	case confidence >= mediumConfidence:
		return "Medium"
	case confidence >= lowConfidence:
		return "Low"
	}
	return "Very Low"
}
